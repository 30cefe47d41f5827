package domain

import (
	"errors"
	"testing"
)

func TestEvaluateReadiness(t *testing.T) {
	tests := []struct {
		name        string
		hasCustomer bool
		lines       int
		want        Readiness
		label       string
		wantErr     error
	}{
		{name: "nothing", want: ReadinessNeedBoth, label: "Kunde und Artikel erforderlich", wantErr: ErrCustomerRequired},
		{name: "items only", lines: 2, want: ReadinessNeedCustomer, label: "Bitte wählen Sie einen Kunden aus", wantErr: ErrCustomerRequired},
		{name: "customer only", hasCustomer: true, want: ReadinessNeedItems, label: "Warenkorb ist leer", wantErr: ErrItemsRequired},
		{name: "both", hasCustomer: true, lines: 1, want: ReadinessReady, label: "Bestellung anzeigen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateReadiness(tt.hasCustomer, tt.lines)
			if got != tt.want {
				t.Fatalf("EvaluateReadiness() = %s, want %s", got, tt.want)
			}
			if got.Label() != tt.label {
				t.Errorf("Label() = %q, want %q", got.Label(), tt.label)
			}
			if got.CanProceed() != (tt.want == ReadinessReady) {
				t.Errorf("CanProceed() = %v", got.CanProceed())
			}
			if !errors.Is(got.Err(), tt.wantErr) || (tt.wantErr == nil && got.Err() != nil) {
				t.Errorf("Err() = %v, want %v", got.Err(), tt.wantErr)
			}
		})
	}
}

func TestReadiness_TogglingEitherSideFlipsGate(t *testing.T) {
	if !EvaluateReadiness(true, 1).CanProceed() {
		t.Fatal("expected gate enabled")
	}
	if EvaluateReadiness(false, 1).CanProceed() {
		t.Fatal("expected gate disabled without customer")
	}
	if EvaluateReadiness(true, 0).CanProceed() {
		t.Fatal("expected gate disabled without items")
	}
}
