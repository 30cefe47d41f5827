package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewDeskMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDeskMetricsWithRegisterer(reg)

	if m.sessionsOpened == nil || m.commands == nil || m.orderValue == nil || m.catalogEntries == nil {
		t.Fatal("collectors should be initialized")
	}

	// Повторная регистрация отдаёт уже существующие коллекторы.
	again := NewDeskMetricsWithRegisterer(reg)
	if again.sessionsOpened != m.sessionsOpened {
		t.Fatal("expected existing counter to be reused")
	}
	if again.commands != m.commands {
		t.Fatal("expected existing counter vec to be reused")
	}
}

func TestSessionLifecycleMetrics(t *testing.T) {
	m := NewDeskMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordSessionOpened()
	m.RecordSessionOpened()
	m.RecordSessionClosed(true)

	if got := testutil.ToFloat64(m.sessionsOpened); got != 2 {
		t.Errorf("expected 2 opened sessions, got %f", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 1 {
		t.Errorf("expected 1 active session, got %f", got)
	}
	if got := testutil.ToFloat64(m.sessionsExpired); got != 1 {
		t.Errorf("expected 1 expired session, got %f", got)
	}
}

func TestRecordCommandAndSearch(t *testing.T) {
	m := NewDeskMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordCommand("add_article", ResultOK)
	m.RecordCommand("add_article", ResultOK)
	m.RecordCommand("add_article", ResultRejected)
	m.RecordSearch("customer", "found")

	if got := testutil.ToFloat64(m.commands.WithLabelValues("add_article", ResultOK)); got != 2 {
		t.Errorf("expected 2 ok commands, got %f", got)
	}
	if got := testutil.ToFloat64(m.commands.WithLabelValues("add_article", ResultRejected)); got != 1 {
		t.Errorf("expected 1 rejected command, got %f", got)
	}
	if got := testutil.ToFloat64(m.searches.WithLabelValues("customer", "found")); got != 1 {
		t.Errorf("expected 1 search, got %f", got)
	}
}

func TestRecordOrderCompleted(t *testing.T) {
	m := NewDeskMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderFinalized()
	m.RecordOrderCompleted(49.95, 20*time.Millisecond)
	m.RecordOrderSubmitFailed(time.Millisecond)

	if got := testutil.ToFloat64(m.ordersFinalized); got != 1 {
		t.Errorf("expected 1 finalized order, got %f", got)
	}
	if got := testutil.ToFloat64(m.ordersCompleted); got != 1 {
		t.Errorf("expected 1 completed order, got %f", got)
	}
	if got := testutil.ToFloat64(m.ordersSubmitFailed); got != 1 {
		t.Errorf("expected 1 failed order, got %f", got)
	}

	metric := &dto.Metric{}
	if err := m.orderValue.Write(metric); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 sample, got %d", metric.Histogram.GetSampleCount())
	}
	if metric.Histogram.GetSampleSum() != 49.95 {
		t.Errorf("expected sample sum 49.95, got %f", metric.Histogram.GetSampleSum())
	}

	durations := &dto.Metric{}
	if err := m.submitDuration.Write(durations); err != nil {
		t.Fatalf("failed to write histogram: %v", err)
	}
	if durations.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 duration samples, got %d", durations.Histogram.GetSampleCount())
	}
}

func TestSetCatalogSize(t *testing.T) {
	m := NewDeskMetricsWithRegisterer(prometheus.NewRegistry())

	m.SetCatalogSize(12, 340)

	if got := testutil.ToFloat64(m.catalogEntries.WithLabelValues("customers")); got != 12 {
		t.Errorf("expected 12 customers, got %f", got)
	}
	if got := testutil.ToFloat64(m.catalogEntries.WithLabelValues("articles")); got != 340 {
		t.Errorf("expected 340 articles, got %f", got)
	}
}

func TestNilDeskMetricsIsNoop(t *testing.T) {
	var m *DeskMetrics

	m.RecordSessionOpened()
	m.RecordSessionClosed(false)
	m.RecordCommand("x", ResultOK)
	m.RecordSearch("article", "refine")
	m.RecordOrderFinalized()
	m.RecordOrderCompleted(1, time.Second)
	m.RecordOrderSubmitFailed(time.Second)
	m.SetCatalogSize(1, 1)
}
