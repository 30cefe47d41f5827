package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/messeorder/internal/domain"
)

func TestArchive_PostgresArchiveGetList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	archive := NewArchive(store)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 7, 9, 5, 3, 0, time.UTC)
	order := integrationOrder("ORD-20260307-090503-0AZ1", createdAt)

	saved, err := archive.Archive(ctx, order, integrationEvent(order.ID))
	if err != nil {
		t.Fatalf("archive order: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated outbox id")
	}

	stored, err := archive.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !stored.CreatedAt.Equal(createdAt) || stored.CustomerIndex != 4 || stored.Customer.City != "Kiel" {
		t.Fatalf("unexpected stored order: %+v", stored)
	}
	if len(stored.Lines) != 2 || stored.Lines[0].ArticleNumber != "A1" || stored.Lines[1].Quantity != 3 {
		t.Fatalf("unexpected stored lines: %+v", stored.Lines)
	}
	if !stored.Totals.Amount.Equal(decimal.RequireFromString("54.45")) {
		t.Fatalf("unexpected amount: %s", stored.Totals.Amount)
	}
	if errs := stored.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("stored order violates invariants: %v", errs)
	}

	if _, err := archive.Archive(ctx, order, integrationEvent(order.ID)); !errors.Is(err, domain.ErrOrderAlreadyArchived) {
		t.Fatalf("expected ErrOrderAlreadyArchived, got %v", err)
	}

	second := integrationOrder("ORD-20260307-100000-ZZZZ", createdAt.Add(time.Hour))
	if _, err := archive.Archive(ctx, second, integrationEvent(second.ID)); err != nil {
		t.Fatalf("archive second order: %v", err)
	}

	orders, err := archive.List(ctx, 10)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != second.ID {
		t.Fatalf("unexpected list order: %+v", orders)
	}

	if _, err := archive.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOutbox_PostgresLifecycle(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	archive := NewArchive(store)
	outbox := NewOutbox(store)
	ctx := context.Background()

	first, err := archive.Archive(ctx, integrationOrder("ORD-1", time.Now().UTC()), integrationEvent("ORD-1"))
	if err != nil {
		t.Fatalf("archive first: %v", err)
	}
	second, err := archive.Archive(ctx, integrationOrder("ORD-2", time.Now().UTC()), integrationEvent("ORD-2"))
	if err != nil {
		t.Fatalf("archive second: %v", err)
	}

	pending, err := outbox.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending messages, got %d", len(pending))
	}

	stats, err := outbox.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := outbox.MarkSent(ctx, first.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := outbox.MarkFailed(ctx, second.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := outbox.MarkSent(ctx, "missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish, got %v", err)
	}

	pending, err = outbox.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull pending after mark: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(pending))
	}
}
