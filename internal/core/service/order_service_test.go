package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

func TestOrderService_UpdateStatus(t *testing.T) {
	paid := pendingOrder()
	paid.Status = domain.OrderPaid
	repo := newStubOrderRepo(paid)
	svc := NewOrderService(repo, zerolog.Nop())

	o, err := svc.UpdateStatus(context.Background(), adminViewer(), "order-1", "shipped")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if o.Status != domain.OrderShipped || repo.byID["order-1"].Status != domain.OrderShipped {
		t.Fatalf("status not applied")
	}

	if _, err := svc.UpdateStatus(context.Background(), adminViewer(), "order-1", "pending"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), adminViewer(), "order-1", "lost"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), adminViewer(), "missing", "shipped"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), userViewer(), "order-1", "delivered"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestOrderService_UpdateStatus_ConcurrentChangeConflicts(t *testing.T) {
	paid := pendingOrder()
	paid.Status = domain.OrderPaid
	repo := newStubOrderRepo(paid)
	svc := NewOrderService(repo, zerolog.Nop())

	// Another admin refunded the order after this request read it as paid.
	repo.byID["order-1"].Status = domain.OrderRefunded
	repo.staleStatus = domain.OrderPaid

	if _, err := svc.UpdateStatus(context.Background(), adminViewer(), "order-1", "shipped"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if st := repo.byID["order-1"].Status; st != domain.OrderRefunded {
		t.Fatalf("stale transition overwrote status: %s", st)
	}
}

func TestOrderService_HistoryIsScopedToViewer(t *testing.T) {
	repo := newStubOrderRepo(pendingOrder())
	svc := NewOrderService(repo, zerolog.Nop())

	page, err := svc.History(context.Background(), userViewer(), ports.OrderQuery{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if repo.lastFilter.UserID != "user-1" {
		t.Fatalf("history must filter by viewer, got %q", repo.lastFilter.UserID)
	}
	if page.Pagination.Total != 1 || page.Pagination.Limit != 20 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}

	if _, err := svc.List(context.Background(), adminViewer(), ports.OrderQuery{Status: "paid"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.UserID != "" || repo.lastFilter.Status != domain.OrderPaid {
		t.Fatalf("unexpected admin filter %+v", repo.lastFilter)
	}
}
