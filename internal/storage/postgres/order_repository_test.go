package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateOrder rejects duplicate session refs", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC()

		order := domain.Order{
			ID:          uuid.NewString(),
			SessionRef:  "cs_dup",
			Status:      domain.OrderStatusPending,
			TotalAmount: 3000,
			Currency:    "gbp",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}

		dup := order
		dup.ID = uuid.NewString()
		if err := repo.CreateOrder(ctx, dup); err == nil {
			t.Fatal("expected duplicate session ref to fail")
		}
	})

	t.Run("GetOrderBySessionRef returns nil when absent", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		orderID := testutil.InsertOrder(t, ctx, pool, "cs_1", domain.OrderStatusPending)

		order, err := repo.GetOrderBySessionRef(ctx, "cs_1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if order == nil || order.ID != orderID {
			t.Fatalf("unexpected order: %+v", order)
		}

		order, err = repo.GetOrderBySessionRef(ctx, "cs_missing")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if order != nil {
			t.Fatalf("expected nil, got %+v", order)
		}
	})

	t.Run("GetOrderBySessionRefForUpdate returns ErrOrderNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		orderID := testutil.InsertOrder(t, ctx, pool, "cs_2", domain.OrderStatusPending)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			order, err := repo.GetOrderBySessionRefForUpdate(txCtx, "cs_2")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if order.ID != orderID || order.Status != domain.OrderStatusPending {
				t.Fatalf("unexpected order: %+v", order)
			}

			_, err = repo.GetOrderBySessionRefForUpdate(txCtx, "cs_missing")
			if err != domain.ErrOrderNotFound {
				t.Fatalf("expected ErrOrderNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
	})

	t.Run("MarkOrderConfirmed records customer and timestamps", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC().Truncate(time.Microsecond)

		orderID := testutil.InsertOrder(t, ctx, pool, "cs_3", domain.OrderStatusPending)

		if err := repo.MarkOrderConfirmed(ctx, orderID, "Ada", "ada@example.com", now); err != nil {
			t.Fatalf("mark confirmed: %v", err)
		}

		order, err := repo.GetOrderBySessionRef(ctx, "cs_3")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if order.Status != domain.OrderStatusConfirmed {
			t.Fatalf("expected confirmed, got %s", order.Status)
		}
		if order.CustomerEmail != "ada@example.com" {
			t.Fatalf("expected customer email persisted, got %q", order.CustomerEmail)
		}
		if order.ConfirmedAt == nil || !order.ConfirmedAt.Equal(now) {
			t.Fatalf("expected confirmed_at %v, got %v", now, order.ConfirmedAt)
		}

		if err := repo.MarkOrderConfirmed(ctx, uuid.NewString(), "", "", now); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("MarkOrderFailed sets terminal status", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC()

		orderID := testutil.InsertOrder(t, ctx, pool, "cs_4", domain.OrderStatusPending)

		if err := repo.MarkOrderFailed(ctx, orderID, now); err != nil {
			t.Fatalf("mark failed: %v", err)
		}

		order, err := repo.GetOrderBySessionRef(ctx, "cs_4")
		if err != nil {
			t.Fatalf("get order: %v", err)
		}
		if order.Status != domain.OrderStatusFailed {
			t.Fatalf("expected failed, got %s", order.Status)
		}
		if order.ConfirmedAt != nil {
			t.Fatalf("expected no confirmed_at, got %v", order.ConfirmedAt)
		}
	})
}
