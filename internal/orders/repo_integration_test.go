package orders

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests need a migrated Postgres. They skip in short mode
// and when TEST_POSTGRES_DSN is not set, so the unit suite stays green
// without infrastructure.
func testRepo(t *testing.T) (context.Context, *Repo) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return ctx, &Repo{DB: pool}
}

func seedMenuItem(t *testing.T, ctx context.Context, r *Repo, price int64) string {
	t.Helper()
	id := "it-" + uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO menu_items (id, name, price, cuisine, availability)
		VALUES ($1, 'Test Biryani', $2, 'biryani', true)`, id, price)
	if err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
	t.Cleanup(func() {
		_, _ = r.DB.Exec(context.Background(), `DELETE FROM menu_items WHERE id = $1`, id)
	})
	return id
}

func placeOrder(t *testing.T, ctx context.Context, r *Repo, token, itemID string, price int64) Order {
	t.Helper()
	o, existed, err := r.CreateOrderTx(ctx, token, CreateInput{
		Items:         []ItemRequest{{ItemID: itemID, Quantity: 2}},
		ClientTotal:   2 * price,
		OrderType:     TypePickup,
		PaymentMethod: PaymentCOD,
		CustomerName:  "Asha",
		CustomerPhone: "+919876543210",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if existed {
		t.Fatal("fresh token must create a new order")
	}
	t.Cleanup(func() {
		_, _ = r.DB.Exec(context.Background(), `DELETE FROM orders WHERE id = $1`, o.ID)
	})
	return o
}

// Catalog edits after checkout must never change what the customer
// agreed to pay.
func TestCreateOrderTxFrozenSnapshot(t *testing.T) {
	ctx, r := testRepo(t)
	itemID := seedMenuItem(t, ctx, r, 250)
	o := placeOrder(t, ctx, r, uuid.NewString(), itemID, 250)

	if _, err := r.DB.Exec(ctx, `UPDATE menu_items SET price = 400 WHERE id = $1`, itemID); err != nil {
		t.Fatalf("reprice item: %v", err)
	}

	got, err := r.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Price != 250 {
		t.Errorf("snapshot price = %v, want 250 after catalog edit", got.Items)
	}
	if got.Total != 500 {
		t.Errorf("total = %d, want 500", got.Total)
	}
}

func TestCreateOrderTxDuplicateToken(t *testing.T) {
	ctx, r := testRepo(t)
	itemID := seedMenuItem(t, ctx, r, 250)
	token := uuid.NewString()
	first := placeOrder(t, ctx, r, token, itemID, 250)

	second, existed, err := r.CreateOrderTx(ctx, token, CreateInput{
		Items:         []ItemRequest{{ItemID: itemID, Quantity: 2}},
		ClientTotal:   500,
		OrderType:     TypePickup,
		PaymentMethod: PaymentCOD,
		CustomerName:  "Asha",
		CustomerPhone: "+919876543210",
	})
	if err != nil {
		t.Fatalf("replay token: %v", err)
	}
	if !existed {
		t.Error("existed = false, want true on replayed token")
	}
	if second.ID != first.ID {
		t.Errorf("replay returned %s, want %s", second.ID, first.ID)
	}

	var n int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM orders WHERE checkout_token = $1`, token).Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if n != 1 {
		t.Errorf("orders for token = %d, want 1", n)
	}
}

func TestTransitionLosesCleanlyOnConflict(t *testing.T) {
	ctx, r := testRepo(t)
	itemID := seedMenuItem(t, ctx, r, 250)
	o := placeOrder(t, ctx, r, uuid.NewString(), itemID, 250)

	if err := r.Transition(ctx, o.ID, StatusNew, StatusAccepted); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	err := r.Transition(ctx, o.ID, StatusNew, StatusAccepted)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("second transition = %v, want ErrStatusConflict", err)
	}
}

// Admin overrides skip intermediate states and move backwards; the
// customer lifecycle table does not apply.
func TestOverrideStatusSkipsLifecycle(t *testing.T) {
	ctx, r := testRepo(t)
	itemID := seedMenuItem(t, ctx, r, 250)
	o := placeOrder(t, ctx, r, uuid.NewString(), itemID, 250)

	from, err := r.OverrideStatus(ctx, o.ID, StatusCompleted)
	if err != nil {
		t.Fatalf("override to completed: %v", err)
	}
	if from != StatusNew {
		t.Errorf("previous status = %s, want new", from)
	}

	got, err := r.Get(ctx, o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}

	if _, err := r.OverrideStatus(ctx, o.ID, StatusNew); err != nil {
		t.Fatalf("override back to new: %v", err)
	}
}
