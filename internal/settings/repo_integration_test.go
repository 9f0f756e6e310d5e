package settings

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

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

// Repeated reads lazily create the defaults exactly once; the table
// never grows a second authoritative row.
func TestGetCreatesSingleton(t *testing.T) {
	ctx, r := testRepo(t)

	first, err := r.Get(ctx)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := r.Get(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Errorf("reads disagree: %+v vs %+v", first, second)
	}

	var n int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM admin_settings`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 1 {
		t.Errorf("admin_settings rows = %d, want 1", n)
	}
}

func TestUpdateReadAfterWrite(t *testing.T) {
	ctx, r := testRepo(t)

	before, err := r.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t.Cleanup(func() { _ = r.Update(context.Background(), before) })

	want := Settings{
		KitchenName:    "Tandoor Lane",
		WhatsAppNumber: "+911234567890",
		UPIID:          "tandoor@upi",
	}
	if err := r.Update(ctx, want); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := r.Get(ctx)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got != want {
		t.Errorf("read-after-write = %+v, want %+v", got, want)
	}
}
