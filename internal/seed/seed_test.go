package seed

import (
	"context"
	"os"
	"testing"

	"shopping-backend/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestApply_Idempotent(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, carts, items RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	first, err := Apply(ctx, pool)
	if err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if first != len(demoItems) {
		t.Fatalf("expected %d inserted, got %d", len(demoItems), first)
	}

	second, err := Apply(ctx, pool)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if second != 0 {
		t.Fatalf("expected nothing inserted on rerun, got %d", second)
	}
}
