package cart

import (
	"context"
	"errors"
	"os"
	"testing"

	"shopping-backend/internal/domain"
	"shopping-backend/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_GetCreatesEmptyCart(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	first, err := repo.Get(ctx, domain.DefaultCartID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first.ID != domain.DefaultCartID || len(first.Items) != 0 {
		t.Fatalf("unexpected cart %+v", first)
	}

	second, err := repo.Get(ctx, domain.DefaultCartID)
	if err != nil {
		t.Fatalf("Get again: %v", err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("expected the same cart on second access")
	}
}

func TestPostgres_LinesAndStockInOneTx(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	itemID := insertItem(ctx, t, pool, "Mug", "10.00", 5)

	repo := NewPostgres(pool, nil)
	err := repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.EnsureCart(ctx, 7); err != nil {
			return err
		}
		it, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if _, err := tx.GetLine(ctx, 7, itemID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected missing line, got %v", err)
		}
		if err := tx.SetStock(ctx, itemID, it.Stock-3); err != nil {
			return err
		}
		_, err = tx.SaveLine(ctx, 7, itemID, 3)
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	c, err := repo.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(c.Items))
	}
	line := c.Items[0]
	if line.Quantity != 3 || line.Item.Stock != 2 || line.Item.Price.StringFixed(2) != "10.00" {
		t.Fatalf("unexpected line %+v", line)
	}
}

func TestPostgres_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	itemID := insertItem(ctx, t, pool, "Cap", "4.00", 2)

	repo := NewPostgres(pool, nil)
	boom := errors.New("boom")
	err := repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.EnsureCart(ctx, 1); err != nil {
			return err
		}
		if err := tx.SetStock(ctx, itemID, 0); err != nil {
			return err
		}
		if _, err := tx.SaveLine(ctx, 1, itemID, 2); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var stock int
	if err := pool.QueryRow(ctx, `SELECT stock FROM items WHERE id = $1`, itemID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 2 {
		t.Fatalf("expected stock restored to 2, got %d", stock)
	}
	var lines int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM cart_items`).Scan(&lines); err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Fatalf("expected no lines after rollback, got %d", lines)
	}
}

func TestPostgres_DeleteLineNotFound(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	err := repo.WithinTx(ctx, func(tx Tx) error {
		if err := tx.EnsureCart(ctx, 1); err != nil {
			return err
		}
		return tx.DeleteLine(ctx, 1, 42)
	})
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Resource != domain.ResourceCartItem {
		t.Fatalf("expected cart item not found, got %v", err)
	}
}

func insertItem(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name, price string, stock int) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `INSERT INTO items (name, price, stock) VALUES ($1, $2::numeric, $3) RETURNING id`, name, price, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	return id
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, carts, items RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
