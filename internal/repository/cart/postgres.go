package cart

import (
	"context"
	"errors"
	"io"
	"log"

	"shopping-backend/internal/domain"
	itemrepo "shopping-backend/internal/repository/item"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lineColumns = `ci.id, ci.cart_id, ci.quantity, ci.created_at, ci.updated_at`

var selectLines = `
SELECT ` + lineColumns + `, ` + itemrepo.QualifiedColumns("i") + `
FROM cart_items ci
JOIN items i ON i.id = ci.item_id
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, cartID int64) (*domain.Cart, error) {
	if _, err := r.pool.Exec(ctx, insertCart, cartID); err != nil {
		r.logger.Printf("cart repo: ensure id=%d error=%v", cartID, err)
		return nil, err
	}

	var c domain.Cart
	if err := r.pool.QueryRow(ctx, `SELECT id, created_at, updated_at FROM carts WHERE id = $1`, cartID).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceCart, ID: cartID}
		}
		r.logger.Printf("cart repo: get id=%d error=%v", cartID, err)
		return nil, err
	}

	rows, err := r.pool.Query(ctx, selectLines+`WHERE ci.cart_id = $1 ORDER BY ci.id ASC`, cartID)
	if err != nil {
		r.logger.Printf("cart repo: lines id=%d error=%v", cartID, err)
		return nil, err
	}
	lines, err := collectLines(rows)
	if err != nil {
		r.logger.Printf("cart repo: lines id=%d error=%v", cartID, err)
		return nil, err
	}
	c.Items = lines
	return &c, nil
}

func (r *postgresRepo) WithinTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx, logger: r.logger}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const insertCart = `INSERT INTO carts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`

type pgTx struct {
	tx     pgx.Tx
	logger *log.Logger
}

func (t *pgTx) EnsureCart(ctx context.Context, cartID int64) error {
	if _, err := t.tx.Exec(ctx, insertCart, cartID); err != nil {
		t.logger.Printf("cart repo: ensure id=%d error=%v", cartID, err)
		return err
	}
	var id int64
	if err := t.tx.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&id); err != nil {
		t.logger.Printf("cart repo: lock id=%d error=%v", cartID, err)
		return err
	}
	return nil
}

func (t *pgTx) LockItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	q := `SELECT ` + itemrepo.Columns + ` FROM items WHERE id = $1 FOR UPDATE`
	it, err := itemrepo.ScanItem(t.tx.QueryRow(ctx, q, itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceItem, ID: itemID}
		}
		t.logger.Printf("cart repo: lock item id=%d error=%v", itemID, err)
		return nil, err
	}
	return it, nil
}

func (t *pgTx) GetLine(ctx context.Context, cartID, itemID int64) (*domain.CartItem, error) {
	q := selectLines + `WHERE ci.cart_id = $1 AND ci.item_id = $2 FOR UPDATE OF ci`
	var line domain.CartItem
	it, err := itemrepo.ScanItem(t.tx.QueryRow(ctx, q, cartID, itemID),
		&line.ID, &line.CartID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceCartItem, ID: itemID}
		}
		t.logger.Printf("cart repo: get line cart=%d item=%d error=%v", cartID, itemID, err)
		return nil, err
	}
	line.Item = *it
	return &line, nil
}

func (t *pgTx) ListLines(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	rows, err := t.tx.Query(ctx, selectLines+`WHERE ci.cart_id = $1 ORDER BY ci.item_id ASC`, cartID)
	if err != nil {
		t.logger.Printf("cart repo: list lines cart=%d error=%v", cartID, err)
		return nil, err
	}
	return collectLines(rows)
}

func (t *pgTx) SetStock(ctx context.Context, itemID int64, stock int) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE items SET stock = $2, updated_at = now() WHERE id = $1`, itemID, stock)
	if err != nil {
		t.logger.Printf("cart repo: set stock item=%d stock=%d error=%v", itemID, stock, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceItem, ID: itemID}
	}
	return nil
}

func (t *pgTx) SaveLine(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (cart_id, item_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, item_id)
DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
RETURNING id, cart_id, quantity, created_at, updated_at
`
	var line domain.CartItem
	if err := t.tx.QueryRow(ctx, q, cartID, itemID, quantity).
		Scan(&line.ID, &line.CartID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
		t.logger.Printf("cart repo: save line cart=%d item=%d error=%v", cartID, itemID, err)
		return nil, err
	}
	line.Item.ID = itemID
	return &line, nil
}

func (t *pgTx) DeleteLine(ctx context.Context, cartID, itemID int64) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND item_id = $2`, cartID, itemID)
	if err != nil {
		t.logger.Printf("cart repo: delete line cart=%d item=%d error=%v", cartID, itemID, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceCartItem, ID: itemID}
	}
	return nil
}

func (t *pgTx) TouchCart(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func collectLines(rows pgx.Rows) ([]domain.CartItem, error) {
	defer rows.Close()

	lines := []domain.CartItem{}
	for rows.Next() {
		var line domain.CartItem
		it, err := itemrepo.ScanItem(rows, &line.ID, &line.CartID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
		if err != nil {
			return nil, err
		}
		line.Item = *it
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
