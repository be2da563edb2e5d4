package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"shopping-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Columns selects an item row in the order ScanItem expects. Price is read as
// text so it keeps its exact NUMERIC value.
const Columns = `id, name, description, price::text, stock, image, created_at, updated_at`

// QualifiedColumns is Columns with every column prefixed by a table alias.
func QualifiedColumns(alias string) string {
	cols := strings.Split(Columns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

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

func (r *postgresRepo) List(ctx context.Context) ([]domain.Item, error) {
	q := `SELECT ` + Columns + ` FROM items ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("item repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Item{}
	for rows.Next() {
		it, err := ScanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("item repo: list rows error=%v", err)
		return nil, err
	}
	r.logger.Printf("item repo: list count=%d", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	q := `SELECT ` + Columns + ` FROM items WHERE id = $1`
	it, err := ScanItem(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("item repo: get id=%d not found", id)
			return nil, &domain.NotFoundError{Resource: domain.ResourceItem, ID: id}
		}
		r.logger.Printf("item repo: get id=%d error=%v", id, err)
		return nil, err
	}
	return it, nil
}

func (r *postgresRepo) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	q := `
INSERT INTO items (name, description, price, stock, image)
VALUES ($1, $2, $3::numeric, $4, $5)
RETURNING ` + Columns
	created, err := ScanItem(r.pool.QueryRow(ctx, q,
		item.Name,
		item.Description,
		item.Price.StringFixed(domain.PriceDecimalPlaces),
		item.Stock,
		item.Image,
	))
	if err != nil {
		r.logger.Printf("item repo: create name=%q error=%v", item.Name, err)
		return nil, err
	}
	r.logger.Printf("item repo: created id=%d name=%q", created.ID, created.Name)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, item domain.Item) (*domain.Item, error) {
	q := `
UPDATE items
SET name = $2,
    description = $3,
    price = $4::numeric,
    stock = $5,
    image = $6,
    updated_at = now()
WHERE id = $1
RETURNING ` + Columns
	updated, err := ScanItem(r.pool.QueryRow(ctx, q,
		item.ID,
		item.Name,
		item.Description,
		item.Price.StringFixed(domain.PriceDecimalPlaces),
		item.Stock,
		item.Image,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Resource: domain.ResourceItem, ID: item.ID}
		}
		r.logger.Printf("item repo: update id=%d error=%v", item.ID, err)
		return nil, err
	}
	r.logger.Printf("item repo: updated id=%d", updated.ID)
	return updated, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("item repo: delete id=%d error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: domain.ResourceItem, ID: id}
	}
	r.logger.Printf("item repo: deleted id=%d", id)
	return nil
}

// ScanItem reads a row selected with Columns. Destinations in lead receive
// any columns selected before the item's; the cart store uses them for the
// cart line fields of a join.
func ScanItem(row pgx.Row, lead ...any) (*domain.Item, error) {
	var (
		it    domain.Item
		price string
	)
	dest := append(lead, &it.ID, &it.Name, &it.Description, &price, &it.Stock, &it.Image, &it.CreatedAt, &it.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	it.Price = p
	return &it, nil
}
