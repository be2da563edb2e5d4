package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Image       string
}

var demoItems = []itemSeed{
	{
		Name:        "Demo T-Shirt",
		Description: "Soft cotton tee for demo purposes",
		Price:       "19.99",
		Stock:       25,
		Image:       "item_images/demo-tshirt.png",
	},
	{
		Name:        "Demo Mug",
		Description: "Ceramic mug with demo logo",
		Price:       "12.99",
		Stock:       40,
		Image:       "item_images/demo-mug.png",
	},
	{
		Name:        "Demo Hoodie",
		Description: "Warm hoodie, enough on its own for free delivery",
		Price:       "64.00",
		Stock:       8,
	},
	{
		Name:        "Demo Sticker",
		Description: "Vinyl sticker",
		Price:       "1.50",
		Stock:       200,
	},
}

// Apply inserts demo catalog items for manual testing. Items are matched by
// name, so running it twice changes nothing and never resets stock.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	inserted := 0
	for _, it := range demoItems {
		ok, err := insertItem(ctx, pool, it)
		if err != nil {
			return inserted, fmt.Errorf("insert item %q: %w", it.Name, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func insertItem(ctx context.Context, pool *pgxpool.Pool, it itemSeed) (bool, error) {
	const q = `
INSERT INTO items (name, description, price, stock, image)
SELECT $1::text, $2::text, $3::numeric, $4::int, NULLIF($5::text, '')
WHERE NOT EXISTS (SELECT 1 FROM items WHERE name = $1::text)
`
	cmd, err := pool.Exec(ctx, q, it.Name, it.Description, it.Price, it.Stock, it.Image)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
