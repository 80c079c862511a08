package repository

import (
	"context"

	"github.com/vendorx/marketplace/internal/domain"
)

// CartRepository persists buyer cart lines.
type CartRepository interface {
	// Add inserts a line or increments the quantity of the existing line.
	Add(ctx context.Context, item *domain.CartItem) error
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id, buyerID string, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, id, buyerID string) error
}

type cartRepository struct {
	db Pooler
}

// NewCartRepository returns a Postgres-backed implementation.
func NewCartRepository(db Pooler) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	const query = `
        INSERT INTO cart_items (buyer_id, product_id, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (buyer_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
        RETURNING id, quantity, created_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	return mapPgError(pool.QueryRow(ctx, query,
		item.BuyerID,
		item.ProductID,
		item.Quantity,
	).Scan(&item.ID, &item.Quantity, &item.CreatedAt))
}

func (r *cartRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.CartItem, error) {
	const query = `
        SELECT c.id, c.buyer_id, c.product_id, c.quantity, c.created_at,
               p.id, p.seller_id, p.title, p.description, p.price, p.stock_count,
               p.category, p.image_url, p.created_at, u.name, u.location
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        LEFT JOIN users u ON u.id = p.seller_id
        WHERE c.buyer_id=$1
        ORDER BY c.created_at DESC`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.CartItem
	for rows.Next() {
		var (
			item                 domain.CartItem
			product              domain.Product
			sellerName, location *string
		)
		if err := rows.Scan(
			&item.ID,
			&item.BuyerID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&product.ID,
			&product.SellerID,
			&product.Title,
			&product.Description,
			&product.Price,
			&product.StockCount,
			&product.Category,
			&product.ImageURL,
			&product.CreatedAt,
			&sellerName,
			&location,
		); err != nil {
			return nil, mapPgError(err)
		}
		product.Seller = contactFrom(sellerName, location)
		item.Product = &product
		result = append(result, item)
	}
	return result, mapPgError(rows.Err())
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id, buyerID string, quantity int) (*domain.CartItem, error) {
	const query = `
        UPDATE cart_items SET quantity=$1
        WHERE id=$2 AND buyer_id=$3
        RETURNING id, buyer_id, product_id, quantity, created_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	var item domain.CartItem
	if err := pool.QueryRow(ctx, query, quantity, id, buyerID).Scan(
		&item.ID,
		&item.BuyerID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &item, nil
}

func (r *cartRepository) Delete(ctx context.Context, id, buyerID string) error {
	const query = `DELETE FROM cart_items WHERE id=$1 AND buyer_id=$2`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	cmd, err := pool.Exec(ctx, query, id, buyerID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
