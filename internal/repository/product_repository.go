package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/vendorx/marketplace/internal/domain"
)

// ProductRepository persists seller listings.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	// Update and Delete only touch rows owned by product.SellerID / sellerID.
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id, sellerID string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
}

type productRepository struct {
	db Pooler
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(db Pooler) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
        SELECT p.id, p.seller_id, p.title, p.description, p.price, p.stock_count,
               p.category, p.image_url, p.created_at, u.name, u.location
        FROM products p LEFT JOIN users u ON u.id = p.seller_id`

func scanProduct(row interface{ Scan(dest ...any) error }) (*domain.Product, error) {
	var (
		product              domain.Product
		sellerName, location *string
	)
	if err := row.Scan(
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
	return &product, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, mapPgError(rows.Err())
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (seller_id, title, description, price, stock_count, category, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	return mapPgError(pool.QueryRow(ctx, query,
		product.SellerID,
		product.Title,
		product.Description,
		product.Price,
		product.StockCount,
		product.Category,
		product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt))
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products
        SET title=$1, description=$2, price=$3, stock_count=$4, category=$5, image_url=$6
        WHERE id=$7 AND seller_id=$8
        RETURNING created_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	return mapPgError(pool.QueryRow(ctx, query,
		product.Title,
		product.Description,
		product.Price,
		product.StockCount,
		product.Category,
		product.ImageURL,
		product.ID,
		product.SellerID,
	).Scan(&product.CreatedAt))
}

func (r *productRepository) Delete(ctx context.Context, id, sellerID string) error {
	const query = `DELETE FROM products WHERE id=$1 AND seller_id=$2`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	cmd, err := pool.Exec(ctx, query, id, sellerID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return scanProduct(pool.QueryRow(ctx, productSelect+` WHERE p.id=$1`, id))
}

func (r *productRepository) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, productSelect+` WHERE p.stock_count > 0 ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, productSelect+` WHERE p.seller_id=$1 ORDER BY p.created_at DESC`, sellerID)
	if err != nil {
		return nil, mapPgError(err)
	}
	return collectProducts(rows)
}
