package repository

import (
	"context"

	"github.com/vendorx/marketplace/internal/domain"
)

// BuyRequestRepository persists buy requests.
type BuyRequestRepository interface {
	Create(ctx context.Context, request *domain.BuyRequest) error
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.BuyRequest, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.BuyRequest, error)
	// UpdateStatus only touches requests addressed to sellerID.
	UpdateStatus(ctx context.Context, id, sellerID string, status domain.BuyRequestStatus) (*domain.BuyRequest, error)
}

type buyRequestRepository struct {
	db Pooler
}

// NewBuyRequestRepository returns a Postgres-backed implementation.
func NewBuyRequestRepository(db Pooler) BuyRequestRepository {
	return &buyRequestRepository{db: db}
}

const buyRequestColumns = `id, buyer_id, product_id, seller_id, quantity, buyer_location, status, created_at, updated_at`

func scanBuyRequestBase(dest *domain.BuyRequest) []any {
	return []any{
		&dest.ID,
		&dest.BuyerID,
		&dest.ProductID,
		&dest.SellerID,
		&dest.Quantity,
		&dest.BuyerLocation,
		&dest.Status,
		&dest.CreatedAt,
		&dest.UpdatedAt,
	}
}

func (r *buyRequestRepository) Create(ctx context.Context, request *domain.BuyRequest) error {
	const query = `
        INSERT INTO buy_requests (buyer_id, product_id, seller_id, quantity, buyer_location, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return err
	}
	return mapPgError(pool.QueryRow(ctx, query,
		request.BuyerID,
		request.ProductID,
		request.SellerID,
		request.Quantity,
		request.BuyerLocation,
		string(request.Status),
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt))
}

func (r *buyRequestRepository) list(ctx context.Context, filterColumn, id string) ([]domain.BuyRequest, error) {
	query := `
        SELECT b.id, b.buyer_id, b.product_id, b.seller_id, b.quantity, b.buyer_location,
               b.status, b.created_at, b.updated_at,
               p.title, p.price, p.image_url, u.name, u.location
        FROM buy_requests b
        JOIN products p ON p.id = b.product_id
        LEFT JOIN users u ON u.id = b.buyer_id
        WHERE b.` + filterColumn + `=$1
        ORDER BY b.created_at DESC`

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, query, id)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.BuyRequest
	for rows.Next() {
		var (
			request             domain.BuyRequest
			product             domain.Product
			buyerName, location *string
		)
		dest := append(scanBuyRequestBase(&request),
			&product.Title,
			&product.Price,
			&product.ImageURL,
			&buyerName,
			&location,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, mapPgError(err)
		}
		product.ID = request.ProductID
		product.SellerID = request.SellerID
		request.Product = &product
		request.Buyer = contactFrom(buyerName, location)
		result = append(result, request)
	}
	return result, mapPgError(rows.Err())
}

func (r *buyRequestRepository) ListByBuyer(ctx context.Context, buyerID string) ([]domain.BuyRequest, error) {
	return r.list(ctx, "buyer_id", buyerID)
}

func (r *buyRequestRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.BuyRequest, error) {
	return r.list(ctx, "seller_id", sellerID)
}

func (r *buyRequestRepository) UpdateStatus(ctx context.Context, id, sellerID string, status domain.BuyRequestStatus) (*domain.BuyRequest, error) {
	const query = `
        UPDATE buy_requests SET status=$1, updated_at=NOW()
        WHERE id=$2 AND seller_id=$3
        RETURNING ` + buyRequestColumns

	pool, err := r.db.Pool(ctx)
	if err != nil {
		return nil, err
	}
	var request domain.BuyRequest
	if err := pool.QueryRow(ctx, query, string(status), id, sellerID).Scan(scanBuyRequestBase(&request)...); err != nil {
		return nil, mapPgError(err)
	}
	return &request, nil
}
