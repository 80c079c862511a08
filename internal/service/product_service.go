package service

import (
	"context"
	"errors"
	"strings"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/repository"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// ProductInput carries the editable fields of a listing.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	StockCount  int
	Category    string
	ImageURL    string
}

func (in ProductInput) validate() error {
	details := map[string]any{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "title is required"
	}
	if in.Price < 0 {
		details["price"] = "price must not be negative"
	}
	if in.StockCount < 0 {
		details["stock_count"] = "stock count must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

// ProductService manages seller listings.
type ProductService struct {
	products repository.ProductRepository
	users    repository.UserRepository
}

// NewProductService builds the service. users resolves seller contacts the
// product store cannot join; it may be nil.
func NewProductService(products repository.ProductRepository, users repository.UserRepository) *ProductService {
	return &ProductService{products: products, users: users}
}

func mapRepoError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(resource+" already exists", nil)
	}
	return apperrors.NewInternalError(err)
}

// ListAvailable returns in-stock products, newest first.
func (s *ProductService) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newContactBook(s.users).fillSellers(ctx, products)
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if err := requireID(id, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "product")
	}
	newContactBook(s.users).fillSeller(ctx, product)
	return product, nil
}

func (s *ProductService) ListMine(ctx context.Context, seller *domain.Principal) ([]domain.Product, error) {
	products, err := s.products.ListBySeller(ctx, seller.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newContactBook(s.users).fillSellers(ctx, products)
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, seller *domain.Principal, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := in.apply(&domain.Product{SellerID: seller.SubjectID})
	if err := s.products.Create(ctx, product); err != nil {
		return nil, mapRepoError(err, "product")
	}
	return product, nil
}

// Update edits a product owned by seller. Products of other sellers are
// reported as not found.
func (s *ProductService) Update(ctx context.Context, seller *domain.Principal, id string, in ProductInput) (*domain.Product, error) {
	if err := requireID(id, "product"); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	product := in.apply(&domain.Product{ID: id, SellerID: seller.SubjectID})
	if err := s.products.Update(ctx, product); err != nil {
		return nil, mapRepoError(err, "product")
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, seller *domain.Principal, id string) error {
	if err := requireID(id, "product"); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id, seller.SubjectID); err != nil {
		return mapRepoError(err, "product")
	}
	return nil
}

func (in ProductInput) apply(product *domain.Product) *domain.Product {
	product.Title = strings.TrimSpace(in.Title)
	product.Description = in.Description
	product.Price = in.Price
	product.StockCount = in.StockCount
	product.Category = in.Category
	product.ImageURL = in.ImageURL
	return product
}
