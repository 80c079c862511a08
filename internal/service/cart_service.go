package service

import (
	"context"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/repository"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// CartService manages a buyer's cart.
type CartService struct {
	cart     repository.CartRepository
	products repository.ProductRepository
	users    repository.UserRepository
}

func NewCartService(cart repository.CartRepository, products repository.ProductRepository, users repository.UserRepository) *CartService {
	return &CartService{cart: cart, products: products, users: users}
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity must be at least 1", map[string]any{"quantity": quantity})
	}
	return nil
}

// Add puts a product in the cart, merging with an existing line.
func (s *CartService) Add(ctx context.Context, buyer *domain.Principal, productID string, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := requireID(productID, "product"); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, mapRepoError(err, "product")
	}

	item := &domain.CartItem{BuyerID: buyer.SubjectID, ProductID: productID, Quantity: quantity}
	if err := s.cart.Add(ctx, item); err != nil {
		return nil, mapRepoError(err, "cart item")
	}
	return item, nil
}

func (s *CartService) List(ctx context.Context, buyer *domain.Principal) ([]domain.CartItem, error) {
	items, err := s.cart.ListByBuyer(ctx, buyer.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newContactBook(s.users).fillCart(ctx, items)
	return items, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, buyer *domain.Principal, itemID string, quantity int) (*domain.CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := requireID(itemID, "cart item"); err != nil {
		return nil, err
	}
	item, err := s.cart.UpdateQuantity(ctx, itemID, buyer.SubjectID, quantity)
	if err != nil {
		return nil, mapRepoError(err, "cart item")
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, buyer *domain.Principal, itemID string) error {
	if itemID == "" {
		return apperrors.NewValidationError("cart item ID required", nil)
	}
	if err := requireID(itemID, "cart item"); err != nil {
		return err
	}
	if err := s.cart.Delete(ctx, itemID, buyer.SubjectID); err != nil {
		return mapRepoError(err, "cart item")
	}
	return nil
}
