package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/repository"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// requireID reports ids that cannot name a stored row as not found. Every
// marketplace table is keyed by uuid.
func requireID(id, resource string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return nil
}

// contactBook resolves owner contacts the listing joins left empty, which is
// the case whenever credentials live in the Redis document store. Lookups
// are memoized for one listing; a failed lookup leaves the contact unset.
type contactBook struct {
	users repository.UserRepository
	seen  map[string]*domain.Contact
}

func newContactBook(users repository.UserRepository) *contactBook {
	return &contactBook{users: users, seen: map[string]*domain.Contact{}}
}

func (b *contactBook) lookup(ctx context.Context, userID string) *domain.Contact {
	if b.users == nil || userID == "" {
		return nil
	}
	if contact, ok := b.seen[userID]; ok {
		return contact
	}
	var contact *domain.Contact
	if user, err := b.users.GetByID(ctx, userID); err == nil {
		contact = &domain.Contact{Name: user.Name, Location: user.Location}
	}
	b.seen[userID] = contact
	return contact
}

func (b *contactBook) fillSeller(ctx context.Context, product *domain.Product) {
	if product != nil && product.Seller == nil {
		product.Seller = b.lookup(ctx, product.SellerID)
	}
}

func (b *contactBook) fillSellers(ctx context.Context, products []domain.Product) {
	for i := range products {
		b.fillSeller(ctx, &products[i])
	}
}

func (b *contactBook) fillCart(ctx context.Context, items []domain.CartItem) {
	for i := range items {
		b.fillSeller(ctx, items[i].Product)
	}
}

func (b *contactBook) fillBuyers(ctx context.Context, requests []domain.BuyRequest) {
	for i := range requests {
		if requests[i].Buyer == nil {
			requests[i].Buyer = b.lookup(ctx, requests[i].BuyerID)
		}
	}
}
