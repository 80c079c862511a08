package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/repository"
)

// memoryProducts stores products without any users join, the way rows
// look when sellers are kept in the Redis credential store.
type memoryProducts struct {
	mu    sync.Mutex
	order []string
	byID  map[string]domain.Product
}

func newMemoryProducts() *memoryProducts {
	return &memoryProducts{byID: map[string]domain.Product{}}
}

func (m *memoryProducts) Create(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = uuid.NewString()
	product.CreatedAt = time.Now().UTC()
	m.byID[product.ID] = *product
	m.order = append(m.order, product.ID)
	return nil
}

func (m *memoryProducts) Update(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[product.ID]
	if !ok || existing.SellerID != product.SellerID {
		return repository.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	m.byID[product.ID] = *product
	return nil
}

func (m *memoryProducts) Delete(_ context.Context, id, sellerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok || existing.SellerID != sellerID {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (m *memoryProducts) ListAvailable(context.Context) ([]domain.Product, error) {
	return m.filter(func(p domain.Product) bool { return p.StockCount > 0 }), nil
}

func (m *memoryProducts) ListBySeller(_ context.Context, sellerID string) ([]domain.Product, error) {
	return m.filter(func(p domain.Product) bool { return p.SellerID == sellerID }), nil
}

func (m *memoryProducts) filter(keep func(domain.Product) bool) []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Product
	for i := len(m.order) - 1; i >= 0; i-- {
		product, ok := m.byID[m.order[i]]
		if ok && keep(product) {
			result = append(result, product)
		}
	}
	return result
}
