package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/events"
	"github.com/vendorx/marketplace/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// fakeUserRepo is an in-memory UserRepository; err, when set, is returned by every call.
type fakeUserRepo struct {
	mu       sync.Mutex
	byEmail  map[string]*domain.User
	err      error
	raceDupe bool
	nextID   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string, role *domain.Role) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.byEmail[email]
	if !ok || (role != nil && user.Role != *role) {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserRepo) Insert(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.raceDupe {
		return repository.ErrDuplicate
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	copied := *user
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, user := range f.byEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, user := range f.byEmail {
		if user.ID == id {
			user.PasswordHash = hash
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAttempts struct {
	mu    sync.Mutex
	state map[string]repository.LockoutState
}

func newFakeAttempts() *fakeAttempts {
	return &fakeAttempts{state: map[string]repository.LockoutState{}}
}

func (f *fakeAttempts) Get(_ context.Context, key string) (repository.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[key], nil
}

func (f *fakeAttempts) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (repository.LockoutState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.state[key]
	state.FailedCount++
	if state.FailedCount >= threshold {
		until := now.Add(window)
		state.LockedUntil = &until
	}
	f.state[key] = state
	return state, nil
}

func (f *fakeAttempts) Clear(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.state, key)
	return nil
}

type fakeProductRepo struct {
	products map[string]*domain.Product
	err      error
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]*domain.Product{}}
	for i := range products {
		product := products[i]
		repo.products[product.ID] = &product
	}
	return repo
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	product.ID = uuid.NewString()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) error {
	existing, ok := f.products[product.ID]
	if !ok || existing.SellerID != product.SellerID {
		return repository.ErrNotFound
	}
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id, sellerID string) error {
	existing, ok := f.products[id]
	if !ok || existing.SellerID != sellerID {
		return repository.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	product, ok := f.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) ListAvailable(context.Context) ([]domain.Product, error) {
	var result []domain.Product
	for _, product := range f.products {
		if product.StockCount > 0 {
			result = append(result, *product)
		}
	}
	return result, f.err
}

func (f *fakeProductRepo) ListBySeller(_ context.Context, sellerID string) ([]domain.Product, error) {
	var result []domain.Product
	for _, product := range f.products {
		if product.SellerID == sellerID {
			result = append(result, *product)
		}
	}
	return result, f.err
}

type fakeCartRepo struct {
	lines map[string]*domain.CartItem
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: map[string]*domain.CartItem{}}
}

func (f *fakeCartRepo) Add(_ context.Context, item *domain.CartItem) error {
	for _, line := range f.lines {
		if line.BuyerID == item.BuyerID && line.ProductID == item.ProductID {
			line.Quantity += item.Quantity
			item.ID = line.ID
			item.Quantity = line.Quantity
			return nil
		}
	}
	item.ID = uuid.NewString()
	copied := *item
	f.lines[item.ID] = &copied
	return nil
}

func (f *fakeCartRepo) ListByBuyer(_ context.Context, buyerID string) ([]domain.CartItem, error) {
	var result []domain.CartItem
	for _, line := range f.lines {
		if line.BuyerID == buyerID {
			result = append(result, *line)
		}
	}
	return result, nil
}

func (f *fakeCartRepo) UpdateQuantity(_ context.Context, id, buyerID string, quantity int) (*domain.CartItem, error) {
	line, ok := f.lines[id]
	if !ok || line.BuyerID != buyerID {
		return nil, repository.ErrNotFound
	}
	line.Quantity = quantity
	copied := *line
	return &copied, nil
}

func (f *fakeCartRepo) Delete(_ context.Context, id, buyerID string) error {
	line, ok := f.lines[id]
	if !ok || line.BuyerID != buyerID {
		return repository.ErrNotFound
	}
	delete(f.lines, id)
	return nil
}

type fakeBuyRequestRepo struct {
	requests map[string]*domain.BuyRequest
}

func newFakeBuyRequestRepo() *fakeBuyRequestRepo {
	return &fakeBuyRequestRepo{requests: map[string]*domain.BuyRequest{}}
}

func (f *fakeBuyRequestRepo) Create(_ context.Context, request *domain.BuyRequest) error {
	request.ID = uuid.NewString()
	copied := *request
	f.requests[request.ID] = &copied
	return nil
}

func (f *fakeBuyRequestRepo) ListByBuyer(_ context.Context, buyerID string) ([]domain.BuyRequest, error) {
	var result []domain.BuyRequest
	for _, request := range f.requests {
		if request.BuyerID == buyerID {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (f *fakeBuyRequestRepo) ListBySeller(_ context.Context, sellerID string) ([]domain.BuyRequest, error) {
	var result []domain.BuyRequest
	for _, request := range f.requests {
		if request.SellerID == sellerID {
			result = append(result, *request)
		}
	}
	return result, nil
}

func (f *fakeBuyRequestRepo) UpdateStatus(_ context.Context, id, sellerID string, status domain.BuyRequestStatus) (*domain.BuyRequest, error) {
	request, ok := f.requests[id]
	if !ok || request.SellerID != sellerID {
		return nil, repository.ErrNotFound
	}
	request.Status = status
	copied := *request
	return &copied, nil
}

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}
