package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/events"
	"github.com/vendorx/marketplace/internal/repository"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// BuyRequestService handles buyer purchase intents and seller decisions.
type BuyRequestService struct {
	requests   repository.BuyRequestRepository
	products   repository.ProductRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewBuyRequestService(requests repository.BuyRequestRepository, products repository.ProductRepository, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *BuyRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuyRequestService{requests: requests, products: products, users: users, dispatcher: dispatcher, logger: logger}
}

// Create records a pending request. Stock is checked but not reserved.
func (s *BuyRequestService) Create(ctx context.Context, buyer *domain.Principal, productID string, quantity int, location string) (*domain.BuyRequest, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := requireID(productID, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, mapRepoError(err, "product")
	}
	if product.StockCount < quantity {
		return nil, apperrors.NewValidationError("insufficient stock", map[string]any{
			"available": product.StockCount,
			"requested": quantity,
		})
	}

	request := &domain.BuyRequest{
		BuyerID:       buyer.SubjectID,
		ProductID:     product.ID,
		SellerID:      product.SellerID,
		Quantity:      quantity,
		BuyerLocation: strings.TrimSpace(location),
		Status:        domain.BuyRequestPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, mapRepoError(err, "buy request")
	}

	s.publish(ctx, events.EventBuyRequestCreated, request.ID, buyer, events.BuyRequestCreatedPayload{
		ProductID:     request.ProductID,
		SellerID:      request.SellerID,
		Quantity:      request.Quantity,
		BuyerLocation: request.BuyerLocation,
	})
	return request, nil
}

func (s *BuyRequestService) ListForBuyer(ctx context.Context, buyer *domain.Principal) ([]domain.BuyRequest, error) {
	requests, err := s.requests.ListByBuyer(ctx, buyer.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newContactBook(s.users).fillBuyers(ctx, requests)
	return requests, nil
}

func (s *BuyRequestService) ListForSeller(ctx context.Context, seller *domain.Principal) ([]domain.BuyRequest, error) {
	requests, err := s.requests.ListBySeller(ctx, seller.SubjectID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newContactBook(s.users).fillBuyers(ctx, requests)
	return requests, nil
}

// UpdateStatus accepts or rejects a request addressed to seller.
func (s *BuyRequestService) UpdateStatus(ctx context.Context, seller *domain.Principal, id string, status domain.BuyRequestStatus) (*domain.BuyRequest, error) {
	if status != domain.BuyRequestAccepted && status != domain.BuyRequestRejected {
		return nil, apperrors.NewValidationError("status must be accepted or rejected", map[string]any{"status": status})
	}
	if err := requireID(id, "buy request"); err != nil {
		return nil, err
	}
	request, err := s.requests.UpdateStatus(ctx, id, seller.SubjectID, status)
	if err != nil {
		return nil, mapRepoError(err, "buy request")
	}

	s.publish(ctx, events.EventBuyRequestStatusChanged, request.ID, seller, events.BuyRequestStatusChangedPayload{
		BuyerID:   request.BuyerID,
		NewStatus: request.Status,
	})
	return request, nil
}

func (s *BuyRequestService) publish(ctx context.Context, eventType events.EventType, requestID string, actor *domain.Principal, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		BuyRequestID: requestID,
		Actor:        events.Actor{ID: actor.SubjectID, Role: actor.Role},
		Timestamp:    time.Now().UTC(),
		Payload:      payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
