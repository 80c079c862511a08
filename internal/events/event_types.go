package events

import (
	"time"

	"github.com/vendorx/marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBuyRequestCreated       EventType = "buy_request_created"
	EventBuyRequestStatusChanged EventType = "buy_request_status_changed"
)

// Actor is the principal that caused the event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	BuyRequestID string    `json:"buy_request_id"`
	Actor        Actor     `json:"actor"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload"`
}

// BuyRequestCreatedPayload payload.
type BuyRequestCreatedPayload struct {
	ProductID     string `json:"product_id"`
	SellerID      string `json:"seller_id"`
	Quantity      int    `json:"quantity"`
	BuyerLocation string `json:"buyer_location,omitempty"`
}

// BuyRequestStatusChangedPayload payload.
type BuyRequestStatusChangedPayload struct {
	BuyerID   string                  `json:"buyer_id"`
	NewStatus domain.BuyRequestStatus `json:"new_status"`
}
