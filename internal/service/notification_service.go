package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vendorx/marketplace/internal/config"
	"github.com/vendorx/marketplace/internal/events"
)

// NotificationService turns buy-request events into outbound notifications.
// Delivery is stubbed: configured channels are logged, not contacted.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// EventTypes lists the events Handle understands.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventBuyRequestCreated, events.EventBuyRequestStatusChanged}
}

// Handle notifies the counterparty of event: the seller for new requests,
// the buyer for decisions.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventBuyRequestCreated:
		payload, _ := event.Payload.(events.BuyRequestCreatedPayload)
		n.logger.Info("buy request created",
			zap.String("buy_request_id", event.BuyRequestID),
			zap.String("seller_id", payload.SellerID),
			zap.Int("quantity", payload.Quantity))
		n.email(ctx, event, payload.SellerID)
		n.webhook(ctx, event)
	case events.EventBuyRequestStatusChanged:
		payload, _ := event.Payload.(events.BuyRequestStatusChangedPayload)
		n.logger.Info("buy request decided",
			zap.String("buy_request_id", event.BuyRequestID),
			zap.String("buyer_id", payload.BuyerID),
			zap.String("status", string(payload.NewStatus)))
		n.email(ctx, event, payload.BuyerID)
	default:
		return fmt.Errorf("notification: unsupported event %q", event.Type)
	}
	return nil
}

func (n *NotificationService) email(_ context.Context, event events.Event, recipientID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification (stub)",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_id", recipientID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) webhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification (stub)",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("buy_request_id", event.BuyRequestID),
		zap.String("event_type", string(event.Type)))
}
