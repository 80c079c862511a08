package domain

import "time"

// BuyRequestStatus tracks the seller's answer to a buy request.
type BuyRequestStatus string

const (
	BuyRequestPending  BuyRequestStatus = "pending"
	BuyRequestAccepted BuyRequestStatus = "accepted"
	BuyRequestRejected BuyRequestStatus = "rejected"
)

// BuyRequest is a buyer's non-monetary request to purchase a product.
type BuyRequest struct {
	ID            string
	BuyerID       string
	ProductID     string
	SellerID      string
	Quantity      int
	BuyerLocation string
	Status        BuyRequestStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Product *Product
	Buyer   *Contact
}
