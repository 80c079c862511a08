package domain

import "time"

// CartItem is a product line in a buyer's cart.
type CartItem struct {
	ID        string
	BuyerID   string
	ProductID string
	Quantity  int
	CreatedAt time.Time

	Product *Product
}
