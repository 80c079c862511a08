package domain

import "time"

// Product is a listing owned by a seller.
type Product struct {
	ID          string
	SellerID    string
	Title       string
	Description string
	Price       float64
	StockCount  int
	Category    string
	ImageURL    string
	CreatedAt   time.Time

	// Seller is populated by listing queries that join the owner.
	Seller *Contact
}

// Contact is the public slice of a user shown next to products and requests.
type Contact struct {
	Name     string
	Location string
}
