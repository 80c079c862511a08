package dto

import (
	"time"

	"github.com/vendorx/marketplace/internal/domain"
)

// ProductRequest payload for create and update.
type ProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	StockCount  int     `json:"stock_count"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// ContactResponse is the name and location shown to the counterparty.
type ContactResponse struct {
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

func newContact(contact *domain.Contact) *ContactResponse {
	if contact == nil {
		return nil
	}
	return &ContactResponse{Name: contact.Name, Location: contact.Location}
}

// ProductResponse response.
type ProductResponse struct {
	ID          string           `json:"id"`
	SellerID    string           `json:"seller_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	StockCount  int              `json:"stock_count"`
	Category    string           `json:"category,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Seller      *ContactResponse `json:"seller,omitempty"`
}

func NewProductResponse(product *domain.Product) *ProductResponse {
	if product == nil {
		return nil
	}
	return &ProductResponse{
		ID:          product.ID,
		SellerID:    product.SellerID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		StockCount:  product.StockCount,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		Seller:      newContact(product.Seller),
	}
}

func NewProductList(products []domain.Product) []*ProductResponse {
	result := make([]*ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, NewProductResponse(&products[i]))
	}
	return result
}

// AddCartItemRequest payload. Quantity defaults to 1.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

// UpdateCartItemRequest payload.
type UpdateCartItemRequest struct {
	CartItemID string `json:"cart_item_id"`
	Quantity   int    `json:"quantity"`
}

// CartItemResponse response.
type CartItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	Product   *ProductResponse `json:"product,omitempty"`
}

func NewCartItemResponse(item *domain.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		Product:   NewProductResponse(item.Product),
	}
}

func NewCartList(items []domain.CartItem) []CartItemResponse {
	result := make([]CartItemResponse, 0, len(items))
	for i := range items {
		result = append(result, NewCartItemResponse(&items[i]))
	}
	return result
}

// CreateBuyRequestRequest payload. Quantity defaults to 1.
type CreateBuyRequestRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      *int   `json:"quantity"`
	BuyerLocation string `json:"buyer_location"`
}

// UpdateBuyRequestStatusRequest payload.
type UpdateBuyRequestStatusRequest struct {
	Status domain.BuyRequestStatus `json:"status"`
}

// BuyRequestResponse response.
type BuyRequestResponse struct {
	ID            string                  `json:"id"`
	BuyerID       string                  `json:"buyer_id"`
	ProductID     string                  `json:"product_id"`
	SellerID      string                  `json:"seller_id"`
	Quantity      int                     `json:"quantity"`
	BuyerLocation string                  `json:"buyer_location,omitempty"`
	Status        domain.BuyRequestStatus `json:"status"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Product       *ProductResponse        `json:"product,omitempty"`
	Buyer         *ContactResponse        `json:"buyer,omitempty"`
}

func NewBuyRequestResponse(request *domain.BuyRequest) BuyRequestResponse {
	return BuyRequestResponse{
		ID:            request.ID,
		BuyerID:       request.BuyerID,
		ProductID:     request.ProductID,
		SellerID:      request.SellerID,
		Quantity:      request.Quantity,
		BuyerLocation: request.BuyerLocation,
		Status:        request.Status,
		CreatedAt:     request.CreatedAt,
		UpdatedAt:     request.UpdatedAt,
		Product:       NewProductResponse(request.Product),
		Buyer:         newContact(request.Buyer),
	}
}

func NewBuyRequestList(requests []domain.BuyRequest) []BuyRequestResponse {
	result := make([]BuyRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, NewBuyRequestResponse(&requests[i]))
	}
	return result
}
