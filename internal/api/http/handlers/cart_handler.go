package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/api/dto"
	"github.com/vendorx/marketplace/internal/service"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// CartHandler manages the buyer cart.
type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// List GET /api/cart.
func (h *CartHandler) List(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.cart.List(c.UserContext(), buyer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartList(items)})
}

// Add POST /api/cart.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AddCartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ProductID == "" {
		return apperrors.NewValidationError("product_id required", nil)
	}
	item, err := h.cart.Add(c.UserContext(), buyer, req.ProductID, quantityOrDefault(req.Quantity))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartItemResponse(item)})
}

// Update PUT /api/cart.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCartItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.CartItemID == "" {
		return apperrors.NewValidationError("cart_item_id required", nil)
	}
	item, err := h.cart.UpdateQuantity(c.UserContext(), buyer, req.CartItemID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCartItemResponse(item)})
}

// Remove DELETE /api/cart?id=.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.cart.Remove(c.UserContext(), buyer, c.Query("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "Item removed from cart"}})
}
