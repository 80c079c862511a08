package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/api/dto"
	"github.com/vendorx/marketplace/internal/service"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

// BuyRequestsHandler serves buyer requests and seller decisions.
type BuyRequestsHandler struct {
	requests *service.BuyRequestService
}

func NewBuyRequestsHandler(requests *service.BuyRequestService) *BuyRequestsHandler {
	return &BuyRequestsHandler{requests: requests}
}

// Create POST /api/buy-requests.
func (h *BuyRequestsHandler) Create(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateBuyRequestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ProductID == "" {
		return apperrors.NewValidationError("product_id required", nil)
	}
	request, err := h.requests.Create(c.UserContext(), buyer, req.ProductID, quantityOrDefault(req.Quantity), req.BuyerLocation)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewBuyRequestResponse(request)})
}

// ListMine GET /api/buy-requests.
func (h *BuyRequestsHandler) ListMine(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.requests.ListForBuyer(c.UserContext(), buyer)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBuyRequestList(requests)})
}

// ListIncoming GET /api/seller/buy-requests.
func (h *BuyRequestsHandler) ListIncoming(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.requests.ListForSeller(c.UserContext(), seller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBuyRequestList(requests)})
}

// UpdateStatus PATCH /api/seller/buy-requests/:id.
func (h *BuyRequestsHandler) UpdateStatus(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBuyRequestStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	request, err := h.requests.UpdateStatus(c.UserContext(), seller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBuyRequestResponse(request)})
}
