package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/api/dto"
	"github.com/vendorx/marketplace/internal/service"
)

// ProductsHandler serves the public catalogue and seller listing management.
type ProductsHandler struct {
	products *service.ProductService
}

func NewProductsHandler(products *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

func toProductInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		StockCount:  req.StockCount,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
}

// List GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.ListAvailable(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// Get GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// ListMine GET /api/seller/products.
func (h *ProductsHandler) ListMine(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	products, err := h.products.ListMine(c.UserContext(), seller)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// Create POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), seller, toProductInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), seller, c.Params("id"), toProductInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), seller, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
