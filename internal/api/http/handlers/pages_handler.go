package handlers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/vendorx/marketplace/internal/service"
)

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout"}}<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1>{{template "body" .}}</body></html>{{end}}

{{define "products"}}<ul>{{range .Products}}<li>{{.Title}} ({{printf "%.2f" .Price}}, {{.StockCount}} in stock){{with .Seller}} by {{.Name}}{{end}}</li>{{else}}<li>No products available.</li>{{end}}</ul>{{end}}
{{define "cart"}}<ul>{{range .Cart}}<li>{{with .Product}}{{.Title}}{{end}} x {{.Quantity}}</li>{{else}}<li>Your cart is empty.</li>{{end}}</ul>{{end}}
{{define "login"}}<form method="post" action="/api/auth/login"><input type="hidden" name="role" value="{{.Role}}"><input name="email" type="email"><input name="password" type="password"><button type="submit">Sign in</button></form>{{end}}
{{define "requests"}}<ul>{{range .Requests}}<li>{{with .Product}}{{.Title}}{{end}} x {{.Quantity}}{{with .Buyer}} from {{.Name}}{{end}}: {{.Status}}</li>{{else}}<li>No buy requests.</li>{{end}}</ul>{{end}}
`))

type pageData struct {
	Title    string
	Products any
	Cart     any
	Requests any
	Role     string
}

// PagesHandler renders the minimal role dashboards.
type PagesHandler struct {
	products *service.ProductService
	cart     *service.CartService
	requests *service.BuyRequestService
}

func NewPagesHandler(products *service.ProductService, cart *service.CartService, requests *service.BuyRequestService) *PagesHandler {
	return &PagesHandler{products: products, cart: cart, requests: requests}
}

func render(c *fiber.Ctx, body string, data pageData) error {
	tmpl, err := pageTemplates.Clone()
	if err != nil {
		return err
	}
	if _, err := tmpl.New("body").Parse(`{{template "` + body + `" .}}`); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return tmpl.ExecuteTemplate(c.Response().BodyWriter(), "layout", data)
}

// BuyerHome GET /buyer.
func (h *PagesHandler) BuyerHome(c *fiber.Ctx) error {
	products, err := h.products.ListAvailable(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "products", pageData{Title: "Marketplace", Products: products})
}

// BuyerCart GET /buyer/cart.
func (h *PagesHandler) BuyerCart(c *fiber.Ctx) error {
	buyer, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.cart.List(c.UserContext(), buyer)
	if err != nil {
		return err
	}
	return render(c, "cart", pageData{Title: "Your cart", Cart: items})
}

// SellerHome GET /seller.
func (h *PagesHandler) SellerHome(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	products, err := h.products.ListMine(c.UserContext(), seller)
	if err != nil {
		return err
	}
	return render(c, "products", pageData{Title: "Your listings", Products: products})
}

// SellerRequests GET /seller/requests.
func (h *PagesHandler) SellerRequests(c *fiber.Ctx) error {
	seller, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	requests, err := h.requests.ListForSeller(c.UserContext(), seller)
	if err != nil {
		return err
	}
	return render(c, "requests", pageData{Title: "Buy requests", Requests: requests})
}

// LoginPage renders the sign-in form for role. It is public.
func (h *PagesHandler) LoginPage(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "login", pageData{Title: "Sign in as " + role, Role: role})
	}
}
