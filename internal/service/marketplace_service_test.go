package service

import (
	"context"
	"testing"

	"github.com/vendorx/marketplace/internal/config"
	"github.com/vendorx/marketplace/internal/domain"
	"github.com/vendorx/marketplace/internal/events"
	apperrors "github.com/vendorx/marketplace/pkg/util"
)

const (
	lampID    = "6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b"
	absentID  = "00000000-0000-4000-8000-000000000000"
	malformed = "not-a-uuid"
)

var (
	sellerA = &domain.Principal{SubjectID: "seller-a", Role: domain.RoleSeller}
	sellerB = &domain.Principal{SubjectID: "seller-b", Role: domain.RoleSeller}
	buyer   = &domain.Principal{SubjectID: "buyer-1", Role: domain.RoleBuyer}
)

func TestProductService_OwnershipScoping(t *testing.T) {
	repo := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", Title: "Lamp", StockCount: 2})
	svc := NewProductService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, sellerB, lampID, ProductInput{Title: "Stolen"}); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Update by other seller error = %v, want NOT_FOUND", err)
	}
	if err := svc.Delete(ctx, sellerB, lampID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Delete by other seller error = %v, want NOT_FOUND", err)
	}

	updated, err := svc.Update(ctx, sellerA, lampID, ProductInput{Title: " Desk lamp ", Price: 12.5, StockCount: 3})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Desk lamp" || updated.SellerID != "seller-a" {
		t.Fatalf("Update() = %+v", updated)
	}
	if err := svc.Delete(ctx, sellerA, lampID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, lampID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Get() after delete error = %v", err)
	}
}

func TestProductService_CreateValidation(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)
	tests := []struct {
		name    string
		in      ProductInput
		wantErr bool
	}{
		{name: "valid", in: ProductInput{Title: "Mug", Price: 4, StockCount: 10}},
		{name: "missing title", in: ProductInput{Price: 4}, wantErr: true},
		{name: "negative price", in: ProductInput{Title: "Mug", Price: -1}, wantErr: true},
		{name: "negative stock", in: ProductInput{Title: "Mug", StockCount: -1}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			product, err := svc.Create(context.Background(), sellerA, test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("Create() error = %v, wantErr %v", err, test.wantErr)
			}
			if err == nil && product.SellerID != sellerA.SubjectID {
				t.Fatalf("Create() seller = %q", product.SellerID)
			}
		})
	}
}

func TestCartService_AddMergesLines(t *testing.T) {
	products := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", StockCount: 5})
	svc := NewCartService(newFakeCartRepo(), products, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, buyer, lampID, 2); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	item, err := svc.Add(ctx, buyer, lampID, 3)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("merged quantity = %d, want 5", item.Quantity)
	}
	lines, _ := svc.List(ctx, buyer)
	if len(lines) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(lines))
	}

	if _, err := svc.Add(ctx, buyer, lampID, 0); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("Add(0) error = %v", err)
	}
	if _, err := svc.Add(ctx, buyer, absentID, 1); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Add(missing) error = %v", err)
	}
	other := &domain.Principal{SubjectID: "buyer-2", Role: domain.RoleBuyer}
	if err := svc.Remove(ctx, other, item.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Remove by other buyer error = %v", err)
	}
	if err := svc.Remove(ctx, buyer, item.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
}

func TestBuyRequestService_Create(t *testing.T) {
	products := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", StockCount: 2})
	dispatcher := &recordingDispatcher{}
	svc := NewBuyRequestService(newFakeBuyRequestRepo(), products, nil, dispatcher, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, buyer, lampID, 3, ""); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("over-stock request error = %v, want VALIDATION_FAILED", err)
	}
	if _, err := svc.Create(ctx, buyer, absentID, 1, ""); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("missing product error = %v, want NOT_FOUND", err)
	}

	request, err := svc.Create(ctx, buyer, lampID, 2, " Porto ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if request.SellerID != "seller-a" || request.Status != domain.BuyRequestPending || request.BuyerLocation != "Porto" {
		t.Fatalf("Create() = %+v", request)
	}
	if len(dispatcher.published) != 1 || dispatcher.published[0].Type != events.EventBuyRequestCreated {
		t.Fatalf("published = %+v", dispatcher.published)
	}
	product, _ := products.GetByID(ctx, lampID)
	if product.StockCount != 2 {
		t.Fatalf("stock should not be reserved, got %d", product.StockCount)
	}
}

func TestBuyRequestService_UpdateStatus(t *testing.T) {
	products := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", StockCount: 2})
	dispatcher := &recordingDispatcher{}
	svc := NewBuyRequestService(newFakeBuyRequestRepo(), products, nil, dispatcher, nil)
	ctx := context.Background()

	request, err := svc.Create(ctx, buyer, lampID, 1, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name     string
		seller   *domain.Principal
		status   domain.BuyRequestStatus
		wantCode string
	}{
		{name: "back to pending", seller: sellerA, status: domain.BuyRequestPending, wantCode: apperrors.CodeValidation},
		{name: "other seller", seller: sellerB, status: domain.BuyRequestAccepted, wantCode: apperrors.CodeNotFound},
		{name: "accept", seller: sellerA, status: domain.BuyRequestAccepted},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := svc.UpdateStatus(ctx, test.seller, request.ID, test.status)
			if test.wantCode != "" {
				if !apperrors.HasCode(err, test.wantCode) {
					t.Fatalf("UpdateStatus() error = %v, want %s", err, test.wantCode)
				}
				return
			}
			if err != nil || got.Status != domain.BuyRequestAccepted {
				t.Fatalf("UpdateStatus() = %+v, %v", got, err)
			}
		})
	}

	last := dispatcher.published[len(dispatcher.published)-1]
	if last.Type != events.EventBuyRequestStatusChanged || last.Actor.ID != "seller-a" {
		t.Fatalf("last event = %+v", last)
	}
}

func TestMarketplace_MalformedIDsAreNotFound(t *testing.T) {
	products := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", StockCount: 2})
	products.err = errStoreDown
	productSvc := NewProductService(products, nil)
	cartSvc := NewCartService(newFakeCartRepo(), products, nil)
	requestSvc := NewBuyRequestService(newFakeBuyRequestRepo(), products, nil, &recordingDispatcher{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{name: "get product", call: func() error { _, err := productSvc.Get(ctx, malformed); return err }},
		{name: "update product", call: func() error {
			_, err := productSvc.Update(ctx, sellerA, malformed, ProductInput{Title: "Lamp"})
			return err
		}},
		{name: "delete product", call: func() error { return productSvc.Delete(ctx, sellerA, malformed) }},
		{name: "add to cart", call: func() error { _, err := cartSvc.Add(ctx, buyer, malformed, 1); return err }},
		{name: "update cart line", call: func() error { _, err := cartSvc.UpdateQuantity(ctx, buyer, malformed, 2); return err }},
		{name: "remove cart line", call: func() error { return cartSvc.Remove(ctx, buyer, malformed) }},
		{name: "create buy request", call: func() error { _, err := requestSvc.Create(ctx, buyer, malformed, 1, ""); return err }},
		{name: "answer buy request", call: func() error {
			_, err := requestSvc.UpdateStatus(ctx, sellerA, malformed, domain.BuyRequestAccepted)
			return err
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.call(); !apperrors.HasCode(err, apperrors.CodeNotFound) {
				t.Fatalf("error = %v, want NOT_FOUND without touching the store", err)
			}
		})
	}
}

func TestMarketplace_DemoBuyerUsesStores(t *testing.T) {
	products := newFakeProductRepo(domain.Product{ID: lampID, SellerID: "seller-a", StockCount: 2})
	demoBuyer := &domain.Principal{SubjectID: demoSubjectID(domain.RoleBuyer), Role: domain.RoleBuyer}
	ctx := context.Background()

	item, err := NewCartService(newFakeCartRepo(), products, nil).Add(ctx, demoBuyer, lampID, 1)
	if err != nil || item.BuyerID != demoBuyer.SubjectID {
		t.Fatalf("demo cart add = %+v, %v", item, err)
	}
	if err := requireID(demoBuyer.SubjectID, "user"); err != nil {
		t.Fatalf("demo subject should be storable: %v", err)
	}
}

// Rows written while credentials live outside Postgres come back without
// joined contacts; the services resolve them through the user store.
func TestMarketplace_ResolvesContactsFromUserStore(t *testing.T) {
	users := newFakeUserRepo()
	ctx := context.Background()
	seller := &domain.User{Name: "Sam", Email: "sam@example.com", Role: domain.RoleSeller, Location: "Oslo"}
	shopper := &domain.User{Name: "Kit", Email: "kit@example.com", Role: domain.RoleBuyer, Location: "Porto"}
	for _, u := range []*domain.User{seller, shopper} {
		if err := users.Insert(ctx, u); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	sellerP := &domain.Principal{SubjectID: seller.ID, Role: domain.RoleSeller}
	shopperP := &domain.Principal{SubjectID: shopper.ID, Role: domain.RoleBuyer}

	products := newFakeProductRepo()
	productSvc := NewProductService(products, users)
	created, err := productSvc.Create(ctx, sellerP, ProductInput{Title: "Lamp", Price: 10, StockCount: 3})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	listed, err := productSvc.ListAvailable(ctx)
	if err != nil || len(listed) != 1 {
		t.Fatalf("ListAvailable() = %+v, %v", listed, err)
	}
	if listed[0].Seller == nil || listed[0].Seller.Name != "Sam" || listed[0].Seller.Location != "Oslo" {
		t.Fatalf("seller contact = %+v", listed[0].Seller)
	}
	got, err := productSvc.Get(ctx, created.ID)
	if err != nil || got.Seller == nil || got.Seller.Name != "Sam" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	cart := newFakeCartRepo()
	cartSvc := NewCartService(cart, products, users)
	if _, err := cartSvc.Add(ctx, shopperP, created.ID, 1); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	for _, line := range cart.lines {
		line.Product = &domain.Product{ID: created.ID, SellerID: seller.ID}
	}
	lines, err := cartSvc.List(ctx, shopperP)
	if err != nil || len(lines) != 1 || lines[0].Product.Seller == nil || lines[0].Product.Seller.Name != "Sam" {
		t.Fatalf("cart List() = %+v, %v", lines, err)
	}

	requestSvc := NewBuyRequestService(newFakeBuyRequestRepo(), products, users, &recordingDispatcher{}, nil)
	if _, err := requestSvc.Create(ctx, shopperP, created.ID, 1, "Porto"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	incoming, err := requestSvc.ListForSeller(ctx, sellerP)
	if err != nil || len(incoming) != 1 || incoming[0].Buyer == nil || incoming[0].Buyer.Name != "Kit" {
		t.Fatalf("ListForSeller() = %+v, %v", incoming, err)
	}
}

func TestContactBook_UnknownOwnerLeavesContactUnset(t *testing.T) {
	book := newContactBook(newFakeUserRepo())
	products := []domain.Product{
		{ID: lampID, SellerID: "gone"},
		{ID: absentID, SellerID: "joined", Seller: &domain.Contact{Name: "From SQL"}},
	}
	book.fillSellers(context.Background(), products)
	if products[0].Seller != nil {
		t.Fatalf("unknown seller got contact %+v", products[0].Seller)
	}
	if products[1].Seller.Name != "From SQL" {
		t.Fatal("joined contact must not be replaced")
	}
	if newContactBook(nil).lookup(context.Background(), "anyone") != nil {
		t.Fatal("nil user store resolves nothing")
	}
}

func TestNotificationService_Handle(t *testing.T) {
	n := NewNotificationService(nil, configWithChannels())
	ctx := context.Background()

	tests := []struct {
		name    string
		event   events.Event
		wantErr bool
	}{
		{name: "created", event: events.Event{Type: events.EventBuyRequestCreated, Payload: events.BuyRequestCreatedPayload{SellerID: "seller-a", Quantity: 1}}},
		{name: "status changed", event: events.Event{Type: events.EventBuyRequestStatusChanged, Payload: events.BuyRequestStatusChangedPayload{BuyerID: "buyer-1", NewStatus: domain.BuyRequestAccepted}}},
		{name: "unknown type", event: events.Event{Type: "product_deleted"}, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := n.Handle(ctx, test.event); (err != nil) != test.wantErr {
				t.Fatalf("Handle() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
	if len(n.EventTypes()) != 2 {
		t.Fatalf("EventTypes() = %v", n.EventTypes())
	}
}

func configWithChannels() config.NotificationConfig {
	return config.NotificationConfig{EmailFrom: "noreply@vendorx.local", WebhookURL: "http://hooks.invalid/buy-requests"}
}
