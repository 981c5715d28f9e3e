package controllers

import (
	"context"

	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	"github.com/sisterblooms/storefront-backend/internal/delivery"
	"github.com/sisterblooms/storefront-backend/internal/storefront"
)

// CatalogService serves the read-only bouquet list and product enquiries.
type CatalogService interface {
	Catalog() *catalog.Catalog
	Enquiry(productID, size, color string, addons []string) (storefront.Checkout, error)
}

type CartService interface {
	Summary(ctx context.Context, sid string) (storefront.Summary, error)
	Count(ctx context.Context, sid string) (int, error)
	AddToCart(ctx context.Context, sid string, in storefront.AddInput) (cart.LineItem, error)
	UpdateItem(ctx context.Context, sid string, key cart.Key, in storefront.ItemPatch) (cart.Key, error)
	SetQty(ctx context.Context, sid string, key cart.Key, qty int) error
	IncrementQty(ctx context.Context, sid string, key cart.Key, delta int) (int, error)
	RemoveItem(ctx context.Context, sid string, key cart.Key) error
	ClearCart(ctx context.Context, sid string) error
}

type DeliveryService interface {
	Delivery(ctx context.Context, sid string) (delivery.Selection, error)
	SetDelivery(ctx context.Context, sid string, in storefront.DeliveryInput) (delivery.Selection, error)
	ClearDelivery(ctx context.Context, sid string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, sid string) (storefront.Checkout, error)
}

type EventService interface {
	Subscribe(ctx context.Context, sid string, fn func(storefront.Event)) (func(), error)
}

// Pinger reports whether a dependency can serve traffic.
type Pinger interface {
	Ping(ctx context.Context) error
}
