package storefront

import (
	"context"

	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/delivery"
	"github.com/sisterblooms/storefront-backend/internal/order"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
)

// DeliveryInput changes the delivery selection. Nil fields are left alone;
// Choice ("today", "tomorrow") wins over Date when both are set.
type DeliveryInput struct {
	Date   *string
	Choice *string
	Area   *string
}

// Summary is what the cart page renders.
type Summary struct {
	Items    []cart.LineItem    `json:"items"`
	Count    int                `json:"count"`
	Estimate cart.Range         `json:"estimate"`
	Delivery delivery.Selection `json:"delivery"`
}

// Checkout is the outcome of compiling the order. Empty carts carry no message.
type Checkout struct {
	Empty   bool    `json:"empty"`
	Message string  `json:"message,omitempty"`
	Link    string  `json:"link,omitempty"`
	Summary Summary `json:"summary"`
}

func (s *Service) Summary(ctx context.Context, sid string) (Summary, error) {
	sess, err := s.session(sid)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	return s.summary(ctx, sess), nil
}

func (s *Service) summary(ctx context.Context, sess *session) Summary {
	items := sess.cart.GetCart(ctx)
	return Summary{
		Items:    items,
		Count:    cart.Count(items),
		Estimate: cart.Estimate(items),
		Delivery: sess.delivery.Selection(ctx),
	}
}

func (s *Service) Delivery(ctx context.Context, sid string) (delivery.Selection, error) {
	sess, err := s.session(sid)
	if err != nil {
		return delivery.Selection{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	return sess.delivery.Selection(ctx), nil
}

// SetDelivery updates date and area. Delivery can only be chosen for a
// non-empty cart.
func (s *Service) SetDelivery(ctx context.Context, sid string, in DeliveryInput) (sel delivery.Selection, err error) {
	defer func() { s.observe(ctx, "set_delivery", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return delivery.Selection{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	if sess.cart.GetCartCount(ctx) == 0 {
		return delivery.Selection{}, pkgerrors.New(pkgerrors.CodeConflict, "add a bouquet before choosing delivery")
	}

	switch {
	case in.Choice != nil && delivery.Choice(*in.Choice) != delivery.ChoicePick:
		if _, err := sess.delivery.SetChoice(ctx, delivery.Choice(*in.Choice)); err != nil {
			return delivery.Selection{}, err
		}
	case in.Date != nil:
		if _, err := sess.delivery.SetDate(ctx, *in.Date); err != nil {
			return delivery.Selection{}, err
		}
	}
	if in.Area != nil {
		if _, err := sess.delivery.SetArea(ctx, *in.Area); err != nil {
			return delivery.Selection{}, err
		}
	}
	return sess.delivery.Selection(ctx), nil
}

func (s *Service) ClearDelivery(ctx context.Context, sid string) (err error) {
	defer func() { s.observe(ctx, "clear_delivery", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	return sess.delivery.Clear(ctx)
}

// Checkout compiles the order message and the WhatsApp link. The cart is left
// as it is; the shop confirms the order by hand.
func (s *Service) Checkout(ctx context.Context, sid string) (Checkout, error) {
	sess, err := s.session(sid)
	if err != nil {
		return Checkout{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	sum := s.summary(ctx, sess)

	msg, ok := order.Build(order.Request{
		Items:        sum.Items,
		Estimate:     &sum.Estimate,
		DeliveryDate: sum.Delivery.Date,
		DeliveryArea: sum.Delivery.Area,
	})
	if !ok {
		s.metrics.ObserveCheckout(0, true)
		return Checkout{Empty: true, Summary: sum}, nil
	}

	link, ok := order.ContactLink(s.whatsAppHost, s.catalog.Shop().WhatsAppNumber, msg)
	if !ok {
		return Checkout{}, pkgerrors.New(pkgerrors.CodeInternal, "shop contact number is not configured")
	}
	s.metrics.ObserveCheckout(sum.Count, false)
	s.logg.Info(s.logCtx(ctx, sess.id, map[string]any{"count": sum.Count, "lines": len(sum.Items)}), "order message built")
	return Checkout{Message: msg, Link: link, Summary: sum}, nil
}

// Enquiry builds the single-bouquet message and link from a detail page.
func (s *Service) Enquiry(productID, size, color string, addons []string) (Checkout, error) {
	product, ok := s.catalog.Find(productID)
	if !ok {
		return Checkout{}, pkgerrors.New(pkgerrors.CodeNotFound, "bouquet not found")
	}
	if err := checkOptions(product, size, color, addons, false); err != nil {
		return Checkout{}, err
	}
	msg := order.SingleProductMessage(product, size, color, addons)
	link, ok := order.ContactLink(s.whatsAppHost, s.catalog.Shop().WhatsAppNumber, msg)
	if !ok {
		return Checkout{}, pkgerrors.New(pkgerrors.CodeInternal, "shop contact number is not configured")
	}
	return Checkout{Message: msg, Link: link}, nil
}
