package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
)

// AddInput is a bouquet configured on its detail page.
type AddInput struct {
	ProductID string
	Size      string
	Color     string
	Addons    []string
	Qty       int
}

// ItemPatch edits options of a line from the cart page. Nil fields are unchanged.
type ItemPatch struct {
	Size   *string
	Color  *string
	Addons *[]string
}

// Cart returns the session's line items.
func (s *Service) Cart(ctx context.Context, sid string) ([]cart.LineItem, error) {
	sess, err := s.session(sid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	return sess.cart.GetCart(ctx), nil
}

// Count returns the badge number: the sum of quantities.
func (s *Service) Count(ctx context.Context, sid string) (int, error) {
	items, err := s.Cart(ctx, sid)
	if err != nil {
		return 0, err
	}
	return cart.Count(items), nil
}

// AddToCart snapshots the product's name, prices and colour image into a new
// or merged line. The chosen options must be ones the product offers.
func (s *Service) AddToCart(ctx context.Context, sid string, in AddInput) (item cart.LineItem, err error) {
	defer func() { s.observe(ctx, "add", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return cart.LineItem{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	product, ok := s.catalog.Find(in.ProductID)
	if !ok {
		return cart.LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "bouquet not found")
	}

	size := strings.TrimSpace(in.Size)
	color := strings.TrimSpace(in.Color)
	if err := checkOptions(product, size, color, in.Addons, true); err != nil {
		return cart.LineItem{}, err
	}

	item, err = sess.cart.AddToCart(ctx, cart.Candidate{
		ID:       product.ID,
		Name:     product.Name,
		PriceMin: product.PriceMin,
		PriceMax: product.PriceMax,
		Size:     size,
		Color:    color,
		Image:    catalog.ResolveImage(product, color),
		Addons:   in.Addons,
		Qty:      in.Qty,
	})
	if err != nil {
		return cart.LineItem{}, err
	}

	s.logg.Info(s.logCtx(ctx, sid, map[string]any{"key": item.Key.String(), "qty": item.Qty}), "bouquet added to cart")
	return item, nil
}

// UpdateItem changes options of the line at key. A colour change picks the
// matching image from the catalog. It returns the line's key afterwards, which
// may belong to a line it merged into.
func (s *Service) UpdateItem(ctx context.Context, sid string, key cart.Key, in ItemPatch) (next cart.Key, err error) {
	defer func() { s.observe(ctx, "update", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return key, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	current, ok := sess.cart.Find(ctx, key)
	if !ok {
		return key, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	patch := cart.Patch{Size: in.Size, Color: in.Color, Addons: in.Addons}
	if product, ok := s.catalog.Find(current.ID); ok {
		size, color, addons := valueOr(in.Size, current.Size), valueOr(in.Color, current.Color), current.Addons
		if in.Addons != nil {
			addons = *in.Addons
		}
		if err := checkOptions(product, size, color, addons, false); err != nil {
			return key, err
		}
		if in.Color != nil {
			img := catalog.ResolveImage(product, color)
			patch.Image = &img
		}
	}

	next, found, err := sess.cart.UpdateItem(ctx, key, patch)
	if err != nil {
		return key, err
	}
	if !found {
		return key, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	s.logg.Info(s.logCtx(ctx, sid, map[string]any{"from": key.String(), "to": next.String()}), "cart item updated")
	return next, nil
}

// SetQty sets a line's quantity; zero or less removes it.
func (s *Service) SetQty(ctx context.Context, sid string, key cart.Key, qty int) (err error) {
	defer func() { s.observe(ctx, "set_qty", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	if err := sess.cart.UpdateQty(ctx, key, qty); err != nil {
		return err
	}
	return s.clearDeliveryIfEmpty(ctx, sess)
}

// IncrementQty moves a line's quantity by delta, never below 1.
func (s *Service) IncrementQty(ctx context.Context, sid string, key cart.Key, delta int) (qty int, err error) {
	defer func() { s.observe(ctx, "step_qty", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	qty, found, err := sess.cart.AdjustQty(ctx, key, delta)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return qty, nil
}

func (s *Service) RemoveItem(ctx context.Context, sid string, key cart.Key) (err error) {
	defer func() { s.observe(ctx, "remove", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	if err := sess.cart.RemoveItem(ctx, key); err != nil {
		return err
	}
	return s.clearDeliveryIfEmpty(ctx, sess)
}

// ClearCart empties the cart and the delivery selection with it.
func (s *Service) ClearCart(ctx context.Context, sid string) (err error) {
	defer func() { s.observe(ctx, "clear", err) }()

	sess, err := s.session(sid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}
	if err := sess.cart.ClearCart(ctx); err != nil {
		return err
	}
	if err := sess.delivery.Clear(ctx); err != nil {
		return err
	}
	s.logg.Info(s.logCtx(ctx, sid, nil), "cart cleared")
	return nil
}

func (s *Service) clearDeliveryIfEmpty(ctx context.Context, sess *session) error {
	if sess.cart.GetCartCount(ctx) > 0 {
		return nil
	}
	return sess.delivery.Clear(ctx)
}

// checkOptions validates a configuration against the product. Adding requires
// a size and colour whenever the product offers any.
func checkOptions(p catalog.Product, size, color string, addons []string, requireChoice bool) error {
	var missing []string
	if size == "" && requireChoice && len(p.Sizes) > 0 {
		missing = append(missing, "size")
	}
	if color == "" && requireChoice && len(p.Colors) > 0 {
		missing = append(missing, "colour")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("Please choose a %s to add to cart.", strings.Join(missing, " and "))).
			WithDetails(map[string]any{"missing": missing})
	}
	if size != "" && !p.OffersSize(size) {
		return invalidOption("size", size, p)
	}
	if color != "" && !p.OffersColor(color) {
		return invalidOption("colour", color, p)
	}
	for _, a := range cart.CanonicalAddons(addons) {
		if !p.OffersAddon(a) {
			return invalidOption("add-on", a, p)
		}
	}
	return nil
}

func invalidOption(kind, value string, p catalog.Product) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %q is not available for %s", kind, value, p.Name)).
		WithDetails(map[string]any{"field": kind, "value": value})
}

func valueOr(v *string, fallback *string) string {
	if v != nil {
		return strings.TrimSpace(*v)
	}
	if fallback != nil {
		return *fallback
	}
	return ""
}
