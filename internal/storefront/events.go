package storefront

import (
	"context"

	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
)

// EventKind says which part of the session changed.
type EventKind string

const (
	EventCart     EventKind = "cart"
	EventDelivery EventKind = "delivery"
)

// Event tells a tab that another tab changed the session's state and it should
// re-read it.
type Event struct {
	Kind   EventKind `json:"kind"`
	Origin string    `json:"origin,omitempty"`
}

// Subscribe calls fn for cart and delivery writes made by other origins than
// the one attached to ctx. Call the returned func to stop.
func (s *Service) Subscribe(ctx context.Context, sid string, fn func(Event)) (func(), error) {
	sess, err := s.session(sid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session required")
	}

	cancelCart, err := sess.cart.OnExternalChange(ctx, func(origin string) {
		fn(Event{Kind: EventCart, Origin: origin})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribing to cart changes")
	}
	cancelDelivery, err := sess.delivery.Watch(ctx, func(origin string) {
		fn(Event{Kind: EventDelivery, Origin: origin})
	})
	if err != nil {
		cancelCart()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribing to delivery changes")
	}
	return func() {
		cancelCart()
		cancelDelivery()
	}, nil
}
