// Package storefront is the session-scoped facade the HTTP layer drives: it
// checks shopper input against the catalog and keeps the cart and delivery
// selection consistent with each other.
package storefront

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	"github.com/sisterblooms/storefront-backend/internal/delivery"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/locks"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
	"github.com/sisterblooms/storefront-backend/pkg/metrics"
)

const sessionScope = "session"

// ServiceParams configure the storefront service.
type ServiceParams struct {
	Catalog      *catalog.Catalog
	Storage      kv.Store
	Logger       *logger.Logger
	Metrics      *metrics.CartMetrics
	Locks        *locks.Striped
	Location     *time.Location
	WhatsAppHost string
	Now          func() time.Time
}

type Service struct {
	catalog      *catalog.Catalog
	storage      kv.Store
	logg         *logger.Logger
	metrics      *metrics.CartMetrics
	locks        *locks.Striped
	loc          *time.Location
	whatsAppHost string
	now          func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lk := params.Locks
	if lk == nil {
		lk = locks.NewStriped(0)
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		catalog:      params.Catalog,
		storage:      params.Storage,
		logg:         params.Logger,
		metrics:      params.Metrics,
		locks:        lk,
		loc:          loc,
		whatsAppHost: params.WhatsAppHost,
		now:          now,
	}, nil
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Ping checks the storage backend when it has a remote dependency.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.storage.(kv.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type session struct {
	id       string
	cart     *cart.Store
	delivery *delivery.Store
}

func (s *Service) session(sid string) (*session, error) {
	sid = strings.TrimSpace(sid)
	if sid == "" {
		return nil, fmt.Errorf("session id required")
	}
	scoped := kv.NewScoped(s.storage, sessionScope, sid)

	cs, err := cart.NewStore(cart.NewKVStorage(scoped, s.logg), cart.WithLocker(s.locks.For(sid)))
	if err != nil {
		return nil, err
	}
	ds, err := delivery.NewStore(scoped, s.catalog.Shop().Areas, s.loc, delivery.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	return &session{id: sid, cart: cs, delivery: ds}, nil
}

func (s *Service) logCtx(ctx context.Context, sid string, fields map[string]any) context.Context {
	ctx = s.logg.WithSessionID(ctx, sid)
	if len(fields) > 0 {
		ctx = s.logg.WithFields(ctx, fields)
	}
	return ctx
}

func (s *Service) observe(ctx context.Context, op string, err error) {
	s.metrics.ObserveOperation(op, err)
	if err != nil && isServerError(err) {
		s.logg.Error(s.logg.WithField(ctx, "operation", op), "cart operation failed", err)
	}
}

func isServerError(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return true
	}
	return typed.Code() == pkgerrors.CodeDependency || typed.Code() == pkgerrors.CodeInternal
}
