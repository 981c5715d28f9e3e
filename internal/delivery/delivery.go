// Package delivery persists the shopper's requested delivery day and area next
// to, but separately from, the cart.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
)

const (
	DateKey = "sb_delivery_date_v1"
	AreaKey = "sb_delivery_area_v1"

	// DateLayout is the ISO calendar date format stored and accepted.
	DateLayout = "2006-01-02"
)

// Choice names the shortcut a stored date corresponds to.
type Choice string

const (
	ChoiceNone     Choice = ""
	ChoiceToday    Choice = "today"
	ChoiceTomorrow Choice = "tomorrow"
	ChoicePick     Choice = "pick"
)

// Selection is the current delivery input; empty fields are unset.
type Selection struct {
	Date   string `json:"date"`
	Area   string `json:"area"`
	Choice Choice `json:"choice"`
}

type Store struct {
	store kv.Store
	areas map[string]struct{}
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds a selection store. areas is the allow-list of delivery labels;
// loc decides which calendar day "today" is.
func NewStore(store kv.Store, areas []string, loc *time.Location, opts ...Option) (*Store, error) {
	if store == nil {
		return nil, fmt.Errorf("delivery kv store required")
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Store{
		store: store,
		areas: make(map[string]struct{}, len(areas)),
		loc:   loc,
		now:   time.Now,
	}
	for _, a := range areas {
		if a = strings.TrimSpace(a); a != "" {
			s.areas[a] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Today returns the current ISO date in the shop's timezone.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(DateLayout)
}

func (s *Store) Tomorrow() string {
	return s.now().In(s.loc).AddDate(0, 0, 1).Format(DateLayout)
}

// SetDate stores iso, clamping past days to today. An empty value clears the
// date. It returns the value actually stored.
func (s *Store) SetDate(ctx context.Context, iso string) (string, error) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return "", s.remove(ctx, DateKey)
	}
	if _, err := time.ParseInLocation(DateLayout, iso, s.loc); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "delivery date must be YYYY-MM-DD")
	}
	if today := s.Today(); iso < today {
		iso = today
	}
	if err := s.store.Set(ctx, DateKey, iso); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving delivery date")
	}
	return iso, nil
}

// SetChoice stores today or tomorrow.
func (s *Store) SetChoice(ctx context.Context, c Choice) (string, error) {
	switch c {
	case ChoiceToday:
		return s.SetDate(ctx, s.Today())
	case ChoiceTomorrow:
		return s.SetDate(ctx, s.Tomorrow())
	case ChoiceNone:
		return s.SetDate(ctx, "")
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown delivery shortcut %q", c))
	}
}

// Date returns the stored date or "". Stored values are returned as found.
func (s *Store) Date(ctx context.Context) string {
	raw, ok, err := s.store.Get(ctx, DateKey)
	if err != nil || !ok {
		return ""
	}
	return strings.TrimSpace(raw)
}

// ChoiceFor reports which shortcut iso matches.
func (s *Store) ChoiceFor(iso string) Choice {
	switch iso {
	case "":
		return ChoiceNone
	case s.Today():
		return ChoiceToday
	case s.Tomorrow():
		return ChoiceTomorrow
	default:
		return ChoicePick
	}
}

// SetArea stores label when it is one of the delivery areas. Empty clears.
func (s *Store) SetArea(ctx context.Context, label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", s.remove(ctx, AreaKey)
	}
	if !s.IsValidArea(label) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("we do not deliver to %q", label)).
			WithDetails(map[string]any{"area": label})
	}
	if err := s.store.Set(ctx, AreaKey, label); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving delivery area")
	}
	return label, nil
}

// Area returns the stored area. A value no longer in the allow-list is
// deleted and reported as unset.
func (s *Store) Area(ctx context.Context) string {
	raw, ok, err := s.store.Get(ctx, AreaKey)
	if err != nil || !ok {
		return ""
	}
	label := strings.TrimSpace(raw)
	if !s.IsValidArea(label) {
		_ = s.store.Delete(ctx, AreaKey)
		return ""
	}
	return label
}

func (s *Store) IsValidArea(label string) bool {
	_, ok := s.areas[strings.TrimSpace(label)]
	return ok
}

func (s *Store) Selection(ctx context.Context) Selection {
	date := s.Date(ctx)
	return Selection{Date: date, Area: s.Area(ctx), Choice: s.ChoiceFor(date)}
}

// Clear removes both the date and the area.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.remove(ctx, DateKey); err != nil {
		return err
	}
	return s.remove(ctx, AreaKey)
}

// Watch reports writes to either key made by another origin.
func (s *Store) Watch(ctx context.Context, fn func(origin string)) (func(), error) {
	w, ok := s.store.(kv.Watcher)
	if !ok {
		return nil, kv.ErrWatchUnsupported
	}
	self := kv.OriginFrom(ctx)
	return w.Watch(ctx, func(c kv.Change) {
		if c.Key != DateKey && c.Key != AreaKey {
			return
		}
		if self != "" && c.Origin == self {
			return
		}
		fn(c.Origin)
	})
}

func (s *Store) remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing delivery selection")
	}
	return nil
}
