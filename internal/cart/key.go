package cart

import (
	"strings"
)

const (
	keySeparator   = "::"
	addonSeparator = "|"
)

// Key identifies a line item by product and chosen options. Two items with the
// same Key are the same line and must be merged.
type Key struct {
	ProductID string
	Size      string
	Color     string
	// Addons is the canonical (sorted, unique) add-on list joined with "|".
	Addons string
}

// String renders the persisted form "id::size::color::a|b".
func (k Key) String() string {
	return strings.Join([]string{k.ProductID, k.Size, k.Color, k.Addons}, keySeparator)
}

func (k Key) IsZero() bool { return k == Key{} }

// ParseKey reverses String. Values that do not have four fields are rejected.
func ParseKey(s string) (Key, bool) {
	parts := strings.SplitN(s, keySeparator, 4)
	if len(parts) != 4 || parts[0] == "" {
		return Key{}, false
	}
	return Key{ProductID: parts[0], Size: parts[1], Color: parts[2], Addons: parts[3]}, true
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts anything; stored keys are recomputed from the item on load.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, _ := ParseKey(string(text))
	*k = parsed
	return nil
}

// DeriveKey computes the identity of item from its normalised fields.
func DeriveKey(item LineItem) Key {
	return Key{
		ProductID: strings.TrimSpace(item.ID),
		Size:      deref(normaliseOptional(item.Size)),
		Color:     deref(normaliseOptional(item.Color)),
		Addons:    strings.Join(CanonicalAddons(item.Addons), addonSeparator),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
