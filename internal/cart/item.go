package cart

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one configured bouquet in the cart. Name and prices are a snapshot
// taken when the item was added and are never re-synced with the catalog.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	PriceMin decimal.Decimal `json:"priceMin"`
	PriceMax decimal.Decimal `json:"priceMax"`
	Size     *string         `json:"size"`
	Color    *string         `json:"color"`
	Image    *string         `json:"image"`
	Addons   []string        `json:"addons"`
	Qty      int             `json:"qty"`
	Key      Key             `json:"key"`
}

// Candidate is the input to AddToCart. Zero values mean "not chosen";
// Qty below 1 is raised to 1.
type Candidate struct {
	ID       string
	Name     string
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
	Size     string
	Color    string
	Image    string
	Addons   []string
	Qty      int
}

// Patch is a partial update of a line item's options. Nil fields are left as
// they are; a pointer to "" clears the option.
type Patch struct {
	Size   *string
	Color  *string
	Addons *[]string
	Image  *string
}

func (p Patch) apply(item LineItem) LineItem {
	if p.Size != nil {
		item.Size = p.Size
	}
	if p.Color != nil {
		item.Color = p.Color
	}
	if p.Addons != nil {
		item.Addons = *p.Addons
	}
	if p.Image != nil {
		item.Image = p.Image
	}
	return item
}

func (c Candidate) lineItem() LineItem {
	qty := c.Qty
	if qty < 1 {
		qty = 1
	}
	return normalise(LineItem{
		ID:       c.ID,
		Name:     c.Name,
		PriceMin: c.PriceMin,
		PriceMax: c.PriceMax,
		Size:     &c.Size,
		Color:    &c.Color,
		Image:    &c.Image,
		Addons:   c.Addons,
		Qty:      qty,
	})
}

// normalise trims text, floors prices at zero, canonicalises add-ons and
// recomputes the key. Qty is left to the caller.
func normalise(item LineItem) LineItem {
	item.ID = strings.TrimSpace(item.ID)
	item.Name = strings.TrimSpace(item.Name)
	item.PriceMin = nonNegative(item.PriceMin)
	item.PriceMax = nonNegative(item.PriceMax)
	item.Size = normaliseOptional(item.Size)
	item.Color = normaliseOptional(item.Color)
	item.Image = normaliseOptional(item.Image)
	item.Addons = CanonicalAddons(item.Addons)
	item.Key = DeriveKey(item)
	return item
}

// CanonicalAddons trims, drops blanks, de-duplicates and sorts add-on labels.
// The result is never nil.
func CanonicalAddons(addons []string) []string {
	out := make([]string, 0, len(addons))
	seen := make(map[string]struct{}, len(addons))
	for _, a := range addons {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func normaliseOptional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sanitize re-normalises records read from storage: it recomputes keys, drops
// items without an id or with qty below 1, and merges duplicates in first-seen
// order. Hand-edited or legacy payloads come out satisfying every invariant.
func Sanitize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[Key]int, len(items))
	for _, raw := range items {
		if raw.Qty < 1 {
			continue
		}
		item := normalise(raw)
		if item.ID == "" {
			continue
		}
		if i, ok := index[item.Key]; ok {
			out[i].Qty += item.Qty
			if item.Image != nil {
				out[i].Image = item.Image
			}
			continue
		}
		index[item.Key] = len(out)
		out = append(out, item)
	}
	return out
}

// Range is an estimated price span.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Estimate sums priceMin*qty and priceMax*qty over items.
func Estimate(items []LineItem) Range {
	r := Range{Min: decimal.Zero, Max: decimal.Zero}
	for _, item := range items {
		q := decimal.NewFromInt(int64(item.Qty))
		r.Min = r.Min.Add(item.PriceMin.Mul(q))
		r.Max = r.Max.Add(item.PriceMax.Mul(q))
	}
	return r
}

// Count sums qty over items.
func Count(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Qty
	}
	return n
}
