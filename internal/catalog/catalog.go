// Package catalog holds the bouquet list and shop details the storefront sells from.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Product is one bouquet. Prices are an estimated range in whole rand.
type Product struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Category         string            `json:"category"`
	ShortDescription string            `json:"shortDescription"`
	PriceMin         decimal.Decimal   `json:"priceMin"`
	PriceMax         decimal.Decimal   `json:"priceMax"`
	Sizes            []string          `json:"sizes"`
	Colors           []string          `json:"colors"`
	Occasions        []string          `json:"occasions"`
	Addons           []string          `json:"addons"`
	LeadTimeHours    int               `json:"leadTimeHours"`
	Featured         bool              `json:"featured"`
	Image            string            `json:"image,omitempty"`
	ImageBase        string            `json:"imageBase,omitempty"`
	DefaultImage     string            `json:"defaultImage,omitempty"`
	ColorImages      map[string]string `json:"colorImages,omitempty"`
}

// OffersSize reports whether size is one of the product's sizes.
func (p Product) OffersSize(size string) bool { return contains(p.Sizes, size) }

// OffersColor reports whether color is one of the product's colours.
func (p Product) OffersColor(color string) bool { return contains(p.Colors, color) }

// OffersAddon reports whether addon is one of the product's add-ons.
func (p Product) OffersAddon(addon string) bool { return contains(p.Addons, addon) }

// Shop carries the storefront identity and delivery coverage.
type Shop struct {
	Name           string   `json:"name"`
	WhatsAppNumber string   `json:"whatsappNumber"`
	Currency       string   `json:"currency"`
	City           string   `json:"city"`
	Areas          []string `json:"areas"`
	DeliveryNotes  []string `json:"deliveryNotes"`
}

// HasArea reports whether area is an exact entry of the delivery list.
func (s Shop) HasArea(area string) bool { return contains(s.Areas, area) }

// Catalog is read-only after load; accessors hand out copies.
type Catalog struct {
	shop     Shop
	products []Product
	byID     map[string]int
}

type document struct {
	Shop     shopDoc      `yaml:"shop"`
	Bouquets []productDoc `yaml:"bouquets"`
}

type shopDoc struct {
	Name           string   `yaml:"name"`
	WhatsAppNumber string   `yaml:"whatsappNumber"`
	Currency       string   `yaml:"currency"`
	City           string   `yaml:"city"`
	Areas          []string `yaml:"areas"`
	DeliveryNotes  []string `yaml:"deliveryNotes"`
}

type productDoc struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	Category         string            `yaml:"category"`
	ShortDescription string            `yaml:"shortDescription"`
	PriceMin         float64           `yaml:"priceMin"`
	PriceMax         float64           `yaml:"priceMax"`
	Sizes            []string          `yaml:"sizes"`
	Colors           []string          `yaml:"colors"`
	Occasions        []string          `yaml:"occasions"`
	Addons           []string          `yaml:"addons"`
	LeadTimeHours    int               `yaml:"leadTimeHours"`
	Image            string            `yaml:"image"`
	ImageBase        string            `yaml:"imageBase"`
	DefaultImage     string            `yaml:"defaultImage"`
	ColorImages      map[string]string `yaml:"colorImages"`
	Featured         bool              `yaml:"featured"`
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Load reads the catalog from path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		shop: Shop{
			Name:           strings.TrimSpace(doc.Shop.Name),
			WhatsAppNumber: strings.TrimSpace(doc.Shop.WhatsAppNumber),
			Currency:       strings.TrimSpace(doc.Shop.Currency),
			City:           strings.TrimSpace(doc.Shop.City),
			Areas:          doc.Shop.Areas,
			DeliveryNotes:  doc.Shop.DeliveryNotes,
		},
		byID: make(map[string]int, len(doc.Bouquets)),
	}

	for i, b := range doc.Bouquets {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog id %q is duplicated", id)
		}
		if b.PriceMin < 0 || b.PriceMax < b.PriceMin {
			return nil, fmt.Errorf("catalog %q: price range %v-%v is invalid", id, b.PriceMin, b.PriceMax)
		}
		c.byID[id] = len(c.products)
		c.products = append(c.products, Product{
			ID:               id,
			Name:             strings.TrimSpace(b.Name),
			Category:         strings.TrimSpace(b.Category),
			ShortDescription: strings.TrimSpace(b.ShortDescription),
			PriceMin:         decimal.NewFromFloat(b.PriceMin),
			PriceMax:         decimal.NewFromFloat(b.PriceMax),
			Sizes:            b.Sizes,
			Colors:           b.Colors,
			Occasions:        b.Occasions,
			Addons:           b.Addons,
			LeadTimeHours:    b.LeadTimeHours,
			Featured:         b.Featured,
			Image:            b.Image,
			ImageBase:        b.ImageBase,
			DefaultImage:     b.DefaultImage,
			ColorImages:      b.ColorImages,
		})
	}
	return c, nil
}

func (c *Catalog) Shop() Shop {
	s := c.shop
	s.Areas = append([]string(nil), c.shop.Areas...)
	s.DeliveryNotes = append([]string(nil), c.shop.DeliveryNotes...)
	return s
}

// WithWhatsAppNumber returns a copy of the catalog whose shop number is number.
// A blank number leaves the catalog unchanged.
func (c *Catalog) WithWhatsAppNumber(number string) *Catalog {
	number = strings.TrimSpace(number)
	if number == "" {
		return c
	}
	out := *c
	out.shop.WhatsAppNumber = number
	return &out
}

func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, clone(p))
	}
	return out
}

func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return clone(c.products[i]), true
}

func (c *Catalog) Featured() []Product {
	return c.filter(func(p Product) bool { return p.Featured })
}

func (c *Catalog) ByCategory(category string) []Product {
	return c.filter(func(p Product) bool { return strings.EqualFold(p.Category, category) })
}

// Categories lists the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func clone(p Product) Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Colors = append([]string(nil), p.Colors...)
	p.Occasions = append([]string(nil), p.Occasions...)
	p.Addons = append([]string(nil), p.Addons...)
	if p.ColorImages != nil {
		m := make(map[string]string, len(p.ColorImages))
		for k, v := range p.ColorImages {
			m[k] = v
		}
		p.ColorImages = m
	}
	return p
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
