// Package order turns a cart into the WhatsApp order request the shop confirms by hand.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sisterblooms/storefront-backend/internal/cart"
	"github.com/sisterblooms/storefront-backend/internal/catalog"
	"github.com/sisterblooms/storefront-backend/internal/delivery"
)

const (
	greeting = "Hi, I’d like to place an order."
	spacer   = " "
	closing  = "Please confirm availability, delivery options, delivery fee, and final total."
	thanks   = "Thank you."

	humanDateLayout = "Mon, 02 Jan"
)

// Request is everything the order message is built from.
type Request struct {
	Items []cart.LineItem
	// Estimate overrides the total; nil means cart.Estimate(Items).
	Estimate     *cart.Range
	DeliveryDate string
	DeliveryArea string
}

// Build renders the order message. It returns false for an empty cart, whatever
// the delivery fields hold, and the caller must not offer a contact link then.
func Build(req Request) (string, bool) {
	if len(req.Items) == 0 {
		return "", false
	}
	est := cart.Estimate(req.Items)
	if req.Estimate != nil {
		est = *req.Estimate
	}

	lines := []string{greeting, spacer}

	if date := strings.TrimSpace(req.DeliveryDate); date != "" {
		lines = append(lines, fmt.Sprintf("Delivery date: %s (%s)", FormatDate(date), date), spacer)
	}
	if area := strings.TrimSpace(req.DeliveryArea); area != "" {
		lines = append(lines, "Delivery area: "+area, spacer)
	}

	lines = append(lines, "Items:")
	for i, item := range req.Items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, fmt.Sprintf("%d) %s (Qty: %d)", i+1, item.Name, qty))
		if item.Size != nil && *item.Size != "" {
			lines = append(lines, "   - Size: "+*item.Size)
		}
		if item.Color != nil && *item.Color != "" {
			lines = append(lines, "   - Color: "+*item.Color)
		}
		if len(item.Addons) > 0 {
			lines = append(lines, "   - Add-ons: "+strings.Join(item.Addons, ", "))
		}
		lines = append(lines, fmt.Sprintf("   - Est. price: %s each", MoneyRange(item.PriceMin, item.PriceMax)), spacer)
	}

	lines = append(lines,
		"Estimated bouquet total: "+MoneyRange(est.Min, est.Max),
		closing,
		thanks,
	)
	return strings.Join(lines, "\n"), true
}

// SingleProductMessage is the enquiry sent from a bouquet's page before it is
// in the cart.
func SingleProductMessage(p catalog.Product, size, color string, addons []string) string {
	lines := []string{
		greeting,
		spacer,
		"Bouquet details:",
		"Name: " + p.Name,
		"Price range: " + MoneyRange(p.PriceMin, p.PriceMax),
	}
	if size = strings.TrimSpace(size); size != "" {
		lines = append(lines, "Size: "+size)
	}
	if color = strings.TrimSpace(color); color != "" {
		lines = append(lines, "Color: "+color)
	}
	if canon := cart.CanonicalAddons(addons); len(canon) > 0 {
		lines = append(lines, "Add-ons: "+strings.Join(canon, ", "))
	}
	lines = append(lines, spacer, "Please let me know availability and delivery options.", thanks)
	return strings.Join(lines, "\n")
}

// Money renders an amount in whole rand, e.g. R499.
func Money(d decimal.Decimal) string {
	return "R" + d.StringFixed(0)
}

func MoneyRange(min, max decimal.Decimal) string {
	return Money(min) + "–" + Money(max)
}

// FormatDate renders an ISO date as "Fri, 17 Oct". Values that are not ISO
// dates come back unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse(delivery.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(humanDateLayout)
}
