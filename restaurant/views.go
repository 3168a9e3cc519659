package restaurant

import (
	"time"

	"fresh/hours"
	"fresh/models"
	"fresh/pricing"
)

// Summary is the listing card of a restaurant.
type Summary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	ShortDesc    string              `json:"shortDesc"`
	Address      string              `json:"address"`
	Cuisine      []string            `json:"cuisine"`
	OpeningHours models.OpeningHours `json:"openingHours"`
	IsAutoClosed bool                `json:"isAutoClosed"`
	OnSale       bool                `json:"onSale"`
	SaleBadge    string              `json:"saleBadge,omitempty"`
}

// Detail is the public restaurant page.
type Detail struct {
	models.Restaurant
	IsAutoClosed bool   `json:"isAutoClosed"`
	CanCheckout  bool   `json:"canCheckout"`
	SaleBadge    string `json:"saleBadge,omitempty"`
}

// MenuItem is an item as customers see it, with the price they will pay.
type MenuItem struct {
	models.Item
	EffectivePrice pricing.Price `json:"effectivePrice"`
	SaleBadge      string        `json:"saleBadge,omitempty"`
}

func buildSummary(r models.Restaurant, now time.Time) Summary {
	desc := r.Description
	if runes := []rune(desc); len(runes) > 60 {
		desc = string(runes[:60]) + "..."
	}
	cuisine := r.Cuisine
	if cuisine == nil {
		cuisine = []string{}
	}
	return Summary{
		ID:           r.ID,
		Name:         r.Name,
		ShortDesc:    desc,
		Address:      r.Address,
		Cuisine:      cuisine,
		OpeningHours: r.OpeningHours,
		IsAutoClosed: hours.IsAutoClosed(r.OpeningHours, now),
		OnSale:       pricing.SaleActive(r.SaleFields, now),
		SaleBadge:    pricing.SaleBadge(r.SaleFields, now),
	}
}

func buildDetail(r models.Restaurant, now time.Time) Detail {
	return Detail{
		Restaurant:   r,
		IsAutoClosed: hours.IsAutoClosed(r.OpeningHours, now),
		CanCheckout:  hours.CanCheckout(r, now),
		SaleBadge:    pricing.SaleBadge(r.SaleFields, now),
	}
}

// buildMenu prices every item against the restaurant. Hidden items are
// dropped unless includeUnavailable is set.
func buildMenu(items []models.Item, r *models.Restaurant, now time.Time, includeUnavailable bool) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if !item.IsAvailable && !includeUnavailable {
			continue
		}
		sale, _ := pricing.EffectiveSale(item, r, now)
		badge := pricing.SaleBadge(item.SaleFields, now)
		if sale.OnSale {
			badge = pricing.BadgeOnSale
		}
		out = append(out, MenuItem{
			Item:           item,
			EffectivePrice: pricing.ResolveEffectivePrice(item, r, now),
			SaleBadge:      badge,
		})
	}
	return out
}
