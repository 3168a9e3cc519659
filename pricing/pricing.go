// Package pricing is the single place where menu and cart prices are
// computed. Handlers never apply discounts themselves.
package pricing

import (
	"time"

	"fresh/models"

	"github.com/shopspring/decimal"
)

type Source string

const (
	SourceNone       Source = "none"
	SourceItem       Source = "item"
	SourceRestaurant Source = "restaurant"
)

// Price is a resolved amount together with where its discount came from.
type Price struct {
	Base     float64 `json:"base"`
	Amount   float64 `json:"amount"`
	Discount float64 `json:"discount"`
	Source   Source  `json:"discountSource"`
}

var hundred = decimal.NewFromInt(100)

// ItemTotal is (base + variant prices + addon prices) * quantity. No discount.
func ItemTotal(base float64, quantity int, variants []models.SelectedVariant, addons []models.SelectedAddon) float64 {
	return itemTotal(base, quantity, variants, addons).InexactFloat64()
}

// UnitPrice is ItemTotal for a single unit.
func UnitPrice(base float64, variants []models.SelectedVariant, addons []models.SelectedAddon) float64 {
	return itemTotal(base, 1, variants, addons).InexactFloat64()
}

func itemTotal(base float64, quantity int, variants []models.SelectedVariant, addons []models.SelectedAddon) decimal.Decimal {
	sum := decimal.NewFromFloat(base)
	for _, v := range variants {
		sum = sum.Add(decimal.NewFromFloat(v.Price))
	}
	for _, a := range addons {
		sum = sum.Add(decimal.NewFromFloat(a.Price))
	}
	return sum.Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds money amounts without float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Subtract returns a-b floored at zero.
func Subtract(a, b float64) float64 {
	out := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b))
	if out.IsNegative() {
		return 0
	}
	return out.InexactFloat64()
}

// ApplySale discounts total by the sale; the result never goes below zero.
// Dates are not consulted here.
func ApplySale(total float64, sale models.SaleFields) float64 {
	return applySale(decimal.NewFromFloat(total), sale).InexactFloat64()
}

func applySale(total decimal.Decimal, sale models.SaleFields) decimal.Decimal {
	if !sale.OnSale {
		return total
	}
	amount := decimal.NewFromFloat(sale.SaleAmount)

	var out decimal.Decimal
	switch sale.SaleType {
	case models.SalePercentage:
		out = total.Sub(total.Mul(amount).Div(hundred))
	case models.SaleFixed:
		out = total.Sub(amount)
	default:
		return total
	}
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// LineItem is a cart line joined with its menu item, as shown in a cart.
type LineItem struct {
	Item     models.Item
	Quantity int
	Variants []models.SelectedVariant
	Addons   []models.SelectedAddon
}

// ItemTotalWithSale applies the item's own sale only, regardless of dates or
// any restaurant-wide sale.
func ItemTotalWithSale(line LineItem) float64 {
	total := itemTotal(line.Item.Price, line.Quantity, line.Variants, line.Addons)
	return applySale(total, line.Item.SaleFields).InexactFloat64()
}

// SaleStarted drives the "On Sale" / "Starting Soon" badge. It ignores the
// end date.
func SaleStarted(sale models.SaleFields, now time.Time) bool {
	return sale.OnSale && (sale.SaleStartDate == nil || !sale.SaleStartDate.After(now))
}

// SaleActive reports whether the sale may be charged at now.
func SaleActive(sale models.SaleFields, now time.Time) bool {
	if !SaleStarted(sale, now) {
		return false
	}
	return sale.SaleEndDate == nil || !now.After(*sale.SaleEndDate)
}

const (
	BadgeOnSale       = "On Sale"
	BadgeStartingSoon = "Starting Soon"
)

func SaleBadge(sale models.SaleFields, now time.Time) string {
	switch {
	case !sale.OnSale:
		return ""
	case SaleStarted(sale, now):
		if sale.SaleEndDate != nil && now.After(*sale.SaleEndDate) {
			return ""
		}
		return BadgeOnSale
	default:
		return BadgeStartingSoon
	}
}

// EffectiveSale picks the discount source for item at now. An active
// restaurant sale wins over the item's own sale.
func EffectiveSale(item models.Item, restaurant *models.Restaurant, now time.Time) (models.SaleFields, Source) {
	if restaurant != nil && SaleActive(restaurant.SaleFields, now) {
		return restaurant.SaleFields, SourceRestaurant
	}
	if SaleActive(item.SaleFields, now) {
		return item.SaleFields, SourceItem
	}
	return models.SaleFields{}, SourceNone
}

// ResolveEffectivePrice prices one unit of item with no selections.
func ResolveEffectivePrice(item models.Item, restaurant *models.Restaurant, now time.Time) Price {
	return resolve(decimal.NewFromFloat(item.Price), item, restaurant, now)
}

// ResolveLinePrice prices a full cart line.
func ResolveLinePrice(item models.Item, restaurant *models.Restaurant, quantity int, variants []models.SelectedVariant, addons []models.SelectedAddon, now time.Time) Price {
	return resolve(itemTotal(item.Price, quantity, variants, addons), item, restaurant, now)
}

func resolve(base decimal.Decimal, item models.Item, restaurant *models.Restaurant, now time.Time) Price {
	sale, source := EffectiveSale(item, restaurant, now)
	amount := applySale(base, sale)
	return Price{
		Base:     base.InexactFloat64(),
		Amount:   amount.InexactFloat64(),
		Discount: base.Sub(amount).InexactFloat64(),
		Source:   source,
	}
}
