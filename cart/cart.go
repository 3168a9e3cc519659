package cart

import (
	"fmt"

	"fresh/apperr"
	"fresh/models"
	"fresh/pricing"
)

// resolveSelection checks the client's choices against the item and returns
// snapshots priced from the menu, not from the request.
func resolveSelection(item *models.Item, variants []models.SelectedVariant, addons []models.SelectedAddon) ([]models.SelectedVariant, []models.SelectedAddon, error) {
	chosen := make(map[string]bool, len(variants))
	outV := make([]models.SelectedVariant, 0, len(variants))

	for _, sel := range variants {
		v := findVariant(item, sel.Name)
		if v == nil {
			return nil, nil, apperr.Conflict(fmt.Sprintf("Variant %q is not offered for this item", sel.Name))
		}
		if !v.IsAvailable {
			return nil, nil, apperr.Conflict(fmt.Sprintf("Variant %q is not available", v.Name))
		}
		if chosen[v.Name] {
			return nil, nil, apperr.BadRequest(fmt.Sprintf("Variant %q selected more than once", v.Name))
		}
		opt := findOption(v, sel.OptionID)
		if opt == nil {
			return nil, nil, apperr.Conflict(fmt.Sprintf("Option is not offered for variant %q", v.Name))
		}
		chosen[v.Name] = true
		outV = append(outV, models.SelectedVariant{
			Name:       v.Name,
			OptionID:   opt.ID,
			OptionName: opt.Name,
			Price:      opt.Price,
		})
	}

	for _, v := range item.Variants {
		if v.IsRequired && v.IsAvailable && !chosen[v.Name] {
			return nil, nil, apperr.Conflict(fmt.Sprintf("Variant %q is required", v.Name))
		}
	}

	seen := make(map[string]bool, len(addons))
	outA := make([]models.SelectedAddon, 0, len(addons))
	for _, sel := range addons {
		a := findAddon(item, sel.AddonID)
		if a == nil {
			return nil, nil, apperr.Conflict("Addon is not offered for this item")
		}
		if seen[a.ID] {
			return nil, nil, apperr.BadRequest(fmt.Sprintf("Addon %q selected more than once", a.Name))
		}
		seen[a.ID] = true
		outA = append(outA, models.SelectedAddon{AddonID: a.ID, Name: a.Name, Price: a.Price})
	}

	return outV, outA, nil
}

func findVariant(item *models.Item, name string) *models.Variant {
	for i := range item.Variants {
		if item.Variants[i].Name == name {
			return &item.Variants[i]
		}
	}
	return nil
}

func findOption(v *models.Variant, id string) *models.VariantOption {
	for i := range v.Options {
		if v.Options[i].ID == id {
			return &v.Options[i]
		}
	}
	return nil
}

func findAddon(item *models.Item, id string) *models.Addon {
	for i := range item.Addons {
		if item.Addons[i].ID == id {
			return &item.Addons[i]
		}
	}
	return nil
}

func newLine(item *models.Item, quantity int, variants []models.SelectedVariant, addons []models.SelectedAddon) models.CartItem {
	vs, as := NormalizeSelection(variants, addons)
	return models.CartItem{
		ItemID:       item.ID,
		Quantity:     quantity,
		Variants:     vs,
		Addons:       as,
		UnitPrice:    pricing.UnitPrice(item.Price, vs, as),
		LineTotal:    pricing.ItemTotal(item.Price, quantity, vs, as),
		SelectionKey: SelectionKey(item.ID, vs, as),
	}
}

// applyAdd merges line into a matching line or appends it, and grows the
// cart total by the line's total.
func applyAdd(c *models.Cart, line models.CartItem) {
	c.TotalPrice = pricing.Sum(c.TotalPrice, line.LineTotal)
	for i := range c.Items {
		if SameLine(c.Items[i], line) {
			c.Items[i].Quantity += line.Quantity
			c.Items[i].LineTotal = pricing.Sum(c.Items[i].LineTotal, line.LineTotal)
			return
		}
	}
	c.Items = append(c.Items, line)
}

// applyRemove drops every line for itemID, whatever its selection, and
// takes their stored totals off the cart.
func applyRemove(c *models.Cart, itemID string) ([]models.CartItem, error) {
	var removed []models.CartItem
	kept := c.Items[:0]
	for _, line := range c.Items {
		if line.ItemID == itemID {
			removed = append(removed, line)
			continue
		}
		kept = append(kept, line)
	}
	if len(removed) == 0 {
		return nil, apperr.ErrItemNotInCart
	}

	c.Items = kept
	if len(kept) == 0 {
		c.TotalPrice = 0
		return removed, nil
	}
	for _, line := range removed {
		c.TotalPrice = pricing.Subtract(c.TotalPrice, line.LineTotal)
	}
	return removed, nil
}
