package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"fresh/models"
)

// NormalizeSelection returns sorted copies so that the same choices submitted
// in a different order compare equal.
func NormalizeSelection(variants []models.SelectedVariant, addons []models.SelectedAddon) ([]models.SelectedVariant, []models.SelectedAddon) {
	vs := slices.Clone(variants)
	if vs == nil {
		vs = []models.SelectedVariant{}
	}
	slices.SortFunc(vs, func(a, b models.SelectedVariant) int {
		if c := strings.Compare(a.OptionID, b.OptionID); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	as := slices.Clone(addons)
	if as == nil {
		as = []models.SelectedAddon{}
	}
	slices.SortFunc(as, func(a, b models.SelectedAddon) int {
		if c := strings.Compare(a.AddonID, b.AddonID); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return vs, as
}

// SelectionKey identifies a cart line: the item plus its normalized
// variant and addon snapshots, prices included.
func SelectionKey(itemID string, variants []models.SelectedVariant, addons []models.SelectedAddon) string {
	vs, as := NormalizeSelection(variants, addons)

	var b strings.Builder
	b.WriteString(itemID)
	for _, v := range vs {
		b.WriteString("|v:")
		b.WriteString(v.OptionID)
		b.WriteByte(0)
		b.WriteString(v.Name)
		b.WriteByte(0)
		b.WriteString(v.OptionName)
		b.WriteByte(0)
		b.WriteString(strconv.FormatFloat(v.Price, 'f', -1, 64))
	}
	for _, a := range as {
		b.WriteString("|a:")
		b.WriteString(a.AddonID)
		b.WriteByte(0)
		b.WriteString(a.Name)
		b.WriteByte(0)
		b.WriteString(strconv.FormatFloat(a.Price, 'f', -1, 64))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// SameLine reports whether a and b hold the same item with the same
// choices, ignoring submission order.
func SameLine(a, b models.CartItem) bool {
	if a.ItemID != b.ItemID || len(a.Variants) != len(b.Variants) || len(a.Addons) != len(b.Addons) {
		return false
	}
	av, aa := NormalizeSelection(a.Variants, a.Addons)
	bv, ba := NormalizeSelection(b.Variants, b.Addons)
	return slices.Equal(av, bv) && slices.Equal(aa, ba)
}
