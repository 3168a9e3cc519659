package restaurant

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"fresh/apperr"
	"fresh/models"
	"fresh/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// Monday noon.
var now = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func lunch() models.OpeningHours {
	return models.OpeningHours{"monday": {Open: "11:00", Close: "15:00"}}
}

func TestBuildSummary(t *testing.T) {
	r := models.Restaurant{
		ID:           "r1",
		Name:         "Luigi's",
		Description:  strings.Repeat("a", 80),
		OpeningHours: lunch(),
		SaleFields:   models.SaleFields{OnSale: true, SaleType: models.SaleFixed, SaleAmount: 1, SaleStartDate: ptr(now.Add(time.Hour))},
	}

	s := buildSummary(r, now)
	assert.Equal(t, strings.Repeat("a", 60)+"...", s.ShortDesc)
	assert.False(t, s.IsAutoClosed)
	assert.False(t, s.OnSale)
	assert.Equal(t, pricing.BadgeStartingSoon, s.SaleBadge)
	assert.NotNil(t, s.Cuisine)

	s = buildSummary(r, now.Add(4*time.Hour))
	assert.True(t, s.IsAutoClosed)
	assert.True(t, s.OnSale)
	assert.Equal(t, pricing.BadgeOnSale, s.SaleBadge)
}

func TestBuildSummaryTruncatesOnRuneBoundary(t *testing.T) {
	s := buildSummary(models.Restaurant{Description: strings.Repeat("a", 59) + "éé"}, now)
	assert.True(t, utf8.ValidString(s.ShortDesc))
	assert.Equal(t, strings.Repeat("a", 59)+"é...", s.ShortDesc)

	s = buildSummary(models.Restaurant{Description: strings.Repeat("ü", 60)}, now)
	assert.Equal(t, strings.Repeat("ü", 60), s.ShortDesc)
}

func TestBuildDetailCheckout(t *testing.T) {
	r := models.Restaurant{ID: "r1", OpeningHours: lunch(), IsPublished: true}
	assert.True(t, buildDetail(r, now).CanCheckout)

	r.IsPublished = false
	d := buildDetail(r, now)
	assert.False(t, d.CanCheckout)
	assert.False(t, d.IsAutoClosed)
}

func TestBuildMenuPricesWithRestaurantPrecedence(t *testing.T) {
	items := []models.Item{
		{ID: "a", Price: 10, IsAvailable: true, SaleFields: models.SaleFields{OnSale: true, SaleType: models.SalePercentage, SaleAmount: 50}},
		{ID: "b", Price: 4, IsAvailable: true},
		{ID: "hidden", Price: 4},
	}
	r := &models.Restaurant{ID: "r1"}

	menu := buildMenu(items, r, now, false)
	require.Len(t, menu, 2)
	assert.Equal(t, 5.0, menu[0].EffectivePrice.Amount)
	assert.Equal(t, pricing.SourceItem, menu[0].EffectivePrice.Source)
	assert.Equal(t, pricing.BadgeOnSale, menu[0].SaleBadge)
	assert.Equal(t, 4.0, menu[1].EffectivePrice.Amount)
	assert.Empty(t, menu[1].SaleBadge)

	r.SaleFields = models.SaleFields{OnSale: true, SaleType: models.SaleFixed, SaleAmount: 1}
	menu = buildMenu(items, r, now, true)
	require.Len(t, menu, 3)
	for _, m := range menu {
		assert.Equal(t, pricing.SourceRestaurant, m.EffectivePrice.Source)
		assert.Equal(t, pricing.BadgeOnSale, m.SaleBadge)
	}
	assert.Equal(t, 9.0, menu[0].EffectivePrice.Amount)
	assert.Equal(t, 3.0, menu[1].EffectivePrice.Amount)
}

func TestBuildMenuExpiredSaleChargesFullPrice(t *testing.T) {
	items := []models.Item{{ID: "a", Price: 10, IsAvailable: true, SaleFields: models.SaleFields{
		OnSale: true, SaleType: models.SaleFixed, SaleAmount: 3, SaleEndDate: ptr(now.Add(-time.Hour)),
	}}}

	menu := buildMenu(items, &models.Restaurant{}, now, false)
	require.Len(t, menu, 1)
	assert.Equal(t, 10.0, menu[0].EffectivePrice.Amount)
	assert.Equal(t, pricing.SourceNone, menu[0].EffectivePrice.Source)
	assert.Empty(t, menu[0].SaleBadge)
}

func TestProfileUpdate(t *testing.T) {
	name := "  Luigi's  "
	set, err := profileUpdate(profileInput{Name: &name, Cuisine: []string{"italian"}})
	require.NoError(t, err)
	assert.Equal(t, "Luigi's", set["name"])
	assert.Equal(t, []string{"italian"}, set["cuisine"])
	assert.Contains(t, set, "updatedAt")

	_, err = profileUpdate(profileInput{})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	blank := " "
	_, err = profileUpdate(profileInput{Name: &blank})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	bad := models.OpeningHours{"funday": {Open: "09:00", Close: "17:00"}}
	_, err = profileUpdate(profileInput{OpeningHours: &bad})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	good := lunch()
	set, err = profileUpdate(profileInput{OpeningHours: &good})
	require.NoError(t, err)
	assert.Equal(t, good, set["openingHours"])
	assert.IsType(t, bson.M{}, set)
}
