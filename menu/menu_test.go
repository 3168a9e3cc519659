package menu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fresh/apperr"
	"fresh/globals"
	"fresh/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

var now = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestValidateItem(t *testing.T) {
	ok := itemInput{
		Title: "Margherita",
		Price: 9.5,
		Variants: []models.Variant{{Name: "Size", Options: []models.VariantOption{
			{Name: "Small"}, {Name: "Large", Price: 2},
		}}},
		Addons: []models.Addon{{Name: "Basil", Price: 0.5}},
	}
	assert.NoError(t, validateItem(ok))

	tests := []struct {
		name   string
		mutate func(*itemInput)
	}{
		{"blank title", func(in *itemInput) { in.Title = "  " }},
		{"long title", func(in *itemInput) { in.Title = strings.Repeat("x", 101) }},
		{"negative price", func(in *itemInput) { in.Price = -1 }},
		{"variant without options", func(in *itemInput) { in.Variants = []models.Variant{{Name: "Size"}} }},
		{"duplicate variant", func(in *itemInput) { in.Variants = append(in.Variants, in.Variants[0]) }},
		{"negative option", func(in *itemInput) {
			in.Variants = []models.Variant{{Name: "Size", Options: []models.VariantOption{{Name: "S", Price: -1}}}}
		}},
		{"unnamed addon", func(in *itemInput) { in.Addons = []models.Addon{{Price: 1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ok
			in.Variants = append([]models.Variant(nil), ok.Variants...)
			tt.mutate(&in)
			err := validateItem(in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
		})
	}
}

func TestToItemAssignsMissingIDs(t *testing.T) {
	in := itemInput{
		Title: " Fries ",
		Price: 3,
		Variants: []models.Variant{{ID: "keep", Name: "Size", Options: []models.VariantOption{
			{ID: "opt", Name: "Small"}, {Name: "Large", Price: 1},
		}}},
		Addons: []models.Addon{{Name: "Dip", Price: 0.7}},
	}

	item := toItem(in)
	assert.Equal(t, "Fries", item.Title)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, "keep", item.Variants[0].ID)
	assert.Equal(t, "opt", item.Variants[0].Options[0].ID)
	assert.NotEmpty(t, item.Variants[0].Options[1].ID)
	assert.NotEmpty(t, item.Addons[0].ID)
	assert.NotNil(t, item.Tags)
	assert.NotNil(t, item.Ingredients)

	off := false
	in.IsAvailable = &off
	assert.False(t, toItem(in).IsAvailable)
}

func TestValidateSale(t *testing.T) {
	sale, err := validateSale(saleInput{SaleType: models.SalePercentage, SaleAmount: 20, SaleEndDate: ptr(now.Add(24 * time.Hour))}, now)
	require.NoError(t, err)
	assert.True(t, sale.OnSale)
	assert.Equal(t, models.SalePercentage, sale.SaleType)
	assert.Nil(t, sale.SaleStartDate)

	bad := []saleInput{
		{SaleType: "bogo", SaleAmount: 1},
		{SaleType: models.SaleFixed, SaleAmount: 0},
		{SaleType: models.SalePercentage, SaleAmount: 101},
		{SaleType: models.SaleFixed, SaleAmount: 2, SaleStartDate: ptr(now.Add(2 * time.Hour)), SaleEndDate: ptr(now.Add(time.Hour))},
		{SaleType: models.SaleFixed, SaleAmount: 2, SaleEndDate: ptr(now.Add(-time.Hour))},
	}
	for _, in := range bad {
		_, err := validateSale(in, now)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err), "%+v", in)
	}
}

func TestSaleUpdate(t *testing.T) {
	start := now.Add(time.Hour)
	update := saleUpdate(models.SaleFields{OnSale: true, SaleType: models.SaleFixed, SaleAmount: 2, SaleStartDate: &start}, now)

	set := update["$set"].(bson.M)
	assert.Equal(t, true, set["onSale"])
	assert.Equal(t, start, set["saleStartDate"])
	assert.Equal(t, bson.M{"saleEndDate": ""}, update["$unset"])

	end := now.Add(2 * time.Hour)
	update = saleUpdate(models.SaleFields{OnSale: true, SaleType: models.SaleFixed, SaleAmount: 2, SaleStartDate: &start, SaleEndDate: &end}, now)
	assert.NotContains(t, update, "$unset")

	cleared := clearSaleUpdate(now)
	assert.Equal(t, false, cleared["$set"].(bson.M)["onSale"])
	assert.Len(t, cleared["$unset"], 4)
}

func asRestaurant(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), globals.RestaurantIDKey, id))
}

func TestHandlersRejectBeforeTouchingStorage(t *testing.T) {
	tests := []struct {
		name    string
		handler httprouter.Handle
		body    string
		signed  bool
		status  int
	}{
		{"create unsigned", CreateItem, `{"title":"x"}`, false, http.StatusUnauthorized},
		{"create bad json", CreateItem, `{`, true, http.StatusBadRequest},
		{"create invalid", CreateItem, `{"title":"","price":1}`, true, http.StatusBadRequest},
		{"edit invalid", EditItem, `{"title":"ok","price":-3}`, true, http.StatusBadRequest},
		{"item sale bad type", ApplyItemSale, `{"saleType":"half","saleAmount":5}`, true, http.StatusBadRequest},
		{"menu sale over 100%", ApplyMenuSale, `{"saleType":"percentage","saleAmount":150}`, true, http.StatusBadRequest},
		{"menu sale unsigned", ApplyMenuSale, `{}`, false, http.StatusUnauthorized},
		{"category blank", CreateCategory, `{"name":" "}`, true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.signed {
				req = asRestaurant(req, "r1")
			}
			rec := httptest.NewRecorder()
			tt.handler(rec, req, httprouter.Params{{Key: "itemId", Value: "i1"}})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
