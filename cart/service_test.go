package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fresh/apperr"
	"fresh/models"
	"fresh/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

func allDay() models.OpeningHours {
	h := models.OpeningHours{}
	for _, d := range []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"} {
		h[d] = models.DayHours{Open: "00:00", Close: "00:00"}
	}
	return h
}

func newFixture(t *testing.T) (*Service, *MemoryCatalog, *MemoryStore) {
	t.Helper()

	catalog := NewMemoryCatalog()
	catalog.Restaurants["r1"] = &models.Restaurant{ID: "r1", Name: "Luigi's", IsPublished: true, OpeningHours: allDay()}
	catalog.Restaurants["r2"] = &models.Restaurant{ID: "r2", Name: "Other", IsPublished: true, OpeningHours: allDay()}
	catalog.Restaurants["draft"] = &models.Restaurant{ID: "draft", Name: "Draft"}

	catalog.Items["pizza"] = &models.Item{
		ID: "pizza", RestaurantID: "r1", Title: "Pizza", Price: 10, IsAvailable: true,
		Variants: []models.Variant{
			{Name: "Size", IsRequired: true, IsAvailable: true, Options: []models.VariantOption{
				{ID: "s", Name: "Small", Price: 0},
				{ID: "l", Name: "Large", Price: 2},
			}},
			{Name: "Crust", IsAvailable: true, Options: []models.VariantOption{
				{ID: "thin", Name: "Thin", Price: 0},
				{ID: "thick", Name: "Thick", Price: 1.5},
			}},
		},
		Addons: []models.Addon{
			{ID: "cheese", Name: "Cheese", Price: 1},
			{ID: "olives", Name: "Olives", Price: 0.5},
		},
	}
	catalog.Items["soda"] = &models.Item{ID: "soda", RestaurantID: "r1", Title: "Soda", Price: 2, IsAvailable: true}
	catalog.Items["gone"] = &models.Item{ID: "gone", RestaurantID: "r1", Title: "Gone", Price: 5}
	catalog.Items["burger"] = &models.Item{ID: "burger", RestaurantID: "r2", Title: "Burger", Price: 8, IsAvailable: true}
	catalog.Users["u1"] = &models.User{ID: "u1", Username: "ann"}

	store := NewMemoryStore()
	svc := NewService(store, catalog)
	svc.now = func() time.Time { return testNow }
	return svc, catalog, store
}

func largeCheese(q int) AddItemInput {
	return AddItemInput{
		RestaurantID: "r1", ItemID: "pizza", UserID: "u1", Quantity: q,
		Variants: []models.SelectedVariant{{Name: "Size", OptionID: "l"}},
		Addons:   []models.SelectedAddon{{AddonID: "cheese"}},
	}
}

func TestAddItemMergesSameSelection(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, largeCheese(2))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 26.0, c.TotalPrice)
	assert.Equal(t, 13.0, c.Items[0].UnitPrice)

	c, err = svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 39.0, c.Items[0].LineTotal)
	assert.Equal(t, 39.0, c.TotalPrice)
}

func TestAddItemTakesPricesFromMenu(t *testing.T) {
	svc, _, _ := newFixture(t)

	in := largeCheese(1)
	in.Variants[0].Price = 0
	in.Variants[0].OptionName = "Tiny"
	in.Addons[0].Price = -100

	c, err := svc.AddItem(context.Background(), in)
	require.NoError(t, err)
	line := c.Items[0]
	assert.Equal(t, models.SelectedVariant{Name: "Size", OptionID: "l", OptionName: "Large", Price: 2}, line.Variants[0])
	assert.Equal(t, models.SelectedAddon{AddonID: "cheese", Name: "Cheese", Price: 1}, line.Addons[0])
	assert.Equal(t, 13.0, c.TotalPrice)
}

func TestAddItemReorderedSelectionMerges(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	first := AddItemInput{
		RestaurantID: "r1", ItemID: "pizza", UserID: "u1", Quantity: 1,
		Variants: []models.SelectedVariant{{Name: "Size", OptionID: "l"}, {Name: "Crust", OptionID: "thick"}},
		Addons:   []models.SelectedAddon{{AddonID: "cheese"}, {AddonID: "olives"}},
	}
	second := first
	second.Variants = []models.SelectedVariant{{Name: "Crust", OptionID: "thick"}, {Name: "Size", OptionID: "l"}}
	second.Addons = []models.SelectedAddon{{AddonID: "olives"}, {AddonID: "cheese"}}

	_, err := svc.AddItem(ctx, first)
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, second)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 30.0, c.TotalPrice)
}

func TestAddItemDifferentSelectionsThenRemove(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, AddItemInput{
		RestaurantID: "r1", ItemID: "pizza", UserID: "u1", Quantity: 1,
		Variants: []models.SelectedVariant{{Name: "Size", OptionID: "s"}},
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 23.0, c.TotalPrice)
	assert.NotEqual(t, c.Items[0].SelectionKey, c.Items[1].SelectionKey)

	c, err = svc.RemoveItem(ctx, "r1", "pizza", "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.TotalPrice)
}

func TestRemoveItemSubtractsStoredLineTotals(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(2))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 3})
	require.NoError(t, err)

	c, err := svc.RemoveItem(ctx, "r1", "pizza", "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "soda", c.Items[0].ItemID)
	assert.Equal(t, 6.0, c.TotalPrice)
}

func TestAddItemValidation(t *testing.T) {
	tests := []struct {
		name string
		in   AddItemInput
		want error
	}{
		{"unknown restaurant", AddItemInput{RestaurantID: "nope", ItemID: "soda", UserID: "u1", Quantity: 1}, apperr.ErrRestaurantNotFound},
		{"unpublished restaurant", AddItemInput{RestaurantID: "draft", ItemID: "soda", UserID: "u1", Quantity: 1}, apperr.ErrRestaurantUnpublished},
		{"unknown item", AddItemInput{RestaurantID: "r1", ItemID: "nope", UserID: "u1", Quantity: 1}, apperr.ErrItemNotFound},
		{"item of another restaurant", AddItemInput{RestaurantID: "r1", ItemID: "burger", UserID: "u1", Quantity: 1}, apperr.ErrItemNotInRestaurant},
		{"unavailable item", AddItemInput{RestaurantID: "r1", ItemID: "gone", UserID: "u1", Quantity: 1}, apperr.ErrItemUnavailable},
		{"unknown user", AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "ghost", Quantity: 1}, apperr.ErrUserNotFound},
		{"zero quantity", AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 0}, apperr.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newFixture(t)
			_, err := svc.AddItem(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddItemSelectionErrors(t *testing.T) {
	tests := []struct {
		name     string
		variants []models.SelectedVariant
		addons   []models.SelectedAddon
		kind     apperr.Kind
	}{
		{"missing required variant", nil, nil, apperr.KindConflict},
		{"unknown variant", []models.SelectedVariant{{Name: "Size", OptionID: "l"}, {Name: "Sauce", OptionID: "x"}}, nil, apperr.KindConflict},
		{"unknown option", []models.SelectedVariant{{Name: "Size", OptionID: "xl"}}, nil, apperr.KindConflict},
		{"variant twice", []models.SelectedVariant{{Name: "Size", OptionID: "l"}, {Name: "Size", OptionID: "s"}}, nil, apperr.KindBadRequest},
		{"unknown addon", []models.SelectedVariant{{Name: "Size", OptionID: "l"}}, []models.SelectedAddon{{AddonID: "ham"}}, apperr.KindConflict},
		{"addon twice", []models.SelectedVariant{{Name: "Size", OptionID: "l"}}, []models.SelectedAddon{{AddonID: "cheese"}, {AddonID: "cheese"}}, apperr.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, store := newFixture(t)
			_, err := svc.AddItem(context.Background(), AddItemInput{
				RestaurantID: "r1", ItemID: "pizza", UserID: "u1", Quantity: 1,
				Variants: tt.variants, Addons: tt.addons,
			})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))

			_, err = store.Find(context.Background(), "u1", "r1")
			assert.ErrorIs(t, err, apperr.ErrCartNotFound)
		})
	}
}

func TestRemoveItemErrors(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, "r1", "soda", "u1")
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)

	_, err = svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)

	_, err = svc.RemoveItem(ctx, "r1", "soda", "u1")
	assert.ErrorIs(t, err, apperr.ErrItemNotInCart)

	_, err = svc.RemoveItem(ctx, "r1", "burger", "u1")
	assert.ErrorIs(t, err, apperr.ErrItemNotInRestaurant)

	_, err = svc.RemoveItem(ctx, "nope", "soda", "u1")
	assert.ErrorIs(t, err, apperr.ErrRestaurantNotFound)
}

func TestCartAttachedToUserOnce(t *testing.T) {
	svc, catalog, _ := newFixture(t)
	ctx := context.Background()

	c, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{RestaurantID: "r2", ItemID: "burger", UserID: "u1", Quantity: 1})
	require.NoError(t, err)

	carts := catalog.Users["u1"].Carts
	assert.Len(t, carts, 2)
	assert.Contains(t, carts, c.ID)
}

func TestConcurrentAddsKeepEveryUnit(t *testing.T) {
	svc, _, _ := newFixture(t)
	svc.maxAttempts = 1000
	ctx := context.Background()

	const workers = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	carts, err := svc.ListCarts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, carts, 1)
	require.Len(t, carts[0].Items, 1)
	assert.Equal(t, workers, carts[0].Items[0].Quantity)
	assert.Equal(t, 2.0*workers, carts[0].TotalPrice)
	assert.EqualValues(t, workers, carts[0].Revision)
}

type conflictingStore struct {
	*MemoryStore
	replaces int
}

func (s *conflictingStore) Replace(context.Context, *models.Cart, int64) error {
	s.replaces++
	return ErrRevisionConflict
}

// flakyStore reports a revision conflict for the first conflicts writes.
type flakyStore struct {
	*MemoryStore
	conflicts int
}

func (s *flakyStore) Replace(ctx context.Context, c *models.Cart, expected int64) error {
	if s.conflicts > 0 {
		s.conflicts--
		return ErrRevisionConflict
	}
	return s.MemoryStore.Replace(ctx, c, expected)
}

func TestAddItemGivesUpAfterRepeatedConflicts(t *testing.T) {
	_, catalog, _ := newFixture(t)
	store := &conflictingStore{MemoryStore: NewMemoryStore()}
	svc := NewService(store, catalog)

	_, err := svc.AddItem(context.Background(), AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrCartContention)
	assert.Equal(t, defaultMaxAttempts, store.replaces)
}

func TestGetCartPricesWithActiveSales(t *testing.T) {
	svc, catalog, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(2))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1})
	require.NoError(t, err)

	catalog.Items["pizza"].SaleFields = models.SaleFields{OnSale: true, SaleType: models.SalePercentage, SaleAmount: 10}

	view, err := svc.GetCart(ctx, "r1", "u1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, "Pizza", view.Lines[0].Title)
	assert.Equal(t, pricing.SourceItem, view.Lines[0].Price.Source)
	assert.InDelta(t, 23.4, view.Lines[0].Price.Amount, 1e-9)
	assert.Equal(t, pricing.SourceNone, view.Lines[1].Price.Source)
	assert.InDelta(t, 28.0, view.Subtotal, 1e-9)
	assert.InDelta(t, 25.4, view.Total, 1e-9)
	assert.InDelta(t, 2.6, view.Discount, 1e-9)
	assert.True(t, view.CanCheckout)
	assert.False(t, view.IsAutoClosed)

	end := testNow.Add(time.Hour)
	catalog.Restaurants["r1"].SaleFields = models.SaleFields{OnSale: true, SaleType: models.SaleFixed, SaleAmount: 3, SaleEndDate: &end}

	view, err = svc.GetCart(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceRestaurant, view.Lines[0].Price.Source)
	assert.InDelta(t, 23.0, view.Lines[0].Price.Amount, 1e-9)
	assert.InDelta(t, 0.0, view.Lines[1].Price.Amount, 1e-9)
	assert.InDelta(t, 23.0, view.Total, 1e-9)
}

func TestGetCartClosedRestaurantCannotCheckout(t *testing.T) {
	svc, catalog, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)

	catalog.Restaurants["r1"].OpeningHours = models.OpeningHours{"monday": {Open: "17:00", Close: "23:00"}}

	view, err := svc.GetCart(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.True(t, view.IsAutoClosed)
	assert.False(t, view.CanCheckout)
}

func TestGetCartKeepsDeletedItemsAtSnapshotPrice(t *testing.T) {
	svc, catalog, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	delete(catalog.Items, "pizza")

	view, err := svc.GetCart(ctx, "r1", "u1")
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 13.0, view.Total)
	assert.False(t, view.Lines[0].Available)
}

func TestRemoveItemDeletedFromMenu(t *testing.T) {
	svc, catalog, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1})
	require.NoError(t, err)
	delete(catalog.Items, "soda")

	c, err := svc.RemoveItem(ctx, "r1", "soda", "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 13.0, c.TotalPrice)

	view, err := svc.GetCart(ctx, "r1", "u1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
	assert.Equal(t, 13.0, view.Total)

	_, err = svc.RemoveItem(ctx, "r1", "soda", "u1")
	assert.ErrorIs(t, err, apperr.ErrItemNotFound)
	_, err = svc.RemoveItem(ctx, "r1", "never", "u1")
	assert.ErrorIs(t, err, apperr.ErrItemNotFound)
	_, err = svc.RemoveItem(ctx, "r1", "soda", "ghost")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

// flakyAttachCatalog fails the first failures AttachCart calls.
type flakyAttachCatalog struct {
	*MemoryCatalog
	failures int
}

func (c *flakyAttachCatalog) AttachCart(ctx context.Context, userID, cartID string) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("users: write timeout")
	}
	return c.MemoryCatalog.AttachCart(ctx, userID, cartID)
}

func TestAddItemAttachesCartAfterEarlierFailure(t *testing.T) {
	_, memCatalog, _ := newFixture(t)
	catalog := &flakyAttachCatalog{MemoryCatalog: memCatalog, failures: 1}
	store := NewMemoryStore()
	svc := NewService(store, catalog)
	ctx := context.Background()
	in := AddItemInput{RestaurantID: "r1", ItemID: "soda", UserID: "u1", Quantity: 1}

	_, err := svc.AddItem(ctx, in)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Empty(t, memCatalog.Users["u1"].Carts)

	c, err := svc.AddItem(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, memCatalog.Users["u1"].Carts)
	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestClearCart(t *testing.T) {
	svc, _, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, largeCheese(1))
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, "r1", "u1"))

	_, err = svc.GetCart(ctx, "r1", "u1")
	assert.ErrorIs(t, err, apperr.ErrCartNotFound)
	assert.ErrorIs(t, svc.ClearCart(ctx, "r1", "u1"), apperr.ErrCartNotFound)
}
