package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fresh/apperr"
	"fresh/hours"
	"fresh/models"
	"fresh/pricing"

	"github.com/rs/zerolog/log"
)

const defaultMaxAttempts = 5

type Service struct {
	store       Store
	catalog     Catalog
	now         func() time.Time
	maxAttempts int
}

func NewService(store Store, catalog Catalog) *Service {
	return &Service{
		store:       store,
		catalog:     catalog,
		now:         time.Now,
		maxAttempts: defaultMaxAttempts,
	}
}

type AddItemInput struct {
	RestaurantID string
	ItemID       string
	UserID       string
	Quantity     int
	Variants     []models.SelectedVariant
	Addons       []models.SelectedAddon
}

// AddItem validates the request, prices the line from the menu and merges it
// into the user's cart for the restaurant.
func (s *Service) AddItem(ctx context.Context, in AddItemInput) (*models.Cart, error) {
	if in.Quantity < 1 {
		return nil, apperr.ErrInvalidQuantity
	}

	restaurant, err := s.catalog.Restaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if !restaurant.IsPublished {
		return nil, apperr.ErrRestaurantUnpublished
	}
	item, err := s.itemOf(ctx, restaurant.ID, in.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsAvailable {
		return nil, apperr.ErrItemUnavailable
	}
	if err := s.requireUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	variants, addons, err := resolveSelection(item, in.Variants, in.Addons)
	if err != nil {
		return nil, err
	}
	line := newLine(item, in.Quantity, variants, addons)

	c, err := s.mutate(ctx, in.UserID, restaurant.ID, true, func(c *models.Cart) error {
		applyAdd(c, line)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("cart", c.ID).Str("item", item.ID).Int("quantity", in.Quantity).
		Float64("lineTotal", line.LineTotal).Msg("item added to cart")
	return c, nil
}

// RemoveItem drops every line for itemID from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, restaurantID, itemID, userID string) (*models.Cart, error) {
	restaurant, err := s.catalog.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	// an item deleted from the menu can still be removed from carts holding it
	_, err = s.itemOf(ctx, restaurant.ID, itemID)
	deleted := errors.Is(err, apperr.ErrItemNotFound)
	if err != nil && !deleted {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, restaurant.ID, false, func(c *models.Cart) error {
		_, err := applyRemove(c, itemID)
		if deleted && errors.Is(err, apperr.ErrItemNotInCart) {
			return apperr.ErrItemNotFound
		}
		return err
	})
}

// ClearCart deletes the user's cart for the restaurant.
func (s *Service) ClearCart(ctx context.Context, restaurantID, userID string) error {
	if err := s.store.Delete(ctx, userID, restaurantID); err != nil {
		return wrapInternal(err)
	}
	return nil
}

// ListCarts returns every cart the user holds, one per restaurant.
func (s *Service) ListCarts(ctx context.Context, userID string) ([]models.Cart, error) {
	carts, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	return carts, nil
}

// LineView is a cart line priced for display and checkout.
type LineView struct {
	models.CartItem
	Title     string        `json:"title"`
	Available bool          `json:"available"`
	Price     pricing.Price `json:"price"`
}

type CartView struct {
	Cart         *models.Cart `json:"cart"`
	Lines        []LineView   `json:"lines"`
	Subtotal     float64      `json:"subtotal"`
	Discount     float64      `json:"discount"`
	Total        float64      `json:"total"`
	IsAutoClosed bool         `json:"isAutoClosed"`
	CanCheckout  bool         `json:"canCheckout"`
}

// GetCart returns the cart with every line priced through the pricing
// package, so the shown total equals what would be charged.
func (s *Service) GetCart(ctx context.Context, restaurantID, userID string) (*CartView, error) {
	restaurant, err := s.catalog.Restaurant(ctx, restaurantID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	c, err := s.store.Find(ctx, userID, restaurantID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	return s.price(ctx, c, restaurant)
}

func (s *Service) price(ctx context.Context, c *models.Cart, restaurant *models.Restaurant) (*CartView, error) {
	now := s.now()
	view := &CartView{
		Cart:         c,
		Lines:        make([]LineView, 0, len(c.Items)),
		IsAutoClosed: hours.IsAutoClosed(restaurant.OpeningHours, now),
	}

	var subtotals, totals []float64
	for _, line := range c.Items {
		lv := LineView{CartItem: line}
		item, err := s.catalog.Item(ctx, line.ItemID)
		switch {
		case errors.Is(err, apperr.ErrItemNotFound):
			// deleted from the menu: keep the snapshot, no discount
			lv.Price = pricing.Price{Base: line.LineTotal, Amount: line.LineTotal, Source: pricing.SourceNone}
		case err != nil:
			return nil, wrapInternal(err)
		default:
			lv.Title = item.Title
			lv.Available = item.IsAvailable
			lv.Price = pricing.ResolveLinePrice(*item, restaurant, line.Quantity, line.Variants, line.Addons, now)
		}
		subtotals = append(subtotals, lv.Price.Base)
		totals = append(totals, lv.Price.Amount)
		view.Lines = append(view.Lines, lv)
	}

	view.Subtotal = pricing.Sum(subtotals...)
	view.Total = pricing.Sum(totals...)
	view.Discount = pricing.Subtract(view.Subtotal, view.Total)
	view.CanCheckout = hours.CanCheckout(*restaurant, now) && len(view.Lines) > 0
	return view, nil
}

func (s *Service) itemOf(ctx context.Context, restaurantID, itemID string) (*models.Item, error) {
	item, err := s.catalog.Item(ctx, itemID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if item.RestaurantID != restaurantID {
		return nil, apperr.ErrItemNotInRestaurant
	}
	return item, nil
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	ok, err := s.catalog.UserExists(ctx, userID)
	if err != nil {
		return wrapInternal(err)
	}
	if !ok {
		return apperr.ErrUserNotFound
	}
	return nil
}

// mutate runs fn against a fresh copy of the cart and writes it back only if
// nobody else wrote in between, retrying on conflict.
func (s *Service) mutate(ctx context.Context, userID, restaurantID string, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var (
			c   *models.Cart
			err error
		)
		if create {
			c, _, err = s.store.FindOrCreate(ctx, userID, restaurantID)
		} else {
			c, err = s.store.Find(ctx, userID, restaurantID)
		}
		if err != nil {
			return nil, wrapInternal(err)
		}
		// attach on every add; it is a set add
		if create {
			if err := s.catalog.AttachCart(ctx, userID, c.ID); err != nil {
				return nil, wrapInternal(err)
			}
		}

		expected := c.Revision
		if err := fn(c); err != nil {
			return nil, err
		}
		c.UpdatedAt = s.now()

		err = s.store.Replace(ctx, c, expected)
		if errors.Is(err, ErrRevisionConflict) {
			log.Debug().Str("cart", c.ID).Int("attempt", attempt).Msg("cart revision conflict, retrying")
			continue
		}
		if err != nil {
			return nil, wrapInternal(err)
		}
		return c, nil
	}
	return nil, apperr.ErrCartContention
}

// wrapInternal passes domain errors through and marks the rest internal.
func wrapInternal(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(fmt.Errorf("cart: %w", err))
}
