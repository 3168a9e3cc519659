package cart

import (
	"context"
	"errors"

	"fresh/models"
)

// ErrRevisionConflict is returned by Store.Replace when the cart changed
// since it was read.
var ErrRevisionConflict = errors.New("cart revision conflict")

// Store persists carts. Implementations must keep at most one cart per
// (userID, restaurantID) and must make Replace conditional on the revision.
type Store interface {
	// FindOrCreate returns the user's cart for the restaurant, creating an
	// empty one atomically when missing. created is true only for the caller
	// that inserted it.
	FindOrCreate(ctx context.Context, userID, restaurantID string) (c *models.Cart, created bool, err error)
	// Find returns apperr.ErrCartNotFound when there is no cart.
	Find(ctx context.Context, userID, restaurantID string) (*models.Cart, error)
	FindByUser(ctx context.Context, userID string) ([]models.Cart, error)
	// Replace writes c if the stored revision still equals expected, and
	// bumps c.Revision.
	Replace(ctx context.Context, c *models.Cart, expected int64) error
	Delete(ctx context.Context, userID, restaurantID string) error
}

// Catalog is the read side the cart needs from restaurants, items and users.
type Catalog interface {
	Restaurant(ctx context.Context, id string) (*models.Restaurant, error)
	Item(ctx context.Context, id string) (*models.Item, error)
	UserExists(ctx context.Context, id string) (bool, error)
	// AttachCart adds cartID to the user's carts set without duplicates.
	AttachCart(ctx context.Context, userID, cartID string) error
}
