package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindConflict
	KindBadRequest
	KindNotFound
	KindUnauthorized
)

// Error carries a client-safe message and the kind used to pick the HTTP status.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Conflict(msg string) *Error     { return &Error{Kind: KindConflict, Msg: msg} }
func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Msg: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Msg: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Msg: msg} }

// Internal wraps an unexpected failure. The wrapped error is logged, never sent.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "Something went wrong", Err: err}
}

var (
	ErrRestaurantNotFound    = Conflict("Restaurant not found")
	ErrRestaurantUnpublished = Conflict("Restaurant is not published")
	ErrItemNotFound          = Conflict("Item not found")
	ErrItemNotInRestaurant   = Conflict("Item does not belong to this restaurant")
	ErrItemUnavailable       = Conflict("Item is not available")
	ErrUserNotFound          = Conflict("User not found")
	ErrCartNotFound          = Conflict("Cart not found")
	ErrItemNotInCart         = Conflict("Item not found in cart")
	ErrCartContention        = Conflict("Cart is being updated, please try again")
	ErrInvalidQuantity       = BadRequest("Quantity must be at least 1")
)

// KindOf reports the kind of err, KindInternal for anything not built here.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
