package billing

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrItemNotFound      = errors.New("menu item not found")
	ErrInvalidTransition = errors.New("invalid composition transition")
	ErrEmptyOrder        = errors.New("order has no items")
)
