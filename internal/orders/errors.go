package orders

import "errors"

var (
	ErrPersistence       = errors.New("persistence failure")
	ErrOrderNotFound     = errors.New("order not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrDuplicateMenuItem = errors.New("menu item already exists")
)
