package domain

import "errors"

var (
	ErrInventoryNotFound = errors.New("product not found in inventory")
	ErrNegativeQuantity  = errors.New("inventory quantity cannot be negative")
	ErrInvalidPeriod     = errors.New("period must be one of: day, week, month, year")
)
