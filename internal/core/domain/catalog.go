package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Price      decimal.Decimal
}
