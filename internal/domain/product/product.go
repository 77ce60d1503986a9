package product

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

// Product keeps the storefront's public wire names: the frontend reads
// new_price/old_price and a numeric sequential id.
type Product struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	NewPrice  float64   `json:"new_price"`
	OldPrice  float64   `json:"old_price"`
	Date      time.Time `json:"date"`
	Available bool      `json:"available"`
}

type CreateRequest struct {
	Name     string  `json:"name" binding:"required"`
	Image    string  `json:"image" binding:"required"`
	Category string  `json:"category" binding:"required"`
	NewPrice float64 `json:"new_price" binding:"required,gt=0"`
	OldPrice float64 `json:"old_price" binding:"required,gt=0"`
}
