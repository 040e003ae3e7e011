package models

import "time"

// CartProduct is the product snapshot embedded in a cart item.
type CartProduct struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	MainImageURL string  `json:"main_image_url,omitempty"`
	Stock        int     `json:"stock"`
}

type CartItem struct {
	ID       int64       `json:"id"`
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal float64     `json:"subtotal"`
	AddedAt  time.Time   `json:"added_at"`
}

// Cart is the full server cart, returned by every cart mutation.
type Cart struct {
	Items       []CartItem `json:"items"`
	TotalCount  int        `json:"total_count"`
	TotalAmount float64    `json:"total_amount"`
}
