package dtos

import "time"

type PendingItem struct {
	ProductCode uint    `json:"product_code" binding:"required"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity" binding:"required,gt=0"`
	Price       float64 `json:"price"`
}

type PendingSubmitInput struct {
	TableNo string        `json:"table_no" binding:"required"`
	Items   []PendingItem `json:"items" binding:"required,min=1,dive"`
	Notes   *string       `json:"notes,omitempty"`
	DineIn  bool          `json:"dine_in"`
	TakeOut bool          `json:"take_out"`
}

type PendingRemoveItemInput struct {
	RemoveProductCode uint `json:"remove_product_code" binding:"required"`
}

// PendingOrder is a staged order held outside the database. It carries no
// stock effect until it is accepted into a real order.
type PendingOrder struct {
	Handle    string        `json:"handle"`
	TableNo   string        `json:"table_no"`
	Items     []PendingItem `json:"items"`
	Notes     *string       `json:"notes,omitempty"`
	DineIn    bool          `json:"dine_in"`
	TakeOut   bool          `json:"take_out"`
	UpdatedAt time.Time     `json:"updated_at"`
}
