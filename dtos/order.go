package dtos

import "time"

// CartItem is a single line of a submitted cart.
type CartItem struct {
	ProductCode uint `json:"product_code" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required,gt=0"`
}

type AcceptOrderInput struct {
	TableNo string     `json:"table_no" binding:"required"`
	Cart    []CartItem `json:"cart" binding:"required,min=1,dive"`
	Notes   *string    `json:"notes,omitempty"`
	DineIn  bool       `json:"dine_in"`
	TakeOut bool       `json:"take_out"`
}

type CheckoutInput struct {
	OrderCode       uint    `json:"order_code" binding:"required"`
	NumberOfPax     int     `json:"number_of_customers" binding:"required"`
	NumberOfSeniors int     `json:"number_of_seniors"`
	AmountPaid      float64 `json:"amount_paid" binding:"required"`
	DiscountCode    *string `json:"discount_code,omitempty"`
	// Total as shown to the cashier. Checkout recomputes from persisted
	// lines and rejects the request when the two disagree.
	Total float64 `json:"total" binding:"required"`
}

type DiscountPreviewInput struct {
	Cart            []PreviewCartItem `json:"cart" binding:"required,min=1,dive"`
	DiscountCode    *string           `json:"discount_code,omitempty"`
	NumberOfPax     int               `json:"number_of_pax" binding:"required"`
	NumberOfSeniors int               `json:"number_of_seniors"`
}

type PreviewCartItem struct {
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price" binding:"required"`
}

// DiscountBreakdown is the calculator result. Display fields are rounded to
// two decimals, TotalDue keeps full precision for downstream comparison.
type DiscountBreakdown struct {
	Total              float64 `json:"total"`
	NetOfVat           float64 `json:"net_of_vat"`
	Vat                float64 `json:"vat"`
	VatDiscount        float64 `json:"vat_discount"`
	PercentageDiscount float64 `json:"percentage_discount"`
	Discount           float64 `json:"discount"`
	TotalDue           float64 `json:"total_due"`
	TotalDueDisplay    float64 `json:"total_due_display"`
}

type ReceiptLine struct {
	ProductCode uint    `json:"product_code"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

type Receipt struct {
	OrderCode  uint          `json:"order_code"`
	InvoiceNo  int           `json:"invoice_no"`
	TableNo    *string       `json:"table_no,omitempty"`
	Lines      []ReceiptLine `json:"lines"`
	Total      float64       `json:"total"`
	NetOfVat   float64       `json:"net_of_vat"`
	Vat        float64       `json:"vat"`
	Discount   float64       `json:"discount"`
	TotalDue   float64       `json:"total_due"`
	AmountPaid float64       `json:"amount_paid"`
	Change     float64       `json:"change"`
	PostedAt   time.Time     `json:"posted_at"`
}
