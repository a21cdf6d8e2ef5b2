package models

import (
	"time"
)

// Order is the sale header. An order stays open (posted=false) while the
// table keeps adding items and becomes immutable once posted at checkout.
type Order struct {
	ID         uint        `gorm:"primaryKey" json:"order_code"`
	InvoiceNo  int         `gorm:"uniqueIndex;not null" json:"invoice_no"`
	TableNo    *string     `gorm:"size:10;index" json:"table_no,omitempty"`
	Notes      *string     `gorm:"type:text" json:"notes,omitempty"`
	DineIn     bool        `gorm:"default:true" json:"dine_in"`
	TakeOut    bool        `gorm:"default:false" json:"take_out"`
	Posted     bool        `gorm:"default:false;index" json:"posted"`
	Total      float64     `gorm:"default:0" json:"total"`
	NetOfVat   float64     `gorm:"default:0" json:"net_of_vat"`
	Vat        float64     `gorm:"default:0" json:"vat"`
	Discount   float64     `gorm:"default:0" json:"discount"`
	TotalDue   float64     `gorm:"default:0" json:"total_due"`
	AmountPaid float64     `gorm:"default:0" json:"amount_paid"`
	Lines      []OrderLine `gorm:"foreignKey:OrderCode;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderCode   uint    `gorm:"index;not null" json:"order_code"`
	ProductCode uint    `gorm:"index;not null" json:"product_code"`
	Product     Product `gorm:"foreignKey:ProductCode" json:"product"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Price       float64 `gorm:"not null" json:"price"`
	Subtotal    float64 `gorm:"not null" json:"subtotal"`
}

// KitchenTicket rows are written when a line is accepted and flipped to done
// at checkout. The kitchen display reads them, this service never does.
type KitchenTicket struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderCode   uint      `gorm:"index;not null" json:"order_code"`
	TableNo     *string   `gorm:"size:10" json:"table_no,omitempty"`
	ProductCode uint      `gorm:"not null" json:"product_code"`
	ProductName string    `gorm:"size:100" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Done        bool      `gorm:"default:false;index" json:"done"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
