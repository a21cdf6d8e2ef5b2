package models

import "time"

// Ledger transaction types. SALES subtracts from the running balance,
// everything else adds it back.
const (
	TxnSales         = "SALES"
	TxnCancelSales   = "CANCEL_SALES"
	TxnCancelPending = "CANCEL_PENDING"
	TxnRestock       = "RESTOCK"
)

// StockLedgerEntry is append-only. Corrections are new compensating entries,
// never edits, so Remaining on the newest entry is the authoritative balance.
type StockLedgerEntry struct {
	EntryCode       int       `gorm:"primaryKey;autoIncrement:false" json:"entry_code"`
	ProductCode     uint      `gorm:"index;not null" json:"product_code"`
	TransactionType string    `gorm:"size:20;not null" json:"transaction_type"`
	Date            time.Time `gorm:"not null" json:"date"`
	Qty             int       `gorm:"not null" json:"qty"`
	Remaining       int       `gorm:"not null" json:"remaining"`
	Actor           string    `gorm:"size:50" json:"actor"`
	Remarks         *string   `gorm:"size:255" json:"remarks,omitempty"`
	// Generation replaces the old overflow table split. All current writes
	// land in generation 1; older imports keep their original generation.
	Generation int `gorm:"default:1;index" json:"generation"`
}

// StockBalance mirrors Remaining of the product's newest ledger entry.
type StockBalance struct {
	ProductCode uint      `gorm:"primaryKey;autoIncrement:false" json:"product_code"`
	OnHand      int       `gorm:"not null" json:"on_hand"`
	Generation  int       `gorm:"default:1" json:"generation"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Counter backs invoice and ledger sequence allocation. Rows are read with
// SELECT ... FOR UPDATE inside the caller's transaction so two writers can
// never hand out the same value.
type Counter struct {
	Name  string `gorm:"primaryKey;size:30"`
	Value int    `gorm:"not null"`
}

const (
	CounterInvoiceNo = "invoice_no"
	CounterEntryCode = "ledger_entry_code"
)
