package dtos

import "time"

// LedgerEntryView is one history row. ComputedRemaining is replayed from the
// oldest entry in the window as a cross-check against the stored Remaining.
type LedgerEntryView struct {
	EntryCode         int       `json:"entry_code"`
	ProductCode       uint      `json:"product_code"`
	TransactionType   string    `json:"transaction_type"`
	Date              time.Time `json:"date"`
	Qty               int       `json:"qty"`
	Remaining         int       `json:"remaining"`
	ComputedRemaining int       `json:"computed_remaining"`
	Consistent        bool      `json:"consistent"`
	Actor             string    `json:"actor"`
	Remarks           *string   `json:"remarks,omitempty"`
}

type StockHistoryResponse struct {
	ProductCode uint              `json:"product_code"`
	OnHand      int               `json:"on_hand"`
	Entries     []LedgerEntryView `json:"entries"`
}
