package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"resto-pos/dtos"
	"resto-pos/models"
)

const historyLimit = 100

type StockService interface {
	CurrentBalance(productCode uint) (*models.StockBalance, error)
	History(productCode uint) (*dtos.StockHistoryResponse, error)
	// Append writes one ledger entry inside the caller's transaction and
	// keeps the balance row in lockstep with the entry's Remaining.
	Append(tx *gorm.DB, productCode uint, txnType string, qty int, actor string, remarks string) (*models.StockLedgerEntry, error)
}

type stockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) StockService {
	return &stockService{db: db}
}

func (s *stockService) CurrentBalance(productCode uint) (*models.StockBalance, error) {
	var balance models.StockBalance
	err := s.db.Where("product_code = ?", productCode).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no stock balance for product %d", ErrNotFound, productCode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read stock balance: %v", ErrTransaction, err)
	}
	return &balance, nil
}

// signFor maps a transaction type to its effect on the running balance.
// Sales consume stock, every cancellation or restock restores it.
func signFor(txnType string) (int, error) {
	switch txnType {
	case models.TxnSales:
		return -1, nil
	case models.TxnCancelSales, models.TxnCancelPending, models.TxnRestock:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, txnType)
	}
}

func (s *stockService) Append(tx *gorm.DB, productCode uint, txnType string, qty int, actor string, remarks string) (*models.StockLedgerEntry, error) {
	sign, err := signFor(txnType)
	if err != nil {
		return nil, err
	}
	if qty <= 0 {
		return nil, fmt.Errorf("%w: ledger qty must be positive", ErrValidation)
	}

	var balance models.StockBalance
	current := 0
	err = tx.Where("product_code = ?", productCode).First(&balance).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		balance = models.StockBalance{ProductCode: productCode, Generation: 1}
		if err := tx.Create(&balance).Error; err != nil {
			return nil, fmt.Errorf("%w: create stock balance: %v", ErrTransaction, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: read stock balance: %v", ErrTransaction, err)
	default:
		current = balance.OnHand
	}

	entryCode, err := nextSequence(tx, models.CounterEntryCode)
	if err != nil {
		return nil, err
	}

	entry := models.StockLedgerEntry{
		EntryCode:       entryCode,
		ProductCode:     productCode,
		TransactionType: txnType,
		Date:            time.Now(),
		Qty:             qty,
		Remaining:       current + sign*qty,
		Actor:           actor,
		Generation:      1,
	}
	if remarks != "" {
		entry.Remarks = &remarks
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("%w: append ledger entry: %v", ErrTransaction, err)
	}

	if err := tx.Model(&models.StockBalance{}).
		Where("product_code = ?", productCode).
		Update("on_hand", entry.Remaining).Error; err != nil {
		return nil, fmt.Errorf("%w: update stock balance: %v", ErrTransaction, err)
	}

	return &entry, nil
}

// History returns the newest entries first and replays the window
// chronologically as an independent consistency check on the stored
// running balances.
func (s *stockService) History(productCode uint) (*dtos.StockHistoryResponse, error) {
	balance, err := s.CurrentBalance(productCode)
	if err != nil {
		return nil, err
	}

	var entries []models.StockLedgerEntry
	if err := s.db.
		Where("product_code = ?", productCode).
		Order("entry_code DESC").
		Limit(historyLimit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: read ledger history: %v", ErrTransaction, err)
	}

	views := replayWindow(entries)

	return &dtos.StockHistoryResponse{
		ProductCode: productCode,
		OnHand:      balance.OnHand,
		Entries:     views,
	}, nil
}

// replayWindow walks the entries oldest-first, starting from the balance
// just before the window, and recomputes each running balance.
func replayWindow(entries []models.StockLedgerEntry) []dtos.LedgerEntryView {
	chrono := append([]models.StockLedgerEntry(nil), entries...)
	sort.Slice(chrono, func(i, j int) bool { return chrono[i].EntryCode < chrono[j].EntryCode })

	running := 0
	if len(chrono) > 0 {
		sign, err := signFor(chrono[0].TransactionType)
		if err == nil {
			// Balance before the oldest visible entry.
			running = chrono[0].Remaining - sign*chrono[0].Qty
		}
	}

	computed := make(map[int]int, len(chrono))
	for _, entry := range chrono {
		sign, err := signFor(entry.TransactionType)
		if err != nil {
			continue
		}
		running += sign * entry.Qty
		computed[entry.EntryCode] = running
	}

	views := make([]dtos.LedgerEntryView, len(entries))
	for i, entry := range entries {
		views[i] = dtos.LedgerEntryView{
			EntryCode:         entry.EntryCode,
			ProductCode:       entry.ProductCode,
			TransactionType:   entry.TransactionType,
			Date:              entry.Date,
			Qty:               entry.Qty,
			Remaining:         entry.Remaining,
			ComputedRemaining: computed[entry.EntryCode],
			Consistent:        computed[entry.EntryCode] == entry.Remaining,
			Actor:             entry.Actor,
			Remarks:           entry.Remarks,
		}
	}
	return views
}
