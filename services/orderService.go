package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"resto-pos/dtos"
	"resto-pos/models"
	"resto-pos/utils"
)

// Checkout rejects a declared total that drifts from the recomputed one by
// more than this.
const totalEpsilon = 0.01

// Every order mutation runs inside one bounded transaction; on timeout the
// store rolls the whole request back and the caller may retry.
const storeTimeout = 5 * time.Second

type OrderService interface {
	Accept(input dtos.AcceptOrderInput, actor string) (*models.Order, error)
	Checkout(input dtos.CheckoutInput, actor string) (*dtos.Receipt, error)
	Cancel(orderCode uint, actor string) error
	CancelByInvoice(invoiceNo int, actor string) error
	RemoveLine(orderCode uint, productCode uint, actor string) error
	List(posted *bool, page, pageSize int) ([]models.Order, int64, error)
}

type orderService struct {
	db    *gorm.DB
	stock StockService
}

func NewOrderService(db *gorm.DB, stock StockService) OrderService {
	return &orderService{db: db, stock: stock}
}

// Accept commits a cart against the table's open order, or opens a new one.
// The whole request is one transaction: if any line fails validation or the
// ledger write fails, nothing is applied. Stock may go negative here; the
// floor is only enforced at checkout.
func (s *orderService) Accept(input dtos.AcceptOrderInput, actor string) (*models.Order, error) {
	if input.DineIn && input.TakeOut {
		return nil, fmt.Errorf("%w: dine_in and take_out are mutually exclusive", ErrValidation)
	}
	if !input.DineIn && !input.TakeOut {
		input.DineIn = true
	}

	cart := mergeCart(input.Cart)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var orderCode uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := make(map[uint]models.Product, len(cart))
		for _, item := range cart {
			var product models.Product
			err := tx.Where("id = ? AND active = ?", item.ProductCode, true).First(&product).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %d missing or inactive", ErrNotFound, item.ProductCode)
			}
			if err != nil {
				return fmt.Errorf("%w: load product %d: %v", ErrTransaction, item.ProductCode, err)
			}
			products[item.ProductCode] = product
		}

		order, err := s.openOrderForTable(tx, input.TableNo)
		if err != nil {
			return err
		}
		if order == nil {
			invoiceNo, err := nextSequence(tx, models.CounterInvoiceNo)
			if err != nil {
				return err
			}
			order = &models.Order{
				InvoiceNo: invoiceNo,
				TableNo:   &input.TableNo,
				Notes:     input.Notes,
				DineIn:    input.DineIn,
				TakeOut:   input.TakeOut,
			}
			if err := tx.Create(order).Error; err != nil {
				return fmt.Errorf("%w: create order header: %v", ErrTransaction, err)
			}
		} else {
			order.Notes = input.Notes
			order.DineIn = input.DineIn
			order.TakeOut = input.TakeOut
		}

		for _, item := range cart {
			product := products[item.ProductCode]
			if err := s.upsertLine(tx, order, product, item.Quantity); err != nil {
				return err
			}

			remarks := fmt.Sprintf("invoice #%d table %s", order.InvoiceNo, input.TableNo)
			if _, err := s.stock.Append(tx, item.ProductCode, models.TxnSales, item.Quantity, actor, remarks); err != nil {
				return err
			}

			ticket := models.KitchenTicket{
				OrderCode:   order.ID,
				TableNo:     order.TableNo,
				ProductCode: product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return fmt.Errorf("%w: queue kitchen ticket: %v", ErrTransaction, err)
			}
		}

		if err := s.refreshTotal(tx, order); err != nil {
			return err
		}
		orderCode = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var result models.Order
	if err := s.db.Preload("Lines.Product").First(&result, orderCode).Error; err != nil {
		return nil, fmt.Errorf("%w: reload order: %v", ErrTransaction, err)
	}
	return &result, nil
}

// mergeCart collapses duplicate product codes so one accept call never
// produces two lines for the same product.
func mergeCart(cart []dtos.CartItem) []dtos.CartItem {
	index := make(map[uint]int, len(cart))
	merged := make([]dtos.CartItem, 0, len(cart))
	for _, item := range cart {
		if i, ok := index[item.ProductCode]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductCode] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func (s *orderService) openOrderForTable(tx *gorm.DB, tableNo string) (*models.Order, error) {
	var order models.Order
	err := tx.Where("table_no = ? AND posted = ?", tableNo, false).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find open order for table %s: %v", ErrTransaction, tableNo, err)
	}
	return &order, nil
}

func (s *orderService) upsertLine(tx *gorm.DB, order *models.Order, product models.Product, qty int) error {
	var line models.OrderLine
	err := tx.Where("order_code = ? AND product_code = ?", order.ID, product.ID).First(&line).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = models.OrderLine{
			OrderCode:   order.ID,
			ProductCode: product.ID,
			Quantity:    qty,
			Price:       product.Price,
			Subtotal:    float64(qty) * product.Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			return fmt.Errorf("%w: create order line: %v", ErrTransaction, err)
		}
	case err != nil:
		return fmt.Errorf("%w: load order line: %v", ErrTransaction, err)
	default:
		line.Quantity += qty
		line.Subtotal = float64(line.Quantity) * line.Price
		if err := tx.Save(&line).Error; err != nil {
			return fmt.Errorf("%w: merge order line: %v", ErrTransaction, err)
		}
	}
	return nil
}

// refreshTotal restamps the header from its persisted lines. Final monetary
// fields (vat, discount, total due) are written at checkout only.
func (s *orderService) refreshTotal(tx *gorm.DB, order *models.Order) error {
	var total float64
	if err := tx.Model(&models.OrderLine{}).
		Where("order_code = ?", order.ID).
		Select("COALESCE(SUM(subtotal), 0)").
		Scan(&total).Error; err != nil {
		return fmt.Errorf("%w: sum order lines: %v", ErrTransaction, err)
	}
	order.Total = total
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"total":    total,
		"notes":    order.Notes,
		"dine_in":  order.DineIn,
		"take_out": order.TakeOut,
	}).Error; err != nil {
		return fmt.Errorf("%w: update order total: %v", ErrTransaction, err)
	}
	return nil
}

// Checkout finalizes an open order. Totals are recomputed from the persisted
// lines, never trusted from the client, and no ledger entries are written
// here: stock already moved when each line was accepted.
func (s *orderService) Checkout(input dtos.CheckoutInput, actor string) (*dtos.Receipt, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var receipt *dtos.Receipt
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Lines.Product").First(&order, input.OrderCode).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, input.OrderCode)
		}
		if err != nil {
			return fmt.Errorf("%w: load order: %v", ErrTransaction, err)
		}
		if order.Posted {
			return fmt.Errorf("%w: order %d", ErrAlreadyPosted, order.ID)
		}

		var pct float64
		hasCode := input.DiscountCode != nil && *input.DiscountCode != ""
		if hasCode {
			var rule models.DiscountRule
			err := tx.Where("code = ? AND active = ?", *input.DiscountCode, true).First(&rule).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: discount code %q", ErrNotFound, *input.DiscountCode)
			}
			if err != nil {
				return fmt.Errorf("%w: lookup discount code: %v", ErrTransaction, err)
			}
			pct = rule.Percentage
		}

		lines := make([]CartLine, len(order.Lines))
		for i, line := range order.Lines {
			lines[i] = CartLine{Quantity: line.Quantity, Price: line.Price}
		}
		breakdown, err := ComputeDiscount(lines, hasCode, pct, input.NumberOfPax, input.NumberOfSeniors)
		if err != nil {
			return err
		}

		if math.Abs(breakdown.Total-input.Total) > totalEpsilon {
			return fmt.Errorf("%w: declared total %.2f does not match computed %.2f",
				ErrValidation, input.Total, breakdown.Total)
		}

		// Accept tolerates a negative balance, checkout does not.
		for _, line := range order.Lines {
			var balance models.StockBalance
			if err := tx.Where("product_code = ?", line.ProductCode).First(&balance).Error; err == nil &&
				balance.OnHand < 0 {
				return fmt.Errorf("%w: product %d is oversold by %d",
					ErrInsufficientStock, line.ProductCode, -balance.OnHand)
			}
		}

		if input.AmountPaid+totalEpsilon < breakdown.TotalDueDisplay {
			return fmt.Errorf("%w: paid %.2f, due %.2f",
				ErrInsufficientPayment, input.AmountPaid, breakdown.TotalDueDisplay)
		}

		before := order
		order.Posted = true
		order.Total = breakdown.Total
		order.NetOfVat = breakdown.NetOfVat
		order.Vat = breakdown.Vat
		order.Discount = breakdown.Discount
		order.TotalDue = breakdown.TotalDueDisplay
		order.AmountPaid = input.AmountPaid
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"posted":      true,
			"total":       order.Total,
			"net_of_vat":  order.NetOfVat,
			"vat":         order.Vat,
			"discount":    order.Discount,
			"total_due":   order.TotalDue,
			"amount_paid": order.AmountPaid,
		}).Error; err != nil {
			return fmt.Errorf("%w: post order: %v", ErrTransaction, err)
		}

		if err := tx.Model(&models.KitchenTicket{}).
			Where("order_code = ?", order.ID).
			Update("done", true).Error; err != nil {
			return fmt.Errorf("%w: close kitchen tickets: %v", ErrTransaction, err)
		}

		description := fmt.Sprintf("Order #%d posted by %s", order.InvoiceNo, actor)
		if err := utils.CreateOrderAuditLog(tx, "post", order.ID, &before, &order, nil, description); err != nil {
			return fmt.Errorf("%w: write audit log: %v", ErrTransaction, err)
		}

		receiptLines := make([]dtos.ReceiptLine, len(order.Lines))
		for i, line := range order.Lines {
			receiptLines[i] = dtos.ReceiptLine{
				ProductCode: line.ProductCode,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				Price:       line.Price,
				Subtotal:    line.Subtotal,
			}
		}
		receipt = &dtos.Receipt{
			OrderCode:  order.ID,
			InvoiceNo:  order.InvoiceNo,
			TableNo:    order.TableNo,
			Lines:      receiptLines,
			Total:      order.Total,
			NetOfVat:   order.NetOfVat,
			Vat:        order.Vat,
			Discount:   order.Discount,
			TotalDue:   order.TotalDue,
			AmountPaid: order.AmountPaid,
			Change:     Round2(order.AmountPaid - order.TotalDue),
			PostedAt:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Cancel reverses an open order in full: one compensating ledger entry per
// line, then header, lines and kitchen tickets go together. A posted order
// can only be reversed through an explicit audited refund, not here.
func (s *orderService) Cancel(orderCode uint, actor string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.cancelOpenOrder(tx, "id = ?", orderCode, actor)
	})
}

func (s *orderService) CancelByInvoice(invoiceNo int, actor string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.cancelOpenOrder(tx, "invoice_no = ?", invoiceNo, actor)
	})
}

func (s *orderService) cancelOpenOrder(tx *gorm.DB, cond string, arg interface{}, actor string) error {
	var order models.Order
	err := tx.Preload("Lines").Where(cond, arg).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order (%v)", ErrNotFound, arg)
	}
	if err != nil {
		return fmt.Errorf("%w: load order: %v", ErrTransaction, err)
	}
	if order.Posted {
		return fmt.Errorf("%w: order %d", ErrAlreadyPosted, order.ID)
	}

	for _, line := range order.Lines {
		remarks := fmt.Sprintf("cancel invoice #%d", order.InvoiceNo)
		if _, err := s.stock.Append(tx, line.ProductCode, models.TxnCancelSales, line.Quantity, actor, remarks); err != nil {
			return err
		}
	}

	if err := tx.Where("order_code = ?", order.ID).Delete(&models.KitchenTicket{}).Error; err != nil {
		return fmt.Errorf("%w: drop kitchen tickets: %v", ErrTransaction, err)
	}
	if err := tx.Where("order_code = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
		return fmt.Errorf("%w: drop order lines: %v", ErrTransaction, err)
	}
	if err := tx.Delete(&models.Order{}, order.ID).Error; err != nil {
		return fmt.Errorf("%w: drop order header: %v", ErrTransaction, err)
	}

	description := fmt.Sprintf("Order #%d cancelled by %s", order.InvoiceNo, actor)
	return utils.CreateOrderAuditLog(tx, "cancel", order.ID, &order, nil, nil, description)
}

// RemoveLine reverses a single line with the same compensating semantics as
// Cancel. Removing the last line removes the whole order.
func (s *orderService) RemoveLine(orderCode uint, productCode uint, actor string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Preload("Lines").First(&order, orderCode).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, orderCode)
		}
		if err != nil {
			return fmt.Errorf("%w: load order: %v", ErrTransaction, err)
		}
		if order.Posted {
			return fmt.Errorf("%w: order %d", ErrAlreadyPosted, order.ID)
		}

		var target *models.OrderLine
		for i := range order.Lines {
			if order.Lines[i].ProductCode == productCode {
				target = &order.Lines[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("%w: product %d on order %d", ErrNotFound, productCode, orderCode)
		}

		if len(order.Lines) == 1 {
			return s.cancelOpenOrder(tx, "id = ?", orderCode, actor)
		}

		remarks := fmt.Sprintf("remove line invoice #%d", order.InvoiceNo)
		if _, err := s.stock.Append(tx, productCode, models.TxnCancelPending, target.Quantity, actor, remarks); err != nil {
			return err
		}

		if err := tx.Where("order_code = ? AND product_code = ?", order.ID, productCode).
			Delete(&models.KitchenTicket{}).Error; err != nil {
			return fmt.Errorf("%w: drop kitchen tickets: %v", ErrTransaction, err)
		}
		if err := tx.Delete(&models.OrderLine{}, target.ID).Error; err != nil {
			return fmt.Errorf("%w: drop order line: %v", ErrTransaction, err)
		}

		return s.refreshTotal(tx, &order)
	})
}

func (s *orderService) List(posted *bool, page, pageSize int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.Model(&models.Order{})
	if posted != nil {
		query = query.Where("posted = ?", *posted)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: count orders: %v", ErrTransaction, err)
	}

	var orders []models.Order
	if err := query.Preload("Lines.Product").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: list orders: %v", ErrTransaction, err)
	}
	return orders, total, nil
}
