package services

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"resto-pos/dtos"
	"resto-pos/models"
)

const vatRate = 1.12

type DiscountService interface {
	Preview(input dtos.DiscountPreviewInput) (*dtos.DiscountBreakdown, error)
}

type discountService struct {
	db *gorm.DB
}

func NewDiscountService(db *gorm.DB) DiscountService {
	return &discountService{db: db}
}

// Preview resolves the discount rule then runs the pure calculator. No
// mutation happens here, identical input always yields identical output.
func (s *discountService) Preview(input dtos.DiscountPreviewInput) (*dtos.DiscountBreakdown, error) {
	var pct float64
	if input.DiscountCode != nil && *input.DiscountCode != "" {
		rule, err := s.lookupRule(*input.DiscountCode)
		if err != nil {
			return nil, err
		}
		pct = rule.Percentage
	}

	lines := make([]CartLine, len(input.Cart))
	for i, item := range input.Cart {
		lines[i] = CartLine{Quantity: item.Quantity, Price: item.Price}
	}

	hasCode := input.DiscountCode != nil && *input.DiscountCode != ""
	return ComputeDiscount(lines, hasCode, pct, input.NumberOfPax, input.NumberOfSeniors)
}

func (s *discountService) lookupRule(code string) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	err := s.db.Where("code = ? AND active = ?", code, true).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: discount code %q", ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lookup discount code: %v", ErrTransaction, err)
	}
	return &rule, nil
}

// CartLine is the calculator's view of one cart row.
type CartLine struct {
	Quantity int
	Price    float64
}

// ComputeDiscount decomposes a cart total into VAT terms and applies the
// senior-citizen / percentage discount rules.
//
// With seniors present the VAT and net-of-VAT shares are apportioned by
// headcount: the senior share of the bill is total/pax*seniors, its VAT part
// is exempted outright and the percentage discount applies to the
// net-of-VAT portion of that share only. Without seniors the percentage
// applies to the whole net-of-VAT amount and no VAT is exempted.
func ComputeDiscount(cart []CartLine, hasCode bool, pct float64, pax, seniors int) (*dtos.DiscountBreakdown, error) {
	if pax <= 0 {
		return nil, fmt.Errorf("%w: number of pax must be positive", ErrValidation)
	}
	if seniors > pax {
		return nil, fmt.Errorf("%w: seniors (%d) exceed pax (%d)", ErrValidation, seniors, pax)
	}
	if seniors < 0 {
		return nil, fmt.Errorf("%w: seniors must not be negative", ErrValidation)
	}

	var total float64
	for _, line := range cart {
		total += float64(line.Quantity) * line.Price
	}

	netOfVat := total / vatRate
	vat := total - netOfVat

	breakdown := &dtos.DiscountBreakdown{
		Total:    Round2(total),
		NetOfVat: Round2(netOfVat),
		Vat:      Round2(vat),
		TotalDue: total,
	}

	if !hasCode {
		breakdown.TotalDueDisplay = Round2(total)
		return breakdown, nil
	}

	var vatDiscount, percentageDiscount float64
	if seniors > 0 {
		seniorShare := total / float64(pax) * float64(seniors)
		vatDiscount = vat / float64(pax) * float64(seniors)
		percentageDiscount = (seniorShare / vatRate) * pct / 100
	} else {
		percentageDiscount = netOfVat * pct / 100
	}

	totalDue := total - (vatDiscount + percentageDiscount)

	breakdown.VatDiscount = Round2(vatDiscount)
	breakdown.PercentageDiscount = Round2(percentageDiscount)
	breakdown.Discount = Round2(vatDiscount + percentageDiscount)
	breakdown.TotalDue = totalDue
	breakdown.TotalDueDisplay = Round2(totalDue)
	return breakdown, nil
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
