package domain

import (
	"github.com/shopspring/decimal"
)

// DiscountType 优惠类型
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// AmountScale 是金额和比例保留的小数位数，与存储列 decimal(10,2) 一致
const AmountScale = 2

// Discount 是优惠规则的封闭集合，只有 PercentageDiscount 和 FixedDiscount 两种实现
type Discount interface {
	Type() DiscountType
	Amount() decimal.Decimal
	// Validate 检查该类型自己的取值范围
	Validate() error
	// Apply 返回对 subtotal 的减免金额，不会超过 subtotal
	Apply(subtotal decimal.Decimal) decimal.Decimal

	sealed()
}

// PercentageDiscount 按百分比减免，Rate 取值 [0, 100]
type PercentageDiscount struct {
	Rate decimal.Decimal
}

func (d PercentageDiscount) Type() DiscountType      { return DiscountTypePercentage }
func (d PercentageDiscount) Amount() decimal.Decimal { return d.Rate }
func (PercentageDiscount) sealed()                   {}

func (d PercentageDiscount) Validate() error {
	if d.Rate.IsNegative() || d.Rate.GreaterThan(hundred) {
		return ErrDiscountOutOfRange
	}
	return nil
}

func (d PercentageDiscount) Apply(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(subtotal.Mul(d.Rate).Div(hundred).Round(2), subtotal)
}

// FixedDiscount 减免固定金额，Value >= 0
type FixedDiscount struct {
	Value decimal.Decimal
}

func (d FixedDiscount) Type() DiscountType      { return DiscountTypeFixed }
func (d FixedDiscount) Amount() decimal.Decimal { return d.Value }
func (FixedDiscount) sealed()                   {}

func (d FixedDiscount) Validate() error {
	if d.Value.IsNegative() {
		return ErrDiscountOutOfRange
	}
	return nil
}

func (d FixedDiscount) Apply(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(d.Value, subtotal)
}

// NewDiscount 根据类型构造并校验优惠规则
func NewDiscount(t DiscountType, amount decimal.Decimal) (Discount, error) {
	var d Discount
	switch t {
	case DiscountTypePercentage:
		d = PercentageDiscount{Rate: amount}
	case DiscountTypeFixed:
		d = FixedDiscount{Value: amount}
	default:
		return nil, ErrInvalidDiscountType
	}
	if !amount.Equal(amount.Round(AmountScale)) {
		return nil, ErrDiscountPrecision
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
