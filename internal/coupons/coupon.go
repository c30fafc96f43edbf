package coupons

import (
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/pricing"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFlat       Type = "flat"
	TypeNone       Type = "none"
)

var hundred = decimal.NewFromInt(100)

// Coupon is a discount code. Percentage values are in percent points, 10 means 10%.
type Coupon struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"uniqueIndex;size:64" json:"code"`
	Type      Type            `gorm:"size:16" json:"type"`
	Value     decimal.Decimal `gorm:"type:decimal(10,2)" json:"value"`
	UsageLeft int             `json:"usageLeft"`
	ValidFrom *time.Time      `json:"validFrom,omitempty"`
	ValidTo   *time.Time      `json:"validTo,omitempty"`
}

func (c *Coupon) Usable(now time.Time) bool {
	if c == nil || c.UsageLeft <= 0 || !c.Value.IsPositive() {
		return false
	}

	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}

	if c.ValidTo != nil && now.After(*c.ValidTo) {
		return false
	}

	return c.Type == TypePercentage || c.Type == TypeFlat
}

// Discount converts the coupon for the pricing engine, false when the coupon can not be used.
func (c *Coupon) Discount(now time.Time) (pricing.Discount, bool) {
	if !c.Usable(now) {
		return pricing.NoDiscount, false
	}

	if c.Type == TypePercentage {
		return pricing.Discount{Type: pricing.DiscountPercentage, Value: c.Value.Div(hundred)}, true
	}

	return pricing.Discount{Type: pricing.DiscountFlat, Value: c.Value}, true
}

// Label is the discount as shown next to the price.
func Label(discount pricing.Discount) string {
	switch discount.Type {
	case pricing.DiscountPercentage:
		return "-" + discount.Value.Mul(hundred).String() + "%"
	case pricing.DiscountFlat:
		return "-" + discount.Value.StringFixed(2)
	default:
		return ""
	}
}
