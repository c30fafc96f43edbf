package pricing

import (
	"github.com/shopspring/decimal"
)

type DiscountType int

const (
	DiscountNone DiscountType = iota
	DiscountPercentage
	DiscountFlat
)

func (t DiscountType) String() string {
	switch t {
	case DiscountPercentage:
		return "percentage"
	case DiscountFlat:
		return "flat"
	default:
		return "none"
	}
}

// Discount is a percentage (fraction, 0.10 is 10%) or a flat amount.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

var NoDiscount = Discount{Type: DiscountNone}

// Policy carries every tunable of the guest price calculation.
type Policy struct {
	// MinMarginRatio is the guaranteed markup over the net price.
	MinMarginRatio decimal.Decimal

	// Markdown is applied to every hotel outside SpecialHotels.
	Markdown decimal.Decimal

	SpecialHotels map[string]struct{}

	// SaleBadgeThreshold is how much higher the retail price has to be before it is shown.
	SaleBadgeThreshold decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		MinMarginRatio:     decimal.RequireFromString("0.10"),
		Markdown:           decimal.RequireFromString("0.95"),
		SpecialHotels:      map[string]struct{}{},
		SaleBadgeThreshold: decimal.NewFromInt(5),
	}
}

func (p Policy) WithSpecialHotels(codes ...string) Policy {
	special := make(map[string]struct{}, len(p.SpecialHotels)+len(codes))
	for code := range p.SpecialHotels {
		special[code] = struct{}{}
	}
	for _, code := range codes {
		special[code] = struct{}{}
	}

	p.SpecialHotels = special
	return p
}

func (p Policy) IsSpecial(hotelCode string) bool {
	_, ok := p.SpecialHotels[hotelCode]
	return ok
}

type Input struct {
	NetPrice       decimal.Decimal
	RetailPrice    *decimal.Decimal
	ExistingMargin *decimal.Decimal
	HotelCode      string
	Discount       Discount
}

type Result struct {
	Price       decimal.Decimal
	ProfitRatio decimal.Decimal
}

// GuestPrice turns a provider net price into the price shown to the guest.
// Callers make sure NetPrice is positive.
func (p Policy) GuestPrice(in Input) Result {
	minMargin := in.NetPrice.Mul(p.MinMarginRatio)

	base := in.NetPrice.Add(minMargin)
	if in.RetailPrice != nil &&
		in.RetailPrice.Sub(in.NetPrice).GreaterThanOrEqual(minMargin) &&
		(in.ExistingMargin == nil || in.ExistingMargin.GreaterThanOrEqual(minMargin)) {
		base = *in.RetailPrice
	}

	priceFactor := p.Markdown
	if p.IsSpecial(in.HotelCode) {
		priceFactor = decimal.NewFromInt(1)
	}

	percentFactor := decimal.NewFromInt(1)
	flatAmount := decimal.Zero

	switch in.Discount.Type {
	case DiscountPercentage:
		percentFactor = percentFactor.Sub(in.Discount.Value)
	case DiscountFlat:
		flatAmount = in.Discount.Value
	}

	// truncated, never rounded
	price := base.Mul(priceFactor).Mul(percentFactor).Sub(flatAmount).Truncate(0)
	if in.Discount.Type == DiscountNone && price.LessThan(in.NetPrice) {
		// truncating a fractional net price can cut below cost
		price = in.NetPrice.Ceil()
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	return Result{
		Price:       price,
		ProfitRatio: price.Div(in.NetPrice).Round(6),
	}
}

// SalePrice is the strike-through price next to the guest price, zero when there is none worth showing.
func (p Policy) SalePrice(retailTotal, retailDiscount, computedPrice decimal.Decimal) decimal.Decimal {
	sale := retailTotal.Add(retailDiscount)
	if sale.GreaterThan(computedPrice.Add(p.SaleBadgeThreshold)) {
		return sale
	}

	return decimal.Zero
}
