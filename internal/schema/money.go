package schema

import (
	"fmt"
	"strings"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"github.com/shopspring/decimal"
)

const DateFormat = time.DateOnly

// Money is marshalled as a plain JSON number with two decimals.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

// Ratio is marshalled as a plain JSON number.
type Ratio struct {
	decimal.Decimal
}

func NewRatio(d decimal.Decimal) Ratio {
	return Ratio{Decimal: d}
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	return r.Decimal.UnmarshalJSON(b)
}

// Date is a calendar day, "2006-01-02" on the wire.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("%q: %w", value, errors.ErrorInvalidDateFormat)
	}

	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}
