package schema

import (
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/party"
	"github.com/shopspring/decimal"
)

// Provider side data, already decoded from the provider wire format.

type ProviderPayment struct {
	DueDate time.Time
	Amount  decimal.Decimal
}

type ProviderRate struct {
	RateID             string
	BoardCode          int
	NetPrice           decimal.Decimal
	RetailPrice        *decimal.Decimal
	RetailDiscount     decimal.Decimal
	ExistingMargin     *decimal.Decimal
	Remaining          int
	CancellationExpiry *time.Time
	PaymentSchedule    []ProviderPayment
}

type ProviderRoom struct {
	Code  string
	Name  string
	Rates []ProviderRate
}

type ProviderAvailability struct {
	HotelID  string
	Name     string
	Currency string
	Rooms    []ProviderRoom
}

type CalendarStatus string

const (
	CalendarAvailable   CalendarStatus = "available"
	CalendarMinStayOnly CalendarStatus = "min_stay_only"
	CalendarClosed      CalendarStatus = "closed"
)

type CalendarDay struct {
	Date     time.Time
	Status   CalendarStatus
	Price    decimal.Decimal
	NetPrice decimal.Decimal
	MinStay  int
}

type ProviderCalendar struct {
	Days []CalendarDay
}

type AvailabilityQuery struct {
	HotelID  string
	CheckIn  Date
	CheckOut Date
	Party    party.Group
}

type CalendarQuery struct {
	HotelID string
	From    Date
	To      Date
	Party   party.Group
}
