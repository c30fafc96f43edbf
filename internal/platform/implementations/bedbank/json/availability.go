package json

import "github.com/shopspring/decimal"

type AvailabilityRQ struct {
	CheckIn  string `url:"checkIn"`
	CheckOut string `url:"checkOut"`
	Party    string `url:"party"`
}

type AvailabilityRS struct {
	HotelID  string   `json:"hotelId"`
	Name     string   `json:"name"`
	Currency string   `json:"currency"`
	Rooms    []RoomRS `json:"rooms"`
}

type RoomRS struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	Rates []RateRS `json:"rates"`
}

type RateRS struct {
	RateID               string           `json:"rateId"`
	BoardCode            int              `json:"boardCode"`
	Net                  decimal.Decimal  `json:"net"`
	Retail               *decimal.Decimal `json:"retail,omitempty"`
	RetailDiscount       decimal.Decimal  `json:"retailDiscount"`
	Margin               *decimal.Decimal `json:"margin,omitempty"`
	Allotment            int              `json:"allotment"`
	CancellationDeadline string           `json:"cancellationDeadline,omitempty"`
	Payments             []PaymentRS      `json:"payments"`
}

type PaymentRS struct {
	// empty when the amount is due at booking
	DueDate string          `json:"dueDate,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
}
