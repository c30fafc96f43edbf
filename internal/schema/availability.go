package schema

import (
	"encoding/json"
	"time"
)

type AvailabilityRequestParams struct {
	HotelID  string `json:"hotelId" binding:"required"`
	CheckIn  Date   `json:"checkIn"`
	CheckOut Date   `json:"checkOut"`

	// one room
	Adults   int    `json:"adults,omitempty"`
	Children string `json:"children,omitempty"`

	// several rooms, [{"adults":2,"children":[4]}], wins over Adults/Children
	Rooms json.RawMessage `json:"rooms,omitempty"`

	CouponCode string `json:"couponCode,omitempty"`
}

type SelectedRate struct {
	RateID   string `json:"rateId,omitempty"`
	RoomID   string `json:"roomId,omitempty"`
	Count    int    `json:"count"`
	PartyKey string `json:"partyKey"`
}

type CheckoutRequestParams struct {
	AvailabilityRequestParams

	SelectedRates []SelectedRate `json:"selectedRates" binding:"required"`
	QuotedTotal   *Money         `json:"quotedTotal" binding:"required"`
	TZOffsetHours int            `json:"tzOffsetHours"`
}

type PaymentDue struct {
	DueDate *time.Time `json:"dueDate,omitempty"`
	Amount  Money      `json:"amount"`
}

type PaymentInstallment struct {
	DueDate time.Time `json:"dueDate"`
	Amount  Money     `json:"amount"`
	Role    string    `json:"role"`
}

type PaymentPlanRequestParams struct {
	Total         Money        `json:"total"`
	ProfitRatio   Ratio        `json:"profitRatio"`
	Schedule      []PaymentDue `json:"schedule"`
	CheckIn       Date         `json:"checkIn"`
	TZOffsetHours int          `json:"tzOffsetHours"`
}

type PaymentPlanResponse struct {
	Installments []PaymentInstallment `json:"installments"`
}

type Party struct {
	Key       string `json:"key"`
	Adults    int    `json:"adults"`
	Children  []int  `json:"children"`
	RoomCount int    `json:"roomCount"`
}

type Rate struct {
	Key                string       `json:"key"`
	RateID             string       `json:"rateId"`
	BoardCode          int          `json:"boardCode"`
	Party              Party        `json:"party"`
	NetPrice           Money        `json:"netPrice"`
	RetailPrice        *Money       `json:"retailPrice,omitempty"`
	Price              Money        `json:"price"`
	SalePrice          Money        `json:"salePrice"`
	ProfitRatio        Ratio        `json:"profitRatio"`
	Remaining          int          `json:"remaining"`
	CancellationExpiry *time.Time   `json:"cancellationExpiry,omitempty"`
	PaymentSchedule    []PaymentDue `json:"paymentSchedule"`
}

type Room struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Rates []Rate `json:"rates"`
}

type AlternativeWindow struct {
	CheckIn  Date  `json:"checkIn"`
	CheckOut Date  `json:"checkOut"`
	Nights   int   `json:"nights"`
	MinPrice Money `json:"minPrice"`
	NetPrice Money `json:"netPrice"`
}

type HotelAvailability struct {
	HotelID       string              `json:"hotelId"`
	Name          string              `json:"name"`
	Currency      string              `json:"currency"`
	CheckIn       Date                `json:"checkIn"`
	CheckOut      Date                `json:"checkOut"`
	Bookable      bool                `json:"bookable"`
	CouponCode    string              `json:"couponCode,omitempty"`
	CouponValid   bool                `json:"couponValid"`
	DiscountLabel string              `json:"discountLabel,omitempty"`
	Rooms         []Room              `json:"rooms"`
	Alternatives  []AlternativeWindow `json:"alternatives,omitempty"`
}

type QuoteLine struct {
	Key                string       `json:"key"`
	RoomCode           string       `json:"roomCode"`
	RoomName           string       `json:"roomName"`
	BoardCode          int          `json:"boardCode"`
	PartyKey           string       `json:"partyKey"`
	Count              int          `json:"count"`
	UnitPrice          Money        `json:"unitPrice"`
	LineTotal          Money        `json:"lineTotal"`
	NetTotal           Money        `json:"netTotal"`
	CancellationExpiry *time.Time   `json:"cancellationExpiry,omitempty"`
	PaymentSchedule    []PaymentDue `json:"paymentSchedule"`
}

type CheckoutQuote struct {
	HotelID       string               `json:"hotelId"`
	Currency      string               `json:"currency"`
	Total         Money                `json:"total"`
	NetTotal      Money                `json:"netTotal"`
	ProfitRatio   Ratio                `json:"profitRatio"`
	Lines         []QuoteLine          `json:"lines"`
	CouponCode    string               `json:"couponCode,omitempty"`
	CouponValid   bool                 `json:"couponValid"`
	DiscountLabel string               `json:"discountLabel,omitempty"`
	PaymentPlan   []PaymentInstallment `json:"paymentPlan,omitempty"`
}

type AlternativesResponse struct {
	Alternatives []AlternativeWindow `json:"alternatives"`
}

// CheckoutConflictResponse carries the current availability so the guest can re-quote.
type CheckoutConflictResponse struct {
	Message      string            `json:"message"`
	Error        string            `json:"error"`
	Availability HotelAvailability `json:"availability"`
}
