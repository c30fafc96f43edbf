package availability

import (
	"bitbucket.org/crgw/hotel-hub/internal/installments"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
)

type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	// OutcomeConflict asks the caller to re-quote
	OutcomeConflict
	OutcomeInvalid
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConflict:
		return "conflict"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "ok"
	}
}

type Quote struct {
	schema.CheckoutQuote

	// Schedule is the provider payment timeline of all booked rooms together.
	Schedule []installments.ProviderPayment
}

// Outcome is the result of a merge; Reason is set unless Kind is OutcomeOK.
type Outcome struct {
	Kind         OutcomeKind
	Reason       error
	Availability schema.HotelAvailability
	Quote        *Quote
}

func ok(availability schema.HotelAvailability, quote *Quote) Outcome {
	return Outcome{Kind: OutcomeOK, Availability: availability, Quote: quote}
}

func conflict(availability schema.HotelAvailability, reason error) Outcome {
	return Outcome{Kind: OutcomeConflict, Reason: reason, Availability: availability}
}

func invalid(reason error) Outcome {
	return Outcome{Kind: OutcomeInvalid, Reason: reason}
}
