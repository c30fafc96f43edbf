package errors

import "errors"

var (
	ErrorNotImplemented       = errors.New("not implemented")
	ErrorUnknownPlatform      = errors.New("unknown platform")
	ErrorInvalidRateReference = errors.New("invalid rate reference")

	// validation
	ErrorInvalidPartyFormat   = errors.New("invalid party format")
	ErrorInvalidDateFormat    = errors.New("invalid date format")
	ErrorInvalidHotelIdFormat = errors.New("invalid hotel id format")

	// conflicts, the caller has to re-quote
	ErrorRateNoLongerAvailable = errors.New("rate no longer available")
	ErrorPriceChanged          = errors.New("price changed")

	ErrorInvalidCancellationPolicy = errors.New("invalid cancellation policy")
	ErrorProviderUnavailable       = errors.New("provider unavailable")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrorInvalidPartyFormat) ||
		errors.Is(err, ErrorInvalidDateFormat) ||
		errors.Is(err, ErrorInvalidHotelIdFormat) ||
		errors.Is(err, ErrorInvalidRateReference)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrorRateNoLongerAvailable) || errors.Is(err, ErrorPriceChanged)
}

func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrorProviderUnavailable)
}

func IsUnknownPlatform(err error) bool {
	return errors.Is(err, ErrorUnknownPlatform)
}
