package bedbank

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/implementations/bedbank/json"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

type availabilityRequest struct {
	query   schema.AvailabilityQuery
	logger  *zerolog.Logger
	client  *http.Client
	auth    *authRequest
	baseURL string
}

func (r *availabilityRequest) Execute(ctx context.Context) (schema.ProviderAvailability, error) {
	token, err := r.auth.Token(ctx)
	if err != nil {
		return schema.ProviderAvailability{}, err
	}

	opt := json.AvailabilityRQ{
		CheckIn:  r.query.CheckIn.String(),
		CheckOut: r.query.CheckOut.String(),
		Party:    r.query.Party.Descriptor(),
	}
	v, _ := query.Values(opt)

	availabilityURL := fmt.Sprintf("%s/v1/hotels/%s/availability?%s", r.baseURL, url.PathEscape(r.query.HotelID), v.Encode())

	var response json.AvailabilityRS
	if err := getJSON(ctx, r.client, availabilityURL, token, &response); err != nil {
		return schema.ProviderAvailability{}, err
	}

	return r.parseAvailability(response)
}

func (r *availabilityRequest) parseAvailability(response json.AvailabilityRS) (schema.ProviderAvailability, error) {
	availability := schema.ProviderAvailability{
		HotelID:  response.HotelID,
		Name:     response.Name,
		Currency: response.Currency,
		Rooms:    make([]schema.ProviderRoom, 0, len(response.Rooms)),
	}

	if availability.HotelID == "" {
		availability.HotelID = r.query.HotelID
	}

	for _, room := range response.Rooms {
		providerRoom := schema.ProviderRoom{
			Code:  room.Code,
			Name:  room.Name,
			Rates: make([]schema.ProviderRate, 0, len(room.Rates)),
		}

		for _, rate := range room.Rates {
			providerRate, err := parseRate(rate)
			if err != nil {
				return schema.ProviderAvailability{}, schema.NewProviderError(
					fmt.Sprintf("rate %s of room %s: %s", rate.RateID, room.Code, err.Error()),
				)
			}

			providerRoom.Rates = append(providerRoom.Rates, providerRate)
		}

		availability.Rooms = append(availability.Rooms, providerRoom)
	}

	return availability, nil
}

func parseRate(rate json.RateRS) (schema.ProviderRate, error) {
	providerRate := schema.ProviderRate{
		RateID:          rate.RateID,
		BoardCode:       rate.BoardCode,
		NetPrice:        rate.Net,
		RetailPrice:     rate.Retail,
		RetailDiscount:  rate.RetailDiscount,
		ExistingMargin:  rate.Margin,
		Remaining:       rate.Allotment,
		PaymentSchedule: make([]schema.ProviderPayment, 0, len(rate.Payments)),
	}

	if rate.CancellationDeadline != "" {
		deadline, err := parseTime(rate.CancellationDeadline)
		if err != nil {
			return schema.ProviderRate{}, err
		}

		providerRate.CancellationExpiry = &deadline
	}

	for _, payment := range rate.Payments {
		providerPayment := schema.ProviderPayment{Amount: payment.Amount}

		if payment.DueDate != "" {
			dueDate, err := parseTime(payment.DueDate)
			if err != nil {
				return schema.ProviderRate{}, err
			}

			providerPayment.DueDate = dueDate
		}

		providerRate.PaymentSchedule = append(providerRate.PaymentSchedule, providerPayment)
	}

	return providerRate, nil
}

// parseTime accepts full timestamps and plain dates.
func parseTime(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}

	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}

	return parsed, nil
}
