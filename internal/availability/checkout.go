package availability

import (
	"fmt"

	"bitbucket.org/crgw/hotel-hub/internal/installments"
	"bitbucket.org/crgw/hotel-hub/internal/party"
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"github.com/shopspring/decimal"
)

func describe(selected schema.SelectedRate) string {
	if selected.RateID != "" {
		return party.RateKey{RateID: selected.RateID, PartyKey: selected.PartyKey}.String()
	}

	return fmt.Sprintf("room %s-%s", selected.RoomID, selected.PartyKey)
}

// checkSelection validates the selection against the request alone, before looking at availability.
func checkSelection(req Request) error {
	if req.QuotedTotal == nil {
		return fmt.Errorf("quoted total is missing: %w", errors.ErrorInvalidRateReference)
	}

	if len(req.Selected) == 0 {
		return fmt.Errorf("no rates selected: %w", errors.ErrorInvalidRateReference)
	}

	covered := map[string]int{}

	for _, selected := range req.Selected {
		if selected.RateID == "" && selected.RoomID == "" {
			return fmt.Errorf("selection without rate or room id: %w", errors.ErrorInvalidRateReference)
		}

		if selected.Count < 1 {
			return fmt.Errorf("%s count %d: %w", describe(selected), selected.Count, errors.ErrorInvalidRateReference)
		}

		if _, found := party.Find(req.Groups, selected.PartyKey); !found {
			return fmt.Errorf("%s party %q is not searched: %w", describe(selected), selected.PartyKey, errors.ErrorInvalidRateReference)
		}

		covered[selected.PartyKey] += selected.Count
	}

	for _, group := range req.Groups {
		if covered[group.Key] != group.RoomCount {
			return fmt.Errorf(
				"party %s needs %d rooms, %d selected: %w",
				group.Key, group.RoomCount, covered[group.Key], errors.ErrorInvalidRateReference,
			)
		}
	}

	return nil
}

// candidates returns the rates a selection can refer to that still have enough rooms left.
func candidates(quotes []rateQuote, selected schema.SelectedRate, alreadyTaken map[party.RateKey]int) []rateQuote {
	matches := []rateQuote{}

	for _, quote := range quotes {
		if quote.group.Key != selected.PartyKey {
			continue
		}

		if selected.RateID != "" && quote.rate.RateID != selected.RateID {
			continue
		}

		if selected.RateID == "" && quote.roomCode != selected.RoomID {
			continue
		}

		if quote.rate.Remaining < alreadyTaken[quote.key]+selected.Count {
			continue
		}

		matches = append(matches, quote)
	}

	return matches
}

func (m *Merger) checkout(req Request, hotel schema.HotelAvailability, quotes []rateQuote) Outcome {
	if err := checkSelection(req); err != nil {
		return invalid(err)
	}

	taken := map[party.RateKey]int{}
	lines := make([]schema.QuoteLine, 0, len(req.Selected))
	schedules := make([][]installments.ProviderPayment, 0, len(req.Selected))
	counts := make([]int, 0, len(req.Selected))

	total := decimal.Zero
	netTotal := decimal.Zero

	for _, selected := range req.Selected {
		matches := candidates(quotes, selected, taken)

		if len(matches) == 0 {
			return conflict(hotel, fmt.Errorf("%s: %w", describe(selected), errors.ErrorRateNoLongerAvailable))
		}

		if len(matches) > 1 {
			return invalid(fmt.Errorf(
				"%s matches %d rates: %w",
				describe(selected), len(matches), errors.ErrorInvalidRateReference,
			))
		}

		quote := matches[0]
		taken[quote.key] += selected.Count

		count := decimal.NewFromInt(int64(selected.Count))
		lineTotal := quote.price.Price.Mul(count)
		lineNet := quote.rate.NetPrice.Mul(count)

		total = total.Add(lineTotal)
		netTotal = netTotal.Add(lineNet)

		lines = append(lines, schema.QuoteLine{
			Key:                quote.key.String(),
			RoomCode:           quote.roomCode,
			RoomName:           quote.roomName,
			BoardCode:          quote.rate.BoardCode,
			PartyKey:           quote.group.Key,
			Count:              selected.Count,
			UnitPrice:          schema.NewMoney(quote.price.Price),
			LineTotal:          schema.NewMoney(lineTotal),
			NetTotal:           schema.NewMoney(lineNet),
			CancellationExpiry: quote.rate.CancellationExpiry,
			PaymentSchedule:    paymentDues(quote.rate.PaymentSchedule),
		})

		schedules = append(schedules, providerSchedule(quote.rate.PaymentSchedule))
		counts = append(counts, selected.Count)
	}

	if !total.Equal(*req.QuotedTotal) {
		return conflict(hotel, fmt.Errorf(
			"quoted %s, current total %s: %w",
			req.QuotedTotal.StringFixed(2), total.StringFixed(2), errors.ErrorPriceChanged,
		))
	}

	profitRatio := decimal.Zero
	if netTotal.IsPositive() {
		profitRatio = total.Div(netTotal).Round(6)
	}

	quote := &Quote{
		CheckoutQuote: schema.CheckoutQuote{
			HotelID:       hotel.HotelID,
			Currency:      hotel.Currency,
			Total:         schema.NewMoney(total),
			NetTotal:      schema.NewMoney(netTotal),
			ProfitRatio:   schema.NewRatio(profitRatio),
			Lines:         lines,
			CouponCode:    hotel.CouponCode,
			CouponValid:   hotel.CouponValid,
			DiscountLabel: hotel.DiscountLabel,
		},
		Schedule: installments.MergeSchedules(schedules, counts),
	}

	return ok(hotel, quote)
}

func providerSchedule(payments []schema.ProviderPayment) []installments.ProviderPayment {
	schedule := make([]installments.ProviderPayment, len(payments))
	for i, payment := range payments {
		schedule[i] = installments.ProviderPayment{DueDate: payment.DueDate, Amount: payment.Amount}
	}

	return schedule
}
