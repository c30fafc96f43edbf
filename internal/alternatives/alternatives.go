package alternatives

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/party"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/slowlog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const DefaultPaddingDays = 14

type provider interface {
	QueryCalendar(context.Context, schema.CalendarQuery, *zerolog.Logger) (schema.ProviderCalendar, error)
}

type Finder struct {
	provider    provider
	paddingDays int
	now         func() time.Time
}

func NewFinder(provider provider, paddingDays int) *Finder {
	if paddingDays <= 0 {
		paddingDays = DefaultPaddingDays
	}

	return &Finder{
		provider:    provider,
		paddingDays: paddingDays,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to find "tomorrow".
func (f *Finder) WithClock(now func() time.Time) *Finder {
	clone := *f
	clone.now = now
	return &clone
}

type stay struct {
	checkIn  time.Time
	checkOut time.Time
}

type window struct {
	stay
	nights   int
	price    decimal.Decimal
	netPrice decimal.Decimal
}

// FindAlternatives returns the stays around the requested dates that every party group can book.
// It never fails, a calendar that can not be fetched means there are no alternatives.
func (f *Finder) FindAlternatives(
	ctx context.Context,
	hotelID string,
	groups []party.Group,
	checkIn, checkOut schema.Date,
	logger *zerolog.Logger,
) []schema.AlternativeWindow {
	alternatives := []schema.AlternativeWindow{}

	nights := int(checkOut.Sub(checkIn.Time).Hours() / 24)
	if len(groups) == 0 || nights < 1 {
		return alternatives
	}

	from := checkIn.AddDate(0, 0, -f.paddingDays)
	to := checkOut.AddDate(0, 0, f.paddingDays)

	tomorrow := schema.NewDate(f.now().UTC().AddDate(0, 0, 1))
	if from.Before(tomorrow.Time) {
		from = tomorrow.Time
	}

	if !to.After(from) {
		return alternatives
	}

	slowLogger := slowlog.CreateLogger(logger)
	slowLogger.Start("alternatives:calendars")

	calendars, err := f.calendars(ctx, hotelID, groups, schema.NewDate(from), schema.NewDate(to), logger)

	slowLogger.Stop("alternatives:calendars")

	if err != nil {
		logger.Warn().
			Err(err).
			Str("hotelId", hotelID).
			Msg("Alternative dates are not available")

		return alternatives
	}

	perGroup := make([]map[stay]window, len(groups))
	for i, group := range groups {
		perGroup[i] = map[stay]window{}

		for _, w := range walk(calendars[i].Days, nights) {
			perGroup[i][w.stay] = w.times(group.RoomCount)
		}
	}

	requested := stay{checkIn: schema.NewDate(checkIn.Time).Time, checkOut: schema.NewDate(checkOut.Time).Time}

	for candidate, first := range perGroup[0] {
		if candidate == requested {
			continue
		}

		merged := first

		for _, other := range perGroup[1:] {
			match, found := other[candidate]
			if !found {
				merged.nights = 0
				break
			}

			merged.price = merged.price.Add(match.price)
			merged.netPrice = merged.netPrice.Add(match.netPrice)
		}

		if merged.nights == 0 {
			continue
		}

		alternatives = append(alternatives, schema.AlternativeWindow{
			CheckIn:  schema.NewDate(merged.checkIn),
			CheckOut: schema.NewDate(merged.checkOut),
			Nights:   merged.nights,
			MinPrice: schema.NewMoney(merged.price),
			NetPrice: schema.NewMoney(merged.netPrice),
		})
	}

	sort.Slice(alternatives, func(i, j int) bool {
		if alternatives[i].CheckIn.Equal(alternatives[j].CheckIn.Time) {
			return alternatives[i].CheckOut.Before(alternatives[j].CheckOut.Time)
		}

		return alternatives[i].CheckIn.Before(alternatives[j].CheckIn.Time)
	})

	return alternatives
}

func (f *Finder) calendars(
	ctx context.Context,
	hotelID string,
	groups []party.Group,
	from, to schema.Date,
	logger *zerolog.Logger,
) ([]schema.ProviderCalendar, error) {
	calendars := make([]schema.ProviderCalendar, len(groups))

	g, groupCtx := errgroup.WithContext(ctx)

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			calendar, err := f.provider.QueryCalendar(groupCtx, schema.CalendarQuery{
				HotelID: hotelID,
				From:    from,
				To:      to,
				Party:   group,
			}, logger)

			if err != nil {
				return fmt.Errorf("calendar of hotel %s for %s..%s, party %s: %w", hotelID, from, to, group.Key, err)
			}

			calendars[i] = calendar
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return calendars, nil
}

func (w window) times(roomCount int) window {
	count := decimal.NewFromInt(int64(roomCount))
	w.price = w.price.Mul(count)
	w.netPrice = w.netPrice.Mul(count)

	return w
}

// walk builds every feasible stay of at least the requested nights from one calendar.
func walk(days []schema.CalendarDay, requestedNights int) []window {
	byDate := make(map[time.Time]schema.CalendarDay, len(days))
	for _, day := range days {
		byDate[schema.NewDate(day.Date).Time] = day
	}

	windows := []window{}

	for _, start := range days {
		if start.Status != schema.CalendarAvailable {
			continue
		}

		checkIn := schema.NewDate(start.Date).Time
		nights := max(requestedNights, start.MinStay)

		w, feasible := build(byDate, checkIn, nights)
		if feasible {
			windows = append(windows, w)
		}
	}

	return windows
}

func build(byDate map[time.Time]schema.CalendarDay, checkIn time.Time, nights int) (window, bool) {
	w := window{
		stay:     stay{checkIn: checkIn, checkOut: checkIn.AddDate(0, 0, nights)},
		nights:   nights,
		price:    decimal.Zero,
		netPrice: decimal.Zero,
	}

	for night := 0; night < nights; night++ {
		day, known := byDate[checkIn.AddDate(0, 0, night)]
		if !known || day.Status == schema.CalendarClosed || day.MinStay > nights {
			return window{}, false
		}

		w.price = w.price.Add(day.Price)
		w.netPrice = w.netPrice.Add(day.NetPrice)
	}

	return w, true
}
