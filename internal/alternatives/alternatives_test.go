package alternatives_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/alternatives"
	"bitbucket.org/crgw/hotel-hub/internal/party"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCalendar struct {
	calendars map[string][]schema.CalendarDay
	failures  map[string]error

	mu      sync.Mutex
	queries []schema.CalendarQuery
}

func (s *stubCalendar) QueryCalendar(
	ctx context.Context,
	query schema.CalendarQuery,
	logger *zerolog.Logger,
) (schema.ProviderCalendar, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if err, found := s.failures[query.Party.Key]; found {
		return schema.ProviderCalendar{}, err
	}

	return schema.ProviderCalendar{Days: s.calendars[query.Party.Key]}, nil
}

func day(d int) time.Time {
	return time.Date(2026, 11, d, 0, 0, 0, 0, time.UTC)
}

func available(d int, price int64) schema.CalendarDay {
	return schema.CalendarDay{
		Date:     day(d),
		Status:   schema.CalendarAvailable,
		Price:    decimal.NewFromInt(price),
		NetPrice: decimal.NewFromInt(price - 10),
		MinStay:  1,
	}
}

func closed(d int) schema.CalendarDay {
	return schema.CalendarDay{Date: day(d), Status: schema.CalendarClosed}
}

func groups(t *testing.T, raw string) []party.Group {
	result, err := party.FromJSON(raw)
	require.NoError(t, err)

	return result
}

func newFinder(provider *stubCalendar) *alternatives.Finder {
	return alternatives.NewFinder(provider, 0).WithClock(func() time.Time {
		return time.Date(2026, 11, 1, 15, 30, 0, 0, time.UTC)
	})
}

func TestFindAlternatives(t *testing.T) {
	logger := zerolog.Nop()

	checkIn := schema.NewDate(day(10))
	checkOut := schema.NewDate(day(12))

	t.Run("should keep only the windows common to all party groups", func(t *testing.T) {
		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {available(20, 50), available(21, 50), closed(22)},
			"1": {available(19, 70), available(20, 75), available(21, 75)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2},{"adults":1}]`), checkIn, checkOut, &logger,
		)

		require.Len(t, result, 1)
		assert.Equal(t, "2026-11-20", result[0].CheckIn.String())
		assert.Equal(t, "2026-11-22", result[0].CheckOut.String())
		assert.Equal(t, 2, result[0].Nights)
		assert.True(t, decimal.NewFromInt(250).Equal(result[0].MinPrice.Decimal))
		assert.True(t, decimal.NewFromInt(210).Equal(result[0].NetPrice.Decimal))
	})

	t.Run("should return an empty list without common windows", func(t *testing.T) {
		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {available(20, 50), available(21, 50)},
			"1": {available(24, 70), available(25, 75)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2},{"adults":1}]`), checkIn, checkOut, &logger,
		)

		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("should multiply prices by the room count and sort by check-in", func(t *testing.T) {
		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {available(15, 40), available(16, 40), available(17, 60)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2},{"adults":2}]`), checkIn, checkOut, &logger,
		)

		require.Len(t, result, 2)
		assert.Equal(t, "2026-11-15", result[0].CheckIn.String())
		assert.True(t, decimal.NewFromInt(160).Equal(result[0].MinPrice.Decimal))
		assert.Equal(t, "2026-11-16", result[1].CheckIn.String())
		assert.True(t, decimal.NewFromInt(200).Equal(result[1].MinPrice.Decimal))
	})

	t.Run("should stretch windows to the minimum stay", func(t *testing.T) {
		start := available(15, 40)
		start.MinStay = 3

		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {start, available(16, 40), available(17, 40)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2}]`), checkIn, checkOut, &logger,
		)

		require.Len(t, result, 2)
		assert.Equal(t, 3, result[0].Nights)
		assert.Equal(t, "2026-11-18", result[0].CheckOut.String())
		assert.True(t, decimal.NewFromInt(120).Equal(result[0].MinPrice.Decimal))
		assert.Equal(t, "2026-11-16", result[1].CheckIn.String())
	})

	t.Run("should drop windows crossing a stricter minimum stay", func(t *testing.T) {
		strict := available(16, 40)
		strict.MinStay = 5

		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {available(15, 40), strict, available(17, 40)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2}]`), checkIn, checkOut, &logger,
		)

		assert.Empty(t, result)
	})

	t.Run("should not start on a minimum stay only day", func(t *testing.T) {
		minStayOnly := available(15, 40)
		minStayOnly.Status = schema.CalendarMinStayOnly

		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {minStayOnly, available(16, 40)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2}]`), checkIn, checkOut, &logger,
		)

		assert.Empty(t, result)
	})

	t.Run("should not offer the requested dates back", func(t *testing.T) {
		provider := &stubCalendar{calendars: map[string][]schema.CalendarDay{
			"2": {available(10, 40), available(11, 40), available(12, 40)},
		}}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2}]`), checkIn, checkOut, &logger,
		)

		require.Len(t, result, 1)
		assert.Equal(t, "2026-11-11", result[0].CheckIn.String())
	})

	t.Run("should return an empty list when a calendar fails", func(t *testing.T) {
		provider := &stubCalendar{
			calendars: map[string][]schema.CalendarDay{
				"2": {available(20, 50), available(21, 50)},
			},
			failures: map[string]error{"1": fmt.Errorf("timeout")},
		}

		result := newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2},{"adults":1}]`), checkIn, checkOut, &logger,
		)

		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("should not search before tomorrow", func(t *testing.T) {
		provider := &stubCalendar{}

		newFinder(provider).FindAlternatives(
			context.Background(), "123", groups(t, `[{"adults":2}]`), checkIn, checkOut, &logger,
		)

		require.Len(t, provider.queries, 1)
		assert.Equal(t, "2026-11-02", provider.queries[0].From.String())
		assert.Equal(t, "2026-11-26", provider.queries[0].To.String())
		assert.Equal(t, "123", provider.queries[0].HotelID)
	})
}
