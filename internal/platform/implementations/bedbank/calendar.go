package bedbank

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform/implementations/bedbank/json"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

type calendarRequest struct {
	query   schema.CalendarQuery
	logger  *zerolog.Logger
	client  *http.Client
	auth    *authRequest
	baseURL string
	cache   *caching.Cacher
	ttl     time.Duration
}

func (r *calendarRequest) Execute(ctx context.Context) (schema.ProviderCalendar, error) {
	var calendar schema.ProviderCalendar
	if r.ttl > 0 && r.cache.Fetch(ctx, r.getCacheKey(), &calendar) {
		r.logger.Debug().
			Str("label", "cache").
			Bool("hit", true).
			Str("key", r.getCacheKey()).
			Msg("Used cached calendar")

		return calendar, nil
	}

	token, err := r.auth.Token(ctx)
	if err != nil {
		return schema.ProviderCalendar{}, err
	}

	opt := json.CalendarRQ{
		From:  r.query.From.String(),
		To:    r.query.To.String(),
		Party: r.query.Party.Descriptor(),
	}
	v, _ := query.Values(opt)

	calendarURL := fmt.Sprintf("%s/v1/hotels/%s/calendar?%s", r.baseURL, url.PathEscape(r.query.HotelID), v.Encode())

	var response json.CalendarRS
	if err := getJSON(ctx, r.client, calendarURL, token, &response); err != nil {
		return schema.ProviderCalendar{}, err
	}

	calendar, err = parseCalendar(response)
	if err != nil {
		return schema.ProviderCalendar{}, err
	}

	if r.ttl > 0 {
		if err := r.cache.Store(ctx, r.getCacheKey(), calendar, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", r.getCacheKey()).Msg("Unable to cache the calendar")
		}
	}

	return calendar, nil
}

func parseCalendar(response json.CalendarRS) (schema.ProviderCalendar, error) {
	calendar := schema.ProviderCalendar{
		Days: make([]schema.CalendarDay, 0, len(response.Days)),
	}

	for _, day := range response.Days {
		date, err := time.Parse(time.DateOnly, day.Date)
		if err != nil {
			return schema.ProviderCalendar{}, schema.NewProviderError(fmt.Sprintf("invalid calendar date %q", day.Date))
		}

		calendar.Days = append(calendar.Days, schema.CalendarDay{
			Date:     date,
			Status:   parseStatus(day.Status),
			Price:    day.Price,
			NetPrice: day.Net,
			MinStay:  day.MinStay,
		})
	}

	return calendar, nil
}

// parseStatus treats anything unknown as closed.
func parseStatus(status string) schema.CalendarStatus {
	switch schema.CalendarStatus(status) {
	case schema.CalendarAvailable:
		return schema.CalendarAvailable
	case schema.CalendarMinStayOnly:
		return schema.CalendarMinStayOnly
	default:
		return schema.CalendarClosed
	}
}

func (r *calendarRequest) getCacheKey() string {
	return fmt.Sprintf(
		"bedbank-calendar:%s:%s:%s:%s:%s",
		r.baseURL, r.query.HotelID, r.query.From, r.query.To, r.query.Party.Key,
	)
}
