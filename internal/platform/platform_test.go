package platform_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/platform"
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	platformMiddleware "bitbucket.org/crgw/hotel-hub/internal/platform/middleware"
	"bitbucket.org/crgw/hotel-hub/internal/pricing"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

type hotelStub struct {
	remaining   int
	err         error
	calendar    []schema.CalendarDay
	calendarErr error
}

func (h *hotelStub) QueryAvailability(
	ctx context.Context,
	query schema.AvailabilityQuery,
	log *zerolog.Logger,
) (schema.ProviderAvailability, error) {
	if h.err != nil {
		return schema.ProviderAvailability{}, h.err
	}

	return schema.ProviderAvailability{
		HotelID:  query.HotelID,
		Name:     "Hotel Mar",
		Currency: "EUR",
		Rooms: []schema.ProviderRoom{{
			Code: "DBL",
			Name: "Double",
			Rates: []schema.ProviderRate{{
				RateID:    "R1",
				BoardCode: 2,
				NetPrice:  decimal.NewFromInt(100),
				Remaining: h.remaining,
				PaymentSchedule: []schema.ProviderPayment{{
					DueDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
					Amount:  decimal.NewFromInt(100),
				}},
			}},
		}},
	}, nil
}

func (h *hotelStub) QueryCalendar(
	ctx context.Context,
	query schema.CalendarQuery,
	log *zerolog.Logger,
) (schema.ProviderCalendar, error) {
	return schema.ProviderCalendar{Days: h.calendar}, h.calendarErr
}

type factoryStub struct {
	hotel *hotelStub
}

func (f *factoryStub) GetPlatform(name string) (any, error) {
	if name != "bedbank" {
		return nil, fmt.Errorf("platform %s: %w", name, errors.ErrorUnknownPlatform)
	}

	return f.hotel, nil
}

func newRouter(hotel *hotelStub) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := zerolog.New(&bytes.Buffer{})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(platformMiddleware.LoggerKey, &log)
	})

	platform.RegisterRoutes(router, &factoryStub{hotel: hotel}, platform.Dependencies{
		Policy: pricing.DefaultPolicy(),
		Now:    func() time.Time { return now },
	})

	return router
}

func post(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	response := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodPost, path, strings.NewReader(body))
	require.NoError(t, err)

	router.ServeHTTP(response, request)

	return response
}

func calendarDays(from time.Time, count int) []schema.CalendarDay {
	days := []schema.CalendarDay{}
	for i := 0; i < count; i++ {
		days = append(days, schema.CalendarDay{
			Date:     from.AddDate(0, 0, i),
			Status:   schema.CalendarAvailable,
			Price:    decimal.NewFromInt(100),
			NetPrice: decimal.NewFromInt(90),
			MinStay:  1,
		})
	}

	return days
}

const availabilityBody = `{"hotelId":"123","checkIn":"2026-11-10","checkOut":"2026-11-12","adults":2}`

func TestAvailabilityRoute(t *testing.T) {
	t.Run("should return the priced availability", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{remaining: 3}), "/bedbank/availability", availabilityBody)
		require.Equal(t, http.StatusOK, response.Code)

		var hotel schema.HotelAvailability
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &hotel))

		assert.True(t, hotel.Bookable)
		assert.Empty(t, hotel.Alternatives)
		require.Len(t, hotel.Rooms, 1)
		require.Len(t, hotel.Rooms[0].Rates, 1)
		assert.Equal(t, "R1-2", hotel.Rooms[0].Rates[0].Key)
		assert.Equal(t, "104", hotel.Rooms[0].Rates[0].Price.String())
	})

	t.Run("should offer alternatives when the hotel is not bookable", func(t *testing.T) {
		hotel := &hotelStub{
			remaining: 0,
			calendar:  calendarDays(time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), 3),
		}

		response := post(t, newRouter(hotel), "/bedbank/availability", availabilityBody)
		require.Equal(t, http.StatusOK, response.Code)

		var result schema.HotelAvailability
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))

		assert.False(t, result.Bookable)
		require.Len(t, result.Alternatives, 2)
		assert.Equal(t, "2026-11-20", result.Alternatives[0].CheckIn.String())
		assert.Equal(t, "2026-11-22", result.Alternatives[0].CheckOut.String())
		assert.Equal(t, "200", result.Alternatives[0].MinPrice.String())
		assert.Equal(t, "2026-11-21", result.Alternatives[1].CheckIn.String())
	})

	tests := []struct {
		name         string
		path         string
		hotel        *hotelStub
		body         string
		expectedCode int
	}{
		{name: "unknown platform", path: "/other/availability", hotel: &hotelStub{}, body: availabilityBody, expectedCode: http.StatusNotFound},
		{name: "invalid hotel id", path: "/bedbank/availability", hotel: &hotelStub{}, body: `{"hotelId":"abc","checkIn":"2026-11-10","checkOut":"2026-11-12","adults":2}`, expectedCode: http.StatusBadRequest},
		{name: "invalid dates", path: "/bedbank/availability", hotel: &hotelStub{}, body: `{"hotelId":"123","checkIn":"10.11.2026","checkOut":"2026-11-12","adults":2}`, expectedCode: http.StatusBadRequest},
		{name: "check-out before check-in", path: "/bedbank/availability", hotel: &hotelStub{}, body: `{"hotelId":"123","checkIn":"2026-11-12","checkOut":"2026-11-10","adults":2}`, expectedCode: http.StatusBadRequest},
		{name: "invalid party", path: "/bedbank/availability", hotel: &hotelStub{}, body: `{"hotelId":"123","checkIn":"2026-11-10","checkOut":"2026-11-12","rooms":[{"adults":0}]}`, expectedCode: http.StatusBadRequest},
		{name: "provider down", path: "/bedbank/availability", hotel: &hotelStub{err: schema.NewConnectionError("dial tcp")}, body: availabilityBody, expectedCode: http.StatusBadGateway},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response := post(t, newRouter(test.hotel), test.path, test.body)

			assert.Equal(t, test.expectedCode, response.Code)

			var body middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Message)
		})
	}
}

func checkoutBody(quoted string) string {
	return `{"hotelId":"123","checkIn":"2026-11-10","checkOut":"2026-11-12","adults":2,` +
		`"selectedRates":[{"rateId":"R1","count":1,"partyKey":"2"}],"quotedTotal":` + quoted + `}`
}

func TestCheckoutRoute(t *testing.T) {
	t.Run("should return the quote with its payment plan", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{remaining: 1}), "/bedbank/checkout", checkoutBody("104"))
		require.Equal(t, http.StatusOK, response.Code)

		var quote schema.CheckoutQuote
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &quote))

		assert.Equal(t, "104", quote.Total.String())
		assert.Equal(t, "100", quote.NetTotal.String())
		assert.Equal(t, "1.04", quote.ProfitRatio.String())

		require.Len(t, quote.PaymentPlan, 2)
		assert.Equal(t, "deposit", quote.PaymentPlan[0].Role)
		assert.Equal(t, "31", quote.PaymentPlan[0].Amount.String())
		assert.Equal(t, "final", quote.PaymentPlan[1].Role)
		assert.Equal(t, "73", quote.PaymentPlan[1].Amount.String())
		assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), quote.PaymentPlan[1].DueDate.UTC())
	})

	t.Run("should ask for a new quote when the price changed", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{remaining: 1}), "/bedbank/checkout", checkoutBody("99.50"))
		require.Equal(t, http.StatusConflict, response.Code)

		var body schema.CheckoutConflictResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))

		assert.Contains(t, body.Error, "quoted 99.50, current total 104.00")
		require.Len(t, body.Availability.Rooms, 1)
	})

	t.Run("should ask for a new quote when the rate is gone", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{remaining: 0}), "/bedbank/checkout", checkoutBody("104"))

		assert.Equal(t, http.StatusConflict, response.Code)
	})

	t.Run("should refuse an unknown party key", func(t *testing.T) {
		body := `{"hotelId":"123","checkIn":"2026-11-10","checkOut":"2026-11-12","adults":2,` +
			`"selectedRates":[{"rateId":"R1","count":1,"partyKey":"3"}],"quotedTotal":104}`

		response := post(t, newRouter(&hotelStub{remaining: 1}), "/bedbank/checkout", body)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("should report provider failures", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{err: schema.NewTimeoutError("deadline")}), "/bedbank/checkout", checkoutBody("104"))

		assert.Equal(t, http.StatusBadGateway, response.Code)
	})
}

func TestAlternativesRoute(t *testing.T) {
	t.Run("should return the alternative windows", func(t *testing.T) {
		hotel := &hotelStub{calendar: calendarDays(time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC), 2)}

		response := post(t, newRouter(hotel), "/bedbank/alternatives", availabilityBody)
		require.Equal(t, http.StatusOK, response.Code)

		var result schema.AlternativesResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &result))

		require.Len(t, result.Alternatives, 1)
		assert.Equal(t, 2, result.Alternatives[0].Nights)
		assert.Equal(t, "180", result.Alternatives[0].NetPrice.String())
	})

	t.Run("should return an empty list when the calendar fails", func(t *testing.T) {
		hotel := &hotelStub{calendarErr: schema.NewProviderError("calendar down")}

		response := post(t, newRouter(hotel), "/bedbank/alternatives", availabilityBody)
		require.Equal(t, http.StatusOK, response.Code)

		assert.JSONEq(t, `{"alternatives":[]}`, response.Body.String())
	})

	t.Run("should validate the stay", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{}), "/bedbank/alternatives",
			`{"hotelId":"123","checkIn":"2026-11-12","checkOut":"2026-11-12","adults":2}`)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}

func TestPaymentPlanRoute(t *testing.T) {
	t.Run("should plan a deposit and scaled installments", func(t *testing.T) {
		body := `{"total":1000,"profitRatio":1.25,"checkIn":"2026-12-20","schedule":[` +
			`{"dueDate":"2026-10-10T00:00:00Z","amount":200},` +
			`{"dueDate":"2026-11-15T00:00:00Z","amount":300},` +
			`{"dueDate":"2026-12-01T00:00:00Z","amount":300}]}`

		response := post(t, newRouter(&hotelStub{}), "/payment-plan", body)
		require.Equal(t, http.StatusOK, response.Code)

		var plan schema.PaymentPlanResponse
		require.NoError(t, json.Unmarshal(response.Body.Bytes(), &plan))

		require.Len(t, plan.Installments, 3)
		assert.Equal(t, "250", plan.Installments[0].Amount.String())
		assert.Equal(t, "deposit", plan.Installments[0].Role)
		assert.Equal(t, "375", plan.Installments[1].Amount.String())
		assert.Equal(t, "375", plan.Installments[2].Amount.String())
		assert.Equal(t, "final", plan.Installments[2].Role)
	})

	t.Run("should refuse an empty schedule", func(t *testing.T) {
		response := post(t, newRouter(&hotelStub{}), "/payment-plan", `{"total":1000,"profitRatio":1.25,"checkIn":"2026-12-20","schedule":[]}`)

		assert.Equal(t, http.StatusInternalServerError, response.Code)
	})
}
