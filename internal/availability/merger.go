package availability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/coupons"
	"bitbucket.org/crgw/hotel-hub/internal/party"
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/pricing"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/converting"
	"bitbucket.org/crgw/hotel-hub/internal/tools/slowlog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type provider interface {
	QueryAvailability(context.Context, schema.AvailabilityQuery, *zerolog.Logger) (schema.ProviderAvailability, error)
}

type CouponFinder interface {
	FindByCode(ctx context.Context, code string) (*coupons.Coupon, error)
}

type Request struct {
	HotelID  string
	CheckIn  schema.Date
	CheckOut schema.Date
	Groups   []party.Group

	// checkout only
	Selected    []schema.SelectedRate
	QuotedTotal *decimal.Decimal

	CouponCode string
}

func (req Request) IsCheckout() bool {
	return req.Selected != nil
}

type Merger struct {
	provider provider
	coupons  CouponFinder
	policy   pricing.Policy
	now      func() time.Time
}

func NewMerger(provider provider, couponFinder CouponFinder, policy pricing.Policy) *Merger {
	return &Merger{
		provider: provider,
		coupons:  couponFinder,
		policy:   policy,
		now:      time.Now,
	}
}

// rateQuote is one priced provider rate for one party group.
type rateQuote struct {
	key       party.RateKey
	roomCode  string
	roomName  string
	group     party.Group
	rate      schema.ProviderRate
	price     pricing.Result
	salePrice decimal.Decimal
}

// Validate checks the identifiers, the stay and the party of the request.
func (req Request) Validate() error {
	id, err := strconv.ParseUint(req.HotelID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("hotel id %q: %w", req.HotelID, errors.ErrorInvalidHotelIdFormat)
	}

	if req.CheckIn.IsZero() || req.CheckOut.IsZero() {
		return fmt.Errorf("check-in and check-out are required: %w", errors.ErrorInvalidDateFormat)
	}

	if !req.CheckOut.After(req.CheckIn.Time) {
		return fmt.Errorf("check-out %s is not after check-in %s: %w", req.CheckOut, req.CheckIn, errors.ErrorInvalidDateFormat)
	}

	if len(req.Groups) == 0 {
		return fmt.Errorf("no party groups: %w", errors.ErrorInvalidPartyFormat)
	}

	return nil
}

// Merge queries the provider once per party group and merges the answers into one hotel view.
// With selected rates it also validates the checkout against the merged availability.
// Provider failures are returned as errors, every other unhappy path as an Outcome.
func (m *Merger) Merge(ctx context.Context, req Request, logger *zerolog.Logger) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return invalid(err), nil
	}

	slowLogger := slowlog.CreateLogger(logger)

	discount, couponValid := m.resolveCoupon(ctx, req.CouponCode, logger)

	slowLogger.Start("availability:merge:fanout")
	responses, err := m.fanOut(ctx, req, logger)
	slowLogger.Stop("availability:merge:fanout")

	if err != nil {
		return Outcome{}, err
	}

	quotes := m.priceRates(req, responses, discount, logger)

	hotel := assemble(req, responses, quotes)
	hotel.CouponCode = req.CouponCode
	hotel.CouponValid = couponValid
	if couponValid {
		hotel.DiscountLabel = coupons.Label(discount)
	}

	if !req.IsCheckout() {
		return ok(hotel, nil), nil
	}

	return m.checkout(req, hotel, quotes), nil
}

func (m *Merger) resolveCoupon(ctx context.Context, code string, logger *zerolog.Logger) (pricing.Discount, bool) {
	if code == "" || m.coupons == nil {
		return pricing.NoDiscount, false
	}

	coupon, err := m.coupons.FindByCode(ctx, code)
	if err != nil {
		logger.Warn().Err(err).Str("couponCode", code).Msg("Coupon lookup failed, continuing without discount")
		return pricing.NoDiscount, false
	}

	return coupon.Discount(m.now())
}

func (m *Merger) fanOut(ctx context.Context, req Request, logger *zerolog.Logger) ([]schema.ProviderAvailability, error) {
	responses := make([]schema.ProviderAvailability, len(req.Groups))

	g, groupCtx := errgroup.WithContext(ctx)

	for i, group := range req.Groups {
		i, group := i, group
		g.Go(func() error {
			response, err := m.provider.QueryAvailability(groupCtx, schema.AvailabilityQuery{
				HotelID:  req.HotelID,
				CheckIn:  req.CheckIn,
				CheckOut: req.CheckOut,
				Party:    group,
			}, logger)

			if err != nil {
				return fmt.Errorf(
					"availability of hotel %s for %s..%s, party %s: %w",
					req.HotelID, req.CheckIn, req.CheckOut, group.Key, upstream(err),
				)
			}

			responses[i] = response
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return responses, nil
}

func upstream(err error) error {
	if errors.IsProviderUnavailable(err) {
		return err
	}

	return fmt.Errorf("%w: %w", errors.ErrorProviderUnavailable, err)
}

func (m *Merger) priceRates(
	req Request,
	responses []schema.ProviderAvailability,
	discount pricing.Discount,
	logger *zerolog.Logger,
) []rateQuote {
	quotes := []rateQuote{}

	for i, group := range req.Groups {
		for _, room := range responses[i].Rooms {
			for _, rate := range room.Rates {
				if !rate.NetPrice.IsPositive() {
					logger.Warn().
						Str("hotelId", req.HotelID).
						Str("rateId", rate.RateID).
						Str("netPrice", rate.NetPrice.String()).
						Msg("Skipping rate without a positive net price")
					continue
				}

				price := m.policy.GuestPrice(pricing.Input{
					NetPrice:       rate.NetPrice,
					RetailPrice:    rate.RetailPrice,
					ExistingMargin: rate.ExistingMargin,
					HotelCode:      req.HotelID,
					Discount:       discount,
				})

				salePrice := decimal.Zero
				if rate.RetailPrice != nil {
					salePrice = m.policy.SalePrice(*rate.RetailPrice, rate.RetailDiscount, price.Price)
				}

				quotes = append(quotes, rateQuote{
					key:       party.RateKey{RateID: rate.RateID, PartyKey: group.Key},
					roomCode:  room.Code,
					roomName:  room.Name,
					group:     group,
					rate:      rate,
					price:     price,
					salePrice: salePrice,
				})
			}
		}
	}

	return quotes
}

func paymentDues(payments []schema.ProviderPayment) []schema.PaymentDue {
	dues := make([]schema.PaymentDue, len(payments))
	for i, payment := range payments {
		dues[i] = schema.PaymentDue{Amount: schema.NewMoney(payment.Amount)}
		if !payment.DueDate.IsZero() {
			dues[i].DueDate = converting.PointerToValue(payment.DueDate)
		}
	}

	return dues
}

func (q rateQuote) toSchema() schema.Rate {
	rate := schema.Rate{
		Key:       q.key.String(),
		RateID:    q.rate.RateID,
		BoardCode: q.rate.BoardCode,
		Party: schema.Party{
			Key:       q.group.Key,
			Adults:    q.group.Adults,
			Children:  q.group.ChildrenAges,
			RoomCount: q.group.RoomCount,
		},
		NetPrice:           schema.NewMoney(q.rate.NetPrice),
		Price:              schema.NewMoney(q.price.Price),
		SalePrice:          schema.NewMoney(q.salePrice),
		ProfitRatio:        schema.NewRatio(q.price.ProfitRatio),
		Remaining:          q.rate.Remaining,
		CancellationExpiry: q.rate.CancellationExpiry,
		PaymentSchedule:    paymentDues(q.rate.PaymentSchedule),
	}

	if q.rate.RetailPrice != nil {
		retail := schema.NewMoney(*q.rate.RetailPrice)
		rate.RetailPrice = &retail
	}

	return rate
}

// assemble groups the rates by room code, in party group order and then provider order.
func assemble(req Request, responses []schema.ProviderAvailability, quotes []rateQuote) schema.HotelAvailability {
	hotel := schema.HotelAvailability{
		HotelID:  req.HotelID,
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Rooms:    []schema.Room{},
	}

	for _, response := range responses {
		if hotel.Name == "" {
			hotel.Name = response.Name
		}
		if hotel.Currency == "" {
			hotel.Currency = response.Currency
		}
	}

	roomIndex := map[string]int{}

	for _, quote := range quotes {
		position, found := roomIndex[quote.roomCode]
		if !found {
			position = len(hotel.Rooms)
			roomIndex[quote.roomCode] = position
			hotel.Rooms = append(hotel.Rooms, schema.Room{
				Code:  quote.roomCode,
				Name:  quote.roomName,
				Rates: []schema.Rate{},
			})
		}

		hotel.Rooms[position].Rates = append(hotel.Rooms[position].Rates, quote.toSchema())
	}

	hotel.Bookable = bookable(req.Groups, quotes)

	return hotel
}

// bookable tells whether every party group has at least one rate with enough rooms left.
func bookable(groups []party.Group, quotes []rateQuote) bool {
	for _, group := range groups {
		found := false

		for _, quote := range quotes {
			if quote.group.Key == group.Key && quote.rate.Remaining >= group.RoomCount {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
