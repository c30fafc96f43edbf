package platform

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/alternatives"
	"bitbucket.org/crgw/hotel-hub/internal/availability"
	"bitbucket.org/crgw/hotel-hub/internal/installments"
	"bitbucket.org/crgw/hotel-hub/internal/party"
	"bitbucket.org/crgw/hotel-hub/internal/platform/errors"
	"bitbucket.org/crgw/hotel-hub/internal/platform/interfaces"
	platformMiddleware "bitbucket.org/crgw/hotel-hub/internal/platform/middleware"
	"bitbucket.org/crgw/hotel-hub/internal/pricing"
	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"bitbucket.org/crgw/hotel-hub/internal/tools/converting"
	"bitbucket.org/crgw/hotel-hub/internal/tools/middleware"
	"bitbucket.org/crgw/hotel-hub/internal/tools/slowlog"
	"bitbucket.org/crgw/hotel-hub/internal/trafficlight/grouping"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type platformFactory interface {
	GetPlatform(string) (any, error)
}

type Dependencies struct {
	Policy      pricing.Policy
	Coupons     availability.CouponFinder
	PaddingDays int
	Grouping    grouping.Options
	Now         func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}

	return d.Now()
}

func partyGroups(params schema.AvailabilityRequestParams) ([]party.Group, error) {
	if len(params.Rooms) > 0 {
		return party.FromJSON(string(params.Rooms))
	}

	return party.FromSingle(params.Adults, params.Children)
}

func availabilityRequest(params schema.AvailabilityRequestParams) (availability.Request, error) {
	groups, err := partyGroups(params)
	if err != nil {
		return availability.Request{}, err
	}

	return availability.Request{
		HotelID:    params.HotelID,
		CheckIn:    params.CheckIn,
		CheckOut:   params.CheckOut,
		Groups:     groups,
		CouponCode: params.CouponCode,
	}, nil
}

func alternativesFinder(platform any, deps Dependencies) (*alternatives.Finder, bool) {
	calendar, ok := platform.(interfaces.WithFlexibleCalendar)
	if !ok {
		return nil, false
	}

	return alternatives.NewFinder(calendar, deps.PaddingDays).WithClock(deps.now), true
}

func RegisterRoutes(
	router *gin.Engine,
	factory platformFactory,
	deps Dependencies,
) {
	group := router.Group(
		"/:platform",
		platformMiddleware.PreparePlatform(factory),
		platformMiddleware.TapLogger,
	)

	group.POST("/availability",
		platformMiddleware.PrepareParams[schema.AvailabilityRequestParams](),
		func(ctx *gin.Context) {
			logger := ctx.MustGet(platformMiddleware.LoggerKey).(*zerolog.Logger)

			slowLog := slowlog.CreateLogger(logger)
			key := fmt.Sprintf("%s:availability", ctx.Params.ByName("platform"))
			slowLog.Start(key)
			defer slowLog.Stop(key)

			platform := ctx.MustGet(platformMiddleware.PlatformKey)

			provider, ok := platform.(interfaces.WithAvailability)
			if !ok {
				middleware.HandleError(ctx, http.StatusBadRequest, "Availability not implemented", errors.ErrorNotImplemented)
				return
			}

			if groupable, ok := platform.(grouping.GroupableProvider); ok {
				provider = grouping.NewProvider(groupable, deps.Grouping)
			}

			params, ok := ctx.MustGet(platformMiddleware.ParamsKey).(*schema.AvailabilityRequestParams)
			if !ok {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			request, err := availabilityRequest(*params)
			if err != nil {
				middleware.HandleError(ctx, http.StatusBadRequest, "Invalid party", err)
				return
			}

			outcome, err := availability.NewMerger(provider, deps.Coupons, deps.Policy).
				Merge(ctx.Request.Context(), request, logger)
			if err != nil {
				middleware.HandleError(ctx, middleware.ErrorStatus(err, http.StatusInternalServerError), "Failed requesting availability", err)
				return
			}

			if outcome.Kind == availability.OutcomeInvalid {
				middleware.HandleError(ctx, http.StatusBadRequest, "Invalid availability request", outcome.Reason)
				return
			}

			hotel := outcome.Availability
			if !hotel.Bookable {
				if finder, ok := alternativesFinder(platform, deps); ok {
					hotel.Alternatives = finder.FindAlternatives(
						ctx.Request.Context(),
						request.HotelID,
						request.Groups,
						request.CheckIn,
						request.CheckOut,
						logger,
					)
				}
			}

			ctx.JSON(http.StatusOK, hotel)
		},
	)

	// checkout is never served from grouped results, remaining rooms must be current
	group.POST("/checkout",
		platformMiddleware.PrepareParams[schema.CheckoutRequestParams](),
		func(ctx *gin.Context) {
			logger := ctx.MustGet(platformMiddleware.LoggerKey).(*zerolog.Logger)

			provider, ok := ctx.MustGet(platformMiddleware.PlatformKey).(interfaces.WithAvailability)
			if !ok {
				middleware.HandleError(ctx, http.StatusBadRequest, "Checkout not implemented", errors.ErrorNotImplemented)
				return
			}

			params, ok := ctx.MustGet(platformMiddleware.ParamsKey).(*schema.CheckoutRequestParams)
			if !ok {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			request, err := availabilityRequest(params.AvailabilityRequestParams)
			if err != nil {
				middleware.HandleError(ctx, http.StatusBadRequest, "Invalid party", err)
				return
			}

			request.Selected = params.SelectedRates
			if request.Selected == nil {
				request.Selected = []schema.SelectedRate{}
			}

			if params.QuotedTotal != nil {
				request.QuotedTotal = &params.QuotedTotal.Decimal
			}

			outcome, err := availability.NewMerger(provider, deps.Coupons, deps.Policy).
				Merge(ctx.Request.Context(), request, logger)
			if err != nil {
				middleware.HandleError(ctx, middleware.ErrorStatus(err, http.StatusInternalServerError), "Failed requesting checkout", err)
				return
			}

			switch outcome.Kind {
			case availability.OutcomeInvalid:
				middleware.HandleError(ctx, http.StatusBadRequest, "Invalid checkout request", outcome.Reason)
				return
			case availability.OutcomeConflict:
				logger.Warn().
					Err(outcome.Reason).
					Int("code", http.StatusConflict).
					Msg("Checkout needs a new quote")

				ctx.AbortWithStatusJSON(http.StatusConflict, schema.CheckoutConflictResponse{
					Message:      "Checkout needs a new quote",
					Error:        outcome.Reason.Error(),
					Availability: outcome.Availability,
				})
				return
			}

			quote := outcome.Quote
			plan, err := installments.BuildPlan(installments.PlanInput{
				Total:         quote.Total.Decimal,
				ProfitRatio:   quote.ProfitRatio.Decimal,
				Schedule:      quote.Schedule,
				CheckIn:       request.CheckIn.Time,
				Now:           deps.now(),
				TZOffsetHours: params.TZOffsetHours,
			})
			if err != nil {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Failed building the payment plan", err)
				return
			}

			quote.PaymentPlan = paymentPlan(plan)

			ctx.JSON(http.StatusOK, quote.CheckoutQuote)
		},
	)

	group.POST("/alternatives",
		platformMiddleware.PrepareParams[schema.AvailabilityRequestParams](),
		func(ctx *gin.Context) {
			logger := ctx.MustGet(platformMiddleware.LoggerKey).(*zerolog.Logger)

			finder, ok := alternativesFinder(ctx.MustGet(platformMiddleware.PlatformKey), deps)
			if !ok {
				middleware.HandleError(ctx, http.StatusBadRequest, "Flexible calendar not implemented", errors.ErrorNotImplemented)
				return
			}

			params, ok := ctx.MustGet(platformMiddleware.ParamsKey).(*schema.AvailabilityRequestParams)
			if !ok {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			request, err := availabilityRequest(*params)
			if err == nil {
				err = request.Validate()
			}

			if err != nil {
				middleware.HandleError(ctx, http.StatusBadRequest, "Invalid alternatives request", err)
				return
			}

			ctx.JSON(http.StatusOK, schema.AlternativesResponse{
				Alternatives: finder.FindAlternatives(
					ctx.Request.Context(),
					request.HotelID,
					request.Groups,
					request.CheckIn,
					request.CheckOut,
					logger,
				),
			})
		},
	)

	router.POST("/payment-plan",
		platformMiddleware.PrepareParams[schema.PaymentPlanRequestParams](),
		func(ctx *gin.Context) {
			params, ok := ctx.MustGet(platformMiddleware.ParamsKey).(*schema.PaymentPlanRequestParams)
			if !ok {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Bad request params", nil)
				return
			}

			plan, err := installments.BuildPlan(installments.PlanInput{
				Total:         params.Total.Decimal,
				ProfitRatio:   params.ProfitRatio.Decimal,
				Schedule:      providerSchedule(params.Schedule),
				CheckIn:       params.CheckIn.Time,
				Now:           deps.now(),
				TZOffsetHours: params.TZOffsetHours,
			})
			if err != nil {
				middleware.HandleError(ctx, http.StatusInternalServerError, "Failed building the payment plan", err)
				return
			}

			ctx.JSON(http.StatusOK, schema.PaymentPlanResponse{Installments: paymentPlan(plan)})
		},
	)
}

func providerSchedule(dues []schema.PaymentDue) []installments.ProviderPayment {
	schedule := make([]installments.ProviderPayment, 0, len(dues))
	for _, due := range dues {
		schedule = append(schedule, installments.ProviderPayment{
			DueDate: converting.Unwrap(due.DueDate),
			Amount:  due.Amount.Decimal,
		})
	}

	return schedule
}

func paymentPlan(plan []installments.Installment) []schema.PaymentInstallment {
	result := make([]schema.PaymentInstallment, 0, len(plan))
	for _, installment := range plan {
		result = append(result, schema.PaymentInstallment{
			DueDate: installment.DueDate,
			Amount:  schema.NewMoney(installment.Amount),
			Role:    string(installment.Role),
		})
	}

	return result
}
