package interfaces

import (
	"context"

	"bitbucket.org/crgw/hotel-hub/internal/schema"
	"github.com/rs/zerolog"
)

type WithTrafficLightGrouping interface {
	TrafficLightGroupingCacheKey(context.Context, schema.AvailabilityQuery, *zerolog.Logger) string
}

type WithAvailability interface {
	QueryAvailability(context.Context, schema.AvailabilityQuery, *zerolog.Logger) (schema.ProviderAvailability, error)
}

type WithFlexibleCalendar interface {
	QueryCalendar(context.Context, schema.CalendarQuery, *zerolog.Logger) (schema.ProviderCalendar, error)
}
