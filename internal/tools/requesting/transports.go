package requesting

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type TransportMiddleware func(http.RoundTripper) http.RoundTripper

type InterceptorTransport struct {
	Transport   http.RoundTripper
	Middlewares []TransportMiddleware
}

func (t *InterceptorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	transport := t.Transport
	for _, middleware := range t.Middlewares {
		transport = middleware(transport)
	}

	return transport.RoundTrip(req)
}

type LoggingTransportMiddleware struct {
	Transport http.RoundTripper
	log       *zerolog.Logger
}

func NewLoggingTransportMiddleware(log *zerolog.Logger) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &LoggingTransportMiddleware{
			log:       log,
			Transport: rt,
		}
	}
}

func (t *LoggingTransportMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()

	message := t.log.Info().
		Str("label", "outgoing-request").
		Str("method", req.Method).
		Str("url", req.URL.Redacted())

	defer func() {
		message.
			Float64("duration", time.Since(startTime).Seconds()).
			Msg("")
	}()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		message.Str("error", err.Error())
		return nil, err
	}

	message.Int("code", resp.StatusCode)

	return resp, nil
}

type LimiterTransportMiddleware struct {
	Transport http.RoundTripper
	limiter   *rate.Limiter
}

// NewLimiterTransportMiddleware makes requests wait for the limiter, giving up with the request context.
func NewLimiterTransportMiddleware(limiter *rate.Limiter) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &LimiterTransportMiddleware{
			Transport: rt,
			limiter:   limiter,
		}
	}
}

func (t *LimiterTransportMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	return t.Transport.RoundTrip(req)
}

var errServerStatus = errors.New("provider server error")

type BreakerTransportMiddleware struct {
	Transport http.RoundTripper
	breaker   *gobreaker.CircuitBreaker
}

// NewBreakerTransportMiddleware counts failed round-trips and 5xx responses against the breaker.
// 5xx responses are still handed to the caller.
func NewBreakerTransportMiddleware(breaker *gobreaker.CircuitBreaker) TransportMiddleware {
	return func(rt http.RoundTripper) http.RoundTripper {
		return &BreakerTransportMiddleware{
			Transport: rt,
			breaker:   breaker,
		}
	}
}

func (t *BreakerTransportMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.breaker.Execute(func() (any, error) {
		resp, err := t.Transport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}

		return resp, nil
	})

	if errors.Is(err, errServerStatus) {
		return result.(*http.Response), nil
	}

	if err != nil {
		return nil, err
	}

	return result.(*http.Response), nil
}

type BreakerSettings struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func NewBreaker(settings BreakerSettings, log *zerolog.Logger) *gobreaker.CircuitBreaker {
	consecutiveFailures := settings.ConsecutiveFailures
	if consecutiveFailures == 0 {
		consecutiveFailures = 5
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("label", "circuit-breaker").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker changed state")
		},
	})
}
