package coupons

import (
	"context"
	"time"

	"bitbucket.org/crgw/hotel-hub/internal/tools/caching"
	"github.com/rs/zerolog"
)

type finder interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

// CachedFinder reads coupons through a short lived cache, only existing coupons are cached.
// Codes are matched exactly, the same way the store matches them.
type CachedFinder struct {
	next   finder
	cache  *caching.Cacher
	ttl    time.Duration
	logger *zerolog.Logger
	now    func() time.Time
}

func NewCachedFinder(next finder, cache *caching.Cacher, ttl time.Duration, logger *zerolog.Logger) *CachedFinder {
	return &CachedFinder{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func cacheKey(code string) string {
	return "coupon:" + code
}

// expiresIn never lets a cached coupon outlive its validity.
func (f *CachedFinder) expiresIn(coupon *Coupon) time.Duration {
	if coupon.ValidTo == nil {
		return f.ttl
	}

	left := coupon.ValidTo.Sub(f.now())
	if left < f.ttl {
		return left
	}

	return f.ttl
}

func (f *CachedFinder) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var cached Coupon
	if f.cache.Fetch(ctx, cacheKey(code), &cached) {
		return &cached, nil
	}

	coupon, err := f.next.FindByCode(ctx, code)
	if err != nil || coupon == nil {
		return coupon, err
	}

	ttl := f.expiresIn(coupon)
	if ttl <= 0 {
		return coupon, nil
	}

	if err := f.cache.Store(ctx, cacheKey(code), coupon, ttl); err != nil {
		f.logger.Warn().Err(err).Str("couponCode", code).Msg("Unable to cache the coupon")
	}

	return coupon, nil
}
