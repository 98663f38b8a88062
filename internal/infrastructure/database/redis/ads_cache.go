package redis

import (
	"context"

	"github.com/rankforge/rankforge/internal/domain/keyword"
	"github.com/rankforge/rankforge/internal/infrastructure/monitoring/logging"
)

// CachedAdsProvider decorates a real ads-metrics provider with a Redis
// read-through cache.  Ads data moves slowly, so hits can be served for a day
// without skewing scores; cache failures degrade to the inner provider.
type CachedAdsProvider struct {
	inner  keyword.AdsProvider
	cache  *Cache
	logger logging.Logger
}

// NewCachedAdsProvider wraps inner with the cache.
func NewCachedAdsProvider(inner keyword.AdsProvider, cache *Cache, logger logging.Logger) *CachedAdsProvider {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachedAdsProvider{inner: inner, cache: cache, logger: logger}
}

// Lookup serves cached metrics when present, otherwise asks the inner
// provider and caches its answer. Only positive answers are cached so a
// transient provider outage does not pin "no data" for a full TTL.
func (p *CachedAdsProvider) Lookup(ctx context.Context, text string) (*keyword.AdsMetrics, error) {
	var cached keyword.AdsMetrics
	hit, err := p.cache.Get(ctx, "ads:"+text, &cached)
	if err != nil {
		p.logger.Warn("ads cache read failed", logging.String("keyword", text), logging.Err(err))
	} else if hit {
		return &cached, nil
	}

	metrics, err := p.inner.Lookup(ctx, text)
	if err != nil || metrics == nil {
		return metrics, err
	}

	if err := p.cache.Set(ctx, "ads:"+text, metrics); err != nil {
		p.logger.Warn("ads cache write failed", logging.String("keyword", text), logging.Err(err))
	}
	return metrics, nil
}
