package cache

import (
	"context"
	"encoding/json"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ application.ResultCache = (*Redis)(nil)

const redisKeyPrefix = "dolarcaro:price:"

// Redis shares the result cache between processes (API and worker).
// The freshness window maps onto the key TTL; any Redis failure is a
// plain cache miss, never a pipeline failure.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Log    *zap.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{Client: client, TTL: ttl, Log: log}
}

// cachedRecord is the wire shape; decimals travel as strings.
type cachedRecord struct {
	ProductKey        string    `json:"product_key"`
	DisplayName       string    `json:"display_name"`
	OriginPrice       string    `json:"origin_price"`
	ReferencePrice    string    `json:"reference_price"`
	ConvertedPrice    string    `json:"converted_price"`
	ExchangeRate      string    `json:"exchange_rate"`
	OriginFallback    bool      `json:"origin_fallback"`
	ReferenceFallback bool      `json:"reference_fallback"`
	StaleRate         bool      `json:"stale_rate"`
	OriginURL         string    `json:"origin_url"`
	ReferenceURL      string    `json:"reference_url"`
	Timestamp         time.Time `json:"timestamp"`
}

func toCached(rec domain.PriceRecord) cachedRecord {
	return cachedRecord{
		ProductKey:        rec.ProductKey,
		DisplayName:       rec.DisplayName,
		OriginPrice:       rec.OriginPrice.String(),
		ReferencePrice:    rec.ReferencePrice.String(),
		ConvertedPrice:    rec.ConvertedPrice.String(),
		ExchangeRate:      rec.ExchangeRate.String(),
		OriginFallback:    rec.OriginFallback,
		ReferenceFallback: rec.ReferenceFallback,
		StaleRate:         rec.StaleRate,
		OriginURL:         rec.OriginURL,
		ReferenceURL:      rec.ReferenceURL,
		Timestamp:         rec.Timestamp,
	}
}

func (c cachedRecord) record() (domain.PriceRecord, error) {
	origin, err := decimal.NewFromString(c.OriginPrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	reference, err := decimal.NewFromString(c.ReferencePrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	converted, err := decimal.NewFromString(c.ConvertedPrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	rate, err := decimal.NewFromString(c.ExchangeRate)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	return domain.PriceRecord{
		ProductKey:        c.ProductKey,
		DisplayName:       c.DisplayName,
		OriginPrice:       origin,
		ReferencePrice:    reference,
		ConvertedPrice:    converted,
		ExchangeRate:      rate,
		OriginFallback:    c.OriginFallback,
		ReferenceFallback: c.ReferenceFallback,
		StaleRate:         c.StaleRate,
		OriginURL:         c.OriginURL,
		ReferenceURL:      c.ReferenceURL,
		Timestamp:         c.Timestamp,
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (domain.PriceRecord, bool) {
	b, err := r.Client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.Log.Warn("cache.redis_get_failed", zap.String("key", key), zap.Error(err))
		}
		return domain.PriceRecord{}, false
	}
	var c cachedRecord
	if err := json.Unmarshal(b, &c); err != nil {
		r.Log.Warn("cache.redis_decode_failed", zap.String("key", key), zap.Error(err))
		return domain.PriceRecord{}, false
	}
	rec, err := c.record()
	if err != nil {
		r.Log.Warn("cache.redis_decode_failed", zap.String("key", key), zap.Error(err))
		return domain.PriceRecord{}, false
	}
	return rec, true
}

func (r *Redis) Set(ctx context.Context, key string, rec domain.PriceRecord) {
	b, err := json.Marshal(toCached(rec))
	if err != nil {
		r.Log.Warn("cache.redis_encode_failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.Client.Set(ctx, redisKeyPrefix+key, b, r.TTL).Err(); err != nil {
		r.Log.Warn("cache.redis_set_failed", zap.String("key", key), zap.Error(err))
	}
}
