package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CupSentinel/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisSymbolsKey = "cupsentinel:symbols"
	redisPricesKey  = "cupsentinel:prices:%s"
)

// RedisStore keeps one sorted set per ticker, scored by unix milliseconds.
// Members encode "<millis>|<price>" so equal prices at different times stay distinct.
type RedisStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects and verifies the server is reachable.
func NewRedisStore(ctx context.Context, opts RedisOptions, log zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	s := &RedisStore{client: client, log: log.With().Str("component", "redis_store").Logger()}
	s.log.Info().Str("addr", opts.Addr).Msg("redis store connected")
	return s, nil
}

func (s *RedisStore) Append(ctx context.Context, points ...model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range points {
			key := fmt.Sprintf(redisPricesKey, p.Symbol)
			ms := p.Time.UnixMilli()
			score := strconv.FormatInt(ms, 10)
			pipe.SAdd(ctx, redisSymbolsKey, p.Symbol)
			pipe.ZRemRangeByScore(ctx, key, score, score)
			pipe.ZAdd(ctx, key, redis.Z{Score: float64(ms), Member: encodeMember(ms, p.Price)})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

func (s *RedisStore) Range(ctx context.Context, symbol string, from, to time.Time) ([]model.PricePoint, error) {
	members, err := s.client.ZRangeByScore(ctx, fmt.Sprintf(redisPricesKey, symbol), &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: strconv.FormatInt(to.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis range %s: %w", symbol, err)
	}

	out := make([]model.PricePoint, 0, len(members))
	for _, m := range members {
		ms, price, err := decodeMember(m)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("skipping malformed member")
			continue
		}
		out = append(out, model.PricePoint{Symbol: symbol, Time: time.UnixMilli(ms).UTC(), Price: price})
	}
	return out, nil
}

func (s *RedisStore) Trim(ctx context.Context, before time.Time) (int64, error) {
	symbols, err := s.client.SMembers(ctx, redisSymbolsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis symbols: %w", err)
	}
	// Scores are integral milliseconds, so "(" excludes the cutoff itself.
	max := "(" + strconv.FormatInt(before.UnixMilli(), 10)
	var removed int64
	for _, sym := range symbols {
		n, err := s.client.ZRemRangeByScore(ctx, fmt.Sprintf(redisPricesKey, sym), "-inf", max).Result()
		if err != nil {
			return removed, fmt.Errorf("redis trim %s: %w", sym, err)
		}
		removed += n
	}
	return removed, nil
}

func (s *RedisStore) Close() error {
	s.log.Info().Msg("closing redis store")
	return s.client.Close()
}

func encodeMember(ms int64, price float64) string {
	return strconv.FormatInt(ms, 10) + "|" + strconv.FormatFloat(price, 'f', -1, 64)
}

func decodeMember(m string) (int64, float64, error) {
	tsPart, pricePart, ok := strings.Cut(m, "|")
	if !ok {
		return 0, 0, fmt.Errorf("member %q: missing separator", m)
	}
	ms, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("member %q: %w", m, err)
	}
	price, err := strconv.ParseFloat(pricePart, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("member %q: %w", m, err)
	}
	return ms, price, nil
}
