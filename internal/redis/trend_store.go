package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sentiwatch/watchdog/internal/domain"
)

const (
	trendKeyPrefix = "watchdog:trend:"

	// trendRetention must outlive the aggregator's in-memory retention
	// so a restarted instance can still read the previous day.
	trendRetention = 25 * time.Hour
)

// TrendStore implements domain.TrendStore: each bucket is one Redis
// hash keyed by (channel, source, bucket start), overwritten on every
// upsert. Upserts carry the full aggregate, so writes are idempotent.
type TrendStore struct {
	rdb *goredis.Client
}

func NewTrendStore(rdb *goredis.Client) *TrendStore {
	return &TrendStore{rdb: rdb}
}

func trendKey(key domain.BucketKey) string {
	return fmt.Sprintf("%s%s:%s:%d", trendKeyPrefix, key.Channel, key.Source, key.Start.Unix())
}

func (s *TrendStore) Upsert(ctx context.Context, key domain.BucketKey, agg domain.TrendAggregate) error {
	k := trendKey(key)

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, map[string]any{
		"channel":      key.Channel,
		"source":       key.Source,
		"bucket_start": key.Start.Unix(),
		"tickets":      agg.Tickets,
		"alerts":       agg.Alerts,
		"suppressed":   agg.Suppressed,
		"mean":         agg.Mean,
		"m2":           agg.M2,
		"variance":     agg.Variance,
		"last_updated": agg.LastUpdated.Unix(),
	})
	pipe.Expire(ctx, k, trendRetention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert trend bucket %s: %w", k, err)
	}
	return nil
}

// Get loads one bucket. A missing bucket returns a zero aggregate with
// the requested key, matching the aggregator's absent-means-empty view.
func (s *TrendStore) Get(ctx context.Context, key domain.BucketKey) (domain.TrendAggregate, error) {
	vals, err := s.rdb.HGetAll(ctx, trendKey(key)).Result()
	if err != nil {
		return domain.TrendAggregate{}, fmt.Errorf("failed to read trend bucket: %w", err)
	}

	agg := domain.TrendAggregate{Key: key}
	if len(vals) == 0 {
		return agg, nil
	}

	agg.Tickets = parseInt(vals["tickets"])
	agg.Alerts = parseInt(vals["alerts"])
	agg.Suppressed = parseInt(vals["suppressed"])
	agg.Mean = parseFloat(vals["mean"])
	agg.M2 = parseFloat(vals["m2"])
	agg.Variance = parseFloat(vals["variance"])
	if ts := parseInt(vals["last_updated"]); ts > 0 {
		agg.LastUpdated = time.Unix(ts, 0).UTC()
	}
	return agg, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
