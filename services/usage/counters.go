package usage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	counterKeyPrefix = "usage_stats:"
	dateLayout       = "2006-01-02"
)

// DailyStats is one principal's totals for a day
type DailyStats struct {
	Principal string `json:"principal"`
	Calls     int64  `json:"calls"`
	Rows      int64  `json:"rows"`
}

// Counters keeps per-day request and row totals in a Redis hash
type Counters struct {
	client   redis.Cmdable
	location *time.Location
	now      func() time.Time
}

// NewCounters creates counters bucketed by calendar day in loc
func NewCounters(client redis.Cmdable, loc *time.Location) *Counters {
	if loc == nil {
		loc = time.UTC
	}
	return &Counters{client: client, location: loc, now: time.Now}
}

// Today returns the current bucket date
func (c *Counters) Today() string {
	return c.now().In(c.location).Format(dateLayout)
}

// Increment adds one call and rows generated rows for principal
func (c *Counters) Increment(ctx context.Context, principal string, rows int) error {
	key := counterKeyPrefix + c.Today()

	pipe := c.client.TxPipeline()
	pipe.HIncrBy(ctx, key, principal+":calls", 1)
	pipe.HIncrBy(ctx, key, principal+":rows", int64(rows))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment usage counters: %w", err)
	}
	return nil
}

// Stats returns all principals' totals for date (YYYY-MM-DD)
func (c *Counters) Stats(ctx context.Context, date string) ([]DailyStats, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	raw, err := c.client.HGetAll(ctx, counterKeyPrefix+date).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read usage counters: %w", err)
	}

	byKey := make(map[string]*DailyStats)
	for field, value := range raw {
		idx := strings.LastIndex(field, ":")
		if idx <= 0 {
			continue
		}
		principal, metric := field[:idx], field[idx+1:]
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}

		stats, ok := byKey[principal]
		if !ok {
			stats = &DailyStats{Principal: principal}
			byKey[principal] = stats
		}
		switch metric {
		case "calls":
			stats.Calls = n
		case "rows":
			stats.Rows = n
		}
	}

	out := make([]DailyStats, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Principal < out[j].Principal })
	return out, nil
}
