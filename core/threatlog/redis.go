package threatlog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream records are appended to.
const DefaultStream = "waf:threats"

// StreamAdder is the subset of *redis.Client used by RedisSink.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink mirrors records onto a capped Redis stream so dashboards and
// other instances can follow blocks in real time.
type RedisSink struct {
	client StreamAdder
	stream string
	maxLen int64
}

// NewRedisSink returns a sink appending to stream, trimmed to roughly maxLen
// entries. maxLen <= 0 disables trimming.
func NewRedisSink(client StreamAdder, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisSink{client: client, stream: stream, maxLen: maxLen}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("threatlog: parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Write appends r as a stream entry.
func (s *RedisSink) Write(ctx context.Context, r Record) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(r),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("threatlog: redis xadd: %w", err)
	}
	return nil
}

func streamValues(r Record) map[string]any {
	return map[string]any{
		"timestamp":    r.Timestamp,
		"ip":           r.IP,
		"user_agent":   r.UserAgent,
		"uri":          r.URI,
		"method":       r.Method,
		"threat":       r.Threat,
		"category":     r.Category,
		"incident_id":  r.IncidentID,
		"request_id":   r.RequestID,
		"input_sample": r.InputSample,
		"input_length": strconv.Itoa(r.InputLength),
	}
}
