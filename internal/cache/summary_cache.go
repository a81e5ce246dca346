package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"property-backoffice/internal/billing"

	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logging interface the cache layer needs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SummaryStore abstracts the cache backend so the service can be tested
// without a live Redis.
type SummaryStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	IsHealthy() bool
}

// SummaryCacheService caches computed lease payment summaries.
// Summaries are derived data: the database holds the truth, so cache
// failures degrade to recomputation, never to an error for the caller.
type SummaryCacheService struct {
	cache  SummaryStore
	ttl    time.Duration
	logger Logger
}

// NewSummaryCacheService creates a new summary cache service.
func NewSummaryCacheService(cache SummaryStore, ttl time.Duration, logger Logger) *SummaryCacheService {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCacheService{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetSummary returns the cached summary for a lease, or ErrCacheMiss.
func (s *SummaryCacheService) GetSummary(ctx context.Context, leaseID string) (*billing.PaymentSummary, error) {
	if !s.cache.IsHealthy() {
		return nil, ErrCacheUnavailable
	}

	key := LeaseSummaryKey(leaseID)
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == redis.Nil {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	if cached == "" {
		return nil, ErrCacheMiss
	}

	var summary billing.PaymentSummary
	if err := json.Unmarshal([]byte(cached), &summary); err != nil {
		// Corrupt entry: drop it and treat as a miss
		s.cache.Delete(ctx, key)
		return nil, ErrCacheMiss
	}

	return &summary, nil
}

// PutSummary stores a freshly computed summary (best effort).
func (s *SummaryCacheService) PutSummary(ctx context.Context, leaseID string, summary *billing.PaymentSummary) {
	if !s.cache.IsHealthy() {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return
	}

	key := LeaseSummaryKey(leaseID)
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.logger.Warn("Failed to cache summary, will recompute on next read",
			"key", key, "error", err)
	}
}

// Invalidate removes a lease's cached summary and schedule.
// Called after any payment write so reads never see stale totals.
func (s *SummaryCacheService) Invalidate(ctx context.Context, leaseID string) {
	if !s.cache.IsHealthy() {
		return
	}

	for _, key := range []string{LeaseSummaryKey(leaseID), LeaseScheduleKey(leaseID)} {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to invalidate cache key", "key", key, "error", err)
		}
	}
}

// NextReceiptReference builds a daily-sequenced receipt reference like
// RCP-20260301-0042. Falls back to a timestamp-based reference when
// Redis is unavailable.
func (s *SummaryCacheService) NextReceiptReference(ctx context.Context, now time.Time) string {
	dateKey := now.UTC().Format("20060102")

	if cs, ok := s.cache.(*CacheService); ok && cs.IsHealthy() {
		if seq, err := cs.IncrementReceiptSequence(ctx, dateKey); err == nil {
			return fmt.Sprintf("RCP-%s-%04d", dateKey, seq)
		}
	}

	return fmt.Sprintf("RCP-%s-%d", dateKey, now.UTC().UnixNano()%1000000)
}

// IsHealthy reports whether the underlying cache is healthy.
func (s *SummaryCacheService) IsHealthy() bool {
	return s.cache.IsHealthy()
}
