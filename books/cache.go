package books

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	"github.com/booktrackerhq/booktracker"
)

// DefaultSearchTTL bounds how long a cached search result stays fresh.
const DefaultSearchTTL = 10 * time.Minute

// Searcher is the catalog surface the cache wraps.
type Searcher interface {
	Search(ctx context.Context, term string, number int) ([]Volume, error)
}

// CachedSearcher is a read-through cache in front of the catalog client.
// Identical term and page size pairs are served from redis until the TTL
// lapses.
type CachedSearcher struct {
	inner  Searcher
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger booktracker.Logger
}

var _ Searcher = (*CachedSearcher)(nil)

// NewCachedSearcher wraps the searcher with a redis cache.
func NewCachedSearcher(inner Searcher, client redis.UniversalClient, prefix string) *CachedSearcher {
	if prefix == "" {
		prefix = "booktracker"
	}
	return &CachedSearcher{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    DefaultSearchTTL,
	}
}

func (s *CachedSearcher) WithTTL(ttl time.Duration) *CachedSearcher {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func (s *CachedSearcher) WithLogger(logger booktracker.Logger) *CachedSearcher {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *CachedSearcher) Search(ctx context.Context, term string, number int) ([]Volume, error) {
	key := s.key(term, number)

	cached, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var out []Volume
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return out, nil
		}
		// Corrupt entry, fall through to the catalog.
		s.logf("dropping corrupt cache entry", "key", key)
		s.client.Del(ctx, key)
	} else if err != redis.Nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read search cache")
	}

	out, err := s.inner.Search(ctx, term, number)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(out); err == nil {
		if err := s.client.Set(ctx, key, encoded, s.ttl).Err(); err != nil {
			s.logf("failed to store search cache entry", "key", key, "error", err)
		}
	}

	return out, nil
}

func (s *CachedSearcher) key(term string, number int) string {
	return fmt.Sprintf("%s:books:search:%s:%d", s.prefix, term, number)
}

func (s *CachedSearcher) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(format, args...)
	}
}
