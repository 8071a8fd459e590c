package evaluate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/readyscore/readyscore/pkg/analyze"
	"github.com/readyscore/readyscore/pkg/metrics"
)

// DefaultCacheSize is the number of analyses kept by a CachingAnalyzer.
const DefaultCacheSize = 256

// CachingAnalyzer memoizes analysis results by the SHA-256 of the code.
// Analysis depends only on code contents, so a hit is always valid.
// Failed analyses are not cached.
type CachingAnalyzer struct {
	next  analyze.Analyzer
	cache *lru.Cache[string, *metrics.Record]
}

// NewCachingAnalyzer wraps next with an LRU cache of the given size.
func NewCachingAnalyzer(next analyze.Analyzer, size int) (*CachingAnalyzer, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *metrics.Record](size)
	if err != nil {
		return nil, err
	}
	return &CachingAnalyzer{next: next, cache: c}, nil
}

// Analyze implements analyze.Analyzer.
func (c *CachingAnalyzer) Analyze(ctx context.Context, code string) (*metrics.Record, error) {
	key := codeKey(code)
	if rec, ok := c.cache.Get(key); ok {
		return rec, nil
	}

	rec, err := c.next.Analyze(ctx, code)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, rec)
	return rec, nil
}

// Len returns the number of cached analyses.
func (c *CachingAnalyzer) Len() int {
	return c.cache.Len()
}

func codeKey(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
