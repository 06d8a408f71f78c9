package cache

import (
	"context"
	"time"
)

// NoOpCache always misses. Used when caching is disabled or Redis is unreachable.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetAnswer(context.Context, string) (*Answer, error) { return nil, nil }

func (c *NoOpCache) SetAnswer(context.Context, string, *Answer, time.Duration) error { return nil }

func (c *NoOpCache) InvalidateSession(context.Context, string) error { return nil }

func (c *NoOpCache) Close() error { return nil }
