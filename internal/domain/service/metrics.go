package service

import (
	"time"
)

// ScoreMetrics collects score recomputation metrics.
// ScoreMetrics 收集评分重算指标。
type ScoreMetrics interface {
	// RecordScoreRecompute records one recomputation, its latency and outcome.
	// RecordScoreRecompute 记录一次评分重算及其延迟和结果。
	RecordScoreRecompute(trigger string, duration time.Duration, err error)
}

// CacheMetrics records dashboard cache lookups.
type CacheMetrics interface {
	// RecordCacheAccess records a cache hit or miss.
	// RecordCacheAccess 记录缓存命中或未命中。
	RecordCacheAccess(cacheType string, hit bool)
}
