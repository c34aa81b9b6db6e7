package metrics

import (
	"sync"
	"time"
)

// SweepStats is an in-memory aggregation organism for sweep statistics.
// It keeps a bounded history of recent sweeps plus running totals, with
// thread-safe access so recording and reading can interleave.
//
// Usage:
//
//	stats := NewSweepStats(DefaultStatsConfig(), time.Now())
//	stats.RecordSweep(record)
//	summary := stats.Snapshot()
type SweepStats struct {
	mu sync.RWMutex

	// Bounded sweep history, newest overwrites oldest
	history []SweepRecord
	cap     int
	head    int
	size    int

	// Running totals
	totalSweeps  int64
	totalSuccess int64
	totalErrors  int64
	totalImages  int64
	byStyle      map[string]*styleStats

	startTime time.Time
}

// styleStats holds per-style aggregation data.
type styleStats struct {
	count         int64
	successCount  int64
	images        int64
	totalDuration time.Duration
}

// StatsConfig configures the SweepStats behavior.
type StatsConfig struct {
	// HistoryCapacity is the max number of sweeps to retain in history (default: 100)
	HistoryCapacity int
}

// DefaultStatsConfig returns a default configuration.
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		HistoryCapacity: 100,
	}
}

// NewSweepStats creates a SweepStats with the given configuration.
// The startTime anchors Elapsed.
func NewSweepStats(config StatsConfig, startTime time.Time) *SweepStats {
	capacity := config.HistoryCapacity
	if capacity < 1 {
		capacity = 100
	}

	return &SweepStats{
		history:   make([]SweepRecord, capacity),
		cap:       capacity,
		byStyle:   make(map[string]*styleStats),
		startTime: startTime,
	}
}

// RecordSweep logs a completed sweep and updates the aggregations.
func (s *SweepStats) RecordSweep(record SweepRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = record
	s.head = (s.head + 1) % s.cap
	if s.size < s.cap {
		s.size++
	}

	s.totalSweeps++
	s.totalImages += int64(record.Images)

	switch record.Status {
	case SweepStatusSuccess:
		s.totalSuccess++
	case SweepStatusError:
		s.totalErrors++
	}

	stats, ok := s.byStyle[record.Style]
	if !ok {
		stats = &styleStats{}
		s.byStyle[record.Style] = stats
	}
	stats.count++
	if record.Status == SweepStatusSuccess {
		stats.successCount++
	}
	stats.images += int64(record.Images)
	stats.totalDuration += record.Duration
}

// Snapshot returns the aggregated sweep statistics.
func (s *SweepStats) Snapshot() SweepMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := SweepMetrics{
		TotalSweeps:  s.totalSweeps,
		TotalSuccess: s.totalSuccess,
		TotalErrors:  s.totalErrors,
		TotalImages:  s.totalImages,
		ByStyle:      make(map[string]*StyleMetrics, len(s.byStyle)),
	}

	for style, stats := range s.byStyle {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}

		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}

		summary.ByStyle[style] = &StyleMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
			Images:      stats.images,
		}
	}

	return summary
}

// RecentSweeps returns up to limit sweep records, most recent first.
func (s *SweepStats) RecentSweeps(limit int) []SweepRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.size == 0 {
		return []SweepRecord{}
	}

	if limit > s.size {
		limit = s.size
	}

	result := make([]SweepRecord, limit)
	for i := 0; i < limit; i++ {
		// Walk backwards from the newest entry
		idx := (s.head - 1 - i + s.cap) % s.cap
		result[i] = s.history[idx]
	}

	return result
}

// Elapsed returns the time since the stats were created.
func (s *SweepStats) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}
