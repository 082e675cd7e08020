package pathgen

import "time"

// PerfStats is a snapshot of the generator's performance counters.
type PerfStats struct {
	Generations  uint64
	Fallbacks    uint64
	Degenerate   uint64 // Walks that hit the iteration cap
	Retries      uint64
	MinTime      time.Duration
	MaxTime      time.Duration
	AvgTime      time.Duration
	CacheHits    uint64
	CacheMisses  uint64
	CacheHitRate float64
}

// perfTracker accumulates timing and cache counters. It is only touched
// by the single generation in flight, so it needs no locking.
type perfTracker struct {
	generations uint64
	fallbacks   uint64
	degenerate  uint64
	retries     uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	cacheHits   uint64
	cacheMisses uint64
}

func (p *perfTracker) record(d time.Duration, fallback bool, retries int) {
	p.generations++
	p.totalTime += d
	if p.minTime == 0 || d < p.minTime {
		p.minTime = d
	}
	if d > p.maxTime {
		p.maxTime = d
	}
	if fallback {
		p.fallbacks++
	}
	p.retries += uint64(retries)
}

func (p *perfTracker) recordCache(hits, misses uint64) {
	p.cacheHits += hits
	p.cacheMisses += misses
}

func (p *perfTracker) snapshot() PerfStats {
	stats := PerfStats{
		Generations: p.generations,
		Fallbacks:   p.fallbacks,
		Degenerate:  p.degenerate,
		Retries:     p.retries,
		MinTime:     p.minTime,
		MaxTime:     p.maxTime,
		CacheHits:   p.cacheHits,
		CacheMisses: p.cacheMisses,
	}
	if p.generations > 0 {
		stats.AvgTime = p.totalTime / time.Duration(p.generations)
	}
	if total := p.cacheHits + p.cacheMisses; total > 0 {
		stats.CacheHitRate = float64(p.cacheHits) / float64(total)
	}
	return stats
}
