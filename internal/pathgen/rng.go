// Package pathgen implements the procedural route generation engine:
// a seeded deterministic RNG with a bounded draw cache, the geometric
// path builder, and the generator that orchestrates mode selection,
// retries, fallbacks and async execution.
package pathgen

import "fmt"

// drawCacheSize bounds the memoized draw cache. Keys wrap at this size,
// so iteration 100 of an operation reuses the value drawn at iteration 0
// unless the cache has been cleared in between.
const drawCacheSize = 100

// Stream is a deterministic pseudo-random number generator (xorshift64).
type Stream struct {
	state uint64
}

// NewStream creates a stream seeded with the given value.
func NewStream(seed uint64) *Stream {
	if seed == 0 {
		seed = 88172645463325252 // Default seed
	}
	return &Stream{state: seed}
}

// Next returns the next random uint64.
func (s *Stream) Next() uint64 {
	s.state ^= s.state << 13
	s.state ^= s.state >> 7
	s.state ^= s.state << 17
	return s.state
}

// Float returns a random float64 in [0, 1).
func (s *Stream) Float() float64 {
	return float64(s.Next()&0x7FFFFFFFFFFFFFFF) / float64(0x8000000000000000)
}

// Rand couples a seeded stream with a bounded memoization cache. Draws
// are keyed by operation name and iteration index modulo drawCacheSize;
// repeating a key returns the cached value without advancing the stream.
// Clearing the cache forces fresh draws from the same underlying stream,
// so a retry with the same seed produces a different but still
// reproducible sequence.
type Rand struct {
	stream *Stream
	cache  map[string]float64
	order  []string // Insertion order for evict-oldest
	hits   uint64
	misses uint64
}

// NewRand creates a Rand for one generation call, mixing the explicit
// seed with the level ID so neighbouring levels diverge.
func NewRand(seed int64, levelID int) *Rand {
	mixed := uint64(seed)*0x9E3779B97F4A7C15 + uint64(levelID)*0x85EBCA6B + 1
	return &Rand{
		stream: NewStream(mixed),
		cache:  make(map[string]float64, drawCacheSize),
	}
}

// Draw returns a float64 in [0, 1) for the given operation and iteration.
func (r *Rand) Draw(op string, iteration int) float64 {
	key := fmt.Sprintf("%s#%d", op, iteration%drawCacheSize)
	if v, ok := r.cache[key]; ok {
		r.hits++
		return v
	}
	r.misses++
	v := r.stream.Float()
	if len(r.cache) >= drawCacheSize {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.cache, oldest)
	}
	r.cache[key] = v
	r.order = append(r.order, key)
	return v
}

// Range returns a draw scaled into [min, max).
func (r *Rand) Range(op string, iteration int, min, max float64) float64 {
	return min + r.Draw(op, iteration)*(max-min)
}

// Intn returns a draw as an integer in [0, n).
func (r *Rand) Intn(op string, iteration int, n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Draw(op, iteration) * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// ClearCache drops every memoized draw. Subsequent draws pull fresh
// values from the stream, which has advanced past the cleared ones.
func (r *Rand) ClearCache() {
	r.cache = make(map[string]float64, drawCacheSize)
	r.order = nil
}

// CacheStats returns the hit and miss counters.
func (r *Rand) CacheStats() (hits, misses uint64) {
	return r.hits, r.misses
}
