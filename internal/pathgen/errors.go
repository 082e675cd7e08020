package pathgen

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pathforge/internal/geom"
)

// ErrGenerationInProgress is returned when a second generation is
// requested while one is already in flight on the same generator.
var ErrGenerationInProgress = errors.New("pathgen: generation already in progress")

// Category classifies handled errors for counting and batched logging.
type Category string

const (
	CategoryInput        Category = "input"
	CategoryValidation   Category = "validation"
	CategoryBalance      Category = "balance"
	CategoryReachability Category = "reachability"
	CategoryCritical     Category = "critical"
)

// InputValidationError reports malformed constructor or call arguments.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PathValidationError reports a generated path that failed structural
// constraints after all retries.
type PathValidationError struct {
	LevelID int
	Errors  []string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("level %d path failed validation: %v", e.LevelID, e.Errors)
}

// ReachabilityError reports entry/exit points that are too close or
// otherwise unreachable under the distance heuristics.
type ReachabilityError struct {
	Entry, Exit geom.Waypoint
	MinDist     float64
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("exit %v unreachable from entry %v: need distance >= %.1f",
		e.Exit, e.Entry, e.MinDist)
}

// CriticalError wraps an unexpected failure inside geometry math, such
// as NaN propagation.
type CriticalError struct {
	Stage string
	Err   error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("critical failure during %s: %v", e.Stage, e.Err)
}

func (e *CriticalError) Unwrap() error { return e.Err }

// ErrorRecord is one handled error in the history.
type ErrorRecord struct {
	Time     time.Time
	Category Category
	LevelID  int
	Message  string
}

// ErrorStats summarizes the error history.
type ErrorStats struct {
	Total      uint64
	ByCategory map[Category]uint64
}

// ErrorData is the plain-data export of the error history.
type ErrorData struct {
	Capacity int
	Total    uint64
	Counts   map[Category]uint64
	Records  []ErrorRecord
}

// batchLogEvery controls how often the quiet (production) history emits
// a summary line instead of logging every record.
const batchLogEvery = 25

// ErrorHistory is a fixed-capacity ring buffer of handled errors with
// per-category counters. In verbose mode every record is logged as it
// arrives; otherwise a summary is logged every batchLogEvery records.
type ErrorHistory struct {
	records []ErrorRecord
	next    int
	filled  int
	total   uint64
	counts  map[Category]uint64
	logger  *log.Logger
	verbose bool
}

// NewErrorHistory creates a history with the given capacity.
func NewErrorHistory(capacity int, logger *log.Logger, verbose bool) *ErrorHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &ErrorHistory{
		records: make([]ErrorRecord, capacity),
		counts:  make(map[Category]uint64),
		logger:  logger,
		verbose: verbose,
	}
}

// Record appends a handled error, overwriting the oldest entry once the
// buffer is full.
func (h *ErrorHistory) Record(cat Category, levelID int, err error) {
	rec := ErrorRecord{
		Time:     time.Now(),
		Category: cat,
		LevelID:  levelID,
		Message:  err.Error(),
	}
	h.records[h.next] = rec
	h.next = (h.next + 1) % len(h.records)
	if h.filled < len(h.records) {
		h.filled++
	}
	h.total++
	h.counts[cat]++

	if h.logger == nil {
		return
	}
	if h.verbose {
		if cat == CategoryCritical {
			h.logger.Error("generation error", "category", cat, "level", levelID, "err", err)
		} else {
			h.logger.Warn("generation error", "category", cat, "level", levelID, "err", err)
		}
	} else if h.total%batchLogEvery == 0 {
		h.logger.Warn("generation errors accumulating", "total", h.total, "latest", cat)
	}
}

// Recent returns up to n records, oldest first.
func (h *ErrorHistory) Recent(n int) []ErrorRecord {
	if n > h.filled {
		n = h.filled
	}
	out := make([]ErrorRecord, 0, n)
	start := h.next - n
	if start < 0 {
		start += len(h.records)
	}
	for i := 0; i < n; i++ {
		out = append(out, h.records[(start+i)%len(h.records)])
	}
	return out
}

// Stats returns total and per-category error counts.
func (h *ErrorHistory) Stats() ErrorStats {
	counts := make(map[Category]uint64, len(h.counts))
	for k, v := range h.counts {
		counts[k] = v
	}
	return ErrorStats{Total: h.total, ByCategory: counts}
}

// Export produces a plain-data snapshot of the history.
func (h *ErrorHistory) Export() ErrorData {
	stats := h.Stats()
	return ErrorData{
		Capacity: len(h.records),
		Total:    stats.Total,
		Counts:   stats.ByCategory,
		Records:  h.Recent(h.filled),
	}
}

// Import restores the history from a snapshot, replacing current state.
func (h *ErrorHistory) Import(data ErrorData) {
	capacity := data.Capacity
	if capacity <= 0 {
		capacity = len(h.records)
	}
	h.records = make([]ErrorRecord, capacity)
	h.next = 0
	h.filled = 0
	h.total = data.Total
	h.counts = make(map[Category]uint64, len(data.Counts))
	for k, v := range data.Counts {
		h.counts[k] = v
	}

	recs := data.Records
	if len(recs) > capacity {
		recs = recs[len(recs)-capacity:]
	}
	for _, rec := range recs {
		h.records[h.next] = rec
		h.next = (h.next + 1) % capacity
		if h.filled < capacity {
			h.filled++
		}
	}
}
