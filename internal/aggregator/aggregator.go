package aggregator

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// NoLevel is the level bucket of emitted records without a level key.
const NoLevel = "-"

// Stats holds a point-in-time snapshot of the run counters.
type Stats struct {
	Uptime        string           `json:"uptime"`
	LevelCounts   map[string]int64 `json:"level_counts"`
	Lines         int64            `json:"lines"`
	Structured    int64            `json:"structured"`
	Opaque        int64            `json:"opaque"`
	OpaqueDropped int64            `json:"opaque_dropped"`
	Filtered      int64            `json:"filtered"`
	Emitted       int64            `json:"emitted"`
	LPS           float64          `json:"lps"`
	FilesRead     int              `json:"files_read"`
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	levels := zerolog.Dict()
	for level, count := range s.LevelCounts {
		levels.Int64(level, count)
	}

	e.Str("uptime", s.Uptime).
		Int64("lines", s.Lines).
		Int64("structured", s.Structured).
		Int64("opaque", s.Opaque).
		Int64("opaque_dropped", s.OpaqueDropped).
		Int64("filtered", s.Filtered).
		Int64("emitted", s.Emitted).
		Float64("lps", s.LPS).
		Int("files_read", s.FilesRead).
		Dict("levels", levels)
}

// Aggregator counts what happened to every line of a run.
// Lines are processed one at a time; the mutex only guards Snapshot calls made
// from another goroutine, such as a shutdown handler.
type Aggregator struct {
	mu            sync.RWMutex
	startTime     time.Time
	structured    int64
	opaque        int64
	opaqueDropped int64
	filtered      int64
	emitted       int64
	levelCounts   map[string]int64
	fileCount     func() int
}

// New creates an Aggregator. fileCountFn reports how many inputs have been opened so far.
func New(fileCountFn func() int) *Aggregator {
	if fileCountFn == nil {
		fileCountFn = func() int { return 0 }
	}

	return &Aggregator{
		startTime:   time.Now(),
		levelCounts: make(map[string]int64),
		fileCount:   fileCountFn,
	}
}

// RecordOpaque counts a line that is not a JSON object.
func (a *Aggregator) RecordOpaque(emitted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.opaque++
	if !emitted {
		a.opaqueDropped++
	}
}

// RecordFiltered counts a structured record rejected by the filter.
func (a *Aggregator) RecordFiltered() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.structured++
	a.filtered++
}

// RecordEmitted counts a structured record that was written, under its level code.
func (a *Aggregator) RecordEmitted(level string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if level == "" {
		level = NoLevel
	}

	a.structured++
	a.emitted++
	a.levelCounts[level]++
}

// Snapshot returns the current counters.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	// Copy level counts.
	counts := make(map[string]int64, len(a.levelCounts))
	for k, v := range a.levelCounts {
		counts[k] = v
	}

	elapsed := time.Since(a.startTime)
	lines := a.structured + a.opaque

	var lps float64
	if elapsed > 0 {
		lps = float64(lines) / elapsed.Seconds()
	}

	return Stats{
		Uptime:        elapsed.Truncate(time.Millisecond).String(),
		LevelCounts:   counts,
		Lines:         lines,
		Structured:    a.structured,
		Opaque:        a.opaque,
		OpaqueDropped: a.opaqueDropped,
		Filtered:      a.filtered,
		Emitted:       a.emitted,
		LPS:           lps,
		FilesRead:     a.fileCount(),
	}
}
