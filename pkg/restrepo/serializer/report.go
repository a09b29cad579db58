package serializer

import (
	"fmt"
	"sync"

	"github.com/fivetwenty-io/restrepo/pkg/restrepo"
)

// Direction tells which conversion produced a Warning.
type Direction string

const (
	// DirectionFromDTO is DTO to model conversion.
	DirectionFromDTO Direction = "from_dto"
	// DirectionToDTO is model to DTO conversion.
	DirectionToDTO Direction = "to_dto"
)

// Warning reports a key that had no field and was skipped.
type Warning struct {
	Serializer string    `json:"serializer"`
	Direction  Direction `json:"direction"`
	Key        string    `json:"key"`
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("%s: no field for key %q (%s)", w.Serializer, w.Key, w.Direction)
}

// Reporter receives mapping warnings. Implementations must be safe for
// concurrent use.
type Reporter interface {
	Report(w Warning)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(w Warning)

// Report calls f(w).
func (f ReporterFunc) Report(w Warning) { f(w) }

// LogReporter writes warnings to a restrepo.Logger at warn level.
type LogReporter struct {
	Logger restrepo.Logger
}

// NewLogReporter creates a LogReporter. A nil logger discards warnings.
func NewLogReporter(logger restrepo.Logger) *LogReporter {
	if logger == nil {
		logger = restrepo.NopLogger{}
	}

	return &LogReporter{Logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(w Warning) {
	r.Logger.Warn("unmapped field skipped", map[string]interface{}{
		"serializer": w.Serializer,
		"direction":  string(w.Direction),
		"key":        w.Key,
	})
}

// Collector keeps warnings in memory.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Reporter.
func (c *Collector) Report(w Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings = append(c.warnings, w)
}

// Warnings returns a copy of everything reported so far.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)

	return out
}

// Reset drops all collected warnings.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.warnings = nil
}

// MultiReporter fans warnings out to several reporters.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(w Warning) {
	for _, r := range m {
		if r != nil {
			r.Report(w)
		}
	}
}
