// Package observe publishes process-local operation counters via expvar.
package observe

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

var recorderSeq uint64

// Recorder aggregates per-operation call counts, failure counts keyed
// by boundary code, and cumulative duration. It is published under its
// expvar name so any expvar scraper can read it without another
// dependency.
type Recorder struct {
	name      string
	mu        sync.Mutex
	calls     map[string]int64
	failures  map[string]map[string]int64
	durations map[string]float64
}

// Snapshot is a read-only view of the recorded counters.
type Snapshot struct {
	Calls       map[string]int64            `json:"calls_total"`
	Failures    map[string]map[string]int64 `json:"failures_total"`
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewRecorder publishes a recorder under the supplied expvar name. An
// empty name gets a generated one.
func NewRecorder(name string) *Recorder {
	if name == "" {
		id := atomic.AddUint64(&recorderSeq, 1)
		name = fmt.Sprintf("webifc_api_metrics_%d", id)
	}
	rec := &Recorder{
		name:      name,
		calls:     make(map[string]int64),
		failures:  make(map[string]map[string]int64),
		durations: make(map[string]float64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *Recorder) Name() string { return r.name }

// Observe records one operation outcome. Failed calls are additionally
// counted under their boundary code.
func (r *Recorder) Observe(operation string, err error, duration time.Duration) {
	if r == nil || operation == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[operation]++
	r.durations[operation] += float64(duration) / float64(time.Millisecond)
	if err != nil {
		code := werr.CodeOf(err).String()
		if _, ok := r.failures[operation]; !ok {
			r.failures[operation] = make(map[string]int64, 2)
		}
		r.failures[operation][code]++
	}
}

// Snapshot returns an immutable copy of the counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make(map[string]int64, len(r.calls))
	for op, n := range r.calls {
		calls[op] = n
	}
	failures := make(map[string]map[string]int64, len(r.failures))
	for op, byCode := range r.failures {
		cpy := make(map[string]int64, len(byCode))
		for code, n := range byCode {
			cpy[code] = n
		}
		failures[op] = cpy
	}
	durations := make(map[string]float64, len(r.durations))
	for op, ms := range r.durations {
		durations[op] = ms
	}

	return Snapshot{
		Calls:       calls,
		Failures:    failures,
		DurationsMS: durations,
		RecordedAt:  time.Now().UTC(),
	}
}
