package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

// Service owns the engine's open-model bookkeeping. All access to the
// engine and to per-model state funnels through its guard: every public
// method takes the lock, and callers that need a multi-step critical
// section use Lock/Unlock around the *Locked variants.
type Service struct {
	mu  sync.Mutex
	eng webifc.Engine
	log *zap.Logger

	// resolved settings per open handle, kept for introspection and
	// for re-resolution checks; the engine remains authoritative on
	// which handles are open
	settings map[webifc.Handle]webifc.EngineSettings
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a logger for lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Service over the given engine.
func New(eng webifc.Engine, opts ...Option) *Service {
	s := &Service{
		eng:      eng,
		log:      zap.NewNop(),
		settings: make(map[webifc.Handle]webifc.EngineSettings),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock acquires the service guard. The façade holds it across compound
// operations (create+load, stream loops) so no engine call ever runs
// concurrently with another.
func (s *Service) Lock() { s.mu.Lock() }

// Unlock releases the service guard.
func (s *Service) Unlock() { s.mu.Unlock() }

// Engine returns the wrapped engine. Callers must hold the guard while
// using it.
func (s *Service) Engine() webifc.Engine { return s.eng }

// Create resolves settings and opens a fresh model, returning its
// handle. A nil settings pointer resolves to all defaults.
func (s *Service) Create(settings *webifc.LoaderSettings) webifc.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CreateLocked(settings)
}

// CreateLocked is Create for callers already holding the guard.
func (s *Service) CreateLocked(settings *webifc.LoaderSettings) webifc.Handle {
	resolved := settings.Resolve()
	h := s.eng.CreateModel(resolved)
	s.settings[h] = resolved
	s.log.Debug("model created",
		zap.Uint32("model", h),
		zap.Bool("coordinate_to_origin", resolved.CoordinateToOrigin),
		zap.Uint16("circle_segments", resolved.CircleSegments))
	return h
}

// IsOpen reports whether the handle refers to an open model.
func (s *Service) IsOpen(model webifc.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.IsOpenLocked(model)
}

// IsOpenLocked is IsOpen for callers already holding the guard.
func (s *Service) IsOpenLocked(model webifc.Handle) bool {
	return s.eng.IsModelOpen(model)
}

// Close releases a model. Closing an unknown or already closed handle
// is a no-op.
func (s *Service) Close(model webifc.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseLocked(model)
}

// CloseLocked is Close for callers already holding the guard.
func (s *Service) CloseLocked(model webifc.Handle) {
	if !s.eng.IsModelOpen(model) {
		return
	}
	s.eng.CloseModel(model)
	delete(s.settings, model)
	s.log.Debug("model closed", zap.Uint32("model", model))
}

// CloseAll releases every open model.
func (s *Service) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseAllLocked()
}

// CloseAllLocked is CloseAll for callers already holding the guard.
func (s *Service) CloseAllLocked() {
	s.eng.CloseAllModels()
	n := len(s.settings)
	s.settings = make(map[webifc.Handle]webifc.EngineSettings)
	s.log.Debug("all models closed", zap.Int("count", n))
}

// Handles returns the open handles in ascending order.
func (s *Service) Handles() []webifc.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]webifc.Handle, 0, len(s.settings))
	for h := range s.settings {
		if s.eng.IsModelOpen(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Settings returns the resolved settings a model was created with.
func (s *Service) Settings(model webifc.Handle) (webifc.EngineSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.settings[model]
	return cfg, ok
}

// LoaderLocked returns the loader for a model, or nil if not open.
// Callers must hold the guard.
func (s *Service) LoaderLocked(model webifc.Handle) webifc.Loader {
	return s.eng.Loader(model)
}

// GeometryLocked returns the geometry processor for a model, or nil if
// not open. Callers must hold the guard.
func (s *Service) GeometryLocked(model webifc.Handle) webifc.GeometryProcessor {
	return s.eng.GeometryProcessor(model)
}
