package api

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/geometry"
	"github.com/dmytro-kravchyna/engine-web-ifc/observe"
	"github.com/dmytro-kravchyna/engine-web-ifc/registry"
)

// API is the operation surface over one engine. Every call validates
// the handle before touching the engine, serializes through the
// registry guard, and converts engine panics into internal errors so
// no fault escapes to the caller.
type API struct {
	eng  webifc.Engine
	reg  *registry.Service
	flat *geometry.Flattener
	log  *zap.Logger
	rec  *observe.Recorder
}

// Option configures an API.
type Option func(*API)

// WithLogger attaches a logger. The registry and flattener inherit it.
func WithLogger(log *zap.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics attaches an operation recorder.
func WithMetrics(rec *observe.Recorder) Option {
	return func(a *API) { a.rec = rec }
}

// New builds the surface over the given engine.
func New(eng webifc.Engine, opts ...Option) *API {
	a := &API{eng: eng, log: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	a.reg = registry.New(eng, registry.WithLogger(a.log))
	a.flat = geometry.NewFlattener(geometry.WithLogger(a.log))
	return a
}

// Version reports the layer's version string.
func (a *API) Version() string { return webifc.Version }

// begin opens an operation: it takes the guard and returns the
// deferred closer that recovers panics, records metrics, and releases
// the guard. Call as: defer a.begin(op, phase, &err)().
func (a *API) begin(op string, phase werr.Phase, err *error) func() {
	start := time.Now()
	a.reg.Lock()
	return func() {
		if r := recover(); r != nil {
			*err = werr.Internal(phase, fmt.Sprint(r))
			a.log.Error("engine fault trapped",
				zap.String("operation", op),
				zap.Any("fault", r))
		}
		a.rec.Observe(op, *err, time.Since(start))
		a.reg.Unlock()
	}
}

// loader resolves the model's loader under the guard, checking the
// handle first.
func (a *API) loader(model webifc.Handle, phase werr.Phase) (webifc.Loader, error) {
	if !a.reg.IsOpenLocked(model) {
		return nil, werr.InvalidModel(phase, model)
	}
	l := a.reg.LoaderLocked(model)
	if l == nil {
		return nil, werr.InvalidModel(phase, model)
	}
	return l, nil
}

// processor resolves the model's geometry processor under the guard.
func (a *API) processor(model webifc.Handle) (webifc.GeometryProcessor, error) {
	if !a.reg.IsOpenLocked(model) {
		return nil, werr.InvalidModel(werr.PhaseGeometry, model)
	}
	p := a.reg.GeometryLocked(model)
	if p == nil {
		return nil, werr.InvalidModel(werr.PhaseGeometry, model)
	}
	return p, nil
}

// Registry exposes the underlying service, mainly for callers that
// need Handles or Settings introspection.
func (a *API) Registry() *registry.Service { return a.reg }
