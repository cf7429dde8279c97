package api

import (
	"bytes"
	"io"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/transfer"
)

// ReaderFunc adapts a pull-style byte-supplying callback to io.Reader.
type ReaderFunc func(p []byte) (int, error)

func (f ReaderFunc) Read(p []byte) (int, error) { return f(p) }

// WriterFunc adapts a push-style byte-consuming callback to io.Writer.
type WriterFunc func(p []byte) (int, error)

func (f WriterFunc) Write(p []byte) (int, error) { return f(p) }

// CreateModel opens an empty model. A nil settings pointer uses the
// defaults.
func (a *API) CreateModel(settings *webifc.LoaderSettings) webifc.Handle {
	var err error
	defer a.begin("create_model", werr.PhaseRegistry, &err)()
	return a.reg.CreateLocked(settings)
}

// OpenModel creates a model and loads a STEP payload into it. An empty
// or malformed payload is rejected and no model is left behind.
func (a *API) OpenModel(settings *webifc.LoaderSettings, data []byte) (h webifc.Handle, err error) {
	defer a.begin("open_model", werr.PhaseLoad, &err)()

	if len(data) == 0 {
		err = werr.InvalidArgument(werr.PhaseLoad, "empty model payload")
		return 0, err
	}
	h = a.reg.CreateLocked(settings)
	loader := a.reg.LoaderLocked(h)
	if loadErr := loader.LoadBytes(data); loadErr != nil {
		a.reg.CloseLocked(h)
		err = loadErr
		return 0, err
	}
	return h, nil
}

// OpenModelFrom creates a model and loads it from a reader. The reader
// is drained while the guard is held and must not call back into this
// API.
func (a *API) OpenModelFrom(settings *webifc.LoaderSettings, r io.Reader) (h webifc.Handle, err error) {
	defer a.begin("open_model_from", werr.PhaseLoad, &err)()

	if r == nil {
		err = werr.InvalidArgument(werr.PhaseLoad, "nil reader")
		return 0, err
	}
	h = a.reg.CreateLocked(settings)
	loader := a.reg.LoaderLocked(h)
	if loadErr := loader.LoadFrom(r); loadErr != nil {
		a.reg.CloseLocked(h)
		err = loadErr
		return 0, err
	}
	return h, nil
}

// SaveModel serializes the model and returns the payload.
func (a *API) SaveModel(model webifc.Handle, orderByExpressID bool) (data []byte, err error) {
	defer a.begin("save_model", werr.PhaseSave, &err)()

	loader, lerr := a.loader(model, werr.PhaseSave)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	var buf bytes.Buffer
	if serr := loader.SaveTo(&buf, orderByExpressID); serr != nil {
		err = serr
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveModelTo serializes the model into a writer. The writer runs
// while the guard is held and must not call back into this API.
func (a *API) SaveModelTo(model webifc.Handle, w io.Writer, orderByExpressID bool) (err error) {
	defer a.begin("save_model_to", werr.PhaseSave, &err)()

	loader, lerr := a.loader(model, werr.PhaseSave)
	if lerr != nil {
		err = lerr
		return err
	}
	err = loader.SaveTo(w, orderByExpressID)
	return err
}

// SaveModelInto serializes the model through the preflight/fill
// convention: a nil dst returns the payload size, a sufficiently large
// dst receives the bytes and the count is returned. A dst that is too
// small yields zero.
func (a *API) SaveModelInto(model webifc.Handle, dst []byte, orderByExpressID bool) (n int, err error) {
	defer a.begin("save_model_into", werr.PhaseSave, &err)()

	loader, lerr := a.loader(model, werr.PhaseSave)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	scratch := transfer.GetScratch()
	defer transfer.PutScratch(scratch)

	buf := bytes.NewBuffer(*scratch)
	if serr := loader.SaveTo(buf, orderByExpressID); serr != nil {
		err = serr
		return 0, err
	}
	*scratch = buf.Bytes()[:0]
	return transfer.CopyBytes(buf.Bytes(), dst), nil
}

// CloseModel releases a model. Closing an unknown handle is accepted
// silently.
func (a *API) CloseModel(model webifc.Handle) {
	var err error
	defer a.begin("close_model", werr.PhaseRegistry, &err)()
	a.reg.CloseLocked(model)
}

// CloseAllModels releases every open model.
func (a *API) CloseAllModels() {
	var err error
	defer a.begin("close_all_models", werr.PhaseRegistry, &err)()
	a.reg.CloseAllLocked()
}

// IsModelOpen reports whether the handle refers to an open model.
func (a *API) IsModelOpen(model webifc.Handle) bool {
	var err error
	defer a.begin("is_model_open", werr.PhaseRegistry, &err)()
	return a.reg.IsOpenLocked(model)
}

// ModelSize returns the byte size of the loaded payload, or 0 for an
// unknown handle.
func (a *API) ModelSize(model webifc.Handle) uint64 {
	var err error
	defer a.begin("model_size", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		return 0
	}
	return loader.TotalSize()
}
