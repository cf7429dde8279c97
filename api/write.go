package api

import (
	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/p21"
	"github.com/dmytro-kravchyna/engine-web-ifc/transfer"
)

// WriteLine stores a data line built from a caller-prepared value
// sequence, replacing any line with the same identifier.
func (a *API) WriteLine(model webifc.Handle, expressID, typeCode uint32, args []webifc.ArgValue) (err error) {
	defer a.begin("write_line", werr.PhaseWrite, &err)()

	loader, lerr := a.loader(model, werr.PhaseWrite)
	if lerr != nil {
		err = lerr
		return err
	}
	err = loader.WriteLine(expressID, typeCode, args)
	return err
}

// WriteHeaderLine appends a header line of the given type.
func (a *API) WriteHeaderLine(model webifc.Handle, headerType uint32, args []webifc.ArgValue) (err error) {
	defer a.begin("write_header_line", werr.PhaseWrite, &err)()

	loader, lerr := a.loader(model, werr.PhaseWrite)
	if lerr != nil {
		err = lerr
		return err
	}
	err = loader.WriteHeaderLine(headerType, args)
	return err
}

// RemoveLine deletes an element. The removal is immediately visible to
// validity checks.
func (a *API) RemoveLine(model webifc.Handle, expressID uint32) (err error) {
	defer a.begin("remove_line", werr.PhaseWrite, &err)()

	loader, lerr := a.loader(model, werr.PhaseWrite)
	if lerr != nil {
		err = lerr
		return err
	}
	loader.RemoveLine(expressID)
	return nil
}

// ResetCache drops the model's cached geometry without closing it.
func (a *API) ResetCache(model webifc.Handle) (err error) {
	defer a.begin("reset_cache", werr.PhaseWrite, &err)()

	loader, lerr := a.loader(model, werr.PhaseWrite)
	if lerr != nil {
		err = lerr
		return err
	}
	loader.ResetCache()
	return nil
}

// GenerateGUID returns a fresh 22-character identifier from the
// model's loader.
func (a *API) GenerateGUID(model webifc.Handle) (g string, err error) {
	defer a.begin("generate_guid", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return "", err
	}
	return loader.GenerateGUID(), nil
}

// GenerateGUIDInto writes a fresh identifier through the
// preflight/fill convention.
func (a *API) GenerateGUIDInto(model webifc.Handle, dst []byte) (n int, err error) {
	defer a.begin("generate_guid_into", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	return transfer.CopyString(loader.GenerateGUID(), dst), nil
}

// EncodeText renders plain text in the STEP textual encoding. It is a
// stateless pass-through and needs no handle.
func (a *API) EncodeText(text string) string {
	return p21.Encode(text)
}

// DecodeText parses STEP-encoded text back to plain text.
func (a *API) DecodeText(encoded string) (string, error) {
	return p21.Decode(encoded)
}

// SetLogLevel forwards a verbosity change to the engine.
func (a *API) SetLogLevel(level webifc.LogLevel) {
	var err error
	defer a.begin("set_log_level", werr.PhaseRegistry, &err)()
	a.eng.SetLogLevel(level)
}
