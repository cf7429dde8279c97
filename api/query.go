package api

import (
	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/transfer"
)

// MaxExpressID returns the highest element identifier in the model.
func (a *API) MaxExpressID(model webifc.Handle) (id uint32, err error) {
	defer a.begin("max_express_id", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	return loader.MaxExpressID(), nil
}

// NextExpressID returns the smallest valid identifier after the given
// one, or 0 when none remains.
func (a *API) NextExpressID(model webifc.Handle, after uint32) (id uint32, err error) {
	defer a.begin("next_express_id", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	return loader.NextExpressID(after), nil
}

// IsValidExpressID reports whether the identifier names a line. A
// closed handle reports false, the same signal as a missing line.
func (a *API) IsValidExpressID(model webifc.Handle, expressID uint32) bool {
	var err error
	defer a.begin("is_valid_express_id", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		return false
	}
	return loader.IsValidExpressID(expressID)
}

// LineType returns a line's type code, or 0 for a missing line or
// closed handle.
func (a *API) LineType(model webifc.Handle, expressID uint32) uint32 {
	var err error
	defer a.begin("line_type", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		return 0
	}
	return loader.LineType(expressID)
}

// ArgumentCount returns the number of top-level arguments of a line.
func (a *API) ArgumentCount(model webifc.Handle, expressID uint32) (n uint32, err error) {
	defer a.begin("argument_count", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	if !loader.IsValidExpressID(expressID) {
		err = werr.NotFound(werr.PhaseQuery, "line", expressID)
		return 0, err
	}
	return loader.ArgumentCount(expressID), nil
}

// LineIDsWithType returns the identifiers of every line with the given
// type, in ascending order.
func (a *API) LineIDsWithType(model webifc.Handle, typeCode uint32) (ids []uint32, err error) {
	defer a.begin("line_ids_with_type", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	return loader.ExpressIDsWithType(typeCode), nil
}

// LineIDsWithTypes unions the identifier sets of several types,
// preserving per-type ascending order.
func (a *API) LineIDsWithTypes(model webifc.Handle, typeCodes ...uint32) (ids []uint32, err error) {
	defer a.begin("line_ids_with_types", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	for _, tc := range typeCodes {
		ids = append(ids, loader.ExpressIDsWithType(tc)...)
	}
	return ids, nil
}

// AllLineIDs returns every line identifier in ascending order.
func (a *API) AllLineIDs(model webifc.Handle) (ids []uint32, err error) {
	defer a.begin("all_line_ids", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	return loader.AllLines(), nil
}

// ModelSchema returns the schema identifier from the FILE_SCHEMA
// header line, for example "IFC4".
func (a *API) ModelSchema(model webifc.Handle) (schema string, err error) {
	defer a.begin("model_schema", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return "", err
	}
	lines := loader.HeaderLinesWithType(webifc.FileSchema)
	if len(lines) == 0 {
		err = werr.NotFound(werr.PhaseQuery, "header line", webifc.FileSchema)
		return "", err
	}
	if merr := loader.MoveToHeaderArgument(lines[0], 0); merr != nil {
		err = merr
		return "", err
	}
	if loader.TokenType() != webifc.TokenSetBegin {
		loader.StepBack()
	}
	schema, err = loader.StringArgument()
	return schema, err
}

// NameFromTypeCode resolves a type code to its schema name. Schema
// lookups are handle-independent.
func (a *API) NameFromTypeCode(typeCode uint32) string {
	var err error
	defer a.begin("name_from_type_code", werr.PhaseQuery, &err)()
	return a.eng.SchemaManager().TypeCodeToName(typeCode)
}

// TypeCodeFromName resolves a schema name to its type code.
func (a *API) TypeCodeFromName(name string) uint32 {
	var err error
	defer a.begin("type_code_from_name", werr.PhaseQuery, &err)()
	return a.eng.SchemaManager().NameToTypeCode(name)
}

// IsIfcElement reports whether the type code names a product element.
func (a *API) IsIfcElement(typeCode uint32) bool {
	var err error
	defer a.begin("is_ifc_element", werr.PhaseQuery, &err)()
	return a.eng.SchemaManager().IsElement(typeCode)
}

// moveTo positions the cursor and maps validation failures.
func moveTo(loader webifc.Loader, expressID, argIndex uint32) error {
	if !loader.IsValidExpressID(expressID) {
		return werr.NotFound(werr.PhaseQuery, "line", expressID)
	}
	return loader.MoveToArgument(expressID, argIndex)
}

// StringArgument reads the text argument at (line, index).
func (a *API) StringArgument(model webifc.Handle, expressID, argIndex uint32) (s string, err error) {
	defer a.begin("string_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return "", err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return "", err
	}
	s, err = loader.StringArgument()
	return s, err
}

// StringArgumentInto reads a text argument through the preflight/fill
// convention: nil dst returns the payload size, a sized dst receives
// the bytes plus a terminator.
func (a *API) StringArgumentInto(model webifc.Handle, expressID, argIndex uint32, dst []byte) (n int, err error) {
	defer a.begin("string_argument_into", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return 0, err
	}
	s, serr := loader.StringArgument()
	if serr != nil {
		err = serr
		return 0, err
	}
	return transfer.CopyString(s, dst), nil
}

// DoubleArgument reads the numeric argument at (line, index).
func (a *API) DoubleArgument(model webifc.Handle, expressID, argIndex uint32) (v float64, err error) {
	defer a.begin("double_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return 0, err
	}
	v, err = loader.DoubleArgument()
	return v, err
}

// IntArgument reads the integer argument at (line, index).
func (a *API) IntArgument(model webifc.Handle, expressID, argIndex uint32) (v int64, err error) {
	defer a.begin("int_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return 0, err
	}
	v, err = loader.IntArgument()
	return v, err
}

// RefArgument reads the reference argument at (line, index).
func (a *API) RefArgument(model webifc.Handle, expressID, argIndex uint32) (ref uint32, err error) {
	defer a.begin("ref_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return 0, err
	}
	ref, err = loader.RefArgument()
	return ref, err
}

// ArgumentTokenType returns the token tag of the argument at (line,
// index) without interpreting it.
func (a *API) ArgumentTokenType(model webifc.Handle, expressID, argIndex uint32) (tt webifc.TokenType, err error) {
	defer a.begin("argument_token_type", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return webifc.TokenUnknown, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return webifc.TokenUnknown, err
	}
	return loader.TokenType(), nil
}

// SetArgument returns the references inside the set-typed argument at
// (line, index). Non-reference members are skipped.
func (a *API) SetArgument(model webifc.Handle, expressID, argIndex uint32) (refs []uint32, err error) {
	defer a.begin("set_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	if merr := moveTo(loader, expressID, argIndex); merr != nil {
		err = merr
		return nil, err
	}
	if loader.TokenType() != webifc.TokenSetBegin {
		err = werr.InvalidArgument(werr.PhaseQuery, "argument is not a set")
		return nil, err
	}
	depth := 1
	for !loader.AtEnd() {
		switch loader.TokenType() {
		case webifc.TokenSetBegin:
			depth++
		case webifc.TokenSetEnd:
			depth--
			if depth == 0 {
				return refs, nil
			}
		case webifc.TokenRef:
			if depth == 1 {
				loader.StepBack()
				ref, rerr := loader.RefArgument()
				if rerr != nil {
					err = rerr
					return nil, err
				}
				refs = append(refs, ref)
			}
		}
	}
	return refs, nil
}

// HeaderArgumentCount returns the argument count of the first header
// line with the given type, or 0 when absent.
func (a *API) HeaderArgumentCount(model webifc.Handle, headerType uint32) (n uint32, err error) {
	defer a.begin("header_argument_count", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	return loader.HeaderArgumentCount(headerType), nil
}

// HeaderStringArgument reads a text argument from the first header
// line with the given type.
func (a *API) HeaderStringArgument(model webifc.Handle, headerType, argIndex uint32) (s string, err error) {
	defer a.begin("header_string_argument", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return "", err
	}
	lines := loader.HeaderLinesWithType(headerType)
	if len(lines) == 0 {
		err = werr.NotFound(werr.PhaseQuery, "header line", headerType)
		return "", err
	}
	if merr := loader.MoveToHeaderArgument(lines[0], argIndex); merr != nil {
		err = merr
		return "", err
	}
	s, err = loader.StringArgument()
	return s, err
}

// HeaderArgumentTokenType returns the token tag of a header argument.
func (a *API) HeaderArgumentTokenType(model webifc.Handle, headerType, argIndex uint32) (tt webifc.TokenType, err error) {
	defer a.begin("header_argument_token_type", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return webifc.TokenUnknown, err
	}
	lines := loader.HeaderLinesWithType(headerType)
	if len(lines) == 0 {
		err = werr.NotFound(werr.PhaseQuery, "header line", headerType)
		return webifc.TokenUnknown, err
	}
	if merr := loader.MoveToHeaderArgument(lines[0], argIndex); merr != nil {
		err = merr
		return webifc.TokenUnknown, err
	}
	return loader.TokenType(), nil
}

// InverseProperty finds the lines of the target types whose argument
// at position references the given element, either directly or inside
// a set. With set false the search stops at the first hit.
func (a *API) InverseProperty(model webifc.Handle, expressID uint32, targetTypes []uint32, position uint32, set bool) (ids []uint32, err error) {
	defer a.begin("inverse_property", werr.PhaseQuery, &err)()

	loader, lerr := a.loader(model, werr.PhaseQuery)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	for _, tc := range targetTypes {
		for _, candidate := range loader.ExpressIDsWithType(tc) {
			if merr := loader.MoveToArgument(candidate, position); merr != nil {
				continue
			}
			switch loader.TokenType() {
			case webifc.TokenRef:
				loader.StepBack()
				ref, rerr := loader.RefArgument()
				if rerr == nil && ref == expressID {
					ids = append(ids, candidate)
					if !set {
						return ids, nil
					}
				}
			case webifc.TokenSetBegin:
				for !loader.AtEnd() {
					tt := loader.TokenType()
					if tt == webifc.TokenSetEnd {
						break
					}
					if tt != webifc.TokenRef {
						continue
					}
					loader.StepBack()
					ref, rerr := loader.RefArgument()
					if rerr == nil && ref == expressID {
						ids = append(ids, candidate)
						if !set {
							return ids, nil
						}
					}
				}
			}
		}
	}
	return ids, nil
}
