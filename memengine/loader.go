package memengine

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/guid"
	"github.com/dmytro-kravchyna/engine-web-ifc/p21"
)

type line struct {
	typeCode uint32
	typeName string
	args     []webifc.ArgValue
}

// LoadBytes parses a STEP payload into the model. An empty or malformed
// payload is rejected without touching existing state.
func (m *Model) LoadBytes(data []byte) error {
	if len(data) == 0 {
		return werr.InvalidData(werr.PhaseLoad, "empty payload")
	}
	lines, headers, order, err := parseStep(data, m.schema)
	if err != nil {
		return err
	}
	m.lines = lines
	m.headers = headers
	m.order = order
	m.rawSize = uint64(len(data))
	m.maxID = 0
	for id := range lines {
		if id > m.maxID {
			m.maxID = id
		}
	}
	return nil
}

// LoadFrom drains the reader and parses its contents.
func (m *Model) LoadFrom(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return werr.Wrap(werr.PhaseLoad, werr.KindInternal, err, "reading payload")
	}
	return m.LoadBytes(data)
}

// SaveTo serializes the model as STEP text.
func (m *Model) SaveTo(w io.Writer, orderByExpressID bool) error {
	ids := make([]uint32, len(m.order))
	copy(ids, m.order)
	if orderByExpressID {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}

	var b strings.Builder
	b.WriteString("ISO-10303-21;\nHEADER;\n")
	for _, h := range m.headers {
		b.WriteString(h.typeName)
		b.WriteByte('(')
		writeArgs(&b, h.args)
		b.WriteString(");\n")
	}
	b.WriteString("ENDSEC;\nDATA;\n")
	for _, id := range ids {
		ln, ok := m.lines[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "#%d=%s(", id, ln.typeName)
		writeArgs(&b, ln.args)
		b.WriteString(");\n")
	}
	b.WriteString("ENDSEC;\nEND-ISO-10303-21;\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return werr.Wrap(werr.PhaseSave, werr.KindInternal, err, "writing payload")
	}
	return nil
}

func (m *Model) TotalSize() uint64 { return m.rawSize }

func (m *Model) MaxExpressID() uint32 { return m.maxID }

// NextExpressID returns the smallest valid identifier greater than
// after, or 0 when none remains.
func (m *Model) NextExpressID(after uint32) uint32 {
	var best uint32
	for id := range m.lines {
		if id > after && (best == 0 || id < best) {
			best = id
		}
	}
	return best
}

func (m *Model) IsValidExpressID(expressID uint32) bool {
	_, ok := m.lines[expressID]
	return ok
}

// LineType returns the type code of a line, or 0 for a missing line.
func (m *Model) LineType(expressID uint32) uint32 {
	ln, ok := m.lines[expressID]
	if !ok {
		return 0
	}
	return ln.typeCode
}

func (m *Model) ArgumentCount(expressID uint32) uint32 {
	ln, ok := m.lines[expressID]
	if !ok {
		return 0
	}
	return uint32(len(ln.args))
}

func (m *Model) ExpressIDsWithType(typeCode uint32) []uint32 {
	var out []uint32
	for id, ln := range m.lines {
		if ln.typeCode == typeCode {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Model) AllLines() []uint32 {
	out := make([]uint32, 0, len(m.lines))
	for id := range m.lines {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MoveToArgument positions the cursor on the top-level argument at
// argIndex of the given line.
func (m *Model) MoveToArgument(expressID, argIndex uint32) error {
	ln, ok := m.lines[expressID]
	if !ok {
		return werr.NotFound(werr.PhaseQuery, "line", expressID)
	}
	return m.positionCursor(ln.args, argIndex)
}

func (m *Model) positionCursor(args []webifc.ArgValue, argIndex uint32) error {
	toks, starts := flattenArgs(args)
	if int(argIndex) >= len(starts) {
		return werr.OutOfRange(werr.PhaseQuery, "argument index", argIndex)
	}
	m.tokens = toks
	m.pos = starts[argIndex]
	return nil
}

// TokenType consumes the token under the cursor and returns its tag.
func (m *Model) TokenType() webifc.TokenType {
	if m.pos >= len(m.tokens) {
		return webifc.TokenLineEnd
	}
	t := m.tokens[m.pos].Type
	m.pos++
	return t
}

func (m *Model) StepBack() {
	if m.pos > 0 {
		m.pos--
	}
}

func (m *Model) AtEnd() bool {
	return m.pos >= len(m.tokens) || m.tokens[m.pos].Type == webifc.TokenLineEnd
}

func (m *Model) consume() (webifc.ArgValue, bool) {
	if m.AtEnd() {
		return webifc.ArgValue{}, false
	}
	t := m.tokens[m.pos]
	m.pos++
	return t, true
}

func (m *Model) StringArgument() (string, error) {
	tok, ok := m.consume()
	if !ok {
		return "", werr.InvalidArgument(werr.PhaseQuery, "cursor at end of line")
	}
	switch tok.Type {
	case webifc.TokenString, webifc.TokenEnum, webifc.TokenLabel:
		return tok.Str, nil
	}
	return "", werr.InvalidArgument(werr.PhaseQuery, "argument is not text")
}

func (m *Model) DoubleArgument() (float64, error) {
	tok, ok := m.consume()
	if !ok {
		return 0, werr.InvalidArgument(werr.PhaseQuery, "cursor at end of line")
	}
	switch tok.Type {
	case webifc.TokenReal:
		return tok.Real, nil
	case webifc.TokenInteger:
		return float64(tok.Int), nil
	}
	return 0, werr.InvalidArgument(werr.PhaseQuery, "argument is not numeric")
}

func (m *Model) IntArgument() (int64, error) {
	tok, ok := m.consume()
	if !ok {
		return 0, werr.InvalidArgument(werr.PhaseQuery, "cursor at end of line")
	}
	switch tok.Type {
	case webifc.TokenInteger:
		return tok.Int, nil
	case webifc.TokenReal:
		return int64(tok.Real), nil
	}
	return 0, werr.InvalidArgument(werr.PhaseQuery, "argument is not numeric")
}

func (m *Model) RefArgument() (uint32, error) {
	tok, ok := m.consume()
	if !ok {
		return 0, werr.InvalidArgument(werr.PhaseQuery, "cursor at end of line")
	}
	if tok.Type != webifc.TokenRef {
		return 0, werr.InvalidArgument(werr.PhaseQuery, "argument is not a reference")
	}
	return tok.Ref, nil
}

// HeaderLinesWithType returns the positions of the header lines whose
// type matches.
func (m *Model) HeaderLinesWithType(headerType uint32) []uint32 {
	var out []uint32
	for i, h := range m.headers {
		if h.typeCode == headerType {
			out = append(out, uint32(i))
		}
	}
	return out
}

func (m *Model) MoveToHeaderArgument(lineID, argIndex uint32) error {
	if int(lineID) >= len(m.headers) {
		return werr.OutOfRange(werr.PhaseQuery, "header line", lineID)
	}
	return m.positionCursor(m.headers[lineID].args, argIndex)
}

func (m *Model) HeaderArgumentCount(headerType uint32) uint32 {
	for _, h := range m.headers {
		if h.typeCode == headerType {
			return uint32(len(h.args))
		}
	}
	return 0
}

// WriteLine stores or replaces a data line.
func (m *Model) WriteLine(expressID, typeCode uint32, args []webifc.ArgValue) error {
	if expressID == 0 {
		return werr.InvalidArgument(werr.PhaseWrite, "express ID must be positive")
	}
	name := m.schema.TypeCodeToName(typeCode)
	if name == "" {
		name = fmt.Sprintf("UNKNOWNTYPE%d", typeCode)
	}
	if _, exists := m.lines[expressID]; !exists {
		m.order = append(m.order, expressID)
	}
	m.lines[expressID] = &line{typeCode: typeCode, typeName: name, args: cloneArgs(args)}
	if expressID > m.maxID {
		m.maxID = expressID
	}
	return nil
}

// WriteHeaderLine appends a header line.
func (m *Model) WriteHeaderLine(headerType uint32, args []webifc.ArgValue) error {
	name := m.schema.TypeCodeToName(headerType)
	if name == "" {
		return werr.InvalidArgument(werr.PhaseWrite, "unknown header type")
	}
	m.headers = append(m.headers, line{typeCode: headerType, typeName: name, args: cloneArgs(args)})
	return nil
}

// RemoveLine deletes a data line. Removing a missing line is a no-op.
func (m *Model) RemoveLine(expressID uint32) {
	if _, ok := m.lines[expressID]; !ok {
		return
	}
	delete(m.lines, expressID)
	for i, id := range m.order {
		if id == expressID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Model) GenerateGUID() string { return guid.New() }

// ResetCache drops the geometry processor's cached buffers.
func (m *Model) ResetCache() { m.proc.Clear() }

func cloneArgs(args []webifc.ArgValue) []webifc.ArgValue {
	out := make([]webifc.ArgValue, len(args))
	copy(out, args)
	return out
}

// flattenArgs expands an argument tree into the linear token stream the
// cursor walks, plus the token offset of each top-level argument.
func flattenArgs(args []webifc.ArgValue) (toks []webifc.ArgValue, starts []int) {
	var emit func(v webifc.ArgValue)
	emit = func(v webifc.ArgValue) {
		switch v.Type {
		case webifc.TokenSetBegin:
			toks = append(toks, webifc.ArgValue{Type: webifc.TokenSetBegin})
			for _, c := range v.List {
				emit(c)
			}
			toks = append(toks, webifc.ArgValue{Type: webifc.TokenSetEnd})
		case webifc.TokenLabel:
			toks = append(toks, webifc.ArgValue{Type: webifc.TokenLabel, Str: v.Str})
			toks = append(toks, webifc.ArgValue{Type: webifc.TokenSetBegin})
			for _, c := range v.List {
				emit(c)
			}
			toks = append(toks, webifc.ArgValue{Type: webifc.TokenSetEnd})
		default:
			toks = append(toks, v)
		}
	}
	for _, a := range args {
		starts = append(starts, len(toks))
		emit(a)
	}
	toks = append(toks, webifc.ArgValue{Type: webifc.TokenLineEnd})
	return toks, starts
}

// parseStep splits a STEP payload into header and data lines. It
// understands just enough of ISO 10303-21 for test fixtures: the
// section wrappers, #id=TYPE(...) statements, and the argument grammar.
func parseStep(data []byte, schema *Schema) (map[uint32]*line, []line, []uint32, error) {
	lines := make(map[uint32]*line)
	var headers []line
	var order []uint32

	inData := false
	for _, stmt := range splitStatements(string(data)) {
		upper := strings.ToUpper(stmt)
		switch {
		case upper == "ISO-10303-21" || upper == "END-ISO-10303-21" || upper == "ENDSEC":
			continue
		case upper == "HEADER":
			inData = false
			continue
		case upper == "DATA":
			inData = true
			continue
		}

		if !inData {
			name, args, err := parseTyped(stmt)
			if err != nil {
				return nil, nil, nil, err
			}
			headers = append(headers, line{
				typeCode: schema.NameToTypeCode(name),
				typeName: name,
				args:     args,
			})
			continue
		}

		if !strings.HasPrefix(stmt, "#") {
			return nil, nil, nil, werr.InvalidData(werr.PhaseLoad, "data statement without express ID")
		}
		eq := strings.IndexByte(stmt, '=')
		if eq < 0 {
			return nil, nil, nil, werr.InvalidData(werr.PhaseLoad, "data statement without assignment")
		}
		id64, err := strconv.ParseUint(strings.TrimSpace(stmt[1:eq]), 10, 32)
		if err != nil || id64 == 0 {
			return nil, nil, nil, werr.InvalidData(werr.PhaseLoad, "invalid express ID")
		}
		name, args, perr := parseTyped(strings.TrimSpace(stmt[eq+1:]))
		if perr != nil {
			return nil, nil, nil, perr
		}
		id := uint32(id64)
		if _, dup := lines[id]; !dup {
			order = append(order, id)
		}
		lines[id] = &line{typeCode: schema.NameToTypeCode(name), typeName: name, args: args}
	}

	if len(lines) == 0 {
		return nil, nil, nil, werr.InvalidData(werr.PhaseLoad, "no data lines")
	}
	return lines, headers, order, nil
}

// splitStatements cuts the payload at semicolons outside string
// literals and trims whitespace.
func splitStatements(s string) []string {
	var out []string
	start := 0
	inString := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				if stmt := strings.TrimSpace(s[start:i]); stmt != "" {
					out = append(out, stmt)
				}
				start = i + 1
			}
		}
	}
	return out
}

// parseTyped parses NAME(arguments).
func parseTyped(s string) (string, []webifc.ArgValue, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", nil, werr.InvalidData(werr.PhaseLoad, "malformed typed statement")
	}
	name := strings.TrimSpace(s[:open])
	if name == "" {
		return "", nil, werr.InvalidData(werr.PhaseLoad, "typed statement without name")
	}
	p := &argParser{s: s[open+1 : len(s)-1]}
	args, err := p.parseList()
	if err != nil {
		return "", nil, err
	}
	return strings.ToUpper(name), args, nil
}

type argParser struct {
	s string
	i int
}

func (p *argParser) skipSpace() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\r', '\n':
			p.i++
		default:
			return
		}
	}
}

// parseList reads comma-separated values until the input (or the
// enclosing parenthesis) ends.
func (p *argParser) parseList() ([]webifc.ArgValue, error) {
	var out []webifc.ArgValue
	for {
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] == ')' {
			return out, nil
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.i < len(p.s) && p.s[p.i] == ',' {
			p.i++
		}
	}
}

func (p *argParser) parseValue() (webifc.ArgValue, error) {
	p.skipSpace()
	if p.i >= len(p.s) {
		return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "truncated argument list")
	}
	switch c := p.s[p.i]; {
	case c == '\'':
		return p.parseString()
	case c == '#':
		p.i++
		start := p.i
		for p.i < len(p.s) && p.s[p.i] >= '0' && p.s[p.i] <= '9' {
			p.i++
		}
		id, err := strconv.ParseUint(p.s[start:p.i], 10, 32)
		if err != nil {
			return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "invalid reference")
		}
		return webifc.Ref(uint32(id)), nil
	case c == '$' || c == '*':
		p.i++
		return webifc.Empty(), nil
	case c == '.':
		p.i++
		end := strings.IndexByte(p.s[p.i:], '.')
		if end < 0 {
			return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "unterminated enumeration")
		}
		v := webifc.Enum(p.s[p.i : p.i+end])
		p.i += end + 1
		return v, nil
	case c == '(':
		p.i++
		list, err := p.parseList()
		if err != nil {
			return webifc.ArgValue{}, err
		}
		if p.i >= len(p.s) || p.s[p.i] != ')' {
			return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "unbalanced parentheses")
		}
		p.i++
		return webifc.Set(list...), nil
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
		return p.parseLabel()
	}
	return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad,
		fmt.Sprintf("unexpected character %q", p.s[p.i]))
}

func (p *argParser) parseString() (webifc.ArgValue, error) {
	p.i++ // opening quote
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c == '\'' {
			if p.i+1 < len(p.s) && p.s[p.i+1] == '\'' {
				b.WriteString("''")
				p.i += 2
				continue
			}
			p.i++
			decoded, err := p21.Decode(b.String())
			if err != nil {
				return webifc.ArgValue{}, err
			}
			return webifc.String(decoded), nil
		}
		b.WriteByte(c)
		p.i++
	}
	return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "unterminated string")
}

func (p *argParser) parseNumber() (webifc.ArgValue, error) {
	start := p.i
	p.i++
	for p.i < len(p.s) && strings.ContainsRune("0123456789.eE+-", rune(p.s[p.i])) {
		p.i++
	}
	text := p.s[start:p.i]
	if strings.ContainsAny(text, ".eE") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "invalid real literal")
		}
		return webifc.Real(v), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "invalid integer literal")
	}
	return webifc.Int(v), nil
}

// parseLabel reads an inline typed value NAME(...).
func (p *argParser) parseLabel() (webifc.ArgValue, error) {
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' {
			p.i++
			continue
		}
		break
	}
	name := strings.ToUpper(p.s[start:p.i])
	p.skipSpace()
	if p.i >= len(p.s) || p.s[p.i] != '(' {
		return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "label without value")
	}
	p.i++
	list, err := p.parseList()
	if err != nil {
		return webifc.ArgValue{}, err
	}
	if p.i >= len(p.s) || p.s[p.i] != ')' {
		return webifc.ArgValue{}, werr.InvalidData(werr.PhaseLoad, "unbalanced parentheses")
	}
	p.i++
	return webifc.ArgValue{Type: webifc.TokenLabel, Str: name, List: list}, nil
}

func writeArgs(b *strings.Builder, args []webifc.ArgValue) {
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(b, a)
	}
}

func writeValue(b *strings.Builder, v webifc.ArgValue) {
	switch v.Type {
	case webifc.TokenString:
		b.WriteByte('\'')
		b.WriteString(p21.Encode(v.Str))
		b.WriteByte('\'')
	case webifc.TokenEnum:
		b.WriteByte('.')
		b.WriteString(v.Str)
		b.WriteByte('.')
	case webifc.TokenReal:
		s := strconv.FormatFloat(v.Real, 'g', -1, 64)
		b.WriteString(s)
		if !strings.ContainsAny(s, ".eE") {
			b.WriteByte('.')
		}
	case webifc.TokenInteger:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case webifc.TokenRef:
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(uint64(v.Ref), 10))
	case webifc.TokenSetBegin:
		b.WriteByte('(')
		writeArgs(b, v.List)
		b.WriteByte(')')
	case webifc.TokenLabel:
		b.WriteString(v.Str)
		b.WriteByte('(')
		writeArgs(b, v.List)
		b.WriteByte(')')
	default:
		b.WriteByte('$')
	}
}
