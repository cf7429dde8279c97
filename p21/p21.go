// Package p21 implements the STEP Part 21 string codec used for IFC
// text attributes: apostrophe and backslash escaping plus the \S\,
// \X\, \X2\ and \X4\ directives for characters outside printable
// ASCII.
package p21

import (
	"fmt"
	"strings"
	"unicode/utf16"

	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

// Encode renders plain text as a Part 21 string body (delimiters not
// included). Printable ASCII passes through with apostrophes doubled
// and backslashes escaped; other characters become \X\, \X2\ or \X4\
// directives depending on their codepoint width. Consecutive wide
// characters share one directive run.
func Encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	const (
		runNone = 0
		runX2   = 2
		runX4   = 4
	)
	run := runNone
	closeRun := func() {
		if run != runNone {
			b.WriteString(`\X0\`)
			run = runNone
		}
	}

	for _, r := range s {
		switch {
		case r == '\'':
			closeRun()
			b.WriteString("''")
		case r == '\\':
			closeRun()
			b.WriteString(`\\`)
		case r >= 0x20 && r <= 0x7E:
			closeRun()
			b.WriteRune(r)
		case r < 0x100:
			closeRun()
			fmt.Fprintf(&b, `\X\%02X`, r)
		case r <= 0xFFFF:
			if run != runX2 {
				closeRun()
				b.WriteString(`\X2\`)
				run = runX2
			}
			fmt.Fprintf(&b, "%04X", r)
		default:
			if run != runX4 {
				closeRun()
				b.WriteString(`\X4\`)
				run = runX4
			}
			fmt.Fprintf(&b, "%08X", r)
		}
	}
	closeRun()
	return b.String()
}

// Decode parses a Part 21 string body back to plain text. It accepts
// the full directive set, including \S\ page references (resolved
// against ISO 8859-1) and \P?\ codepage declarations, which are read
// and skipped. Malformed directives yield an invalid-data error.
func Decode(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\'' {
			// doubled apostrophe inside a string body
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			b.WriteByte('\'')
			i++
			continue
		}
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", werr.InvalidData(werr.PhaseEncode, "dangling backslash")
		}
		switch s[i+1] {
		case '\\':
			b.WriteByte('\\')
			i += 2
		case 'S':
			if i+3 >= len(s) || s[i+2] != '\\' {
				return "", werr.InvalidData(werr.PhaseEncode, "malformed \\S\\ directive")
			}
			b.WriteRune(rune(s[i+3]) + 0x80)
			i += 4
		case 'P':
			// codepage declaration, e.g. \PA\; only Latin-1 is supported
			if i+3 >= len(s) || s[i+3] != '\\' {
				return "", werr.InvalidData(werr.PhaseEncode, "malformed \\P\\ directive")
			}
			i += 4
		case 'X':
			n, err := decodeX(s[i:], &b)
			if err != nil {
				return "", err
			}
			i += n
		default:
			return "", werr.InvalidData(werr.PhaseEncode,
				fmt.Sprintf("unknown directive \\%c", s[i+1]))
		}
	}
	return b.String(), nil
}

// decodeX consumes one \X\hh, \X2\...\X0\ or \X4\...\X0\ directive at
// the start of s and returns the number of bytes consumed.
func decodeX(s string, b *strings.Builder) (int, error) {
	if len(s) >= 3 && s[2] == '\\' {
		// \X\hh
		if len(s) < 5 {
			return 0, werr.InvalidData(werr.PhaseEncode, "truncated \\X\\ directive")
		}
		v, err := hexValue(s[3:5])
		if err != nil {
			return 0, err
		}
		b.WriteRune(rune(v))
		return 5, nil
	}
	if len(s) < 4 || s[3] != '\\' || (s[2] != '2' && s[2] != '4') {
		return 0, werr.InvalidData(werr.PhaseEncode, "malformed \\X directive")
	}

	width := 4
	if s[2] == '4' {
		width = 8
	}
	i := 4
	var units []uint16
	for {
		if strings.HasPrefix(s[i:], `\X0\`) {
			i += 4
			break
		}
		if i+width > len(s) {
			return 0, werr.InvalidData(werr.PhaseEncode, "unterminated \\X run")
		}
		v, err := hexValue(s[i : i+width])
		if err != nil {
			return 0, err
		}
		i += width
		if width == 8 {
			b.WriteRune(rune(v))
		} else {
			units = append(units, uint16(v))
		}
	}
	if len(units) > 0 {
		// UTF-16 code units, surrogate pairs included
		for _, r := range utf16.Decode(units) {
			b.WriteRune(r)
		}
	}
	return i, nil
}

func hexValue(s string) (uint32, error) {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		default:
			return 0, werr.InvalidData(werr.PhaseEncode,
				fmt.Sprintf("invalid hex digit %q", c))
		}
		v = v<<4 | d
	}
	return v, nil
}
