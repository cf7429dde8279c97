// Package guid generates IFC globally unique identifiers: 128 random
// bits rendered in the 22-character compressed encoding used by IFC
// files.
package guid

import (
	"crypto/rand"

	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

// alphabet is the IFC base-64 variant. Position in the string is the
// digit value.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// Length is the size of a compressed IFC GUID.
const Length = 22

// New returns a fresh identifier from 128 random bits.
func New() string {
	var raw [16]byte
	// rand.Read never fails on supported platforms
	if _, err := rand.Read(raw[:]); err != nil {
		panic(err)
	}
	return FromBytes(raw)
}

// FromBytes encodes 128 bits as a 22-character identifier. The first
// character carries the top two bits, the remaining 21 carry six bits
// each.
func FromBytes(raw [16]byte) string {
	var out [Length]byte

	// consume the 128 bits most-significant first
	hi := be64(raw[:8])
	lo := be64(raw[8:])

	for i := Length - 1; i >= 1; i-- {
		out[i] = alphabet[lo&0x3f]
		lo = lo>>6 | hi<<58
		hi >>= 6
	}
	out[0] = alphabet[lo&0x3] // 21*6 bits consumed, 2 remain

	return string(out[:])
}

// Parse decodes a 22-character identifier back to its 128 bits.
func Parse(s string) ([16]byte, error) {
	var raw [16]byte
	if len(s) != Length {
		return raw, werr.InvalidData(werr.PhaseEncode, "guid must be 22 characters")
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		d := digit(s[i])
		if d < 0 || (i == 0 && d > 3) {
			return raw, werr.InvalidData(werr.PhaseEncode, "invalid guid character")
		}
		hi = hi<<6 | lo>>58
		lo = lo<<6 | uint64(d)
	}

	for i := 0; i < 8; i++ {
		raw[i] = byte(hi >> (56 - 8*i))
		raw[8+i] = byte(lo >> (56 - 8*i))
	}
	return raw, nil
}

func digit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 36
	case c == '_':
		return 62
	case c == '$':
		return 63
	}
	return -1
}

func be64(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}
