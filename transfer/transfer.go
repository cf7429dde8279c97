package transfer

import (
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

// maxAlloc bounds a single auto-allocation so the payload+terminator
// size cannot overflow int.
const maxAlloc = int(^uint(0)>>1) - 1

// The copy functions below all follow the same two-phase convention:
// call with a nil destination to learn the required size (preflight),
// then call again with a destination of at least that size to fill it.
// Text variants additionally write a NUL terminator so the destination
// must hold one extra byte. A return of 0 where a non-empty payload was
// expected signals a sizing error, not an empty result; distinguish the
// two via the preflight call.

// CopyString copies s into dst as a NUL-terminated C string and returns
// the payload length (terminator excluded). A nil dst performs no copy
// and returns the required payload size. Returns 0 if dst is too small
// to hold the payload plus terminator.
func CopyString(s string, dst []byte) int {
	n := len(s)
	if dst == nil {
		return n
	}
	if len(dst) < n+1 {
		return 0
	}
	copy(dst, s)
	dst[n] = 0
	return n
}

// CopyBytes copies src into dst without a terminator and returns the
// number of bytes copied. A nil dst returns the required size. A
// zero-length payload performs no copy and leaves dst unchanged.
func CopyBytes(src, dst []byte) int {
	n := len(src)
	if dst == nil {
		return n
	}
	if len(dst) < n {
		return 0
	}
	if n > 0 {
		copy(dst, src)
	}
	return n
}

// AllocString is the auto-allocating variant of CopyString. If *dst is
// nil it allocates storage sized payload+1 (at least one byte, so even
// an empty payload yields a valid terminated string) and writes it back
// through dst; the caller thereafter owns that storage. On failure the
// count is 0, *dst is untouched, and the error carries the allocation
// kind.
func AllocString(s string, dst *[]byte) (int, error) {
	if dst == nil {
		return 0, werr.InvalidArgument(werr.PhaseEncode, "nil destination pointer")
	}
	n := len(s)
	if n > maxAlloc {
		return 0, werr.AllocationFailed(werr.PhaseEncode, n)
	}
	if *dst == nil {
		*dst = make([]byte, n+1)
	}
	return CopyString(s, *dst), nil
}

// AllocBytes is the auto-allocating variant of CopyBytes. Zero-length
// payloads perform no allocation and leave *dst unchanged.
func AllocBytes(src []byte, dst *[]byte) (int, error) {
	if dst == nil {
		return 0, werr.InvalidArgument(werr.PhaseEncode, "nil destination pointer")
	}
	n := len(src)
	if n == 0 {
		return 0, nil
	}
	if *dst == nil {
		*dst = make([]byte, n)
	}
	return CopyBytes(src, *dst), nil
}

// CopyU32s copies a homogeneous uint32 array and returns the element
// count. A nil dst returns the required element count.
func CopyU32s(src, dst []uint32) int {
	n := len(src)
	if dst == nil {
		return n
	}
	if len(dst) < n {
		return 0
	}
	if n > 0 {
		copy(dst, src)
	}
	return n
}

// CopyF64s copies a homogeneous float64 array and returns the element
// count. A nil dst returns the required element count.
func CopyF64s(src, dst []float64) int {
	n := len(src)
	if dst == nil {
		return n
	}
	if len(dst) < n {
		return 0
	}
	if n > 0 {
		copy(dst, src)
	}
	return n
}

// CopyMatrix copies a 16-element row-major matrix into dst and returns
// 16, or 0 if dst is non-nil and too small. A nil dst returns 16.
func CopyMatrix(m [16]float64, dst []float64) int {
	if dst == nil {
		return len(m)
	}
	if len(dst) < len(m) {
		return 0
	}
	copy(dst, m[:])
	return len(m)
}
