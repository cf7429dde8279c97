package transfer

import (
	"bytes"
	"errors"
	"testing"

	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

func TestCopyStringPreflightFillAgreement(t *testing.T) {
	payloads := []string{"", "a", "IfcWallStandardCase", "line\nwith\tcontrol\x01bytes", "ünïcode"}
	for _, p := range payloads {
		size := CopyString(p, nil)
		if size != len(p) {
			t.Fatalf("preflight size %d, want %d", size, len(p))
		}
		buf := make([]byte, size+1)
		n := CopyString(p, buf)
		if n != size {
			t.Fatalf("fill wrote %d, preflight said %d", n, size)
		}
		if string(buf[:n]) != p {
			t.Fatalf("decoded %q, want %q", buf[:n], p)
		}
		if buf[n] != 0 {
			t.Fatal("missing NUL terminator")
		}
	}
}

func TestCopyStringUndersizedBuffer(t *testing.T) {
	if n := CopyString("hello", make([]byte, 5)); n != 0 {
		t.Fatalf("expected 0 for undersized buffer, got %d", n)
	}
	// exact payload+terminator fits
	if n := CopyString("hello", make([]byte, 6)); n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}

func TestCopyBytes(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	if n := CopyBytes(src, nil); n != 4 {
		t.Fatalf("preflight got %d", n)
	}
	dst := make([]byte, 4)
	if n := CopyBytes(src, dst); n != 4 {
		t.Fatalf("fill got %d", n)
	}
	if !bytes.Equal(src, dst) {
		t.Fatal("payload mismatch")
	}
}

func TestCopyBytesZeroLength(t *testing.T) {
	dst := []byte{9, 9}
	if n := CopyBytes(nil, dst); n != 0 {
		t.Fatalf("got %d", n)
	}
	if dst[0] != 9 || dst[1] != 9 {
		t.Fatal("zero-length copy must leave destination unchanged")
	}
}

func TestAllocString(t *testing.T) {
	var out []byte
	n, err := AllocString("wall", &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("got %d", n)
	}
	if out == nil || len(out) != 5 {
		t.Fatalf("expected owned 5-byte buffer, got %v", out)
	}
	if string(out[:4]) != "wall" || out[4] != 0 {
		t.Fatalf("bad contents %v", out)
	}
}

func TestAllocStringEmptyPayload(t *testing.T) {
	var out []byte
	n, err := AllocString("", &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("got %d", n)
	}
	// text always allocates at least the terminator byte
	if len(out) != 1 || out[0] != 0 {
		t.Fatalf("expected single NUL byte, got %v", out)
	}
}

func TestAllocStringNilDest(t *testing.T) {
	n, err := AllocString("x", nil)
	if n != 0 {
		t.Fatalf("got %d", n)
	}
	if werr.CodeOf(err) != werr.CodeInvalidArgument {
		t.Fatalf("code = %v, want invalid-argument", werr.CodeOf(err))
	}
}

func TestAllocFailureCarriesAllocationKind(t *testing.T) {
	var e *werr.Error
	err := werr.AllocationFailed(werr.PhaseEncode, 7)
	if !errors.As(err, &e) || e.Kind != werr.KindAllocation {
		t.Fatalf("kind = %v, want allocation", e.Kind)
	}
	if werr.CodeOf(err) != werr.CodeInvalidArgument {
		t.Fatal("allocation failures must collapse to invalid-argument at the boundary")
	}
}

func TestAllocBytesZeroLengthNoAllocation(t *testing.T) {
	var out []byte
	n, err := AllocBytes(nil, &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("got %d", n)
	}
	if out != nil {
		t.Fatal("zero-length payload must not allocate")
	}
}

func TestAllocBytesReusesCallerBuffer(t *testing.T) {
	out := make([]byte, 8)
	n, err := AllocBytes([]byte{5, 6, 7}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("got %d", n)
	}
	if len(out) != 8 {
		t.Fatal("caller buffer must not be replaced")
	}
	if out[0] != 5 || out[2] != 7 {
		t.Fatal("payload not copied")
	}
}

func TestCopyU32s(t *testing.T) {
	src := []uint32{10, 20, 30}
	if n := CopyU32s(src, nil); n != 3 {
		t.Fatalf("preflight got %d", n)
	}
	dst := make([]uint32, 3)
	if n := CopyU32s(src, dst); n != 3 {
		t.Fatalf("fill got %d", n)
	}
	if dst[2] != 30 {
		t.Fatal("payload mismatch")
	}
	if n := CopyU32s(src, make([]uint32, 2)); n != 0 {
		t.Fatalf("undersized should return 0, got %d", n)
	}
}

func TestCopyMatrix(t *testing.T) {
	var m [16]float64
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	if n := CopyMatrix(m, nil); n != 16 {
		t.Fatalf("preflight got %d", n)
	}
	dst := make([]float64, 16)
	if n := CopyMatrix(m, dst); n != 16 {
		t.Fatalf("fill got %d", n)
	}
	if dst[5] != 1 || dst[1] != 0 {
		t.Fatal("matrix mismatch")
	}
}

func TestScratchPool(t *testing.T) {
	buf := GetScratch()
	if len(*buf) != 0 {
		t.Fatal("scratch must start empty")
	}
	*buf = append(*buf, "temporary"...)
	PutScratch(buf)

	again := GetScratch()
	if len(*again) != 0 {
		t.Fatal("pooled scratch must be reset")
	}
	PutScratch(again)

	// oversized buffers are rejected, not retained
	big := make([]byte, 0, poolMaxCap+1)
	PutScratch(&big)
}
