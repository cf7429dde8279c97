package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := InvalidModel(PhaseQuery, 7)
	msg := err.Error()
	if !strings.HasPrefix(msg, "[query] invalid_model") {
		t.Fatalf("unexpected format: %s", msg)
	}
	if !strings.Contains(msg, "model 7") {
		t.Fatalf("expected handle in message, got %s", msg)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(PhaseSave, KindInternal, cause, "flush tape")
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("cause missing from message: %s", err.Error())
	}
}

func TestErrorIs(t *testing.T) {
	a := InvalidModel(PhaseQuery, 1)
	b := InvalidModel(PhaseQuery, 99)
	if !stderrors.Is(a, b) {
		t.Fatal("same phase+kind should match")
	}
	c := InvalidModel(PhaseGeometry, 1)
	if stderrors.Is(a, c) {
		t.Fatal("different phase should not match")
	}
}

func TestCodeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, CodeOK},
		{InvalidModel(PhaseQuery, 1), CodeInvalidModel},
		{InvalidArgument(PhaseLoad, "empty buffer"), CodeInvalidArgument},
		{AllocationFailed(PhaseEncode, 128), CodeInvalidArgument},
		{OutOfRange(PhaseQuery, "argument", 12), CodeOutOfRange},
		{NotFound(PhaseQuery, "line", 42), CodeOutOfRange},
		{Internal(PhaseGeometry, "boom"), CodeInternal},
		{fmt.Errorf("plain"), CodeInternal},
	}
	for _, tc := range cases {
		if got := CodeOf(tc.err); got != tc.want {
			t.Fatalf("CodeOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	if CodeInvalidModel.String() != "invalid-model" {
		t.Fatalf("got %s", CodeInvalidModel.String())
	}
	if Code(42).String() != "code(42)" {
		t.Fatalf("got %s", Code(42).String())
	}
}
