package observe

import (
	"testing"
	"time"

	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

func TestObserveCountsCallsAndFailures(t *testing.T) {
	rec := NewRecorder("")

	rec.Observe("open_model", nil, 2*time.Millisecond)
	rec.Observe("open_model", werr.InvalidArgument(werr.PhaseLoad, "empty"), time.Millisecond)
	rec.Observe("open_model", werr.InvalidModel(werr.PhaseRegistry, 7), 0)
	rec.Observe("close_model", nil, 0)

	snap := rec.Snapshot()
	if snap.Calls["open_model"] != 3 {
		t.Fatalf("open_model calls = %d", snap.Calls["open_model"])
	}
	if snap.Calls["close_model"] != 1 {
		t.Fatalf("close_model calls = %d", snap.Calls["close_model"])
	}
	if snap.Failures["open_model"]["invalid-argument"] != 1 {
		t.Fatalf("failures = %v", snap.Failures)
	}
	if snap.Failures["open_model"]["invalid-model"] != 1 {
		t.Fatalf("failures = %v", snap.Failures)
	}
	if snap.DurationsMS["open_model"] < 2 {
		t.Fatalf("durations = %v", snap.DurationsMS)
	}
}

func TestObserveIgnoresEmptyOperationAndNilRecorder(t *testing.T) {
	rec := NewRecorder("")
	rec.Observe("", nil, time.Millisecond)
	if n := len(rec.Snapshot().Calls); n != 0 {
		t.Fatalf("empty operation recorded: %d entries", n)
	}

	var nilRec *Recorder
	nilRec.Observe("op", nil, 0)
}

func TestSnapshotIsDetached(t *testing.T) {
	rec := NewRecorder("")
	rec.Observe("op", nil, 0)
	snap := rec.Snapshot()
	snap.Calls["op"] = 99
	if rec.Snapshot().Calls["op"] != 1 {
		t.Fatal("snapshot shares storage with recorder")
	}
}

func TestGeneratedNamesAreUnique(t *testing.T) {
	if NewRecorder("").Name() == NewRecorder("").Name() {
		t.Fatal("generated names collide")
	}
}
