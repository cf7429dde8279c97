package api_test

import (
	"bytes"
	"strings"
	"testing"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	"github.com/dmytro-kravchyna/engine-web-ifc/api"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/memengine"
	"github.com/dmytro-kravchyna/engine-web-ifc/observe"
)

const fixture = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('site.ifc','2026-08-29T10:00:00',('author'),('org'),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('2O2Fr$t4X7Zf8NOew3FLOH',#5,'Demo project',$,$,$,$,(#10,#20),$);
#5=IFCOWNERHISTORY($,$,$,$,$,$,$,1577836800);
#10=IFCWALL('3vB2YO$MX4xv5uCqZZG05x',#5,'South wall',$,$,$,$,$,.SOLIDWALL.);
#20=IFCWALL('1hqIFTRjfV6AWq_bMtnZwI',#5,'North wall',$,$,$,$,$,.SOLIDWALL.);
#30=IFCRELDEFINESBYPROPERTIES('0aQ_FX$Pv1qRXrTGPBxUOr',#5,$,$,(#10,#20),#40);
#40=IFCPROPERTYSET('1WQraWLPL1RfM6GVcLWTgy',#5,'Pset_WallCommon',$,());
ENDSEC;
END-ISO-10303-21;
`

func openFixture(t *testing.T) (*api.API, *memengine.Engine, webifc.Handle) {
	t.Helper()
	eng := memengine.New()
	a := api.New(eng)
	h, err := a.OpenModel(nil, []byte(fixture))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return a, eng, h
}

func TestOpenCloseScenario(t *testing.T) {
	a, _, h := openFixture(t)

	if !a.IsModelOpen(h) {
		t.Fatal("model not open after open")
	}
	max, err := a.MaxExpressID(h)
	if err != nil {
		t.Fatal(err)
	}
	if max == 0 {
		t.Fatal("max express ID must be positive on a loaded model")
	}
	a.CloseModel(h)
	if a.IsModelOpen(h) {
		t.Fatal("model still open after close")
	}
	a.CloseModel(h) // idempotent
}

func TestOpenModelRejectsEmptyInput(t *testing.T) {
	a := api.New(memengine.New())
	h, err := a.OpenModel(nil, nil)
	if err == nil {
		t.Fatal("empty payload accepted")
	}
	if werr.CodeOf(err) != werr.CodeInvalidArgument {
		t.Fatalf("code %v", werr.CodeOf(err))
	}
	if h != 0 || len(a.Registry().Handles()) != 0 {
		t.Fatal("partial model left behind")
	}
}

func TestOpenModelRejectsMalformedInput(t *testing.T) {
	a := api.New(memengine.New())
	_, err := a.OpenModel(nil, []byte("DATA;\ngarbage;\nENDSEC;"))
	if err == nil {
		t.Fatal("malformed payload accepted")
	}
	if len(a.Registry().Handles()) != 0 {
		t.Fatal("partial model left behind")
	}
}

func TestOpenModelFromReader(t *testing.T) {
	a := api.New(memengine.New())
	h, err := a.OpenModelFrom(nil, strings.NewReader(fixture))
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsModelOpen(h) {
		t.Fatal("model not open")
	}
	// pull-style callback adapter
	r := strings.NewReader(fixture)
	h2, err := a.OpenModelFrom(nil, api.ReaderFunc(r.Read))
	if err != nil {
		t.Fatal(err)
	}
	if h2 == h {
		t.Fatal("handle reuse while first model still open")
	}
}

func TestClosedHandleReportsInvalidModel(t *testing.T) {
	a, _, h := openFixture(t)
	a.CloseModel(h)

	if _, err := a.MaxExpressID(h); werr.CodeOf(err) != werr.CodeInvalidModel {
		t.Fatalf("max express ID after close: %v", err)
	}
	if _, err := a.StringArgument(h, 10, 2); werr.CodeOf(err) != werr.CodeInvalidModel {
		t.Fatalf("string argument after close: %v", err)
	}
	if a.IsValidExpressID(h, 10) {
		t.Fatal("validity check true on closed handle")
	}
	if a.LineType(h, 10) != 0 {
		t.Fatal("line type nonzero on closed handle")
	}
}

func TestCloseAllInvalidatesEveryHandle(t *testing.T) {
	a, _, h := openFixture(t)
	h2 := a.CreateModel(nil)
	a.CloseAllModels()
	if a.IsModelOpen(h) || a.IsModelOpen(h2) {
		t.Fatal("handles survive close all")
	}
}

func TestIntrospection(t *testing.T) {
	a, _, h := openFixture(t)

	next, err := a.NextExpressID(h, 5)
	if err != nil {
		t.Fatal(err)
	}
	if next != 10 {
		t.Fatalf("next after 5 = %d", next)
	}

	wall := a.TypeCodeFromName("IFCWALL")
	if a.NameFromTypeCode(wall) != "IFCWALL" {
		t.Fatal("type name round trip failed")
	}
	if !a.IsIfcElement(wall) {
		t.Fatal("wall not an element")
	}

	walls, err := a.LineIDsWithType(h, wall)
	if err != nil {
		t.Fatal(err)
	}
	if len(walls) != 2 {
		t.Fatalf("walls %v", walls)
	}

	both, err := a.LineIDsWithTypes(h, wall, a.TypeCodeFromName("IFCPROPERTYSET"))
	if err != nil {
		t.Fatal(err)
	}
	if len(both) != 3 {
		t.Fatalf("union %v", both)
	}

	all, err := a.AllLineIDs(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 6 {
		t.Fatalf("all lines %v", all)
	}

	n, err := a.ArgumentCount(h, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n != 9 {
		t.Fatalf("argument count %d", n)
	}
	if _, err := a.ArgumentCount(h, 999); werr.CodeOf(err) != werr.CodeOutOfRange {
		t.Fatalf("missing line: %v", err)
	}

	if a.ModelSize(h) == 0 {
		t.Fatal("model size zero")
	}

	schema, err := a.ModelSchema(h)
	if err != nil {
		t.Fatal(err)
	}
	if schema != "IFC4" {
		t.Fatalf("schema %q", schema)
	}
}

func TestArgumentAccess(t *testing.T) {
	a, _, h := openFixture(t)

	name, err := a.StringArgument(h, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if name != "South wall" {
		t.Fatalf("name %q", name)
	}

	ref, err := a.RefArgument(h, 10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ref != 5 {
		t.Fatalf("ref %d", ref)
	}

	ts, err := a.IntArgument(h, 5, 7)
	if err != nil {
		t.Fatal(err)
	}
	if ts != 1577836800 {
		t.Fatalf("timestamp %d", ts)
	}

	v, err := a.DoubleArgument(h, 5, 7)
	if err != nil {
		t.Fatal(err)
	}
	if v != 1577836800 {
		t.Fatalf("coerced double %f", v)
	}

	if _, err := a.StringArgument(h, 10, 99); werr.CodeOf(err) != werr.CodeOutOfRange {
		t.Fatalf("out-of-range index: %v", err)
	}
	if _, err := a.RefArgument(h, 10, 2); werr.CodeOf(err) != werr.CodeInvalidArgument {
		t.Fatalf("type mismatch: %v", err)
	}

	tt, err := a.ArgumentTokenType(h, 10, 8)
	if err != nil {
		t.Fatal(err)
	}
	if tt != webifc.TokenEnum {
		t.Fatalf("token type %d", tt)
	}
}

func TestStringArgumentIntoPreflightFill(t *testing.T) {
	a, _, h := openFixture(t)

	size, err := a.StringArgumentInto(h, 10, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if size != len("South wall") {
		t.Fatalf("preflight %d", size)
	}
	buf := make([]byte, size+1)
	n, err := a.StringArgumentInto(h, 10, 2, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != size || string(buf[:n]) != "South wall" || buf[n] != 0 {
		t.Fatalf("fill gave %d %q", n, buf)
	}
}

func TestSetArgument(t *testing.T) {
	a, _, h := openFixture(t)

	refs, err := a.SetArgument(h, 30, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0] != 10 || refs[1] != 20 {
		t.Fatalf("refs %v", refs)
	}

	if _, err := a.SetArgument(h, 30, 0); werr.CodeOf(err) != werr.CodeInvalidArgument {
		t.Fatalf("non-set argument: %v", err)
	}
}

func TestHeaderAccess(t *testing.T) {
	a, _, h := openFixture(t)

	n, err := a.HeaderArgumentCount(h, webifc.FileName)
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Fatalf("file name args %d", n)
	}

	s, err := a.HeaderStringArgument(h, webifc.FileName, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s != "site.ifc" {
		t.Fatalf("file name %q", s)
	}

	tt, err := a.HeaderArgumentTokenType(h, webifc.FileSchema, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tt != webifc.TokenSetBegin {
		t.Fatalf("token %d", tt)
	}

	if _, err := a.HeaderStringArgument(h, 12345, 0); werr.CodeOf(err) != werr.CodeOutOfRange {
		t.Fatalf("missing header: %v", err)
	}
}

func TestInverseProperty(t *testing.T) {
	a, _, h := openFixture(t)
	rel := a.TypeCodeFromName("IFCRELDEFINESBYPROPERTIES")

	// #30 references #10 inside the set at position 4
	ids, err := a.InverseProperty(h, 10, []uint32{rel}, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 30 {
		t.Fatalf("inverse ids %v", ids)
	}

	// early exit form returns at most one hit
	ids, err = a.InverseProperty(h, 20, []uint32{rel}, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 30 {
		t.Fatalf("inverse ids %v", ids)
	}

	// direct reference at position 5
	ids, err = a.InverseProperty(h, 40, []uint32{rel}, 5, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 30 {
		t.Fatalf("inverse ids %v", ids)
	}

	ids, err = a.InverseProperty(h, 999, []uint32{rel}, 4, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("phantom inverse ids %v", ids)
	}
}

func TestWriteRemoveAndSave(t *testing.T) {
	a, _, h := openFixture(t)
	wall := a.TypeCodeFromName("IFCWALL")

	err := a.WriteLine(h, 50, wall, []webifc.ArgValue{
		webifc.String(a.EncodeText("encoded? no, plain")), webifc.Ref(5), webifc.Empty(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsValidExpressID(h, 50) {
		t.Fatal("written line invisible")
	}

	if err := a.RemoveLine(h, 20); err != nil {
		t.Fatal(err)
	}
	if a.IsValidExpressID(h, 20) {
		t.Fatal("removed line still valid")
	}

	err = a.WriteHeaderLine(h, webifc.FileSchema, []webifc.ArgValue{
		webifc.Set(webifc.String("IFC4X3")),
	})
	if err != nil {
		t.Fatal(err)
	}

	data, err := a.SaveModel(h, true)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "#50=IFCWALL(") {
		t.Fatal("written line missing from save")
	}
	if strings.Contains(text, "#20=") {
		t.Fatal("removed line present in save")
	}
	if !strings.Contains(text, "FILE_SCHEMA(('IFC4X3'))") {
		t.Fatal("written header missing from save")
	}

	// push-style callback save matches the buffer save
	var sink bytes.Buffer
	if err := a.SaveModelTo(h, api.WriterFunc(sink.Write), true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sink.Bytes(), data) {
		t.Fatal("callback save diverges from buffer save")
	}

	// preflight/fill save
	size, err := a.SaveModelInto(h, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if size != len(data) {
		t.Fatalf("preflight %d, want %d", size, len(data))
	}
	buf := make([]byte, size)
	if n, _ := a.SaveModelInto(h, buf, true); n != size {
		t.Fatalf("fill %d", n)
	}
	if !bytes.Equal(buf, data) {
		t.Fatal("filled save diverges")
	}
}

func TestGUIDDistinctness(t *testing.T) {
	a, _, h := openFixture(t)
	g1, err := a.GenerateGUID(h)
	if err != nil {
		t.Fatal(err)
	}
	g2, err := a.GenerateGUID(h)
	if err != nil {
		t.Fatal(err)
	}
	if g1 == "" || g2 == "" || g1 == g2 {
		t.Fatalf("guids %q %q", g1, g2)
	}

	size, err := a.GenerateGUIDInto(h, nil)
	if err != nil {
		t.Fatal(err)
	}
	if size != 22 {
		t.Fatalf("guid preflight %d", size)
	}
}

func TestTextCodecPassThrough(t *testing.T) {
	a := api.New(memengine.New())
	in := "it's a \\ test\nwith control"
	out, err := a.DecodeText(a.EncodeText(in))
	if err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("round trip %q", out)
	}
}

func TestSetLogLevelReachesEngine(t *testing.T) {
	eng := memengine.New()
	a := api.New(eng)
	a.SetLogLevel(webifc.LogLevelError)
	if eng.LogLevel() != webifc.LogLevelError {
		t.Fatal("log level not forwarded")
	}
}

func TestVersionNonEmpty(t *testing.T) {
	if api.New(memengine.New()).Version() == "" {
		t.Fatal("empty version")
	}
}

func TestSaveModelIntoRepeatedCalls(t *testing.T) {
	a, _, h := openFixture(t)
	size, err := a.SaveModelInto(h, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	first := make([]byte, size)
	if n, _ := a.SaveModelInto(h, first, true); n != size {
		t.Fatalf("first fill %d, want %d", n, size)
	}
	second := make([]byte, size)
	if n, _ := a.SaveModelInto(h, second, true); n != size {
		t.Fatalf("second fill %d, want %d", n, size)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("repeated saves diverge")
	}
}

func TestMetricsRecordOperations(t *testing.T) {
	rec := observe.NewRecorder("")
	a := api.New(memengine.New(), api.WithMetrics(rec))

	if _, err := a.MaxExpressID(99); err == nil {
		t.Fatal("expected failure for unknown handle")
	}
	h := a.CreateModel(nil)
	if !a.IsModelOpen(h) {
		t.Fatal("model should be open")
	}

	snap := rec.Snapshot()
	if snap.Calls["max_express_id"] != 1 {
		t.Fatalf("max_express_id calls = %d, want 1", snap.Calls["max_express_id"])
	}
	if snap.Failures["max_express_id"]["invalid-model"] != 1 {
		t.Fatalf("failures = %v, want one invalid-model", snap.Failures["max_express_id"])
	}
	if snap.Calls["create_model"] != 1 {
		t.Fatalf("create_model calls = %d, want 1", snap.Calls["create_model"])
	}
	if len(snap.Failures["create_model"]) != 0 {
		t.Fatalf("create_model failures = %v, want none", snap.Failures["create_model"])
	}
}
