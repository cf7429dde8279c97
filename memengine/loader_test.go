package memengine

import (
	"bytes"
	"strings"
	"testing"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

const fixture = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('site.ifc','2026-08-29T10:00:00',('author'),('org'),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('2O2Fr$t4X7Zf8NOew3FLOH',#5,'Demo project',$,$,$,$,(#20),#7);
#5=IFCOWNERHISTORY($,$,$,$,$,$,$,1577836800);
#10=IFCWALL('3vB2YO$MX4xv5uCqZZG05x',#5,'South wall',$,$,#12,$,$,.SOLIDWALL.);
#12=IFCLOCALPLACEMENT($,#14);
#14=IFCAXIS2PLACEMENT3D(#15,$,$);
#15=IFCCARTESIANPOINT((0.,0.,3.5));
#20=IFCWALL('1hqIFTRjfV6AWq_bMtnZwI',#5,'North wall',$,$,$,$,$,.SOLIDWALL.);
ENDSEC;
END-ISO-10303-21;
`

func loadedModel(t *testing.T) (*Engine, *Model) {
	t.Helper()
	eng := New()
	h := eng.CreateModel(webifc.DefaultEngineSettings())
	m := eng.Model(h)
	if err := m.LoadBytes([]byte(fixture)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return eng, m
}

func TestLoadBytesParsesLines(t *testing.T) {
	_, m := loadedModel(t)

	if m.MaxExpressID() != 20 {
		t.Fatalf("max express ID %d", m.MaxExpressID())
	}
	if !m.IsValidExpressID(10) || m.IsValidExpressID(11) {
		t.Fatal("validity checks wrong")
	}
	if got := m.NextExpressID(5); got != 10 {
		t.Fatalf("next after 5 = %d", got)
	}
	if got := m.NextExpressID(20); got != 0 {
		t.Fatalf("next after last = %d", got)
	}

	wallType := m.schema.NameToTypeCode("IFCWALL")
	if m.LineType(10) != wallType {
		t.Fatalf("line 10 type %d", m.LineType(10))
	}
	walls := m.ExpressIDsWithType(wallType)
	if len(walls) != 2 || walls[0] != 10 || walls[1] != 20 {
		t.Fatalf("walls %v", walls)
	}
	if got := m.AllLines(); len(got) != 7 || got[0] != 1 {
		t.Fatalf("all lines %v", got)
	}
	if m.ArgumentCount(10) != 9 {
		t.Fatalf("argument count %d", m.ArgumentCount(10))
	}
	if m.TotalSize() != uint64(len(fixture)) {
		t.Fatalf("total size %d", m.TotalSize())
	}
}

func TestLoadBytesRejectsBadInput(t *testing.T) {
	eng := New()
	m := eng.Model(eng.CreateModel(webifc.DefaultEngineSettings()))

	if err := m.LoadBytes(nil); err == nil {
		t.Fatal("empty payload accepted")
	}
	if err := m.LoadBytes([]byte("DATA;\nnot a line;\nENDSEC;")); err == nil {
		t.Fatal("malformed payload accepted")
	}
}

func TestCursorTypedReads(t *testing.T) {
	_, m := loadedModel(t)

	if err := m.MoveToArgument(10, 2); err != nil {
		t.Fatal(err)
	}
	name, err := m.StringArgument()
	if err != nil {
		t.Fatal(err)
	}
	if name != "South wall" {
		t.Fatalf("name %q", name)
	}

	if err := m.MoveToArgument(10, 1); err != nil {
		t.Fatal(err)
	}
	ref, err := m.RefArgument()
	if err != nil {
		t.Fatal(err)
	}
	if ref != 5 {
		t.Fatalf("owner ref %d", ref)
	}

	if err := m.MoveToArgument(5, 7); err != nil {
		t.Fatal(err)
	}
	ts, err := m.IntArgument()
	if err != nil {
		t.Fatal(err)
	}
	if ts != 1577836800 {
		t.Fatalf("timestamp %d", ts)
	}

	if err := m.MoveToArgument(10, 99); err == nil {
		t.Fatal("out-of-range argument index accepted")
	}
}

func TestCursorTokenWalk(t *testing.T) {
	_, m := loadedModel(t)

	// #15=IFCCARTESIANPOINT((0.,0.,3.5))
	if err := m.MoveToArgument(15, 0); err != nil {
		t.Fatal(err)
	}
	if tt := m.TokenType(); tt != webifc.TokenSetBegin {
		t.Fatalf("token %d, want set begin", tt)
	}
	var coords []float64
	for {
		tt := m.TokenType()
		if tt == webifc.TokenSetEnd {
			break
		}
		m.StepBack()
		v, err := m.DoubleArgument()
		if err != nil {
			t.Fatal(err)
		}
		coords = append(coords, v)
	}
	if len(coords) != 3 || coords[2] != 3.5 {
		t.Fatalf("coords %v", coords)
	}
	if !m.AtEnd() {
		m.TokenType() // line end
	}
}

func TestHeaderAccess(t *testing.T) {
	_, m := loadedModel(t)

	schemaLines := m.HeaderLinesWithType(webifc.FileSchema)
	if len(schemaLines) != 1 {
		t.Fatalf("schema lines %v", schemaLines)
	}
	if err := m.MoveToHeaderArgument(schemaLines[0], 0); err != nil {
		t.Fatal(err)
	}
	if tt := m.TokenType(); tt != webifc.TokenSetBegin {
		t.Fatalf("token %d", tt)
	}
	name, err := m.StringArgument()
	if err != nil {
		t.Fatal(err)
	}
	if name != "IFC4" {
		t.Fatalf("schema %q", name)
	}

	if n := m.HeaderArgumentCount(webifc.FileName); n != 7 {
		t.Fatalf("file name args %d", n)
	}
	if n := m.HeaderArgumentCount(12345); n != 0 {
		t.Fatalf("unknown header args %d", n)
	}
}

func TestWriteRemoveAndSave(t *testing.T) {
	_, m := loadedModel(t)

	wallType := m.schema.NameToTypeCode("IFCWALL")
	err := m.WriteLine(30, wallType, []webifc.ArgValue{
		webifc.String("added wall"), webifc.Ref(5), webifc.Empty(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsValidExpressID(30) || m.MaxExpressID() != 30 {
		t.Fatal("written line not visible")
	}

	m.RemoveLine(10)
	if m.IsValidExpressID(10) {
		t.Fatal("removed line still valid")
	}

	var buf bytes.Buffer
	if err := m.SaveTo(&buf, true); err != nil {
		t.Fatal(err)
	}
	text := buf.String()
	if !strings.Contains(text, "#30=IFCWALL('added wall',#5,$)") {
		t.Fatalf("written line missing from output:\n%s", text)
	}
	if strings.Contains(text, "#10=") {
		t.Fatal("removed line survived in output")
	}
	if !strings.Contains(text, "FILE_SCHEMA(('IFC4'))") {
		t.Fatal("header lost in output")
	}

	// the output parses back
	eng2 := New()
	m2 := eng2.Model(eng2.CreateModel(webifc.DefaultEngineSettings()))
	if err := m2.LoadBytes(buf.Bytes()); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if m2.MaxExpressID() != 30 {
		t.Fatalf("round trip max ID %d", m2.MaxExpressID())
	}
}

func TestGenerateGUIDDistinct(t *testing.T) {
	_, m := loadedModel(t)
	a, b := m.GenerateGUID(), m.GenerateGUID()
	if a == "" || b == "" || a == b {
		t.Fatalf("guids %q, %q", a, b)
	}
}

func TestSchemaLookups(t *testing.T) {
	s := NewSchema()
	wall := s.NameToTypeCode("IFCWALL")
	if s.TypeCodeToName(wall) != "IFCWALL" {
		t.Fatal("round trip failed")
	}
	if !s.IsElement(wall) {
		t.Fatal("wall must be an element")
	}
	if s.IsElement(s.NameToTypeCode("IFCOWNERHISTORY")) {
		t.Fatal("owner history is not an element")
	}
	if s.NameToTypeCode("IFCSPACE") != webifc.IfcSpace {
		t.Fatal("space code mismatch")
	}
	if s.TypeCodeToName(webifc.FileDescription) != "FILE_DESCRIPTION" {
		t.Fatal("file description name missing")
	}
	if len(s.ElementTypes()) == 0 {
		t.Fatal("no element types")
	}
}
