package webifc

// TokenType tags one token on the loader's argument tape. Values match
// the STEP tape encoding used by the engine.
type TokenType uint8

const (
	TokenUnknown TokenType = iota
	TokenString
	TokenLabel
	TokenEnum
	TokenReal
	TokenRef
	TokenEmpty
	TokenSetBegin
	TokenSetEnd
	TokenLineEnd
	TokenInteger
)

// ArgValue is the tagged variant used for writing line arguments and for
// representing nested argument trees: a primitive, a reference, or a
// nested list.
type ArgValue struct {
	Type TokenType
	Str  string     // TokenString, TokenEnum, TokenLabel
	Real float64    // TokenReal
	Int  int64      // TokenInteger
	Ref  uint32     // TokenRef
	List []ArgValue // TokenSetBegin
}

// String returns an ArgValue holding a string argument.
func String(s string) ArgValue { return ArgValue{Type: TokenString, Str: s} }

// Enum returns an ArgValue holding an enumeration literal.
func Enum(s string) ArgValue { return ArgValue{Type: TokenEnum, Str: s} }

// Real returns an ArgValue holding a floating-point argument.
func Real(v float64) ArgValue { return ArgValue{Type: TokenReal, Real: v} }

// Int returns an ArgValue holding an integer argument.
func Int(v int64) ArgValue { return ArgValue{Type: TokenInteger, Int: v} }

// Ref returns an ArgValue referencing another line.
func Ref(id uint32) ArgValue { return ArgValue{Type: TokenRef, Ref: id} }

// Empty returns the null/unset argument.
func Empty() ArgValue { return ArgValue{Type: TokenEmpty} }

// Set returns an ArgValue holding a nested list.
func Set(vs ...ArgValue) ArgValue { return ArgValue{Type: TokenSetBegin, List: vs} }

// Color is an RGBA color attached to a placed geometry.
type Color struct {
	R, G, B, A float64
}

// PlacedGeometry associates a geometry object with a color and a 4x4
// row-major placement transform.
type PlacedGeometry struct {
	Color              Color
	GeometryExpressID  uint32
	FlatTransformation [16]float64
}

// FlatMesh is the set of placed geometries belonging to one element.
type FlatMesh struct {
	ExpressID  uint32
	Geometries []PlacedGeometry
}

// Geometry holds one geometry object's buffers: interleaved
// position+normal vertices (VertexLanes float64 per vertex) and triangle
// indices local to this geometry.
type Geometry struct {
	Vertices []float64
	Indices  []uint32
}

// VertexCount returns the number of vertices in the buffer.
func (g Geometry) VertexCount() uint32 {
	return uint32(len(g.Vertices) / VertexLanes)
}

// Identity is the 4x4 identity matrix in row-major order.
func Identity() [16]float64 {
	var m [16]float64
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Element type codes excluded from full-model streaming when openings
// and spaces are skipped. These are spatial/void markers that carry no
// renderable solids.
const (
	IfcOpeningElement      uint32 = 3588315303
	IfcOpeningStandardCase uint32 = 3079942009
	IfcSpace               uint32 = 3856911033
)

// Header line type codes.
const (
	FileDescription uint32 = 4222244095
	FileName        uint32 = 1390159747
	FileSchema      uint32 = 1109904537
)
