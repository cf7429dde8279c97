package webifc

import "io"

// Version is the marshalling layer's version string, reported by
// api.Version and the ifc-inspect tool.
const Version = "0.1.0"

// Handle identifies one open model. Handles live in the same integer
// space as the engine's model identifiers; no indirection table sits
// between them. A handle becomes invalid after CloseModel and may be
// reused by a later CreateModel.
type Handle = uint32

// VertexLanes is the number of float64 lanes per vertex in the engine's
// vertex buffer convention: position XYZ followed by normal XYZ.
const VertexLanes = 6

// Engine is the collaborator contract consumed by this layer. A real
// implementation wraps the native engine; memengine provides an
// in-memory double.
type Engine interface {
	// CreateModel allocates a new model and returns its identifier.
	CreateModel(settings EngineSettings) Handle

	// IsModelOpen reports whether the handle refers to an open model.
	IsModelOpen(model Handle) bool

	// CloseModel releases a model. Closing an unknown or already
	// closed handle is a no-op.
	CloseModel(model Handle)

	// CloseAllModels releases every open model.
	CloseAllModels()

	// Loader returns the line/argument cursor for a model, or nil if
	// the model is not open.
	Loader(model Handle) Loader

	// GeometryProcessor returns the geometry evaluator for a model, or
	// nil if the model is not open.
	GeometryProcessor(model Handle) GeometryProcessor

	// SchemaManager returns the schema resolver. It is model-independent.
	SchemaManager() SchemaManager

	// SetLogLevel adjusts the engine's diagnostic verbosity.
	SetLogLevel(level LogLevel)
}

// Loader exposes a model's tape: raw load/save over byte streams plus a
// cursor over the tokenized line arguments. Cursor state is per model;
// callers serialize access through the registry guard.
type Loader interface {
	LoadBytes(data []byte) error
	LoadFrom(r io.Reader) error
	SaveTo(w io.Writer, orderByExpressID bool) error

	TotalSize() uint64
	MaxExpressID() uint32
	NextExpressID(after uint32) uint32
	IsValidExpressID(expressID uint32) bool
	LineType(expressID uint32) uint32
	ArgumentCount(expressID uint32) uint32
	ExpressIDsWithType(typeCode uint32) []uint32
	AllLines() []uint32

	// MoveToArgument positions the cursor on the top-level argument at
	// argIndex of the given line. It fails if the index is out of range.
	MoveToArgument(expressID, argIndex uint32) error

	// TokenType consumes and returns the tag of the token under the
	// cursor. StepBack rewinds by one token so a typed read can
	// re-consume it.
	TokenType() TokenType
	StepBack()
	AtEnd() bool

	StringArgument() (string, error)
	DoubleArgument() (float64, error)
	IntArgument() (int64, error)
	RefArgument() (uint32, error)

	HeaderLinesWithType(headerType uint32) []uint32
	MoveToHeaderArgument(line, argIndex uint32) error
	HeaderArgumentCount(headerType uint32) uint32

	WriteLine(expressID, typeCode uint32, args []ArgValue) error
	WriteHeaderLine(headerType uint32, args []ArgValue) error
	RemoveLine(expressID uint32)

	GenerateGUID() string
	ResetCache()
}

// GeometryProcessor evaluates and caches element geometry.
type GeometryProcessor interface {
	// FlatMesh returns the placed geometries of an element, evaluating
	// them if not cached. An element without renderable solids yields a
	// mesh with no geometries, not an error.
	FlatMesh(expressID uint32) (FlatMesh, error)

	// Geometry returns the vertex/index buffers of one geometry object.
	// The returned buffers are engine-owned.
	Geometry(geometryExpressID uint32) (Geometry, error)

	SetTransformation(matrix [16]float64)

	// CoordinationMatrix is the identity matrix until geometry has been
	// evaluated with coordinate normalization enabled.
	CoordinationMatrix() [16]float64

	// Clear drops cached geometry buffers.
	Clear()
}

// SchemaManager resolves entity type names and codes.
type SchemaManager interface {
	TypeCodeToName(typeCode uint32) string
	NameToTypeCode(name string) uint32
	IsElement(typeCode uint32) bool
	ElementTypes() []uint32
}

// LogLevel mirrors the engine's diagnostic levels.
type LogLevel uint8

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelOff
)
