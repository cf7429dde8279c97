package memengine

import (
	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

// Engine is an in-memory stand-in for the native engine. It hands out
// sequential model identifiers and keeps each model's parsed lines and
// seeded geometry in plain maps. It is not safe for concurrent use;
// the registry guard above it provides the serialization.
type Engine struct {
	next   uint32
	models map[webifc.Handle]*Model
	schema *Schema
	level  webifc.LogLevel
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{
		models: make(map[webifc.Handle]*Model),
		schema: NewSchema(),
	}
}

// Model is one open model: its data and header lines, the argument
// cursor, and the geometry double.
type Model struct {
	schema   *Schema
	settings webifc.EngineSettings

	lines   map[uint32]*line
	headers []line
	order   []uint32
	maxID   uint32
	rawSize uint64

	tokens []webifc.ArgValue
	pos    int

	proc *Processor
}

func (e *Engine) CreateModel(settings webifc.EngineSettings) webifc.Handle {
	h := e.next
	e.next++
	e.models[h] = &Model{
		schema:   e.schema,
		settings: settings,
		lines:    make(map[uint32]*line),
		proc:     NewProcessor(),
	}
	return h
}

func (e *Engine) IsModelOpen(h webifc.Handle) bool {
	_, ok := e.models[h]
	return ok
}

func (e *Engine) CloseModel(h webifc.Handle) {
	delete(e.models, h)
}

func (e *Engine) CloseAllModels() {
	e.models = make(map[webifc.Handle]*Model)
}

func (e *Engine) Loader(h webifc.Handle) webifc.Loader {
	m, ok := e.models[h]
	if !ok {
		return nil
	}
	return m
}

func (e *Engine) GeometryProcessor(h webifc.Handle) webifc.GeometryProcessor {
	m, ok := e.models[h]
	if !ok {
		return nil
	}
	return m.proc
}

func (e *Engine) SchemaManager() webifc.SchemaManager { return e.schema }

func (e *Engine) SetLogLevel(level webifc.LogLevel) { e.level = level }

// LogLevel returns the last level passed to SetLogLevel.
func (e *Engine) LogLevel() webifc.LogLevel { return e.level }

// Model exposes a model for test seeding, or nil when closed.
func (e *Engine) Model(h webifc.Handle) *Model { return e.models[h] }

// Settings returns the settings the model was created with.
func (m *Model) Settings() webifc.EngineSettings { return m.settings }

// Geometry returns the model's geometry double for seeding.
func (m *Model) Geometry() *Processor { return m.proc }

// SeedLine inserts a data line directly, bypassing STEP parsing.
func (m *Model) SeedLine(expressID uint32, typeName string, args ...webifc.ArgValue) {
	tc := m.schema.NameToTypeCode(typeName)
	if _, exists := m.lines[expressID]; !exists {
		m.order = append(m.order, expressID)
	}
	m.lines[expressID] = &line{typeCode: tc, typeName: typeName, args: args}
	if expressID > m.maxID {
		m.maxID = expressID
	}
}

// SeedHeaderLine appends a header line directly.
func (m *Model) SeedHeaderLine(typeName string, args ...webifc.ArgValue) {
	m.headers = append(m.headers, line{
		typeCode: m.schema.NameToTypeCode(typeName),
		typeName: typeName,
		args:     args,
	})
}
