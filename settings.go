package webifc

// Default loader tunables, applied whenever the corresponding
// LoaderSettings field is unset.
const (
	DefaultCircleSegments        uint16 = 12
	DefaultTapeSize              uint64 = 67108864    // 64 MiB
	DefaultMemoryLimit           uint64 = 2147483648  // 2 GiB
	DefaultLineWriterBuffer      uint32 = 10000
	DefaultPlaneRefitIterations  uint16 = 1
	DefaultBooleanUnionThreshold uint16 = 150

	DefaultTolerancePlaneIntersection      = 1.0e-4
	DefaultTolerancePlaneDeviation         = 1.0e-4
	DefaultToleranceBackDeviationDistance  = 1.0e-4
	DefaultToleranceInsideOutsidePerimeter = 1.0e-10
	DefaultToleranceScalarEquality         = 1.0e-4
)

// LoaderSettings carries the optional tunables accepted when a model is
// created. Every field is independently optional; nil means "use the
// named default". Defaults are resolved by Resolve once per call, never
// cached per handle.
type LoaderSettings struct {
	CoordinateToOrigin              *bool    `yaml:"coordinate_to_origin"`
	CircleSegments                  *uint16  `yaml:"circle_segments"`
	TapeSize                        *uint64  `yaml:"tape_size"`
	MemoryLimit                     *uint64  `yaml:"memory_limit"`
	LineWriterBuffer                *uint32  `yaml:"linewriter_buffer"`
	TolerancePlaneIntersection      *float64 `yaml:"tolerance_plane_intersection"`
	TolerancePlaneDeviation         *float64 `yaml:"tolerance_plane_deviation"`
	ToleranceBackDeviationDistance  *float64 `yaml:"tolerance_back_deviation_distance"`
	ToleranceInsideOutsidePerimeter *float64 `yaml:"tolerance_inside_outside_perimeter"`
	ToleranceScalarEquality         *float64 `yaml:"tolerance_scalar_equality"`
	PlaneRefitIterations            *uint16  `yaml:"plane_refit_iterations"`
	BooleanUnionThreshold           *uint16  `yaml:"boolean_union_threshold"`
}

// EngineSettings is the fully materialized record handed to the engine.
type EngineSettings struct {
	CoordinateToOrigin              bool
	CircleSegments                  uint16
	TapeSize                        uint64
	MemoryLimit                     uint64
	LineWriterBuffer                uint32
	TolerancePlaneIntersection      float64
	TolerancePlaneDeviation         float64
	ToleranceBackDeviationDistance  float64
	ToleranceInsideOutsidePerimeter float64
	ToleranceScalarEquality         float64
	PlaneRefitIterations            uint16
	BooleanUnionThreshold           uint16
}

// DefaultEngineSettings returns the settings produced by resolving an
// empty LoaderSettings.
func DefaultEngineSettings() EngineSettings {
	return (*LoaderSettings)(nil).Resolve()
}

// Resolve materializes the settings, substituting the named default for
// every unset field. A nil receiver resolves to all defaults.
func (s *LoaderSettings) Resolve() EngineSettings {
	out := EngineSettings{
		CircleSegments:                  DefaultCircleSegments,
		TapeSize:                        DefaultTapeSize,
		MemoryLimit:                     DefaultMemoryLimit,
		LineWriterBuffer:                DefaultLineWriterBuffer,
		TolerancePlaneIntersection:      DefaultTolerancePlaneIntersection,
		TolerancePlaneDeviation:         DefaultTolerancePlaneDeviation,
		ToleranceBackDeviationDistance:  DefaultToleranceBackDeviationDistance,
		ToleranceInsideOutsidePerimeter: DefaultToleranceInsideOutsidePerimeter,
		ToleranceScalarEquality:         DefaultToleranceScalarEquality,
		PlaneRefitIterations:            DefaultPlaneRefitIterations,
		BooleanUnionThreshold:           DefaultBooleanUnionThreshold,
	}
	if s == nil {
		return out
	}
	if s.CoordinateToOrigin != nil {
		out.CoordinateToOrigin = *s.CoordinateToOrigin
	}
	if s.CircleSegments != nil {
		out.CircleSegments = *s.CircleSegments
	}
	if s.TapeSize != nil {
		out.TapeSize = *s.TapeSize
	}
	if s.MemoryLimit != nil {
		out.MemoryLimit = *s.MemoryLimit
	}
	if s.LineWriterBuffer != nil {
		out.LineWriterBuffer = *s.LineWriterBuffer
	}
	if s.TolerancePlaneIntersection != nil {
		out.TolerancePlaneIntersection = *s.TolerancePlaneIntersection
	}
	if s.TolerancePlaneDeviation != nil {
		out.TolerancePlaneDeviation = *s.TolerancePlaneDeviation
	}
	if s.ToleranceBackDeviationDistance != nil {
		out.ToleranceBackDeviationDistance = *s.ToleranceBackDeviationDistance
	}
	if s.ToleranceInsideOutsidePerimeter != nil {
		out.ToleranceInsideOutsidePerimeter = *s.ToleranceInsideOutsidePerimeter
	}
	if s.ToleranceScalarEquality != nil {
		out.ToleranceScalarEquality = *s.ToleranceScalarEquality
	}
	if s.PlaneRefitIterations != nil {
		out.PlaneRefitIterations = *s.PlaneRefitIterations
	}
	if s.BooleanUnionThreshold != nil {
		out.BooleanUnionThreshold = *s.BooleanUnionThreshold
	}
	return out
}
