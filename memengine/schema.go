package memengine

import (
	"hash/crc32"
	"sort"
	"strings"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

// knownTypes is the subset of the IFC schema the double understands.
// Type codes are the CRC-32 of the upper-case name, matching the
// engine's convention, except FILE_DESCRIPTION which carries a fixed
// historical code.
var knownTypes = []string{
	"IFCPROJECT",
	"IFCSITE",
	"IFCBUILDING",
	"IFCBUILDINGSTOREY",
	"IFCWALL",
	"IFCWALLSTANDARDCASE",
	"IFCSLAB",
	"IFCDOOR",
	"IFCWINDOW",
	"IFCCOLUMN",
	"IFCBEAM",
	"IFCROOF",
	"IFCSTAIR",
	"IFCFURNISHINGELEMENT",
	"IFCBUILDINGELEMENTPROXY",
	"IFCSPACE",
	"IFCOPENINGELEMENT",
	"IFCOPENINGSTANDARDCASE",
	"IFCOWNERHISTORY",
	"IFCCARTESIANPOINT",
	"IFCAXIS2PLACEMENT3D",
	"IFCLOCALPLACEMENT",
	"IFCMATERIAL",
	"IFCPROPERTYSET",
	"IFCPROPERTYSINGLEVALUE",
	"IFCRELAGGREGATES",
	"IFCRELDEFINESBYPROPERTIES",
	"IFCRELVOIDSELEMENT",
	"IFCRELCONTAINEDINSPATIALSTRUCTURE",
	"FILE_NAME",
	"FILE_SCHEMA",
}

// elementTypes are the types that carry renderable product geometry.
var elementTypes = []string{
	"IFCWALL",
	"IFCWALLSTANDARDCASE",
	"IFCSLAB",
	"IFCDOOR",
	"IFCWINDOW",
	"IFCCOLUMN",
	"IFCBEAM",
	"IFCROOF",
	"IFCSTAIR",
	"IFCFURNISHINGELEMENT",
	"IFCBUILDINGELEMENTPROXY",
	"IFCSPACE",
	"IFCOPENINGELEMENT",
	"IFCOPENINGSTANDARDCASE",
}

// Schema resolves type names and codes for the double.
type Schema struct {
	names    map[uint32]string
	elements map[uint32]bool
	ordered  []uint32
}

// NewSchema builds the schema table.
func NewSchema() *Schema {
	s := &Schema{
		names:    make(map[uint32]string, len(knownTypes)+1),
		elements: make(map[uint32]bool, len(elementTypes)),
	}
	s.names[webifc.FileDescription] = "FILE_DESCRIPTION"
	for _, name := range knownTypes {
		s.names[typeCodeOf(name)] = name
	}
	for _, name := range elementTypes {
		tc := typeCodeOf(name)
		s.elements[tc] = true
		s.ordered = append(s.ordered, tc)
	}
	sort.Slice(s.ordered, func(i, j int) bool { return s.ordered[i] < s.ordered[j] })
	return s
}

func typeCodeOf(name string) uint32 {
	return crc32.ChecksumIEEE([]byte(strings.ToUpper(name)))
}

// TypeCodeToName returns the name of a known type, or "" for an
// unknown code.
func (s *Schema) TypeCodeToName(typeCode uint32) string {
	return s.names[typeCode]
}

// NameToTypeCode hashes the name into its type code. Unknown names
// still produce a stable code, as in the engine.
func (s *Schema) NameToTypeCode(name string) uint32 {
	if name == "FILE_DESCRIPTION" {
		return webifc.FileDescription
	}
	return typeCodeOf(name)
}

// IsElement reports whether the code names a product element type.
func (s *Schema) IsElement(typeCode uint32) bool {
	return s.elements[typeCode]
}

// ElementTypes returns the element type codes in ascending order.
func (s *Schema) ElementTypes() []uint32 {
	out := make([]uint32, len(s.ordered))
	copy(out, s.ordered)
	return out
}
