package constants

// Structure is the canonical building-material code used by the prediction model.
type Structure int

// Stable values (stored as-is in history and sent to the model).
const (
	StructureWood  Structure = 1 // 木造
	StructureSteel Structure = 2 // S造
	StructureRC    Structure = 3 // RC造
	StructureSRC   Structure = 4 // SRC造
	StructureOther Structure = 5 // その他
)

const (
	StructureMin = int(StructureWood)
	StructureMax = int(StructureOther)
)

var structureLabels = map[Structure]string{
	StructureWood:  "木造",
	StructureSteel: "S造 (鉄骨造)",
	StructureRC:    "RC造 (鉄筋コンクリート造)",
	StructureSRC:   "SRC造 (鉄骨鉄筋コンクリート造)",
	StructureOther: "その他",
}

// Valid reports whether code is inside the structure enumeration.
func (s Structure) Valid() bool {
	return int(s) >= StructureMin && int(s) <= StructureMax
}

// Label returns the display text for the code, or ok=false for codes
// outside the enumeration. Unknown codes are never echoed back as text.
func (s Structure) Label() (string, bool) {
	l, ok := structureLabels[s]
	return l, ok
}

// StructureLabels returns a copy of the full code→label dictionary.
func StructureLabels() map[int]string {
	out := make(map[int]string, len(structureLabels))
	for k, v := range structureLabels {
		out[int(k)] = v
	}
	return out
}
