package constants

// Layout is the canonical room-configuration code used by the prediction model.
type Layout int

const (
	Layout1K    Layout = 1
	Layout1DK   Layout = 2
	Layout1LDK  Layout = 3
	Layout2K    Layout = 4
	Layout2DK   Layout = 5
	Layout2LDK  Layout = 6
	Layout3K    Layout = 7
	Layout3DK   Layout = 8
	Layout3LDK  Layout = 9
	Layout4K    Layout = 10
	Layout4DK   Layout = 11
	Layout4LDKp Layout = 12 // 4LDK and above
)

const (
	LayoutMin = int(Layout1K)
	LayoutMax = int(Layout4LDKp)
)

var layoutLabels = map[Layout]string{
	Layout1K:    "1K",
	Layout1DK:   "1DK",
	Layout1LDK:  "1LDK",
	Layout2K:    "2K",
	Layout2DK:   "2DK",
	Layout2LDK:  "2LDK",
	Layout3K:    "3K",
	Layout3DK:   "3DK",
	Layout3LDK:  "3LDK",
	Layout4K:    "4K",
	Layout4DK:   "4DK",
	Layout4LDKp: "4LDK以上",
}

// Valid reports whether code is inside the layout enumeration.
func (l Layout) Valid() bool {
	return int(l) >= LayoutMin && int(l) <= LayoutMax
}

// Label returns the display text for the code, or ok=false for codes
// outside the enumeration.
func (l Layout) Label() (string, bool) {
	s, ok := layoutLabels[l]
	return s, ok
}

// LayoutLabels returns a copy of the full code→label dictionary.
func LayoutLabels() map[int]string {
	out := make(map[int]string, len(layoutLabels))
	for k, v := range layoutLabels {
		out[int(k)] = v
	}
	return out
}
