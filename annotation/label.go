package annotation

// Label is the closed set of vowel categories the recordings are annotated
// with. Anything else parses as Other and keeps its raw name on the Span.
type Label int

const (
	AA Label = iota
	EE
	II
	XX
	OO
	UU
	YY
	Other
)

var labelNames = [...]string{
	AA: "aa",
	EE: "ee",
	II: "ii",
	XX: "xx",
	OO: "oo",
	UU: "uu",
	YY: "yy",
}

// StandardLabels returns the seven recognized labels in dataset order.
func StandardLabels() []Label {
	return []Label{AA, EE, II, XX, OO, UU, YY}
}

// ParseLabel maps an annotation code to its Label. Unrecognized codes are Other.
func ParseLabel(code string) Label {
	for l, name := range labelNames {
		if name == code {
			return Label(l)
		}
	}
	return Other
}

// String returns the annotation code, or "other".
func (l Label) String() string {
	if l >= AA && l < Other {
		return labelNames[l]
	}
	return "other"
}

// Standard reports whether l is one of the seven recognized labels.
func (l Label) Standard() bool {
	return l >= AA && l < Other
}
