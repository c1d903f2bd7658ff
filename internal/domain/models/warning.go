package models

type WarningKind string

const (
	WarnEmptyColumn          WarningKind = "empty_column"
	WarnFallbackUnresolved   WarningKind = "fallback_unresolved"
	WarnOverrideOutsideRange WarningKind = "override_outside_window"
)

// Warning is a non-fatal data quality diagnostic produced by a build.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Column  string      `json:"column"`
	Rule    string      `json:"rule,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return string(w.Kind) + " " + w.Column + ": " + w.Message
}
