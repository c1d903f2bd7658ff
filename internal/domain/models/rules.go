package models

import "time"

type UnitOp string

const (
	UnitDivide   UnitOp = "divide"
	UnitMultiply UnitOp = "multiply"
)

// UnitRule rescales a raw source column once, before any fill. Series
// tagged SourcePanel are already rescaled and are skipped.
type UnitRule struct {
	Column string  `json:"column"`
	Factor float64 `json:"factor"`
	Op     UnitOp  `json:"op"`
}

func (r UnitRule) Apply(v float64) float64 {
	if r.Op == UnitMultiply {
		return v * r.Factor
	}
	return v / r.Factor
}

type FillMode string

const (
	FillNone         FillMode = "none"
	FillCarryForward FillMode = "carry_forward"
)

type FillPolicy struct {
	Column string   `json:"column"`
	Mode   FillMode `json:"mode"`
}

// FallbackRule synthesizes Column as Primary where present, else Secondary.
type FallbackRule struct {
	Column    string `json:"column"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Override pins a single cell to a known value.
type Override struct {
	Timestamp time.Time `json:"timestamp"`
	Column    string    `json:"column"`
	Value     float64   `json:"value"`
}

// Rules is the full declaration set applied by the panel builder.
type Rules struct {
	Units     []UnitRule     `json:"units,omitempty"`
	Fills     []FillPolicy   `json:"fills,omitempty"`
	Fallbacks []FallbackRule `json:"fallbacks,omitempty"`
	Overrides []Override     `json:"overrides,omitempty"`
	// Manual columns have no source and are populated by overrides only.
	Manual []string `json:"manual,omitempty"`
	// Drop removes columns from the output after every other step.
	Drop []string `json:"drop,omitempty"`
}

// Window bounds are inclusive. A nil bound is open.
type Window struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}
