package panel

import (
	"math"
	"time"

	"FinPanel/internal/domain/models"
)

// validate checks the whole declaration set before any work is done.
func validate(series []models.RawSeries, rules models.Rules, window models.Window, grid []time.Time) error {
	if len(series) == 0 {
		return inputErr(ErrNoSeries, "series", "", -1, "at least one raw series is required")
	}

	raw := make(map[string]bool, len(series))
	for i, s := range series {
		if s.ID == "" {
			return inputErr(ErrMalformedInput, "series", "", i, "empty series id")
		}
		if raw[s.ID] {
			return inputErr(ErrDuplicateID, "series", s.ID, -1, "series id appears more than once")
		}
		raw[s.ID] = true
		if len(s.Index) != len(s.Values) {
			return inputErr(ErrMalformedInput, "series", s.ID, -1,
				"index has %d entries but values has %d", len(s.Index), len(s.Values))
		}
		if i := firstUnordered(s.Index); i >= 0 {
			return inputErr(ErrUnsortedIndex, "series", s.ID, i,
				"%s does not follow %s", s.Index[i].Format(time.RFC3339), s.Index[i-1].Format(time.RFC3339))
		}
	}

	known := make(map[string]bool, len(raw)+len(rules.Manual)+len(rules.Fallbacks))
	for id := range raw {
		known[id] = true
	}
	for i, id := range rules.Manual {
		if id == "" {
			return inputErr(ErrInvalidRule, "manual", "", i, "empty column id")
		}
		if known[id] {
			return inputErr(ErrDuplicateID, "manual", id, i, "column already exists")
		}
		known[id] = true
	}

	for i, fb := range rules.Fallbacks {
		if fb.Column == "" {
			return inputErr(ErrInvalidRule, "fallback", "", i, "empty column id")
		}
		if known[fb.Column] {
			return inputErr(ErrDuplicateID, "fallback", fb.Column, i, "column already exists")
		}
		for _, ref := range []string{fb.Primary, fb.Secondary} {
			if !known[ref] {
				return inputErr(ErrUnknownColumn, "fallback", fb.Column, i, "references unknown column %q", ref)
			}
		}
		known[fb.Column] = true
	}

	seenUnit := make(map[string]bool, len(rules.Units))
	for i, u := range rules.Units {
		if !raw[u.Column] {
			if known[u.Column] {
				return inputErr(ErrInvalidRule, "unit", u.Column, i, "unit rules apply to raw source columns only")
			}
			return inputErr(ErrUnknownColumn, "unit", u.Column, i, "no such column")
		}
		if seenUnit[u.Column] {
			return inputErr(ErrInvalidRule, "unit", u.Column, i, "column already has a unit rule")
		}
		seenUnit[u.Column] = true
		if u.Factor == 0 || math.IsNaN(u.Factor) || math.IsInf(u.Factor, 0) {
			return inputErr(ErrInvalidRule, "unit", u.Column, i, "factor must be finite and non-zero, got %v", u.Factor)
		}
		switch u.Op {
		case "", models.UnitDivide, models.UnitMultiply:
		default:
			return inputErr(ErrInvalidRule, "unit", u.Column, i, "unknown op %q", u.Op)
		}
	}

	seenFill := make(map[string]bool, len(rules.Fills))
	for i, f := range rules.Fills {
		if !known[f.Column] {
			return inputErr(ErrUnknownColumn, "fill", f.Column, i, "no such column")
		}
		if seenFill[f.Column] {
			return inputErr(ErrInvalidRule, "fill", f.Column, i, "column already has a fill policy")
		}
		seenFill[f.Column] = true
		if f.Mode != models.FillCarryForward && f.Mode != models.FillNone {
			return inputErr(ErrInvalidRule, "fill", f.Column, i, "unknown fill mode %q", f.Mode)
		}
	}

	for i, o := range rules.Overrides {
		if !known[o.Column] {
			return inputErr(ErrUnknownColumn, "override", o.Column, i, "no such column")
		}
		if o.Timestamp.IsZero() {
			return inputErr(ErrInvalidRule, "override", o.Column, i, "missing timestamp")
		}
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return inputErr(ErrInvalidRule, "override", o.Column, i, "value must be finite")
		}
	}

	for i, id := range rules.Drop {
		if !known[id] {
			return inputErr(ErrUnknownColumn, "drop", id, i, "no such column")
		}
	}

	if window.Start != nil && window.End != nil && window.Start.After(*window.End) {
		return inputErr(ErrInvalidWindow, "window", "", -1, "start %s is after end %s",
			window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
	}

	if i := firstUnordered(grid); i >= 0 {
		return inputErr(ErrUnsortedIndex, "grid", "", i, "grid timestamps must be strictly increasing")
	}
	return nil
}

// firstUnordered returns the first position that is not strictly after its
// predecessor, or -1.
func firstUnordered(ts []time.Time) int {
	for i := 1; i < len(ts); i++ {
		if !ts[i].After(ts[i-1]) {
			return i
		}
	}
	return -1
}
