// Package panel aligns raw time series onto one index and applies the
// declared unit, fill, fallback and override rules in a fixed order.
//
// Build is pure: it performs no I/O, reads no clock and never mutates its
// arguments. Identical inputs yield an identical panel.
package panel

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"FinPanel/internal/domain/models"
)

type options struct {
	grid []time.Time
}

type Option func(*options)

// WithGrid unions extra timestamps into the index, e.g. a business-day calendar.
func WithGrid(grid []time.Time) Option {
	return func(o *options) {
		o.grid = grid
	}
}

// Build produces the panel and any data quality warnings.
//
// Order: union index, reindex, unit rules, forward fills, fallbacks,
// overrides, window clip, drop. Each rule is applied exactly once.
func Build(series []models.RawSeries, rules models.Rules, window models.Window, opts ...Option) (*models.Panel, []models.Warning, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := validate(series, rules, window, o.grid); err != nil {
		return nil, nil, err
	}

	fr := newFrame(unionIndex(series, o.grid))
	for _, s := range series {
		fr.addRaw(s)
	}
	for _, id := range rules.Manual {
		fr.addEmpty(id, kindManual)
	}

	for _, u := range rules.Units {
		fr.col(u.Column).rescale(u)
	}

	carry := make(map[string]bool, len(rules.Fills))
	for _, f := range rules.Fills {
		if f.Mode == models.FillCarryForward {
			carry[f.Column] = true
		}
	}
	for _, c := range fr.cols {
		if carry[c.id] {
			c.forwardFill()
		}
	}

	for _, fb := range rules.Fallbacks {
		c := fr.coalesce(fb)
		if carry[c.id] {
			c.forwardFill()
		}
	}

	overrides := make([]models.Override, len(rules.Overrides))
	copy(overrides, rules.Overrides)
	sort.SliceStable(overrides, func(i, j int) bool {
		return overrides[i].Timestamp.Before(overrides[j].Timestamp)
	})
	for _, ov := range overrides {
		row := fr.row(ov.Timestamp)
		c := fr.col(ov.Column)
		c.vals[row] = models.Some(ov.Value)
		c.observed[row] = true
		if carry[c.id] {
			c.propagate(row)
		}
	}

	fr.clip(window)

	var warnings []models.Warning
	dropped := make(map[string]bool, len(rules.Drop))
	for _, id := range rules.Drop {
		dropped[id] = true
	}
	for _, c := range fr.cols {
		if dropped[c.id] || !c.empty() {
			continue
		}
		if c.kind == kindDerived {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarnFallbackUnresolved,
				Column:  c.id,
				Rule:    "fallback",
				Message: "neither primary nor secondary has a value in the window",
			})
			continue
		}
		warnings = append(warnings, models.Warning{
			Kind:    models.WarnEmptyColumn,
			Column:  c.id,
			Message: "column has no values in the window",
		})
	}
	for _, ov := range overrides {
		if !window.Contains(ov.Timestamp) {
			warnings = append(warnings, models.Warning{
				Kind:    models.WarnOverrideOutsideRange,
				Column:  ov.Column,
				Rule:    "override",
				Message: fmt.Sprintf("override at %s falls outside the window", ov.Timestamp.UTC().Format(time.RFC3339)),
			})
		}
	}

	return fr.panel(dropped), warnings, nil
}

// unionIndex merges every series index and the grid into one ascending,
// duplicate-free UTC index.
func unionIndex(series []models.RawSeries, grid []time.Time) []time.Time {
	n := len(grid)
	for _, s := range series {
		n += len(s.Index)
	}
	index := make([]time.Time, 0, n)
	for _, s := range series {
		for _, t := range s.Index {
			index = append(index, t.UTC())
		}
	}
	for _, t := range grid {
		index = append(index, t.UTC())
	}
	slices.SortFunc(index, time.Time.Compare)
	return slices.CompactFunc(index, time.Time.Equal)
}
