package models

import "time"

type Column struct {
	ID     string  `json:"id"`
	Values []Value `json:"values"`
}

// Panel is a time-indexed table of nullable columns sharing one index.
type Panel struct {
	Index   []time.Time `json:"index"`
	Columns []Column    `json:"columns"`
}

func (p *Panel) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Index)
}

func (p *Panel) ColumnIDs() []string {
	ids := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		ids[i] = c.ID
	}
	return ids
}

func (p *Panel) Column(id string) ([]Value, bool) {
	for _, c := range p.Columns {
		if c.ID == id {
			return c.Values, true
		}
	}
	return nil, false
}

// Series returns every column as a RawSeries tagged SourcePanel, so the
// panel can be fed back into a build without rescaling it twice.
func (p *Panel) Series() []RawSeries {
	out := make([]RawSeries, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = RawSeries{
			ID:     c.ID,
			Source: SourcePanel,
			Index:  append([]time.Time(nil), p.Index...),
			Values: append([]Value(nil), c.Values...),
		}
	}
	return out
}

// At returns the cell of column id at timestamp t.
func (p *Panel) At(id string, t time.Time) (Value, bool) {
	vals, ok := p.Column(id)
	if !ok {
		return Null, false
	}
	for i, ts := range p.Index {
		if ts.Equal(t) {
			return vals[i], true
		}
	}
	return Null, false
}

// Slice returns a copy restricted to the window and, when ids is non-empty,
// to those columns in the requested order. Unknown ids are skipped.
func (p *Panel) Slice(w Window, ids []string) *Panel {
	var rows []int
	out := &Panel{}
	for i, ts := range p.Index {
		if w.Contains(ts) {
			rows = append(rows, i)
			out.Index = append(out.Index, ts)
		}
	}

	cols := p.Columns
	if len(ids) > 0 {
		cols = cols[:0:0]
		for _, id := range ids {
			if vals, ok := p.Column(id); ok {
				cols = append(cols, Column{ID: id, Values: vals})
			}
		}
	}
	for _, c := range cols {
		vals := make([]Value, len(rows))
		for j, r := range rows {
			vals[j] = c.Values[r]
		}
		out.Columns = append(out.Columns, Column{ID: c.ID, Values: vals})
	}
	return out
}
