package panel

import (
	"sort"
	"time"

	"FinPanel/internal/domain/models"
)

type columnKind int

const (
	kindRaw columnKind = iota
	kindManual
	kindDerived
)

// column tracks which cells hold an observation (raw, derived or overridden)
// as opposed to a carried-forward value or a null.
type column struct {
	id         string
	kind       columnKind
	normalized bool
	vals       []models.Value
	observed   []bool
}

func (c *column) rescale(r models.UnitRule) {
	if c.normalized {
		return
	}
	for i, v := range c.vals {
		if v.Valid {
			c.vals[i].Float = r.Apply(v.Float)
		}
	}
}

// forwardFill carries the last value forward over nulls. Leading nulls stay null.
func (c *column) forwardFill() {
	last := models.Null
	for i, v := range c.vals {
		if v.Valid {
			last = v
			continue
		}
		c.vals[i] = last
	}
}

// propagate carries the value at row forward until the next observed cell.
func (c *column) propagate(row int) {
	v := c.vals[row]
	for i := row + 1; i < len(c.vals) && !c.observed[i]; i++ {
		c.vals[i] = v
	}
}

func (c *column) empty() bool {
	for _, v := range c.vals {
		if v.Valid {
			return false
		}
	}
	return true
}

type frame struct {
	index []time.Time
	cols  []*column
	byID  map[string]*column
}

func newFrame(index []time.Time) *frame {
	return &frame{index: index, byID: make(map[string]*column)}
}

func (f *frame) col(id string) *column {
	return f.byID[id]
}

func (f *frame) add(c *column) *column {
	f.cols = append(f.cols, c)
	f.byID[c.id] = c
	return c
}

func (f *frame) addEmpty(id string, kind columnKind) *column {
	return f.add(&column{
		id:       id,
		kind:     kind,
		vals:     make([]models.Value, len(f.index)),
		observed: make([]bool, len(f.index)),
	})
}

// addRaw reindexes s onto the frame index. Missing timestamps become null.
func (f *frame) addRaw(s models.RawSeries) {
	c := f.addEmpty(s.ID, kindRaw)
	c.normalized = s.Source == models.SourcePanel
	j := 0
	for i, t := range f.index {
		if j >= len(s.Index) {
			break
		}
		if s.Index[j].Equal(t) {
			c.vals[i] = s.Values[j]
			c.observed[i] = s.Values[j].Valid
			j++
		}
	}
}

func (f *frame) coalesce(fb models.FallbackRule) *column {
	c := f.addEmpty(fb.Column, kindDerived)
	primary, secondary := f.col(fb.Primary), f.col(fb.Secondary)
	for i := range f.index {
		v := primary.vals[i]
		if !v.Valid {
			v = secondary.vals[i]
		}
		c.vals[i] = v
		c.observed[i] = v.Valid
	}
	return c
}

// row returns the position of t, inserting an all-null row when absent.
func (f *frame) row(t time.Time) int {
	t = t.UTC()
	i := sort.Search(len(f.index), func(i int) bool { return !f.index[i].Before(t) })
	if i < len(f.index) && f.index[i].Equal(t) {
		return i
	}

	f.index = append(f.index, time.Time{})
	copy(f.index[i+1:], f.index[i:])
	f.index[i] = t
	for _, c := range f.cols {
		c.vals = append(c.vals, models.Null)
		copy(c.vals[i+1:], c.vals[i:])
		c.vals[i] = models.Null
		c.observed = append(c.observed, false)
		copy(c.observed[i+1:], c.observed[i:])
		c.observed[i] = false
	}
	return i
}

func (f *frame) clip(w models.Window) {
	if w.Start == nil && w.End == nil {
		return
	}
	lo := 0
	if w.Start != nil {
		lo = sort.Search(len(f.index), func(i int) bool { return !f.index[i].Before(*w.Start) })
	}
	hi := len(f.index)
	if w.End != nil {
		hi = sort.Search(len(f.index), func(i int) bool { return f.index[i].After(*w.End) })
	}
	if hi < lo {
		hi = lo
	}
	f.index = f.index[lo:hi]
	for _, c := range f.cols {
		c.vals = c.vals[lo:hi]
		c.observed = c.observed[lo:hi]
	}
}

func (f *frame) panel(dropped map[string]bool) *models.Panel {
	p := &models.Panel{Index: append([]time.Time(nil), f.index...)}
	for _, c := range f.cols {
		if dropped[c.id] {
			continue
		}
		p.Columns = append(p.Columns, models.Column{
			ID:     c.id,
			Values: append([]models.Value(nil), c.vals...),
		})
	}
	return p
}
