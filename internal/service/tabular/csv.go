// Package tabular turns delimited text into raw series under an explicit
// column mapping. Nothing is guessed: a missing column is an error.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"FinPanel/internal/domain/models"
	"FinPanel/pkg/util"
)

var (
	ErrMapping   = errors.New("column mapping")
	ErrMalformed = errors.New("malformed table")
)

// Mapping names the date column and the candidate value columns, in order
// of preference. The first candidate present in the header is used.
type Mapping struct {
	DateColumn   string
	ValueColumns []string
}

func (m Mapping) resolve(header []string) (dateIdx, valueIdx int, err error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	dateIdx, ok := pos[m.DateColumn]
	if !ok {
		return 0, 0, fmt.Errorf("%w: date column %q not in %v", ErrMapping, m.DateColumn, header)
	}
	for _, c := range m.ValueColumns {
		if i, ok := pos[c]; ok {
			return dateIdx, i, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: none of %v in %v", ErrMapping, m.ValueColumns, header)
}

// ParseCSV reads a header row followed by observations. Rows are returned in
// ascending date order; duplicate dates are rejected.
func ParseCSV(r io.Reader, id string, m Mapping) (*models.RawSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformed, err)
	}
	header = append([]string(nil), header...)
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	dateIdx, valueIdx, err := m.resolve(header)
	if err != nil {
		return nil, err
	}

	type obs struct {
		t time.Time
		v models.Value
	}
	var rows []obs
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		t, err := util.ParseDate(strings.TrimSpace(rec[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		f, ok, err := util.ParseCell(rec[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: value %q: %v", ErrMalformed, line, rec[valueIdx], err)
		}
		v := models.Null
		if ok {
			v = models.Some(f)
		}
		rows = append(rows, obs{t: t, v: v})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	s := &models.RawSeries{
		ID:     id,
		Index:  make([]time.Time, len(rows)),
		Values: make([]models.Value, len(rows)),
	}
	for i, o := range rows {
		if i > 0 && o.t.Equal(rows[i-1].t) {
			return nil, fmt.Errorf("%w: duplicate date %s", ErrMalformed, util.FormatDate(o.t))
		}
		s.Index[i] = o.t
		s.Values[i] = o.v
	}
	return s, nil
}
