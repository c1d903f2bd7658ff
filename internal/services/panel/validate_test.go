package panel

import (
	"errors"
	"math"
	"testing"

	"FinPanel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_InputErrors(t *testing.T) {
	a := raw("A", days(1, 2), vs(1, 2))
	b := raw("B", days(1, 2), vs(1, 2))

	tests := []struct {
		name   string
		series []models.RawSeries
		rules  models.Rules
		window models.Window
		opts   []Option
		kind   error
		column string
	}{
		{
			name: "no series",
			kind: ErrNoSeries,
		},
		{
			name:   "duplicate series id",
			series: []models.RawSeries{a, a},
			kind:   ErrDuplicateID,
			column: "A",
		},
		{
			name:   "index not increasing",
			series: []models.RawSeries{raw("U", days(2, 2), vs(1, 2))},
			kind:   ErrUnsortedIndex,
			column: "U",
		},
		{
			name:   "length mismatch",
			series: []models.RawSeries{raw("M", days(1, 2), vs(1))},
			kind:   ErrMalformedInput,
			column: "M",
		},
		{
			name:   "fill on unknown column",
			series: []models.RawSeries{a},
			rules:  models.Rules{Fills: []models.FillPolicy{{Column: "Z", Mode: models.FillCarryForward}}},
			kind:   ErrUnknownColumn,
			column: "Z",
		},
		{
			name:   "fallback on unknown column",
			series: []models.RawSeries{a},
			rules:  models.Rules{Fallbacks: []models.FallbackRule{{Column: "C", Primary: "A", Secondary: "Z"}}},
			kind:   ErrUnknownColumn,
			column: "C",
		},
		{
			name:   "fallback collides with raw column",
			series: []models.RawSeries{a, b},
			rules:  models.Rules{Fallbacks: []models.FallbackRule{{Column: "B", Primary: "A", Secondary: "A"}}},
			kind:   ErrDuplicateID,
			column: "B",
		},
		{
			name:   "override on unknown column",
			series: []models.RawSeries{a},
			rules:  models.Rules{Overrides: []models.Override{{Timestamp: day(1), Column: "Z", Value: 1}}},
			kind:   ErrUnknownColumn,
			column: "Z",
		},
		{
			name:   "override without timestamp",
			series: []models.RawSeries{a},
			rules:  models.Rules{Overrides: []models.Override{{Column: "A", Value: 1}}},
			kind:   ErrInvalidRule,
			column: "A",
		},
		{
			name:   "override not finite",
			series: []models.RawSeries{a},
			rules:  models.Rules{Overrides: []models.Override{{Timestamp: day(1), Column: "A", Value: math.Inf(1)}}},
			kind:   ErrInvalidRule,
			column: "A",
		},
		{
			name:   "unit rule on derived column",
			series: []models.RawSeries{a, b},
			rules: models.Rules{
				Fallbacks: []models.FallbackRule{{Column: "C", Primary: "A", Secondary: "B"}},
				Units:     []models.UnitRule{{Column: "C", Factor: 10}},
			},
			kind:   ErrInvalidRule,
			column: "C",
		},
		{
			name:   "unit factor zero",
			series: []models.RawSeries{a},
			rules:  models.Rules{Units: []models.UnitRule{{Column: "A", Factor: 0}}},
			kind:   ErrInvalidRule,
			column: "A",
		},
		{
			name:   "duplicate unit rule",
			series: []models.RawSeries{a},
			rules:  models.Rules{Units: []models.UnitRule{{Column: "A", Factor: 2}, {Column: "A", Factor: 2}}},
			kind:   ErrInvalidRule,
			column: "A",
		},
		{
			name:   "unknown fill mode",
			series: []models.RawSeries{a},
			rules:  models.Rules{Fills: []models.FillPolicy{{Column: "A", Mode: "backward"}}},
			kind:   ErrInvalidRule,
			column: "A",
		},
		{
			name:   "manual collides with raw",
			series: []models.RawSeries{a},
			rules:  models.Rules{Manual: []string{"A"}},
			kind:   ErrDuplicateID,
			column: "A",
		},
		{
			name:   "drop unknown column",
			series: []models.RawSeries{a},
			rules:  models.Rules{Drop: []string{"Z"}},
			kind:   ErrUnknownColumn,
			column: "Z",
		},
		{
			name:   "window start after end",
			series: []models.RawSeries{a},
			window: models.Window{Start: ptr(day(5)), End: ptr(day(1))},
			kind:   ErrInvalidWindow,
		},
		{
			name:   "grid not increasing",
			series: []models.RawSeries{a},
			opts:   []Option{WithGrid(days(3, 1))},
			kind:   ErrUnsortedIndex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, warnings, err := Build(tt.series, tt.rules, tt.window, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Nil(t, warnings)

			assert.ErrorIs(t, err, ErrInput)
			assert.ErrorIs(t, err, tt.kind)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.column, ie.Column)
		})
	}
}

func TestBuild_RulesMayReferenceManualAndFallbackColumns(t *testing.T) {
	series := []models.RawSeries{raw("A", days(1, 2), vs(1, nil))}
	rules := models.Rules{
		Manual:    []string{"M"},
		Fallbacks: []models.FallbackRule{{Column: "C", Primary: "M", Secondary: "A"}},
		Fills: []models.FillPolicy{
			{Column: "C", Mode: models.FillCarryForward},
			{Column: "M", Mode: models.FillNone},
		},
		Overrides: []models.Override{{Timestamp: day(2), Column: "M", Value: 5}},
	}

	p, _, err := Build(series, rules, models.Window{})
	require.NoError(t, err)
	assert.Equal(t, vs(nil, 5), colOf(t, p, "M"))
	assert.Equal(t, vs(1, 1), colOf(t, p, "C"), "fallbacks are not recomputed after overrides")
}

func TestInputError_Message(t *testing.T) {
	err := inputErr(ErrUnknownColumn, "fill", "X", 2, "no such column")
	assert.Equal(t, `invalid panel input: fill "X" at 2: no such column`, err.Error())
}
