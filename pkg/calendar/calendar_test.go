package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDays_Weekdays(t *testing.T) {
	got, err := New().BusinessDays(Weekdays, date(2024, 7, 1), date(2024, 7, 8))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2024, 7, 1), date(2024, 7, 2), date(2024, 7, 3),
		date(2024, 7, 4), date(2024, 7, 5), date(2024, 7, 8),
	}, got)
}

func TestBusinessDays_NYSESkipsHoliday(t *testing.T) {
	got, err := New().BusinessDays("XNYS", date(2024, 7, 1), date(2024, 7, 7))
	require.NoError(t, err)
	assert.Contains(t, got, date(2024, 7, 1))
	assert.NotContains(t, got, date(2024, 7, 4))
	assert.NotContains(t, got, date(2024, 7, 6))
	assert.NotContains(t, got, date(2024, 7, 7))
}

func TestBusinessDays_EmptyRange(t *testing.T) {
	got, err := New().BusinessDays(Weekdays, date(2024, 7, 8), date(2024, 7, 1))
	require.NoError(t, err)
	assert.Empty(t, got)
}
