package config

import (
	"testing"
	"time"

	"FinPanel/internal/domain/models"
	"FinPanel/internal/services/panel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
panels:
  - name: p
    series:
      - id: A
      - id: B
        source: file
        value_columns: ["Adj Close", "Close"]
    units:
      - { column: A, factor: 1000 }
    carry_forward: [A]
    overrides:
      A:
        "2024-01-03": 2
        "2024-01-01": 1
`

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, 30*time.Second, c.Fred.Timeout)
	assert.Equal(t, 4, c.Pipeline.Concurrency)
	assert.False(t, c.Kafka.Enabled)

	require.Len(t, c.Panels, 1)
	assert.Equal(t, "fred", c.Panels[0].Series[0].Source)
	assert.Equal(t, "file", c.Panels[0].Series[1].Source)
	assert.Equal(t, "divide", c.Panels[0].Units[0].Op)
}

func TestParse_ExplicitValuesKept(t *testing.T) {
	c, err := Parse([]byte("server:\n  port: 9090\nkafka:\n  required_acks: 1\n" + minimal))
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 1, c.Kafka.RequiredAcks)
}

func TestPanelConfig_Definition(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	d, err := c.Panels[0].Definition()
	require.NoError(t, err)
	assert.Equal(t, "p", d.Name)
	assert.Nil(t, d.Window.Start)
	require.Len(t, d.Series, 2)
	assert.Equal(t, []string{"Adj Close", "Close"}, d.Series[1].ValueColumns)
	assert.Equal(t, []models.UnitRule{{Column: "A", Factor: 1000, Op: models.UnitDivide}}, d.Rules.Units)
	assert.Equal(t, []models.FillPolicy{{Column: "A", Mode: models.FillCarryForward}}, d.Rules.Fills)

	day := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	assert.Equal(t, []models.Override{
		{Timestamp: day("2024-01-01"), Column: "A", Value: 1},
		{Timestamp: day("2024-01-03"), Column: "A", Value: 2},
	}, d.Rules.Overrides)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no panels", "environment: x\n"},
		{"bad backend", "store:\n  backend: postgres\n" + minimal},
		{"bad op", "panels:\n  - name: p\n    series: [{id: A}]\n    units: [{column: A, factor: 2, op: pow}]\n"},
		{"zero factor", "panels:\n  - name: p\n    series: [{id: A}]\n    units: [{column: A, factor: 0}]\n"},
		{"series without id", "panels:\n  - name: p\n    series: [{source: fred}]\n"},
		{"duplicate panel", "panels:\n  - name: p\n    series: [{id: A}]\n  - name: p\n    series: [{id: B}]\n"},
		{"bad start", "panels:\n  - name: p\n    start: someday\n    series: [{id: A}]\n"},
		{"bad override date", "panels:\n  - name: p\n    series: [{id: A}]\n    overrides: {A: {never: 1}}\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n  brokers: []\n" + minimal},
		{"not yaml", "panels: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("STORE_BACKEND", "clickhouse")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	c, err := LoadWithEnv("../../config/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, "clickhouse", c.Store.Backend)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestSampleConfig_FredPanelBuilds(t *testing.T) {
	c, err := Load("../../config/config.yaml")
	require.NoError(t, err)
	defs, err := c.Definitions()
	require.NoError(t, err)
	require.Len(t, defs, 3)

	fred := defs[0]
	require.Equal(t, "fred", fred.Name)
	assert.Len(t, fred.Series, 22)
	assert.Equal(t, "Interest on Reserves", fred.Descriptions()["Gen_IORB"])

	// one observation per series is enough to exercise every rule reference
	series := make([]models.RawSeries, len(fred.Series))
	for i, s := range fred.Series {
		series[i] = models.RawSeries{
			ID:     s.ID,
			Index:  []time.Time{time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)},
			Values: []models.Value{models.Some(1000)},
		}
	}
	p, _, err := panel.Build(series, fred.Rules, fred.Window)
	require.NoError(t, err)

	ids := p.ColumnIDs()
	assert.NotContains(t, ids, "IORB")
	assert.NotContains(t, ids, "IOER")
	assert.NotContains(t, ids, "IORR")
	assert.Contains(t, ids, "Gen_IORB")
	assert.Contains(t, ids, "ONRRP_CTPY_LIMIT")

	v, ok := p.At("WALCL", time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, models.Some(1), v)

	v, ok = p.At("ONRP_AGG_LIMIT", time.Date(2021, 7, 28, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, models.Some(500), v)
}
