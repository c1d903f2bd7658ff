package metrics

import (
	"testing"

	"FinPanel/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordBuild("fred", true, 120)
	r.RecordBuild("fred", false, 0)
	r.RecordWarning("fred", models.WarnEmptyColumn)
	r.RecordWarning("fred", models.WarnEmptyColumn)
	r.RecordFetch("fred", true)
	r.RecordError("fetch")
	r.RecordLatency("build", 0.2)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.builds.WithLabelValues("fred", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.builds.WithLabelValues("fred", "false")))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.rows.WithLabelValues("fred")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.warnings.WithLabelValues("fred", string(models.WarnEmptyColumn))))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("fetch")))

	n, err := testutil.GatherAndCount(reg, "finpanel_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
