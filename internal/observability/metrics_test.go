package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.PagesFetched.Add(2)
	m.SinkOutcomes.WithLabelValues("csv", "OK").Inc()
	m.SinkOutcomes.WithLabelValues("database", "FAIL").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkOutcomes.WithLabelValues("database", "FAIL")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SinkOutcomes))
}

func TestMetrics_FlushTextfile(t *testing.T) {
	m := New()
	m.ProductsExtracted.Add(20)

	path := filepath.Join(t.TempDir(), "etl.prom")
	require.NoError(t, m.Flush("", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "etl_products_extracted_total 20")
}

func TestMetrics_FlushNothingConfigured(t *testing.T) {
	assert.NoError(t, New().Flush("", ""))
}
