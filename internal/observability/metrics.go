package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const jobName = "fashionetl"

// Metrics holds the pipeline's collectors on a private registry so tests
// and repeated scheduled runs do not collide on the default one.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched      prometheus.Counter
	ProductsExtracted prometheus.Counter
	RowsTransformed   prometheus.Counter
	RowsDropped       *prometheus.CounterVec
	SinkOutcomes      *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etl_pages_fetched_total",
			Help: "Listing pages fetched from the source",
		}),
		ProductsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etl_products_extracted_total",
			Help: "Raw products parsed from listing pages",
		}),
		RowsTransformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "etl_rows_transformed_total",
			Help: "Rows in the transformed table",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_rows_dropped_total",
			Help: "Rows removed by the transformer",
		}, []string{"reason"}),
		SinkOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "etl_sink_outcomes_total",
			Help: "Sink results by sink and status",
		}, []string{"sink", "status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "etl_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
	}
	m.Registry.MustRegister(
		m.PagesFetched,
		m.ProductsExtracted,
		m.RowsTransformed,
		m.RowsDropped,
		m.SinkOutcomes,
		m.StageDuration,
	)
	return m
}

// Start serves /metrics on port in the background.
func (m *Metrics) Start(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			zap.S().Errorf("metrics server stopped: %v", err)
		}
	}()
}

// Flush pushes to a Pushgateway and/or writes a node_exporter textfile.
// Both are optional; empty arguments are ignored.
func (m *Metrics) Flush(pushgatewayURL, textfile string) error {
	if pushgatewayURL != "" {
		if err := push.New(pushgatewayURL, jobName).Gatherer(m.Registry).Push(); err != nil {
			return err
		}
	}
	if textfile != "" {
		return prometheus.WriteToTextfile(textfile, m.Registry)
	}
	return nil
}
