package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pricetracker/logger"
)

var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_pages_fetched_total",
			Help: "Pages fetched from the retailer",
		},
	)
	RecordsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Product records extracted from fetched pages",
		},
	)
	RecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_skipped_total",
			Help: "Malformed product records dropped during extraction",
		},
	)
	RecordsPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_persisted_total",
			Help: "Records written by the sinks",
		},
	)
	SinkFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_sink_failures_total",
			Help: "Per-record or per-sink persistence failures",
		},
	)
)

func Start(port string) {
	prometheus.MustRegister(PagesFetched, RecordsExtracted, RecordsSkipped, RecordsPersisted, SinkFailures)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, nil); err != nil {
			logger.LogError("metrics", err, "Metrics listener stopped")
		}
	}()
}
