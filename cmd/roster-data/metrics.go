package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rosterhq/roster-sdk/pkg/configuration"
)

// serveMetrics exposes the Prometheus endpoint for the lifetime of the run,
// useful when scraping long imports.
func serveMetrics(opts configuration.PrometheusOptions) {
	mux := http.NewServeMux()
	mux.Handle(opts.Path, promhttp.Handler())
	if err := http.ListenAndServe(opts.Addr, mux); err != nil {
		fmt.Fprintf(os.Stderr, "metrics listener failed: %v\n", err)
	}
}
