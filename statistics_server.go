package linebookmark

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatisticsServer constructs an HTTP server exposing both the
// program's JSON snapshot-in-time statistics (at "/") and Prometheus
// counters (at "/metrics"). The JSON endpoint is for debugging or
// scripts polling one process; "/metrics" is for scraping.
type StatisticsServer struct {
	Statistics *Statistics
	Addr       string
}

func (s *StatisticsServer) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    s.Addr,
		Handler: mux,
	}

	return server.ListenAndServe()
}

func (s *StatisticsServer) handleRoot(writer http.ResponseWriter, request *http.Request) {
	s.Statistics.UpdateFileSizeStatistics()

	jsonStats, err := json.Marshal(s.Statistics)
	if err != nil {
		writer.WriteHeader(500)
		writer.Write([]byte(err.Error()))
	} else {
		writer.Header().Add("Content-Type", "application/json")
		writer.Write(jsonStats)
	}
}
