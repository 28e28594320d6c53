package linebookmark

import "github.com/prometheus/client_golang/prometheus"

var (
	linesReadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linebookmarkd_lines_read_total",
		Help: "Lines read from a tracked file.",
	}, []string{"file"})

	bytesReadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linebookmarkd_bytes_read_total",
		Help: "Bytes read from a tracked file.",
	}, []string{"file"})

	sendFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebookmarkd_send_failures_total",
		Help: "Chunk sends that failed and were queued for retry.",
	})

	snapshotFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "linebookmarkd_snapshot_failures_total",
		Help: "Failed attempts to persist high-water-mark bookmarks.",
	})

	spoolFlushesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "linebookmarkd_spool_flushes_total",
		Help: "Chunks handed off by the spooler, by the reason the chunk closed.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(linesReadTotal, bytesReadTotal, sendFailuresTotal, snapshotFailuresTotal, spoolFlushesTotal)
}
