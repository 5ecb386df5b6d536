package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sidodash_dataset_loads_total",
		Help: "Dataset file reads by outcome",
	}, []string{"outcome"})
	DatasetLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sidodash_dataset_load_duration_ms",
		Help:    "Dataset file read duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	DatasetRowsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sidodash_dataset_rows_dropped_total",
		Help: "Rows dropped while loading by reason",
	}, []string{"reason"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sidodash_cache_hits_total",
		Help: "Dataset cache hits by tier",
	}, []string{"tier"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sidodash_cache_misses_total",
		Help: "Dataset cache misses by tier",
	}, []string{"tier"})
	JoinDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sidodash_join_dropped_total",
		Help: "Records dropped because the region has no boundary",
	})
	RendersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sidodash_renders_total",
		Help: "Page rendering passes by page, mode and outcome",
	}, []string{"page", "mode", "outcome"})
)

func init() {
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetLoadDurationMs)
	prometheus.MustRegister(DatasetRowsDroppedTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(JoinDroppedTotal)
	prometheus.MustRegister(RendersTotal)
}

// 文档注释：将已注册指标写为 node_exporter textfile 格式
// 背景：进程不对外提供 HTTP，指标在 CLI 结束时落盘，由 textfile collector 采集。
// 约束：path 为空时不做任何事。
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
