package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_requests_total",
		Help: "Total number of API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zoneapi_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	ResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_resolve_total",
		Help: "Zone resolutions by matching tier (uncovered when no tier matched)",
	}, []string{"tier"})
	GeocodeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_geocode_requests_total",
		Help: "Total geocoding provider requests",
	}, []string{"provider"})
	GeocodeSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_geocode_success_total",
		Help: "Total geocoding provider successes",
	}, []string{"provider"})
	GeocodeFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_geocode_fail_total",
		Help: "Total geocoding provider failures (transport, decode, no result)",
	}, []string{"provider"})
	GeocodeDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zoneapi_geocode_duration_ms",
		Help:    "Geocoding provider call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000, 4000},
	}, []string{"provider"})
	GeocodeCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_geocode_cache_total",
		Help: "Geocode cache lookups by level and result",
	}, []string{"level", "result"})
	DatasetZones = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "zoneapi_dataset_zones",
		Help: "Number of zones in the most recently loaded dataset",
	})
	DatasetReloadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_dataset_reload_total",
		Help: "Dataset reload attempts by status",
	}, []string{"status"})
	DroppedEntriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_dataset_dropped_entries_total",
		Help: "Zone entries dropped during normalization by reason",
	}, []string{"reason"})
	VisitorHintTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zoneapi_visitor_hint_total",
		Help: "Visitor IP hints by source (mmdb, ip2region, none)",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(ResolveTotal)
	prometheus.MustRegister(GeocodeRequestsTotal)
	prometheus.MustRegister(GeocodeSuccessTotal)
	prometheus.MustRegister(GeocodeFailTotal)
	prometheus.MustRegister(GeocodeDurationMs)
	prometheus.MustRegister(GeocodeCacheTotal)
	prometheus.MustRegister(DatasetZones)
	prometheus.MustRegister(DatasetReloadTotal)
	prometheus.MustRegister(DroppedEntriesTotal)
	prometheus.MustRegister(VisitorHintTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
