package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// templateKey 存放本次请求实际渲染的模板名，由预览、导出与公开页处理器写入。
const templateKey = "metrics.template"

const noTemplate = "none"

var httpLabels = []string{"method", "route", "status", "template"}

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时（秒），渲染类接口按模板区分。",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		httpLabels,
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		httpLabels,
	)

	responseBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "响应体大小，主要用于观察 HTML 与 Word 导出体积。",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"route", "template"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 HTTP 请求数量。",
		},
	)
)

// SetTemplate 标记本次请求渲染所用的模板。
func SetTemplate(c *gin.Context, template string) {
	if template != "" {
		c.Set(templateKey, template)
	}
}

// GinMiddleware 采集路由级别的请求指标。
// 未匹配路由统一记为 unmatched，避免任意路径撑爆标签基数。
func GinMiddleware() gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, responseBytes, requestsInFlight)
	})

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		template := c.GetString(templateKey)
		if template == "" {
			template = noTemplate
		}
		labels := prometheus.Labels{
			"method":   c.Request.Method,
			"route":    route,
			"status":   strconv.Itoa(c.Writer.Status()),
			"template": template,
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
		if size := c.Writer.Size(); size > 0 {
			responseBytes.WithLabelValues(route, template).Observe(float64(size))
		}
	}
}
