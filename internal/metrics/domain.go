package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resumeforge"

var (
	importParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "parses_total",
			Help:      "简历导入解析次数，按实际生效的解析器区分。",
		},
		[]string{"parser"},
	)

	renderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "documents_total",
			Help:      "渲染的简历文档数量。",
		},
		[]string{"template", "format"},
	)

	pdfExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "pdf_total",
			Help:      "PDF 导出结果计数。",
		},
		[]string{"result"},
	)
)

// ObserveImportParse 记录一次导入解析，parser 为 ai 或 heuristic。
func ObserveImportParse(parser string) {
	importParsesTotal.WithLabelValues(parser).Inc()
}

// ObserveRender 记录一次模板渲染，format 为 html、word 或 pdf。
func ObserveRender(template, format string) {
	renderTotal.WithLabelValues(template, format).Inc()
}

// ObservePDFExport 记录 PDF 导出结果。
func ObservePDFExport(success bool) {
	result := "completed"
	if !success {
		result = "failed"
	}
	pdfExportsTotal.WithLabelValues(result).Inc()
}
