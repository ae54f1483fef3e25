package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 任务结果取值。skipped 表示处理器放弃重试，例如载荷无法解析。
const (
	taskResultSuccess = "success"
	taskResultRetry   = "retry"
	taskResultFailed  = "failed"
	taskResultSkipped = "skipped"
)

var (
	taskProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_total",
			Help:      "后台任务处理次数，按任务类型与结果区分。",
		},
		[]string{"task_type", "result"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "单次任务耗时，PDF 任务包含浏览器打印与上传。",
			Buckets:   []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"task_type"},
	)

	taskInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录任务耗时与结果。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			taskInProgress.WithLabelValues(taskType).Inc()
			defer taskInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			taskProcessedTotal.WithLabelValues(taskType, taskResult(ctx, err)).Inc()
			return err
		})
	}
}

// taskResult 区分还会重试的失败与最终失败，便于只对后者告警。
func taskResult(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return taskResultSuccess
	case errors.Is(err, asynq.SkipRetry):
		return taskResultSkipped
	}
	retried, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if ok1 && ok2 && retried < maxRetry {
		return taskResultRetry
	}
	return taskResultFailed
}
