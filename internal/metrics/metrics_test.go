package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddlewareLabelsRenderedTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/v1/resumes/:id/preview", func(c *gin.Context) {
		SetTemplate(c, "modern")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html></html>"))
	})
	router.GET("/v1/resumes", func(c *gin.Context) {
		c.JSON(http.StatusOK, []string{})
	})

	preview := requestTotal.WithLabelValues(http.MethodGet, "/v1/resumes/:id/preview", "200", "modern")
	list := requestTotal.WithLabelValues(http.MethodGet, "/v1/resumes", "200", noTemplate)
	unmatched := requestTotal.WithLabelValues(http.MethodGet, "unmatched", "404", noTemplate)
	before := []float64{testutil.ToFloat64(preview), testutil.ToFloat64(list), testutil.ToFloat64(unmatched)}

	for _, path := range []string{"/v1/resumes/7/preview", "/v1/resumes/8/preview", "/v1/resumes", "/nope/123"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before[0]+2, testutil.ToFloat64(preview))
	assert.Equal(t, before[1]+1, testutil.ToFloat64(list))
	assert.Equal(t, before[2]+1, testutil.ToFloat64(unmatched))
}

func TestAsynqMiddlewareRecordsResult(t *testing.T) {
	handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(_ context.Context, task *asynq.Task) error {
		switch string(task.Payload()) {
		case "bad":
			return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
		case "boom":
			return errors.New("boom")
		}
		return nil
	}))

	success := taskProcessedTotal.WithLabelValues("test:metrics", taskResultSuccess)
	skipped := taskProcessedTotal.WithLabelValues("test:metrics", taskResultSkipped)
	failed := taskProcessedTotal.WithLabelValues("test:metrics", taskResultFailed)
	before := []float64{testutil.ToFloat64(success), testutil.ToFloat64(skipped), testutil.ToFloat64(failed)}

	ctx := context.Background()
	require.NoError(t, handler.ProcessTask(ctx, asynq.NewTask("test:metrics", []byte("ok"))))
	require.Error(t, handler.ProcessTask(ctx, asynq.NewTask("test:metrics", []byte("bad"))))
	require.Error(t, handler.ProcessTask(ctx, asynq.NewTask("test:metrics", []byte("boom"))))

	assert.Equal(t, before[0]+1, testutil.ToFloat64(success))
	assert.Equal(t, before[1]+1, testutil.ToFloat64(skipped))
	// 没有重试上下文时按最终失败计。
	assert.Equal(t, before[2]+1, testutil.ToFloat64(failed))
	assert.Zero(t, testutil.ToFloat64(taskInProgress.WithLabelValues("test:metrics")))
}

func TestObservePDFExport(t *testing.T) {
	completed := pdfExportsTotal.WithLabelValues("completed")
	failed := pdfExportsTotal.WithLabelValues("failed")
	before := []float64{testutil.ToFloat64(completed), testutil.ToFloat64(failed)}

	ObservePDFExport(true)
	ObservePDFExport(false)
	ObservePDFExport(false)

	assert.Equal(t, before[0]+1, testutil.ToFloat64(completed))
	assert.Equal(t, before[1]+2, testutil.ToFloat64(failed))
}
