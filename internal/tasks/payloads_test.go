package tasks

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFGenerateTaskPayload(t *testing.T) {
	task, err := NewPDFGenerateTask(7, 3, "corr-1")
	require.NoError(t, err)
	assert.Equal(t, TypePDFGenerate, task.Type())

	payload, err := ParsePDFGeneratePayload(task)
	require.NoError(t, err)
	assert.Equal(t, PDFGeneratePayload{ResumeID: 7, UserID: 3, CorrelationID: "corr-1"}, payload)
}

func TestParsePDFGeneratePayloadRejectsIncomplete(t *testing.T) {
	_, err := ParsePDFGeneratePayload(asynq.NewTask(TypePDFGenerate, []byte(`{"resume_id":7}`)))
	assert.Error(t, err)

	_, err = ParsePDFGeneratePayload(asynq.NewTask(TypePDFGenerate, []byte(`not json`)))
	assert.Error(t, err)
}
