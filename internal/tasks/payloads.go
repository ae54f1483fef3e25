package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFGenerate = "pdf:generate"
)

// PDFGeneratePayload 描述导出 PDF 所需的最小信息，模板在 worker 端按简历当前设置解析。
type PDFGeneratePayload struct {
	ResumeID      uint   `json:"resume_id"`
	UserID        uint   `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFGenerateTask 构造一个新的简历 PDF 生成任务。
func NewPDFGenerateTask(resumeID, userID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(PDFGeneratePayload{
		ResumeID:      resumeID,
		UserID:        userID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFGenerate, payload), nil
}

// ParsePDFGeneratePayload 解析任务载荷并校验必填字段。
func ParsePDFGeneratePayload(task *asynq.Task) (PDFGeneratePayload, error) {
	var payload PDFGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", task.Type(), err)
	}
	if payload.ResumeID == 0 || payload.UserID == 0 {
		return payload, fmt.Errorf("%s payload missing resume_id or user_id", task.Type())
	}
	return payload, nil
}
