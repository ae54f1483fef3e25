package tasks

import "fmt"

// 通知状态。
const (
	NotifyStatusCompleted = "completed"
	NotifyStatusError     = "error"
)

// PDFNotification 是经 Redis Pub/Sub 转发给前端 WebSocket 的消息。
// 字段名与前端解析保持一致。
type PDFNotification struct {
	Status        string `json:"status"`
	ResumeID      uint   `json:"resume_id"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

// NotifyChannel 返回用户专属的通知频道。
func NotifyChannel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}
