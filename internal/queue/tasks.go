package queue

import (
	"encoding/json"

	"github.com/findesk/findesk-api/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskSettlementNotice 结算通知任务
	TaskSettlementNotice = constants.TaskSettlementNotice
)

// SettlementNoticePayload 结算通知任务载荷
type SettlementNoticePayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewSettlementNoticeTask 创建结算通知任务
func NewSettlementNoticeTask(payload SettlementNoticePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSettlementNotice, body), nil
}
