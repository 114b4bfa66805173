package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/findesk/findesk-api/internal/logger"
	"github.com/findesk/findesk-api/internal/provider"
	"github.com/findesk/findesk-api/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskSettlementNotice, c.handleSettlementNotice)
}

func (c *Consumer) handleSettlementNotice(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_settlement_notice_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SettlementNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_settlement_notice_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == 0 {
		logger.Debugw("worker_settlement_notice_skip_invalid_payload", "payment_id", payload.PaymentID)
		return nil
	}
	payment, err := c.PaymentRepo.GetByID(payload.PaymentID)
	if err != nil {
		logger.Warnw("worker_settlement_notice_fetch_payment_failed", "payment_id", payload.PaymentID, "error", err)
		return err
	}
	if payment == nil {
		logger.Debugw("worker_settlement_notice_skip_payment_not_found", "payment_id", payload.PaymentID)
		return nil
	}
	librarian, err := c.LibrarianRepo.GetByID(payment.LibrarianID)
	if err != nil {
		logger.Warnw("worker_settlement_notice_fetch_librarian_failed",
			"payment_id", payment.ID,
			"librarian_id", payment.LibrarianID,
			"error", err,
		)
		return err
	}
	if librarian == nil || strings.TrimSpace(librarian.Email) == "" {
		logger.Debugw("worker_settlement_notice_skip_empty_receiver", "payment_id", payment.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_settlement_notice_skip_email_service_nil", "payment_id", payment.ID)
		return nil
	}

	libraryName := ""
	library, err := c.LibraryRepo.GetByID(payment.LibraryID)
	if err != nil {
		logger.Warnw("worker_settlement_notice_fetch_library_failed",
			"payment_id", payment.ID,
			"library_id", payment.LibraryID,
			"error", err,
		)
	} else if library != nil {
		libraryName = library.Name
	}

	if err := c.EmailService.SendSettlementNotice(librarian.Email, payment, libraryName); err != nil {
		logger.Warnw("worker_settlement_notice_send_failed",
			"payment_id", payment.ID,
			"receiver_email", librarian.Email,
			"error", err,
		)
		return err
	}
	return nil
}
