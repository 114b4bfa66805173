package service

import (
	"strings"
	"time"

	"github.com/findesk/findesk-api/internal/constants"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/payment/razorpay"
	"github.com/findesk/findesk-api/internal/queue"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// WebhookInput 网关回调输入
type WebhookInput struct {
	Event             string
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	StudentID         uint
	LibraryID         uint
}

// WebhookResult 网关回调处理结果
type WebhookResult struct {
	Payment          *models.Payment
	Ignored          bool
	AlreadyProcessed bool
}

// HandleWebhook 处理支付成功回调：校验签名后在单个事务内将
// CREATED 记录推进到 TRANSFERRED。重复回调幂等返回。
func (s *PaymentService) HandleWebhook(input WebhookInput) (*WebhookResult, error) {
	event := strings.TrimSpace(input.Event)
	log := paymentLogger(
		"event", event,
		"razorpay_order_id", strings.TrimSpace(input.RazorpayOrderID),
		"razorpay_payment_id", strings.TrimSpace(input.RazorpayPaymentID),
	)
	log.Infow("payment_webhook_received")

	orderID := strings.TrimSpace(input.RazorpayOrderID)
	paymentID := strings.TrimSpace(input.RazorpayPaymentID)
	signature := strings.TrimSpace(input.RazorpaySignature)
	if event == "" || orderID == "" || paymentID == "" || signature == "" ||
		input.StudentID == 0 || input.LibraryID == 0 {
		log.Warnw("payment_webhook_missing_fields")
		return nil, ErrPaymentInvalid
	}

	if strings.TrimSpace(s.gatewayCfg.WebhookSecret) == "" {
		log.Errorw("payment_webhook_secret_missing")
		return nil, ErrWebhookSecretMissing
	}
	if err := razorpay.VerifyPaymentSignature(s.gatewayCfg.WebhookSecret, orderID, paymentID, signature); err != nil {
		log.Warnw("payment_webhook_signature_mismatch")
		return nil, ErrSignatureInvalid
	}

	// 签名校验通过后再按事件类型过滤
	if event != constants.WebhookEventPaymentCaptured {
		log.Infow("payment_webhook_event_ignored")
		return &WebhookResult{Ignored: true}, nil
	}

	result := &WebhookResult{}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		payment, err := paymentRepo.GetByRazorpayOrderIDForUpdate(orderID)
		if err != nil {
			return ErrPaymentUpdateFailed
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		result.Payment = payment

		// 幂等处理：已成功的记录不再推进状态
		if payment.Status == constants.PaymentStatusPaid || payment.Status == constants.PaymentStatusTransferred {
			result.AlreadyProcessed = true
			return nil
		}
		if payment.Status != constants.PaymentStatusCreated {
			return ErrPaymentStatusInvalid
		}

		now := time.Now()
		payment.RazorpayPaymentID = paymentID
		payment.RazorpaySignature = signature
		payment.PaymentDate = &now
		payment.Status = constants.PaymentStatusPaid
		payment.UpdatedAt = now
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}

		// 结算转账由后续批量任务执行，这里记账后直接标记已结算
		payment.Status = constants.PaymentStatusTransferred
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		return nil
	})
	if err != nil {
		log.Warnw("payment_webhook_apply_failed", "error", err)
		return nil, err
	}

	if result.AlreadyProcessed {
		log.Infow("payment_webhook_idempotent",
			"payment_id", result.Payment.ID,
			"current_status", result.Payment.Status,
		)
		return result, nil
	}

	s.enqueueSettlementNoticeAsync(result.Payment)
	log.Infow("payment_webhook_processed",
		"payment_id", result.Payment.ID,
		"new_status", result.Payment.Status,
		"payout_amount", result.Payment.PayoutAmount.String(),
	)
	return result, nil
}

func (s *PaymentService) enqueueSettlementNoticeAsync(payment *models.Payment) {
	if s.queueClient == nil || payment == nil {
		return
	}
	if err := s.queueClient.EnqueueSettlementNotice(queue.SettlementNoticePayload{
		PaymentID: payment.ID,
	}, asynq.MaxRetry(3)); err != nil {
		paymentLogger("payment_id", payment.ID).Warnw("payment_enqueue_settlement_notice_failed",
			"error", err,
		)
	}
}
