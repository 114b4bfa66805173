package public

import (
	"github.com/findesk/findesk-api/internal/http/response"
	"github.com/findesk/findesk-api/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookRequest 网关回调请求。librarianId 字段历史上携带的是馆舍 ID。
type WebhookRequest struct {
	Event             string `json:"event" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	StudentID         uint   `json:"student_id" binding:"required"`
	LibrarianID       uint   `json:"librarianId" binding:"required"`
}

// Webhook 处理网关支付回调
func (h *Handler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Missing required fields", err)
		return
	}

	result, err := h.PaymentService.HandleWebhook(service.WebhookInput{
		Event:             req.Event,
		RazorpayOrderID:   req.RazorpayOrderID,
		RazorpayPaymentID: req.RazorpayPaymentID,
		RazorpaySignature: req.RazorpaySignature,
		StudentID:         req.StudentID,
		LibraryID:         req.LibrarianID,
	})
	if err != nil {
		respondWebhookError(c, err)
		return
	}

	if result.Ignored {
		response.SuccessWithMsg(c, "Event ignored", nil)
		return
	}
	if result.AlreadyProcessed {
		response.SuccessWithMsg(c, "Payment already processed", gin.H{
			"paymentId": result.Payment.ID,
			"status":    result.Payment.Status,
		})
		return
	}
	response.SuccessWithMsg(c, "Payment processed successfully", gin.H{
		"paymentId":    result.Payment.ID,
		"orderId":      result.Payment.RazorpayOrderID,
		"status":       result.Payment.Status,
		"payoutAmount": result.Payment.PayoutAmount,
	})
}
