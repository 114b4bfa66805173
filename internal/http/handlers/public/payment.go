package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/findesk/findesk-api/internal/http/response"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/repository"
	"github.com/findesk/findesk-api/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 创建订单请求。
// librarianId 为历史字段名，实际承载自习室 ID。
type CreateOrderRequest struct {
	LibrarianID uint         `json:"librarianId" binding:"required"`
	StudentID   uint         `json:"studentId" binding:"required"`
	Amount      models.Money `json:"amount" binding:"required"`
}

// ListPaymentsQuery 支付列表查询参数
type ListPaymentsQuery struct {
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
	StudentID   uint   `form:"student_id"`
	LibrarianID uint   `form:"librarian_id"`
	LibraryID   uint   `form:"library_id"`
	Status      string `form:"status"`
	CreatedFrom string `form:"created_from"`
	CreatedTo   string `form:"created_to"`
}

// CreateOrder 创建网关订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid input parameters", err)
		return
	}
	if !req.Amount.IsPositive() {
		respondError(c, response.CodeBadRequest, "Invalid input parameters", nil)
		return
	}

	result, err := h.PaymentService.CreateOrder(service.CreateOrderInput{
		StudentID: req.StudentID,
		LibraryID: req.LibrarianID,
		Amount:    req.Amount,
		Context:   c.Request.Context(),
	})
	if err != nil {
		respondCreateOrderError(c, err)
		return
	}

	response.Success(c, gin.H{
		"orderId":     result.Payment.RazorpayOrderID,
		"amount":      result.Payment.Amount,
		"currency":    result.Payment.Currency,
		"paymentId":   result.Payment.ID,
		"libraryId":   result.Library.ID,
		"librarianId": result.Librarian.ID,
		"keyId":       result.GatewayKeyID,
	})
}

// VoidPayment 作废未支付订单
func (h *Handler) VoidPayment(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		respondError(c, response.CodeBadRequest, "Invalid input parameters", nil)
		return
	}
	payment, err := h.PaymentService.VoidPayment(orderID)
	if err != nil {
		respondVoidPaymentError(c, err)
		return
	}
	response.SuccessWithMsg(c, "Payment voided", gin.H{
		"paymentId": payment.ID,
		"orderId":   payment.RazorpayOrderID,
		"status":    payment.Status,
	})
}

// ListPayments 支付列表（对账用）
func (h *Handler) ListPayments(c *gin.Context) {
	var query ListPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "Invalid input parameters", err)
		return
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.PaymentListFilter{
		Page:        page,
		PageSize:    pageSize,
		StudentID:   query.StudentID,
		LibrarianID: query.LibrarianID,
		LibraryID:   query.LibraryID,
		Status:      strings.ToUpper(strings.TrimSpace(query.Status)),
	}
	if from := parseTimeParam(query.CreatedFrom); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTimeParam(query.CreatedTo); to != nil {
		filter.CreatedTo = to
	}

	payments, total, err := h.PaymentService.ListPayments(filter)
	if err != nil {
		if errors.Is(err, service.ErrPaymentStatusInvalid) {
			respondError(c, response.CodeBadRequest, "Invalid input parameters", nil)
			return
		}
		respondError(c, response.CodeInternal, "Failed to list payments", err)
		return
	}

	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	response.SuccessWithPage(c, payments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

func parseTimeParam(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return &parsed
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil && unix > 0 {
		parsed := time.Unix(unix, 0)
		return &parsed
	}
	return nil
}
