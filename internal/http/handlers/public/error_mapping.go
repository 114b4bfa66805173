package public

import (
	"errors"

	"github.com/findesk/findesk-api/internal/http/response"
	"github.com/findesk/findesk-api/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var createOrderErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "Invalid input parameters"},
	{target: service.ErrStudentNotFound, code: response.CodeNotFound, msg: "Student not found"},
	{target: service.ErrLibraryNotFound, code: response.CodeNotFound, msg: "Library not found"},
	{target: service.ErrLibrarianNotFound, code: response.CodeNotFound, msg: "Librarian not found for this library"},
	{target: service.ErrDuplicateOrder, code: response.CodeConflict, msg: "Duplicate order detected"},
	{target: service.ErrGatewayRejected, code: response.CodeBadRequest, msg: "Order rejected by payment gateway"},
	{target: service.ErrGatewayUnavailable, code: response.CodeInternal, msg: "Payment gateway unavailable"},
}

var webhookErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "Missing required fields"},
	{target: service.ErrWebhookSecretMissing, code: response.CodeInternal, msg: "Server configuration error"},
	{target: service.ErrSignatureInvalid, code: response.CodeUnauthorized, msg: "Unauthorized - signature mismatch"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "Payment record not found"},
	{target: service.ErrPaymentStatusInvalid, code: response.CodeConflict, msg: "Payment status conflict"},
}

var voidPaymentErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "Invalid input parameters"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "Payment record not found"},
	{target: service.ErrPaymentStatusInvalid, code: response.CodeConflict, msg: "Payment already processed"},
}

func respondCreateOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, createOrderErrorRules, response.CodeInternal, "Failed to create order")
}

func respondWebhookError(c *gin.Context, err error) {
	respondWithMappedError(c, err, webhookErrorRules, response.CodeInternal, "Failed to process webhook")
}

func respondVoidPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, voidPaymentErrorRules, response.CodeInternal, "Failed to void payment")
}
