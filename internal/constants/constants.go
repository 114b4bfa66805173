package constants

// 支付记录状态
const (
	PaymentStatusCreated     = "CREATED"
	PaymentStatusPaid        = "PAID"
	PaymentStatusTransferred = "TRANSFERRED"
	PaymentStatusVoid        = "VOID"
)

// PaymentStatuses 支付状态全集
var PaymentStatuses = []string{
	PaymentStatusCreated,
	PaymentStatusPaid,
	PaymentStatusTransferred,
	PaymentStatusVoid,
}

// 网关回调事件
const (
	WebhookEventPaymentCaptured = "payment.captured"
)

// 队列与任务
const (
	QueueDefault         = "default"
	TaskSettlementNotice = "payment:settlement_notice"
)

// 默认值
const (
	CurrencyDefault    = "INR"
	RedisPrefixDefault = "fd"
)

// IsPaymentStatus 判断是否为合法支付状态
func IsPaymentStatus(status string) bool {
	for _, candidate := range PaymentStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}
