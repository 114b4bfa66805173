package models

import (
	"time"
)

// Payment 结算支付记录
type Payment struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                       // 主键
	StudentID          uint       `gorm:"index;not null" json:"student_id"`                           // 学生ID
	LibrarianID        uint       `gorm:"index;not null" json:"librarian_id"`                         // 馆主ID
	LibraryID          uint       `gorm:"index;not null" json:"library_id"`                           // 自习室ID
	Amount             Money      `gorm:"type:decimal(20,2);not null" json:"amount"`                  // 支付金额
	PlatformFee        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"platform_fee"`  // 平台手续费
	PayoutAmount       Money      `gorm:"type:decimal(20,2);not null;default:0" json:"payout_amount"` // 结算给馆主的金额
	Currency           string     `gorm:"not null" json:"currency"`                                   // 币种
	Status             string     `gorm:"index;not null" json:"status"`                               // 支付状态
	RazorpayOrderID    string     `gorm:"uniqueIndex;not null" json:"razorpay_order_id"`              // 网关订单号
	RazorpayPaymentID  string     `gorm:"index" json:"razorpay_payment_id"`                           // 网关支付流水号
	RazorpaySignature  string     `json:"razorpay_signature"`                                         // 网关回调签名
	RazorpayTransferID string     `gorm:"index" json:"razorpay_transfer_id"`                          // 网关转账流水号
	PaymentDate        *time.Time `gorm:"index" json:"payment_date"`                                  // 支付时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt          time.Time  `gorm:"index" json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
