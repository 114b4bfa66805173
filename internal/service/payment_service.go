package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/findesk/findesk-api/internal/cache"
	"github.com/findesk/findesk-api/internal/constants"
	"github.com/findesk/findesk-api/internal/logger"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/payment/razorpay"
	"github.com/findesk/findesk-api/internal/queue"
	"github.com/findesk/findesk-api/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService 结算支付服务
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	studentRepo   repository.StudentRepository
	libraryRepo   repository.LibraryRepository
	librarianRepo repository.LibrarianRepository
	gatewayCfg    *razorpay.Config
	queueClient   *queue.Client
}

// NewPaymentService 创建结算支付服务
func NewPaymentService(paymentRepo repository.PaymentRepository, studentRepo repository.StudentRepository, libraryRepo repository.LibraryRepository, librarianRepo repository.LibrarianRepository, gatewayCfg *razorpay.Config, queueClient *queue.Client) *PaymentService {
	if gatewayCfg != nil {
		gatewayCfg.Normalize()
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		studentRepo:   studentRepo,
		libraryRepo:   libraryRepo,
		librarianRepo: librarianRepo,
		gatewayCfg:    gatewayCfg,
		queueClient:   queueClient,
	}
}

// CreateOrderInput 创建订单请求
type CreateOrderInput struct {
	StudentID uint
	LibraryID uint
	Amount    models.Money
	Context   context.Context
}

// CreateOrderResult 创建订单结果
type CreateOrderResult struct {
	Payment      *models.Payment
	Library      *models.Library
	Librarian    *models.Librarian
	GatewayKeyID string
}

// CreateOrder 创建网关订单并登记 CREATED 支付记录
func (s *PaymentService) CreateOrder(input CreateOrderInput) (*CreateOrderResult, error) {
	if input.StudentID == 0 || input.LibraryID == 0 || !input.Amount.IsPositive() {
		return nil, ErrPaymentInvalid
	}
	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}

	log := paymentLogger(
		"student_id", input.StudentID,
		"library_id", input.LibraryID,
		"amount", input.Amount.String(),
	)

	student, err := s.studentRepo.GetByID(input.StudentID)
	if err != nil {
		log.Errorw("payment_create_student_fetch_failed", "error", err)
		return nil, ErrPaymentUpdateFailed
	}
	if student == nil {
		log.Warnw("payment_create_student_not_found")
		return nil, ErrStudentNotFound
	}

	library, err := s.loadLibraryWithLibrarian(ctx, input.LibraryID)
	if err != nil {
		log.Errorw("payment_create_library_fetch_failed", "error", err)
		return nil, ErrPaymentUpdateFailed
	}
	if library == nil {
		log.Warnw("payment_create_library_not_found")
		return nil, ErrLibraryNotFound
	}
	if library.Librarian == nil {
		log.Warnw("payment_create_librarian_not_found")
		return nil, ErrLibrarianNotFound
	}

	amount := input.Amount.Decimal.Round(2)
	platformFee := s.gatewayCfg.PlatformFee(amount)
	payoutAmount := amount.Sub(platformFee)

	order, err := razorpay.CreateOrder(ctx, s.gatewayCfg, razorpay.CreateOrderInput{
		Amount:   amount.StringFixed(2),
		Currency: constants.CurrencyDefault,
		Receipt:  fmt.Sprintf("seat_%d_%d", input.StudentID, time.Now().Unix()),
		Notes: map[string]string{
			"student_id": strconv.FormatUint(uint64(student.ID), 10),
			"library_id": strconv.FormatUint(uint64(library.ID), 10),
		},
	})
	if err != nil {
		log.Errorw("payment_create_gateway_failed", "error", err)
		if errors.Is(err, razorpay.ErrOrderRejected) {
			return nil, ErrGatewayRejected
		}
		return nil, ErrGatewayUnavailable
	}

	payment := &models.Payment{
		StudentID:       student.ID,
		LibrarianID:     library.LibrarianID,
		LibraryID:       library.ID,
		Amount:          models.NewMoneyFromDecimal(amount),
		PlatformFee:     models.NewMoneyFromDecimal(platformFee),
		PayoutAmount:    models.NewMoneyFromDecimal(payoutAmount),
		Currency:        constants.CurrencyDefault,
		Status:          constants.PaymentStatusCreated,
		RazorpayOrderID: order.OrderID,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			log.Warnw("payment_create_duplicate_order", "razorpay_order_id", order.OrderID)
			return nil, ErrDuplicateOrder
		}
		log.Errorw("payment_create_persist_failed", "razorpay_order_id", order.OrderID, "error", err)
		return nil, ErrPaymentUpdateFailed
	}

	log.Infow("payment_order_created",
		"payment_id", payment.ID,
		"razorpay_order_id", payment.RazorpayOrderID,
		"platform_fee", payment.PlatformFee.String(),
		"payout_amount", payment.PayoutAmount.String(),
	)
	return &CreateOrderResult{
		Payment:      payment,
		Library:      library,
		Librarian:    library.Librarian,
		GatewayKeyID: s.gatewayCfg.KeyID,
	}, nil
}

const libraryCacheTTL = 5 * time.Minute

// loadLibraryWithLibrarian 读取自习室及其馆主，命中缓存时跳过数据库。
func (s *PaymentService) loadLibraryWithLibrarian(ctx context.Context, libraryID uint) (*models.Library, error) {
	cacheKey := fmt.Sprintf("library:%d", libraryID)
	var cached models.Library
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit && cached.Librarian != nil {
		return &cached, nil
	}

	library, err := s.libraryRepo.GetByIDWithLibrarian(libraryID)
	if err != nil {
		return nil, err
	}
	if library != nil && library.Librarian != nil {
		if err := cache.SetJSON(ctx, cacheKey, library, libraryCacheTTL); err != nil {
			paymentLogger("library_id", libraryID).Debugw("payment_library_cache_set_failed", "error", err)
		}
	}
	return library, nil
}

// VoidPayment 作废未支付的订单（仅 CREATED 可作废）
func (s *PaymentService) VoidPayment(razorpayOrderID string) (*models.Payment, error) {
	razorpayOrderID = strings.TrimSpace(razorpayOrderID)
	if razorpayOrderID == "" {
		return nil, ErrPaymentInvalid
	}

	var voided *models.Payment
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		payment, err := paymentRepo.GetByRazorpayOrderIDForUpdate(razorpayOrderID)
		if err != nil {
			return ErrPaymentUpdateFailed
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		if payment.Status != constants.PaymentStatusCreated {
			return ErrPaymentStatusInvalid
		}
		payment.Status = constants.PaymentStatusVoid
		payment.UpdatedAt = time.Now()
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		voided = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("payment_voided",
		"payment_id", voided.ID,
		"razorpay_order_id", voided.RazorpayOrderID,
	)
	return voided, nil
}

// ListPayments 支付列表（对账用）
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	if filter.Status != "" && !constants.IsPaymentStatus(filter.Status) {
		return nil, 0, ErrPaymentStatusInvalid
	}
	return s.paymentRepo.List(filter)
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}
