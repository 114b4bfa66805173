package repository

import (
	"errors"
	"strings"

	"github.com/findesk/findesk-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateKey 唯一约束冲突
var ErrDuplicateKey = errors.New("duplicate key")

// PaymentRepository 支付数据访问接口
type PaymentRepository interface {
	Create(payment *models.Payment) error
	Update(payment *models.Payment) error
	GetByID(id uint) (*models.Payment, error)
	GetByRazorpayOrderID(razorpayOrderID string) (*models.Payment, error)
	GetByRazorpayOrderIDForUpdate(razorpayOrderID string) (*models.Payment, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付记录，唯一键冲突返回 ErrDuplicateKey
func (r *GormPaymentRepository) Create(payment *models.Payment) error {
	if err := r.db.Create(payment).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// Update 更新支付记录
func (r *GormPaymentRepository) Update(payment *models.Payment) error {
	return r.db.Save(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByRazorpayOrderID 根据网关订单号获取支付记录
func (r *GormPaymentRepository) GetByRazorpayOrderID(razorpayOrderID string) (*models.Payment, error) {
	return r.getByRazorpayOrderID(r.db, razorpayOrderID)
}

// GetByRazorpayOrderIDForUpdate 根据网关订单号获取支付记录并加行锁（需在事务内调用）
func (r *GormPaymentRepository) GetByRazorpayOrderIDForUpdate(razorpayOrderID string) (*models.Payment, error) {
	return r.getByRazorpayOrderID(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), razorpayOrderID)
}

func (r *GormPaymentRepository) getByRazorpayOrderID(db *gorm.DB, razorpayOrderID string) (*models.Payment, error) {
	razorpayOrderID = strings.TrimSpace(razorpayOrderID)
	if razorpayOrderID == "" {
		return nil, nil
	}
	var payment models.Payment
	result := db.Where("razorpay_order_id = ?", razorpayOrderID).Limit(1).Find(&payment)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &payment, nil
}

// List 支付列表（对账用）
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if filter.StudentID != 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.LibrarianID != 0 {
		query = query.Where("librarian_id = ?", filter.LibrarianID)
	}
	if filter.LibraryID != 0 {
		query = query.Where("library_id = ?", filter.LibraryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var payments []models.Payment
	if err := query.Order("id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// isDuplicateKeyError 判断是否为唯一约束冲突（sqlite/postgres）
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := err.Error()
	return strings.Contains(message, "UNIQUE constraint failed") ||
		strings.Contains(message, "duplicate key value")
}
