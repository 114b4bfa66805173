package repository

import (
	"errors"
	"strings"

	"github.com/findesk/findesk-api/internal/models"

	"gorm.io/gorm"
)

// LibrarianRepository 馆主数据访问接口
type LibrarianRepository interface {
	Create(librarian *models.Librarian) error
	GetByID(id uint) (*models.Librarian, error)
	GetByEmail(email string) (*models.Librarian, error)
}

// GormLibrarianRepository GORM 实现
type GormLibrarianRepository struct {
	db *gorm.DB
}

// NewLibrarianRepository 创建馆主仓库
func NewLibrarianRepository(db *gorm.DB) *GormLibrarianRepository {
	return &GormLibrarianRepository{db: db}
}

// Create 创建馆主
func (r *GormLibrarianRepository) Create(librarian *models.Librarian) error {
	return r.db.Create(librarian).Error
}

// GetByID 根据 ID 获取馆主
func (r *GormLibrarianRepository) GetByID(id uint) (*models.Librarian, error) {
	var librarian models.Librarian
	if err := r.db.First(&librarian, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &librarian, nil
}

// GetByEmail 根据邮箱获取馆主
func (r *GormLibrarianRepository) GetByEmail(email string) (*models.Librarian, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var librarian models.Librarian
	result := r.db.Where("email = ?", email).Limit(1).Find(&librarian)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &librarian, nil
}
