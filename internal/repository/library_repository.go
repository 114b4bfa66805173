package repository

import (
	"errors"

	"github.com/findesk/findesk-api/internal/models"

	"gorm.io/gorm"
)

// LibraryRepository 自习室数据访问接口
type LibraryRepository interface {
	Create(library *models.Library) error
	GetByID(id uint) (*models.Library, error)
	GetByIDWithLibrarian(id uint) (*models.Library, error)
}

// GormLibraryRepository GORM 实现
type GormLibraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository 创建自习室仓库
func NewLibraryRepository(db *gorm.DB) *GormLibraryRepository {
	return &GormLibraryRepository{db: db}
}

// Create 创建自习室
func (r *GormLibraryRepository) Create(library *models.Library) error {
	return r.db.Create(library).Error
}

// GetByID 根据 ID 获取自习室
func (r *GormLibraryRepository) GetByID(id uint) (*models.Library, error) {
	var library models.Library
	if err := r.db.First(&library, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &library, nil
}

// GetByIDWithLibrarian 根据 ID 获取自习室并预加载馆主
func (r *GormLibraryRepository) GetByIDWithLibrarian(id uint) (*models.Library, error) {
	var library models.Library
	if err := r.db.Preload("Librarian").First(&library, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &library, nil
}
