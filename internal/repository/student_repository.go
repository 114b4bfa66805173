package repository

import (
	"errors"
	"strings"

	"github.com/findesk/findesk-api/internal/models"

	"gorm.io/gorm"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(student *models.Student) error
	GetByID(id uint) (*models.Student, error)
	GetByEmail(email string) (*models.Student, error)
}

// GormStudentRepository GORM 实现
type GormStudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository 创建学生仓库
func NewStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// Create 创建学生
func (r *GormStudentRepository) Create(student *models.Student) error {
	return r.db.Create(student).Error
}

// GetByID 根据 ID 获取学生
func (r *GormStudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	if err := r.db.First(&student, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

// GetByEmail 根据邮箱获取学生
func (r *GormStudentRepository) GetByEmail(email string) (*models.Student, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var student models.Student
	result := r.db.Where("email = ?", email).Limit(1).Find(&student)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &student, nil
}
