package models

import (
	"time"

	"gorm.io/gorm"
)

// Student 学生表
type Student struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // 主键
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱
	PasswordHash string         `gorm:"not null" json:"-"`                 // 密码哈希（不返回给前端）
	Name         string         `gorm:"default:''" json:"name"`            // 姓名
	Phone        string         `gorm:"default:''" json:"phone"`           // 手机号
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`           // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Student) TableName() string {
	return "students"
}
