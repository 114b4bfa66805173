package models

import (
	"time"

	"gorm.io/gorm"
)

// Library 自习室表
type Library struct {
	ID          uint           `gorm:"primarykey" json:"id"`               // 主键
	LibrarianID uint           `gorm:"index;not null" json:"librarian_id"` // 馆主ID
	Name        string         `gorm:"not null" json:"name"`               // 名称
	Address     string         `gorm:"default:''" json:"address"`          // 地址
	SeatCount   int            `gorm:"default:0" json:"seat_count"`        // 座位数
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                     // 软删除时间

	Librarian *Librarian `gorm:"foreignKey:LibrarianID" json:"librarian,omitempty"` // 馆主
}

// TableName 指定表名
func (Library) TableName() string {
	return "libraries"
}
