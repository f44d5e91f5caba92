package model

import "time"

// AuthUser mirrors the company account held by the identity provider. Only
// the fields the admin views need are persisted here.
type AuthUser struct {
	ID        string    `gorm:"primaryKey;size:128"`
	Company   string    `gorm:"size:160"`
	Email     string    `gorm:"size:160;index"`
	Phone     string    `gorm:"size:32"`
	IsAdmin   bool      `gorm:"column:is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AuthUser) TableName() string {
	return "auth_users"
}
