package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"

	UserStatusActive   = "actif"
	UserStatusInactive = "inactif"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:150" json:"name"`
	Surname   string     `gorm:"size:150" json:"surname"`
	Email     string     `gorm:"uniqueIndex;size:150;not null" json:"email"`
	Password  string     `gorm:"size:255" json:"-"` // bcrypt hash, never returned in JSON
	Phone     string     `gorm:"size:50" json:"phone"`
	Role      string     `gorm:"size:30;index" json:"role"`
	Status    string     `gorm:"size:30" json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}
