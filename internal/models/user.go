package models

import (
	"errors"
	"time"
	"unicode"
)

// Roles understood by the application. Admin gates catalog/category mutation,
// reporting, settings, user management, and backups.
const (
	RoleAdmin = "admin"
	RoleKasir = "kasir"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:80;unique;not null;index" json:"username"`
	PasswordHash string `gorm:"size:200;not null" json:"-"`
	Nama         string `gorm:"size:100;not null" json:"nama"`
	Role         string `gorm:"size:20;not null;default:'kasir'" json:"role"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ValidatePasswordStrength enforces the minimum rules applied at registration:
// at least 8 characters, one uppercase letter, and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("password minimal 8 karakter")
	}
	hasUpper, hasDigit := false, false
	for _, c := range password {
		if unicode.IsUpper(c) {
			hasUpper = true
		}
		if unicode.IsDigit(c) {
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("password harus mengandung huruf besar")
	}
	if !hasDigit {
		return errors.New("password harus mengandung angka")
	}
	return nil
}
