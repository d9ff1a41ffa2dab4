package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	IsActive    bool `gorm:"not null" json:"is_active"`
	IsStaff     bool `gorm:"not null" json:"is_staff"`
	IsSuperuser bool `gorm:"not null" json:"is_superuser"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckPassword reports whether plain matches the stored hash. Users created
// without a password never match.
func (u *User) CheckPassword(plain string) bool {
	if u.PasswordHash == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

func (u User) String() string {
	return u.Email
}
