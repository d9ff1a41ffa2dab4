package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Recipe struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Title       string          `gorm:"size:255;not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Link        string          `gorm:"size:255" json:"link"`
	Image       string          `gorm:"size:512" json:"image"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Recipe) String() string {
	return r.Title
}
