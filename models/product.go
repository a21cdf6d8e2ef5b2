package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Category    *string   `gorm:"size:50" json:"category,omitempty"`
	Price       float64   `gorm:"not null" json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Active      bool      `gorm:"default:true" json:"active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
