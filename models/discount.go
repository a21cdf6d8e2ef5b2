package models

import "time"

type DiscountRule struct {
	Code       string    `gorm:"primaryKey;size:30" json:"code"`
	Percentage float64   `gorm:"not null" json:"percentage"`
	Active     bool      `gorm:"default:true" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
