package models

import "time"

// Member is a registered loyalty customer. Points and TotalSpent accumulate
// at checkout; the level name is derived from points, never stored.
type Member struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Nama       string  `gorm:"size:100;not null;index" json:"nama"`
	NoTelp     string  `gorm:"size:30;index" json:"no_telp,omitempty"`
	Alamat     string  `gorm:"type:text" json:"alamat,omitempty"`
	Catatan    string  `gorm:"type:text" json:"catatan,omitempty"`
	Points     int     `gorm:"not null;default:0" json:"points"`
	TotalSpent float64 `gorm:"not null;default:0" json:"total_spent"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
