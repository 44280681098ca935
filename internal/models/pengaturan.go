package models

import (
	"errors"

	"gorm.io/gorm"
)

// Pengaturan is the key/value store backing the settings page
// (store_name, store_address, store_phone, receipt_footer, tax_enabled,
// tax_percentage).
type Pengaturan struct {
	ID    uint   `gorm:"primaryKey"`
	Key   string `gorm:"size:50;unique;not null"`
	Value string `gorm:"type:text"`
}

// GetSetting returns the stored value for key, or def when absent.
func GetSetting(db *gorm.DB, key, def string) string {
	var s Pengaturan
	if err := db.Where("key = ?", key).First(&s).Error; err != nil {
		return def
	}
	return s.Value
}

// SetSetting inserts or updates a setting.
func SetSetting(db *gorm.DB, key, value string) error {
	var s Pengaturan
	err := db.Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(&Pengaturan{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	return db.Model(&s).Update("value", value).Error
}
