package domain

import "time"

type User struct {
	ID                      uint   `gorm:"primaryKey"`
	Username                string `gorm:"not null;uniqueIndex"`
	PasswordHash            string `gorm:"not null"`
	DisplayName             string `gorm:"not null"`
	Admin                   bool   `gorm:"not null"`
	ChangePasswordRequested bool   `gorm:"not null"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
