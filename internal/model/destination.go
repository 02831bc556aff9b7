package model

import "time"

// UserDestination links a Telegram user to their notes spreadsheet.
type UserDestination struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	SheetURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
