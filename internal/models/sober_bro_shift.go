package models

import "time"

type SoberBroShift struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Date      string    `gorm:"type:varchar(10);index;not null" json:"date"`
	Title     string    `gorm:"type:varchar(100)" json:"title"`
	TimeStart time.Time `gorm:"index;not null" json:"time_start"`
	TimeEnd   time.Time `gorm:"not null" json:"time_end"`
	Capacity  int       `gorm:"not null;default:5" json:"capacity"`
	// SignedUp mirrors the number of SoberBro rows; it is only changed by
	// conditional updates inside assignment transactions.
	SignedUp int `gorm:"not null;default:0" json:"-"`
}
