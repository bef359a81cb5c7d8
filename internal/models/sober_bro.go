package models

import "time"

// SoberBro links a member to a shift they signed up for.
type SoberBro struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ShiftID   uint64    `gorm:"not null;uniqueIndex:idx_sober_bros_shift_member" json:"shift_id"`
	MemberID  uint64    `gorm:"not null;uniqueIndex:idx_sober_bros_shift_member;index" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Shift  SoberBroShift `gorm:"foreignKey:ShiftID;constraint:OnDelete:CASCADE" json:"shift,omitempty"`
	Member Member        `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}
