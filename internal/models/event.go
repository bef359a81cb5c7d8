package models

import "time"

type Event struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	EventName  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"event_name"`
	TimeStart  time.Time `gorm:"not null" json:"time_start"`
	TimeEnd    time.Time `gorm:"not null" json:"time_end"`
	GuestCount int       `gorm:"not null;default:0" json:"guest_count"`
	Location   string    `gorm:"type:varchar(255);not null" json:"location"`
	Comments   string    `gorm:"type:text" json:"comments"`
}

type Guest struct {
	ID       uint64  `gorm:"primarykey" json:"id"`
	Phone    string  `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	MemberID *uint64 `gorm:"uniqueIndex" json:"member_id"`

	// Relations
	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:SET NULL" json:"-"`
	Alias  *Alias  `gorm:"foreignKey:GuestID" json:"alias,omitempty"`
}

type Alias struct {
	ID      uint64 `gorm:"primarykey" json:"id"`
	GuestID uint64 `gorm:"uniqueIndex;not null" json:"guest_id"`
	Alias   string `gorm:"type:varchar(255);not null" json:"alias"`
}

type EventAttendance struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	EventID          uint64     `gorm:"not null;uniqueIndex:idx_attendance_event_guest" json:"event_id"`
	GuestID          uint64     `gorm:"not null;uniqueIndex:idx_attendance_event_guest" json:"guest_id"`
	ArrivalTime      time.Time  `gorm:"not null" json:"arrival_time"`
	HelpFlag         bool       `gorm:"not null;default:false" json:"help_flag"`
	HelpFlagRaisedAt *time.Time `json:"help_flag_raised_at"`

	// Relations
	Event Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Guest Guest `gorm:"foreignKey:GuestID" json:"guest"`
}
