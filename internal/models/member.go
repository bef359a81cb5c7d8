package models

// Member is a roster entry paired 1:1 with a User.
type Member struct {
	ID           uint64  `gorm:"primarykey" json:"id"`
	UserID       uint64  `gorm:"uniqueIndex;not null" json:"-"`
	Name         string  `gorm:"type:varchar(127);index;not null" json:"name"`
	FirstName    string  `gorm:"type:varchar(127)" json:"first_name"`
	LastName     string  `gorm:"type:varchar(127)" json:"last_name"`
	LegalName    string  `gorm:"type:varchar(127)" json:"legal_name"`
	Address      string  `gorm:"type:varchar(511)" json:"address"`
	Email        string  `gorm:"type:varchar(127)" json:"email"`
	Phone        string  `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone"`
	Rollnumber   int     `gorm:"not null" json:"rollnumber"`
	MemberScore  float64 `gorm:"not null" json:"member_score"`
	InactiveFlag bool    `gorm:"not null;default:false" json:"inactive_flag"`
	AbroadFlag   bool    `gorm:"not null;default:false" json:"abroad_flag"`
	TempPassword bool    `gorm:"not null;default:true" json:"temp_password"`
	Present      int     `gorm:"not null;default:0" json:"present"`
	Position     string  `gorm:"type:varchar(255)" json:"position"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
