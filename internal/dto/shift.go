package dto

import (
	"time"

	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/repository"
)

// ShiftDTO represents a sober bro shift. Times are rendered in the
// chapter's zone.
type ShiftDTO struct {
	ID        uint64    `json:"id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
	Capacity  int       `json:"capacity"`
}

// ShiftRefDTO identifies a shift inside an assignment.
type ShiftRefDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// MemberRefDTO identifies a member inside an assignment.
type MemberRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// AssignmentDTO is the trimmed view of a sign-up.
type AssignmentDTO struct {
	Shift  ShiftRefDTO  `json:"shift"`
	Member MemberRefDTO `json:"member"`
}

// BrotherDTO names a sober bro in the upcoming-shift listing.
type BrotherDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// UpcomingShiftDTO is a shift about to begin with its sober bros.
type UpcomingShiftDTO struct {
	ShiftDTO
	Brothers []BrotherDTO `json:"brothers"`
}

func ToShiftDTO(s models.SoberBroShift, loc *time.Location) ShiftDTO {
	return ShiftDTO{
		ID:        s.ID,
		Date:      s.Date,
		Title:     s.Title,
		TimeStart: s.TimeStart.In(loc),
		TimeEnd:   s.TimeEnd.In(loc),
		Capacity:  s.Capacity,
	}
}

func ToShiftDTOs(shifts []models.SoberBroShift, loc *time.Location) []ShiftDTO {
	out := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		out[i] = ToShiftDTO(s, loc)
	}
	return out
}

func ToAssignmentDTO(a models.SoberBro) AssignmentDTO {
	return AssignmentDTO{
		Shift:  ShiftRefDTO{ID: a.Shift.ID, Title: a.Shift.Title},
		Member: MemberRefDTO{ID: a.Member.ID, Name: a.Member.Name},
	}
}

func ToAssignmentDTOs(assignments []models.SoberBro) []AssignmentDTO {
	out := make([]AssignmentDTO, len(assignments))
	for i, a := range assignments {
		out[i] = ToAssignmentDTO(a)
	}
	return out
}

func ToUpcomingShiftDTOs(shifts []repository.ShiftWithMembers, loc *time.Location) []UpcomingShiftDTO {
	out := make([]UpcomingShiftDTO, len(shifts))
	for i, s := range shifts {
		brothers := make([]BrotherDTO, len(s.Members))
		for j, m := range s.Members {
			brothers[j] = BrotherDTO{Name: m.Name, Phone: m.Phone}
		}
		out[i] = UpcomingShiftDTO{ShiftDTO: ToShiftDTO(s.Shift, loc), Brothers: brothers}
	}
	return out
}
