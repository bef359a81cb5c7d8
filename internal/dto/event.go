package dto

import (
	"time"

	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/utils"
)

// EventDTO represents an event in API responses
type EventDTO struct {
	ID         uint64    `json:"id"`
	EventName  string    `json:"event_name"`
	TimeStart  time.Time `json:"time_start"`
	TimeEnd    time.Time `json:"time_end"`
	GuestCount int       `json:"guest_count"`
	Location   string    `json:"location"`
	Comments   string    `json:"comments"`
}

// EventListResponse represents a paginated list of events
type EventListResponse struct {
	Events     []EventDTO               `json:"events"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// GuestDTO represents a checked-in guest
type GuestDTO struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Alias    string  `json:"alias,omitempty"`
	MemberID *uint64 `json:"member_id,omitempty"`
}

// AttendanceDTO represents a guest's arrival at an event
type AttendanceDTO struct {
	EventID          uint64     `json:"event_id"`
	Guest            GuestDTO   `json:"guest"`
	ArrivalTime      time.Time  `json:"arrival_time"`
	HelpFlag         bool       `json:"help_flag"`
	HelpFlagRaisedAt *time.Time `json:"help_flag_raised_at"`
}

func ToEventDTO(e models.Event, loc *time.Location) EventDTO {
	return EventDTO{
		ID:         e.ID,
		EventName:  e.EventName,
		TimeStart:  e.TimeStart.In(loc),
		TimeEnd:    e.TimeEnd.In(loc),
		GuestCount: e.GuestCount,
		Location:   e.Location,
		Comments:   e.Comments,
	}
}

func ToEventListResponse(events []models.Event, loc *time.Location, params utils.PaginationParams, total int64) EventListResponse {
	out := make([]EventDTO, len(events))
	for i, e := range events {
		out[i] = ToEventDTO(e, loc)
	}
	return EventListResponse{Events: out, Pagination: utils.NewPaginationResponse(params, total)}
}

func ToAttendanceDTO(a models.EventAttendance, loc *time.Location) AttendanceDTO {
	guest := GuestDTO{
		ID:       a.Guest.ID,
		Name:     a.Guest.Name,
		Phone:    a.Guest.Phone,
		MemberID: a.Guest.MemberID,
	}
	if a.Guest.Alias != nil {
		guest.Alias = a.Guest.Alias.Alias
	}

	out := AttendanceDTO{
		EventID:     a.EventID,
		Guest:       guest,
		ArrivalTime: a.ArrivalTime.In(loc),
		HelpFlag:    a.HelpFlag,
	}
	if a.HelpFlagRaisedAt != nil {
		raised := a.HelpFlagRaisedAt.In(loc)
		out.HelpFlagRaisedAt = &raised
	}
	return out
}

func ToAttendanceDTOs(attendances []models.EventAttendance, loc *time.Location) []AttendanceDTO {
	out := make([]AttendanceDTO, len(attendances))
	for i, a := range attendances {
		out[i] = ToAttendanceDTO(a, loc)
	}
	return out
}
