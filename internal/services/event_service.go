package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/utils"
	"github.com/wooglin/roster-api/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
)

const (
	MsgDuplicateEvent   = "An event with that name already exists."
	MsgEventEndBefore   = "The start time of an event must be before its end time."
	MsgAlreadyCheckedIn = "This guest has already checked in to the event."
	MsgEventDeleted     = "The event and its attendance records have been deleted."
)

// EventInput is an event create body.
type EventInput struct {
	EventName *string    `json:"event_name"`
	TimeStart *time.Time `json:"time_start"`
	TimeEnd   *time.Time `json:"time_end"`
	Location  *string    `json:"location"`
	Comments  string     `json:"comments"`
}

// CheckInInput is a guest arrival at an event.
type CheckInInput struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// EventService manages party events and guest check-ins.
type EventService struct {
	eventRepo repository.EventRepository

	Now func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo, Now: time.Now}
}

// Create validates and stores an event. Names are unique.
func (s *EventService) Create(input EventInput) (*models.Event, error) {
	errs := map[string]string{}
	requireString(errs, "event_name", input.EventName)
	requireString(errs, "location", input.Location)
	if input.TimeStart == nil {
		errs["time_start"] = msgRequired
	}
	if input.TimeEnd == nil {
		errs["time_end"] = msgRequired
	}
	if len(errs) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, errs)
	}
	if !input.TimeStart.Before(*input.TimeEnd) {
		return nil, apierrors.Validation("time_start", MsgEventEndBefore)
	}

	event := &models.Event{
		EventName: strings.TrimSpace(*input.EventName),
		TimeStart: input.TimeStart.UTC(),
		TimeEnd:   input.TimeEnd.UTC(),
		Location:  strings.TrimSpace(*input.Location),
		Comments:  input.Comments,
	}
	if err := s.eventRepo.Create(event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflict("event_name", MsgDuplicateEvent)
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// Get retrieves an event by ID
func (s *EventService) Get(id uint64) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return event, nil
}

// List retrieves events newest first
func (s *EventService) List(params utils.PaginationParams) ([]models.Event, int64, error) {
	events, total, err := s.eventRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

// Delete removes an event and its attendances
func (s *EventService) Delete(id uint64) error {
	if err := s.eventRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// CheckIn records a guest arriving now. A new guest needs a name; a known
// phone reuses the stored guest.
func (s *EventService) CheckIn(eventID uint64, input CheckInInput) (*models.EventAttendance, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, apierrors.Validation("phone", msgRequired)
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return nil, apierrors.Validation("phone", validation.MsgInvalidPhone)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apierrors.Validation("name", msgRequired)
	}

	guest := models.Guest{Phone: phone, Name: name}
	attendance, err := s.eventRepo.CheckIn(eventID, guest, strings.TrimSpace(input.Alias), s.Now())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrAlreadyCheckedIn):
			return nil, apierrors.Conflict("guest", MsgAlreadyCheckedIn)
		}
		return nil, fmt.Errorf("failed to check in guest: %w", err)
	}
	return attendance, nil
}

// Attendance lists the check-ins of an event
func (s *EventService) Attendance(eventID uint64) ([]models.EventAttendance, error) {
	if _, err := s.Get(eventID); err != nil {
		return nil, err
	}

	attendances, err := s.eventRepo.ListAttendance(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendances, nil
}

// RaiseHelp flags that a checked-in guest needs a sober bro.
func (s *EventService) RaiseHelp(eventID, guestID uint64) (*models.EventAttendance, error) {
	attendance, err := s.eventRepo.RaiseHelp(eventID, guestID, s.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to raise help flag: %w", err)
	}
	return attendance, nil
}

func requireString(errs map[string]string, field string, value *string) {
	switch {
	case value == nil:
		errs[field] = msgRequired
	case strings.TrimSpace(*value) == "":
		errs[field] = msgBlank
	}
}
