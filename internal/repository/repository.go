package repository

import (
	"errors"
	"time"

	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/utils"
)

var (
	// ErrShiftOverlap is returned when a shift would overlap another on the same date.
	ErrShiftOverlap = errors.New("repository: shift overlaps an existing shift")
	// ErrCapacityBelowSignedUp is returned when capacity would drop below the sign-up count.
	ErrCapacityBelowSignedUp = errors.New("repository: capacity below signed-up count")
	// ErrShiftFull is returned when a shift has no free slot.
	ErrShiftFull = errors.New("repository: shift is full")
	// ErrDuplicateAssignment is returned when the member is already on the shift.
	ErrDuplicateAssignment = errors.New("repository: member already assigned to shift")
	// ErrAssignmentNotFound is returned when removing a member who is not on the shift.
	ErrAssignmentNotFound = errors.New("repository: assignment not found")
	// ErrAlreadyCheckedIn is returned when a guest already attends the event.
	ErrAlreadyCheckedIn = errors.New("repository: guest already checked in")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// EmailExists reports whether any user has the email
	EmailExists(email string) (bool, error)

	// UsernameExists reports whether any user has the username
	UsernameExists(username string) (bool, error)

	// UpdatePassword stores a new hash and clears the member's temp_password flag
	UpdatePassword(userID uint64, hash string) error
}

// MemberRepository defines the interface for member data access
type MemberRepository interface {
	// CreateWithUser creates the paired user and member in one transaction
	CreateWithUser(user *models.User, member *models.Member) error

	// FindByID finds a member by ID
	FindByID(id uint64) (*models.Member, error)

	// FindByUserID finds the member paired with a user
	FindByUserID(userID uint64) (*models.Member, error)

	// PhoneExists reports whether a member other than excludeID has the phone
	PhoneExists(phone string, excludeID uint64) (bool, error)

	// List retrieves members matching spec, ordered by spec then id
	List(spec query.Spec, params utils.PaginationParams) ([]models.Member, int64, error)

	// Update writes the given columns of a member
	Update(member *models.Member, fields map[string]any) error

	// Delete removes a member, its user, and its shift assignments
	Delete(id uint64) error
}

// ShiftRepository defines the interface for sober bro shift data access
type ShiftRepository interface {
	// Create inserts a shift unless it overlaps another on the same date
	Create(shift *models.SoberBroShift) error

	// Update writes fields of a shift after the overlap and capacity checks.
	// shift holds the resulting values.
	Update(shift *models.SoberBroShift, fields map[string]any) error

	// FindByID finds a shift by ID
	FindByID(id uint64) (*models.SoberBroShift, error)

	// ListBetween lists shifts with from <= date <= to
	ListBetween(from, to string) ([]models.SoberBroShift, error)

	// Upcoming lists shifts starting in [now, until) that have not ended,
	// with their assigned members
	Upcoming(now, until time.Time) ([]ShiftWithMembers, error)

	// Delete removes a shift and its assignments
	Delete(id uint64) error
}

// ShiftWithMembers is a shift with the members signed up for it.
type ShiftWithMembers struct {
	Shift   models.SoberBroShift
	Members []models.Member
}

// AssignmentRepository defines the interface for shift sign-ups
type AssignmentRepository interface {
	// Add signs a member up for a shift
	Add(shiftID, memberID uint64) (*models.SoberBro, error)

	// Remove drops a member from a shift
	Remove(shiftID, memberID uint64) error

	// ListByShift lists the assignments of a shift with shift and member loaded
	ListByShift(shiftID uint64) ([]models.SoberBro, error)
}

// EventRepository defines the interface for events and check-ins
type EventRepository interface {
	Create(event *models.Event) error
	FindByID(id uint64) (*models.Event, error)
	List(params utils.PaginationParams) ([]models.Event, int64, error)
	Delete(id uint64) error

	// CheckIn records a guest's arrival at an event. The guest is found by
	// phone or created, and an alias is stored when non-empty.
	CheckIn(eventID uint64, guest models.Guest, alias string, arrival time.Time) (*models.EventAttendance, error)

	// ListAttendance lists an event's attendances with guests loaded
	ListAttendance(eventID uint64) ([]models.EventAttendance, error)

	// RaiseHelp sets the help flag of a guest's attendance
	RaiseHelp(eventID, guestID uint64, at time.Time) (*models.EventAttendance, error)
}
