package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wooglin/roster-api/internal/constants"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/policy"
	"github.com/wooglin/roster-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrShiftNotFound = errors.New("shift not found")
	ErrUpcomingQuery = errors.New("failed to query upcoming shifts")
)

// Shift error and confirmation messages.
const (
	MsgPastDate         = "The date you've specified is in the past. Shifts in the past can only be created by an administrator."
	MsgPastTimeStart    = "Your specified start time for the shift is in the past. Shifts in the past can only be altered by the administrator."
	MsgPastTimeEnd      = "Your specified end time for the shift is in the past. Shifts in the past can only be altered by the administrator."
	MsgBadCapacity      = "Capacity must be a positive integer."
	MsgStartAfterEnd    = "The start time of a shift must be before its end time."
	MsgShiftOverlap     = "This shift overlaps with an existing shift on the same date."
	MsgBadDate          = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgShiftDeleted     = "The Sober Bro Shift delete operation has completed successfully. Any members assigned to this shift have been removed as well."
	MsgMemberIDRequired = "A member id is required to add or remove a member from a shift"
	MsgMemberMissing    = "The member you attempted to add to the shift does not exist."
	MsgAlreadyAssigned  = "The member you're attempting to assign is already signed up for this shift."
	MsgNotSelf          = "You are trying to either drop or add a sober bro who is not yourself. You do not have permission to do this."
	MsgShiftFull        = "Shift is currently full. Unable to add another brother."
	MsgNotOnShift       = "The member you're trying to delete is not currently a part of this shift."
	MsgNoUpcomingShifts = "There are no shifts beginning in the next 15 minutes."
)

const defaultTitleLayout = "%s: %s - %s"

var defaultTitlePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}: \d{1,2}:\d{2} [AP]M - \d{1,2}:\d{2} [AP]M$`)

// ShiftInput is a shift create or update body. Nil fields are absent.
type ShiftInput struct {
	Date      *string    `json:"date"`
	Title     *string    `json:"title"`
	TimeStart *time.Time `json:"time_start"`
	TimeEnd   *time.Time `json:"time_end"`
	Capacity  *int       `json:"capacity"`
}

// ShiftService owns shift scheduling and sign-ups.
type ShiftService struct {
	shiftRepo      repository.ShiftRepository
	assignmentRepo repository.AssignmentRepository
	memberRepo     repository.MemberRepository
	metrics        *metrics.Metrics
	location       *time.Location

	// Now is the clock used for past checks and the upcoming window.
	Now func() time.Time
}

// NewShiftService creates a new ShiftService. Dates and default titles are
// computed in loc.
func NewShiftService(
	shiftRepo repository.ShiftRepository,
	assignmentRepo repository.AssignmentRepository,
	memberRepo repository.MemberRepository,
	loc *time.Location,
	m *metrics.Metrics,
) *ShiftService {
	return &ShiftService{
		shiftRepo:      shiftRepo,
		assignmentRepo: assignmentRepo,
		memberRepo:     memberRepo,
		metrics:        m,
		location:       loc,
		Now:            time.Now,
	}
}

// Location returns the zone shift dates are expressed in.
func (s *ShiftService) Location() *time.Location {
	return s.location
}

// DefaultTitle builds the title used when none is supplied, for example
// "2030-06-01: 8:00 PM - 10:00 PM".
func (s *ShiftService) DefaultTitle(date string, start, end time.Time) string {
	return fmt.Sprintf(defaultTitleLayout, date,
		start.In(s.location).Format(constants.ClockLayout),
		end.In(s.location).Format(constants.ClockLayout))
}

// IsDefaultTitle reports whether title has the generated form.
func IsDefaultTitle(title string) bool {
	return defaultTitlePattern.MatchString(title)
}

// Create validates and stores a new shift.
func (s *ShiftService) Create(input ShiftInput) (*models.SoberBroShift, error) {
	errs := map[string]string{}
	if input.Date == nil {
		errs[policy.FieldDate] = msgRequired
	}
	if input.TimeStart == nil {
		errs[policy.FieldTimeStart] = msgRequired
	}
	if input.TimeEnd == nil {
		errs[policy.FieldTimeEnd] = msgRequired
	}
	s.checkNotPast(input, errs)
	if len(errs) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, errs)
	}

	shift := &models.SoberBroShift{
		Date:      *input.Date,
		TimeStart: input.TimeStart.UTC(),
		TimeEnd:   input.TimeEnd.UTC(),
		Capacity:  constants.DefaultShiftCapacity,
	}
	if input.Capacity != nil {
		shift.Capacity = *input.Capacity
	}
	if !shift.TimeStart.Before(shift.TimeEnd) {
		return nil, apierrors.Validation(policy.FieldTimeStart, MsgStartAfterEnd)
	}

	if input.Title != nil && *input.Title != "" {
		shift.Title = *input.Title
	} else {
		shift.Title = s.DefaultTitle(shift.Date, shift.TimeStart, shift.TimeEnd)
	}

	if err := s.shiftRepo.Create(shift); err != nil {
		if errors.Is(err, repository.ErrShiftOverlap) {
			return nil, apierrors.Conflict(policy.FieldTimeStart, MsgShiftOverlap)
		}
		return nil, fmt.Errorf("failed to create shift: %w", err)
	}
	return shift, nil
}

// Update applies a partial update. Only the supplied fields are checked
// against the clock; the merged interval must still be ordered and free.
func (s *ShiftService) Update(id uint64, input ShiftInput) (*models.SoberBroShift, error) {
	shift, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	errs := map[string]string{}
	s.checkNotPast(input, errs)
	if len(errs) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, errs)
	}

	fields := map[string]any{}
	scheduleChanged := false
	if input.Date != nil && *input.Date != shift.Date {
		shift.Date = *input.Date
		fields[policy.FieldDate] = shift.Date
		scheduleChanged = true
	}
	if input.TimeStart != nil && !input.TimeStart.Equal(shift.TimeStart) {
		shift.TimeStart = input.TimeStart.UTC()
		fields[policy.FieldTimeStart] = shift.TimeStart
		scheduleChanged = true
	}
	if input.TimeEnd != nil && !input.TimeEnd.Equal(shift.TimeEnd) {
		shift.TimeEnd = input.TimeEnd.UTC()
		fields[policy.FieldTimeEnd] = shift.TimeEnd
		scheduleChanged = true
	}
	if input.Capacity != nil {
		shift.Capacity = *input.Capacity
		fields[policy.FieldCapacity] = shift.Capacity
	}

	if !shift.TimeStart.Before(shift.TimeEnd) {
		return nil, apierrors.Validation(policy.FieldTimeStart, MsgStartAfterEnd)
	}

	switch {
	case input.Title != nil && *input.Title != "":
		shift.Title = *input.Title
		fields[policy.FieldTitle] = shift.Title
	case input.Title != nil || (scheduleChanged && IsDefaultTitle(shift.Title)):
		shift.Title = s.DefaultTitle(shift.Date, shift.TimeStart, shift.TimeEnd)
		fields[policy.FieldTitle] = shift.Title
	}

	if err := s.shiftRepo.Update(shift, fields); err != nil {
		switch {
		case errors.Is(err, repository.ErrShiftOverlap):
			return nil, apierrors.Conflict(policy.FieldTimeStart, MsgShiftOverlap)
		case errors.Is(err, repository.ErrCapacityBelowSignedUp):
			return nil, apierrors.Conflict(policy.FieldCapacity,
				"Capacity cannot be lower than the number of members already signed up for this shift.")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to update shift: %w", err)
	}
	return shift, nil
}

// Replace handles PUT: a missing shift is created, an existing one is
// partially updated. created reports which happened.
func (s *ShiftService) Replace(id uint64, input ShiftInput) (shift *models.SoberBroShift, created bool, err error) {
	_, err = s.Get(id)
	switch {
	case errors.Is(err, ErrShiftNotFound):
		shift, err = s.Create(input)
		return shift, err == nil, err
	case err != nil:
		return nil, false, err
	}

	shift, err = s.Update(id, input)
	return shift, false, err
}

// Get retrieves a shift by ID.
func (s *ShiftService) Get(id uint64) (*models.SoberBroShift, error) {
	shift, err := s.shiftRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to find shift: %w", err)
	}
	return shift, nil
}

// Delete removes a shift and its sign-ups.
func (s *ShiftService) Delete(id uint64) error {
	if err := s.shiftRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	return nil
}

// List returns the shifts dated from today through today plus 31 days.
func (s *ShiftService) List() ([]models.SoberBroShift, error) {
	today := s.Now().In(s.location)
	from := today.Format(constants.DateLayout)
	to := today.AddDate(0, 0, constants.ShiftListDays).Format(constants.DateLayout)

	shifts, err := s.shiftRepo.ListBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// Upcoming returns the shifts starting within the next 15 minutes that have
// not ended, with their members. An empty result is not an error.
func (s *ShiftService) Upcoming() ([]repository.ShiftWithMembers, error) {
	now := s.Now()
	shifts, err := s.shiftRepo.Upcoming(now, now.Add(constants.UpcomingShiftWindow))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpcomingQuery, err)
	}
	return shifts, nil
}

// AddAssignment signs memberID up for the shift. Checks run in order: the
// shift exists, a member id is given, the member exists, a non-admin acts
// only on themselves, the shift has room, the pair is new.
func (s *ShiftService) AddAssignment(caller Caller, shiftID uint64, memberID *uint64) (*models.SoberBro, error) {
	assignment, err := s.addAssignment(caller, shiftID, memberID)
	s.metrics.ObserveAssignment("add", err)
	return assignment, err
}

func (s *ShiftService) addAssignment(caller Caller, shiftID uint64, memberID *uint64) (*models.SoberBro, error) {
	shift, err := s.Get(shiftID)
	if err != nil {
		return nil, err
	}

	if memberID == nil || *memberID == 0 {
		return nil, apierrors.Validation(policy.FieldMember, MsgMemberIDRequired)
	}

	member, err := s.memberRepo.FindByID(*memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.Validation(policy.FieldMember, MsgMemberMissing)
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	if !caller.IsStaff && !caller.IsSelf(member.ID) {
		return nil, apierrors.Authorization("operation", MsgNotSelf)
	}

	assignment, err := s.assignmentRepo.Add(shift.ID, member.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShiftFull):
			return nil, apierrors.Conflict(policy.FieldShift, MsgShiftFull)
		case errors.Is(err, repository.ErrDuplicateAssignment):
			return nil, apierrors.Conflict(policy.FieldMember, MsgAlreadyAssigned)
		}
		return nil, fmt.Errorf("failed to add assignment: %w", err)
	}

	shift.SignedUp++
	assignment.Shift = *shift
	assignment.Member = *member
	return assignment, nil
}

// RemoveAssignment drops memberID from the shift and returns a confirmation
// naming the member, the shift title and its date.
func (s *ShiftService) RemoveAssignment(caller Caller, shiftID uint64, memberID *uint64) (string, error) {
	msg, err := s.removeAssignment(caller, shiftID, memberID)
	s.metrics.ObserveAssignment("remove", err)
	return msg, err
}

func (s *ShiftService) removeAssignment(caller Caller, shiftID uint64, memberID *uint64) (string, error) {
	shift, err := s.Get(shiftID)
	if err != nil {
		return "", err
	}

	if memberID == nil || *memberID == 0 {
		return "", apierrors.Validation(policy.FieldMember, MsgMemberIDRequired)
	}

	member, err := s.memberRepo.FindByID(*memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierrors.Validation(policy.FieldMember, MsgNotOnShift)
		}
		return "", fmt.Errorf("failed to find member: %w", err)
	}

	if !caller.IsStaff && !caller.IsSelf(member.ID) {
		return "", apierrors.Authorization("operation", MsgNotSelf)
	}

	if err := s.assignmentRepo.Remove(shift.ID, member.ID); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return "", apierrors.Validation(policy.FieldMember, MsgNotOnShift)
		}
		return "", fmt.Errorf("failed to remove assignment: %w", err)
	}

	return fmt.Sprintf("Successfully removed %s from the Sober Bro shift titled %s on %s",
		member.Name, shift.Title, shift.Date), nil
}

// ListAssignments returns the sign-ups of a shift.
func (s *ShiftService) ListAssignments(shiftID uint64) ([]models.SoberBro, error) {
	if _, err := s.Get(shiftID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByShift(shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// checkNotPast validates the supplied schedule fields against the clock.
func (s *ShiftService) checkNotPast(input ShiftInput, errs map[string]string) {
	now := s.Now().In(s.location)
	today := now.Format(constants.DateLayout)

	if input.Date != nil {
		if _, err := time.ParseInLocation(constants.DateLayout, *input.Date, s.location); err != nil {
			errs[policy.FieldDate] = MsgBadDate
		} else if *input.Date < today {
			errs[policy.FieldDate] = MsgPastDate
		}
	}
	if input.TimeStart != nil && input.TimeStart.Before(now) {
		errs[policy.FieldTimeStart] = MsgPastTimeStart
	}
	if input.TimeEnd != nil && input.TimeEnd.Before(now) {
		errs[policy.FieldTimeEnd] = MsgPastTimeEnd
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		errs[policy.FieldCapacity] = MsgBadCapacity
	}
}
