package services

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/testhelpers"
	"github.com/wooglin/roster-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	loc     *time.Location
	now     time.Time
	auth    *AuthService
	members *MemberService
	shifts  *ShiftService
	events  *EventService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, loc)

	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	eventRepo := repository.NewEventRepository(db)

	members := NewMemberService(memberRepo, userRepo, validation.EmailValidator{})
	members.HashCost = bcrypt.MinCost

	shifts := NewShiftService(shiftRepo, assignmentRepo, memberRepo, loc, nil)
	shifts.Now = func() time.Time { return now }

	events := NewEventService(eventRepo)
	events.Now = func() time.Time { return now }

	return &testEnv{
		db:      db,
		loc:     loc,
		now:     now,
		auth:    NewAuthService(userRepo, memberRepo),
		members: members,
		shifts:  shifts,
		events:  events,
	}
}

// at returns the local wall time on the env's current day.
func (e *testEnv) at(hour, minute int) time.Time {
	return time.Date(e.now.Year(), e.now.Month(), e.now.Day(), hour, minute, 0, 0, e.loc)
}

func strPtr(s string) *string        { return &s }
func intPtr(n int) *int              { return &n }
func u64Ptr(n uint64) *uint64        { return &n }
func timePtr(t time.Time) *time.Time { return &t }
