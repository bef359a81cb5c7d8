package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/policy"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/testhelpers"
	"github.com/wooglin/roster-api/internal/utils"
	"gorm.io/gorm"
)

// RepositoryTestSuite exercises the GORM repositories against SQLite
type RepositoryTestSuite struct {
	suite.Suite
	db          *gorm.DB
	members     MemberRepository
	shifts      ShiftRepository
	assignments AssignmentRepository
	events      EventRepository
	users       UserRepository

	base time.Time
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.db = testhelpers.SetupTestDB(suite.T())
	suite.members = NewMemberRepository(suite.db)
	suite.shifts = NewShiftRepository(suite.db)
	suite.assignments = NewAssignmentRepository(suite.db)
	suite.events = NewEventRepository(suite.db)
	suite.users = NewUserRepository(suite.db)
	suite.base = time.Date(2030, 6, 1, 20, 0, 0, 0, time.UTC)
}

func (suite *RepositoryTestSuite) count(model any) int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(model).Count(&n).Error)
	return n
}

func (suite *RepositoryTestSuite) TestCreateWithUser_DuplicatePhoneRollsBack() {
	first := &models.Member{Name: "Tony Stark", Phone: "123.456.7894", Email: "tony@avengers.com"}
	suite.Require().NoError(suite.members.CreateWithUser(&models.User{Username: "tony.stark", Email: "tony@avengers.com", PasswordHash: "x"}, first))
	suite.NotZero(first.UserID)

	users := suite.count(&models.User{})
	second := &models.Member{Name: "Iron Man", Phone: "123.456.7894", Email: "iron@avengers.com"}
	err := suite.members.CreateWithUser(&models.User{Username: "iron.man", Email: "iron@avengers.com", PasswordHash: "x"}, second)

	suite.True(errors.Is(err, gorm.ErrDuplicatedKey))
	suite.Equal(users, suite.count(&models.User{}))
}

func (suite *RepositoryTestSuite) TestList_FiltersOrdersAndPaginates() {
	testhelpers.CreateMember(suite.T(), suite.db, "Bruce Banner", "111.111.1111", 2, false)
	testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "222.222.2222", 1, false)
	testhelpers.CreateMember(suite.T(), suite.db, "Aaron Stark", "333.333.3333", 1, false)

	spec := query.Spec{Orders: []query.Order{{Field: "rollnumber"}, {Field: "name", Desc: true}}}
	members, total, err := suite.members.List(spec, utils.PaginationParams{Page: 1, Limit: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Equal([]string{"Tony Stark", "Aaron Stark", "Bruce Banner"}, names(members))

	spec = query.Spec{Predicates: []query.Predicate{{Field: policy.FieldPhone, Value: "111.111.1111"}}}
	members, total, err = suite.members.List(spec, utils.PaginationParams{Page: 1, Limit: 20})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal([]string{"Bruce Banner"}, names(members))

	members, total, err = suite.members.List(query.Spec{}, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(3), total)
	suite.Len(members, 1)
}

func (suite *RepositoryTestSuite) TestDeleteMember_Cascades() {
	member := testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "123.456.7894", 3, false)
	shift := testhelpers.CreateShift(suite.T(), suite.db, suite.base, 2*time.Hour, 5)
	_, err := suite.assignments.Add(shift.ID, member.ID)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.members.Delete(member.ID))

	suite.Zero(suite.count(&models.Member{}))
	suite.Zero(suite.count(&models.User{}))
	suite.Zero(suite.count(&models.SoberBro{}))

	reloaded, err := suite.shifts.FindByID(shift.ID)
	suite.Require().NoError(err)
	suite.Zero(reloaded.SignedUp)

	suite.ErrorIs(suite.members.Delete(member.ID), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestShiftCreate_Overlap() {
	testhelpers.CreateShift(suite.T(), suite.db, suite.base, 2*time.Hour, 5)

	overlapping := &models.SoberBroShift{
		Date:      suite.base.Format("2006-01-02"),
		TimeStart: suite.base.Add(time.Hour),
		TimeEnd:   suite.base.Add(3 * time.Hour),
		Capacity:  5,
	}
	suite.ErrorIs(suite.shifts.Create(overlapping), ErrShiftOverlap)

	containing := &models.SoberBroShift{
		Date:      suite.base.Format("2006-01-02"),
		TimeStart: suite.base.Add(-time.Hour),
		TimeEnd:   suite.base.Add(3 * time.Hour),
		Capacity:  5,
	}
	suite.ErrorIs(suite.shifts.Create(containing), ErrShiftOverlap)

	adjacent := &models.SoberBroShift{
		Date:      suite.base.Format("2006-01-02"),
		TimeStart: suite.base.Add(2 * time.Hour),
		TimeEnd:   suite.base.Add(4 * time.Hour),
		Capacity:  5,
	}
	suite.NoError(suite.shifts.Create(adjacent))
}

func (suite *RepositoryTestSuite) TestShiftUpdate_CapacityAndOverlap() {
	shift := testhelpers.CreateShift(suite.T(), suite.db, suite.base, 2*time.Hour, 5)
	other := testhelpers.CreateShift(suite.T(), suite.db, suite.base.Add(3*time.Hour), time.Hour, 5)

	for _, phone := range []string{"111.111.1111", "222.222.2222"} {
		m := testhelpers.CreateMember(suite.T(), suite.db, "Member "+phone, phone, 1, false)
		_, err := suite.assignments.Add(shift.ID, m.ID)
		suite.Require().NoError(err)
	}

	suite.ErrorIs(suite.shifts.Update(shift, map[string]any{"capacity": 1}), ErrCapacityBelowSignedUp)
	suite.NoError(suite.shifts.Update(shift, map[string]any{"capacity": 2}))

	// Updating a shift does not collide with itself.
	shift.TimeEnd = suite.base.Add(90 * time.Minute)
	suite.NoError(suite.shifts.Update(shift, map[string]any{"time_end": shift.TimeEnd}))

	other.TimeStart = suite.base.Add(time.Hour)
	suite.ErrorIs(suite.shifts.Update(other, map[string]any{"time_start": other.TimeStart}), ErrShiftOverlap)
}

func (suite *RepositoryTestSuite) TestAssignments_CapacityAndDuplicates() {
	shift := testhelpers.CreateShift(suite.T(), suite.db, suite.base, 2*time.Hour, 5)

	var members []*models.Member
	for i, phone := range []string{"111.111.1111", "222.222.2222", "333.333.3333", "444.444.4444", "555.555.5555", "666.666.6666"} {
		members = append(members, testhelpers.CreateMember(suite.T(), suite.db, "Member "+phone, phone, i, false))
	}

	_, err := suite.assignments.Add(shift.ID, members[0].ID)
	suite.Require().NoError(err)
	_, err = suite.assignments.Add(shift.ID, members[0].ID)
	suite.ErrorIs(err, ErrDuplicateAssignment)

	for _, m := range members[1:5] {
		_, err := suite.assignments.Add(shift.ID, m.ID)
		suite.Require().NoError(err)
	}
	_, err = suite.assignments.Add(shift.ID, members[5].ID)
	suite.ErrorIs(err, ErrShiftFull)
	suite.Equal(int64(5), suite.count(&models.SoberBro{}))

	suite.NoError(suite.assignments.Remove(shift.ID, members[0].ID))
	suite.ErrorIs(suite.assignments.Remove(shift.ID, members[0].ID), ErrAssignmentNotFound)

	_, err = suite.assignments.Add(shift.ID, members[5].ID)
	suite.NoError(err)

	listed, err := suite.assignments.ListByShift(shift.ID)
	suite.Require().NoError(err)
	suite.Len(listed, 5)
	suite.Equal(shift.Title, listed[0].Shift.Title)
	suite.Equal(members[1].Name, listed[0].Member.Name)
}

func (suite *RepositoryTestSuite) TestShiftDelete_RemovesAssignments() {
	shift := testhelpers.CreateShift(suite.T(), suite.db, suite.base, 2*time.Hour, 5)
	member := testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "123.456.7894", 3, false)
	_, err := suite.assignments.Add(shift.ID, member.ID)
	suite.Require().NoError(err)

	suite.NoError(suite.shifts.Delete(shift.ID))
	suite.Zero(suite.count(&models.SoberBro{}))
	suite.ErrorIs(suite.shifts.Delete(shift.ID), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestUpcoming() {
	now := suite.base
	soon := testhelpers.CreateShift(suite.T(), suite.db, now.Add(10*time.Minute), time.Hour, 5)
	testhelpers.CreateShift(suite.T(), suite.db, now.Add(20*time.Minute), time.Hour, 5)
	testhelpers.CreateShift(suite.T(), suite.db, now.Add(-time.Hour), 30*time.Minute, 5)

	member := testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "123.456.7894", 3, false)
	_, err := suite.assignments.Add(soon.ID, member.ID)
	suite.Require().NoError(err)

	upcoming, err := suite.shifts.Upcoming(now, now.Add(15*time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(upcoming, 1)
	suite.Equal(soon.ID, upcoming[0].Shift.ID)
	suite.Equal([]string{"Tony Stark"}, names(upcoming[0].Members))

	upcoming, err = suite.shifts.Upcoming(now.Add(2*time.Hour), now.Add(2*time.Hour+15*time.Minute))
	suite.Require().NoError(err)
	suite.Empty(upcoming)
}

func (suite *RepositoryTestSuite) TestListBetween() {
	testhelpers.CreateShift(suite.T(), suite.db, suite.base, time.Hour, 5)
	testhelpers.CreateShift(suite.T(), suite.db, suite.base.AddDate(0, 2, 0), time.Hour, 5)

	shifts, err := suite.shifts.ListBetween("2030-06-01", "2030-07-02")
	suite.Require().NoError(err)
	suite.Len(shifts, 1)
}

func (suite *RepositoryTestSuite) TestCheckIn() {
	member := testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "123.456.7894", 3, false)
	event := &models.Event{EventName: "Mixer", TimeStart: suite.base, TimeEnd: suite.base.Add(4 * time.Hour), Location: "House"}
	suite.Require().NoError(suite.events.Create(event))

	att, err := suite.events.CheckIn(event.ID, models.Guest{Phone: "123.456.7894", Name: "Tony"}, "Iron Man", suite.base)
	suite.Require().NoError(err)
	suite.Require().NotNil(att.Guest.MemberID)
	suite.Equal(member.ID, *att.Guest.MemberID)
	suite.Require().NotNil(att.Guest.Alias)
	suite.Equal("Iron Man", att.Guest.Alias.Alias)

	_, err = suite.events.CheckIn(event.ID, models.Guest{Phone: "123.456.7894", Name: "Tony"}, "", suite.base)
	suite.ErrorIs(err, ErrAlreadyCheckedIn)

	_, err = suite.events.CheckIn(event.ID, models.Guest{Phone: "999.999.9999", Name: "Pepper"}, "", suite.base)
	suite.Require().NoError(err)

	reloaded, err := suite.events.FindByID(event.ID)
	suite.Require().NoError(err)
	suite.Equal(2, reloaded.GuestCount)

	raised, err := suite.events.RaiseHelp(event.ID, att.GuestID, suite.base.Add(time.Hour))
	suite.Require().NoError(err)
	suite.True(raised.HelpFlag)
	suite.NotNil(raised.HelpFlagRaisedAt)

	_, err = suite.events.RaiseHelp(event.ID, 9999, suite.base)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	attendances, err := suite.events.ListAttendance(event.ID)
	suite.Require().NoError(err)
	suite.Len(attendances, 2)

	suite.NoError(suite.events.Delete(event.ID))
	suite.Zero(suite.count(&models.EventAttendance{}))
}

func (suite *RepositoryTestSuite) TestUpdatePassword_ClearsTempPassword() {
	member := testhelpers.CreateMember(suite.T(), suite.db, "Tony Stark", "123.456.7894", 3, false)
	suite.Require().NoError(suite.db.Model(member).Update("temp_password", true).Error)

	suite.Require().NoError(suite.users.UpdatePassword(member.UserID, "newhash"))

	reloaded, err := suite.members.FindByID(member.ID)
	suite.Require().NoError(err)
	suite.False(reloaded.TempPassword)
	suite.Equal("newhash", reloaded.User.PasswordHash)

	suite.ErrorIs(suite.users.UpdatePassword(9999, "x"), gorm.ErrRecordNotFound)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestUpcoming_DataStoreFailure(t *testing.T) {
	db, mock := testhelpers.SetupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "sober_bro_shifts"`).WillReturnError(errors.New("connection reset"))

	_, err := NewShiftRepository(db).Upcoming(time.Now(), time.Now().Add(15*time.Minute))

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func names(members []models.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}
