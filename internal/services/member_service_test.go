package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/testhelpers"
	"github.com/wooglin/roster-api/internal/utils"
	"gorm.io/gorm"
)

func tonyStark() MemberInput {
	return MemberInput{
		"name":          "Tony Stark",
		"first_name":    "Anthony",
		"last_name":     "Stark",
		"legal_name":    "Anthony Edward Stark",
		"address":       "10880 Malibu Point",
		"email":         "tony@avengers.com",
		"phone":         "123.456.7894",
		"rollnumber":    float64(1000),
		"member_score":  float64(99),
		"present":       float64(4),
		"temp_password": false,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestMemberService_CreateForcesCalculatedFields(t *testing.T) {
	env := setupTestEnv(t)

	member, err := env.members.Create(tonyStark())
	require.NoError(t, err)

	assert.Equal(t, -1.0, member.MemberScore)
	assert.Equal(t, 0, member.Present)
	assert.True(t, member.TempPassword)
	assert.Equal(t, "Brother", member.Position)

	stored, err := env.members.Get(member.ID)
	require.NoError(t, err)
	assert.Equal(t, "tony.stark", stored.User.Username)
	assert.Equal(t, "tony@avengers.com", stored.User.Email)
	assert.False(t, stored.User.IsStaff)

	user, err := env.auth.Login(LoginInput{Username: "tony.stark", Password: "Stark1000"})
	require.NoError(t, err)
	assert.Equal(t, stored.UserID, user.ID)
}

func TestMemberService_CreateRejectsDuplicates(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.members.Create(tonyStark())
	require.NoError(t, err)

	usersBefore := countRows(t, env.db, &models.User{})
	membersBefore := countRows(t, env.db, &models.Member{})

	samePhone := tonyStark()
	samePhone["name"] = "Pepper Potts"
	samePhone["email"] = "pepper@avengers.com"
	_, err = env.members.Create(samePhone)
	fe, ok := apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindConflict, fe.Kind)
	assert.Equal(t, MsgDuplicatePhone, fe.Fields["phone"])

	sameEmail := tonyStark()
	sameEmail["name"] = "Pepper Potts"
	sameEmail["phone"] = "123.456.7895"
	_, err = env.members.Create(sameEmail)
	fe, ok = apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, MsgDuplicateEmail, fe.Fields["email"])

	sameName := tonyStark()
	sameName["phone"] = "123.456.7896"
	sameName["email"] = "ironman@avengers.com"
	_, err = env.members.Create(sameName)
	fe, ok = apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.True(t, fe.Has("name"))

	assert.Equal(t, usersBefore, countRows(t, env.db, &models.User{}))
	assert.Equal(t, membersBefore, countRows(t, env.db, &models.Member{}))
}

func TestMemberService_CreateValidation(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("missing fields", func(t *testing.T) {
		_, err := env.members.Create(MemberInput{"name": "Bruce Banner"})
		fe, ok := apierrors.AsFieldError(err)
		require.True(t, ok)
		assert.Equal(t, apierrors.KindValidation, fe.Kind)
		assert.Equal(t, MsgPhoneRequired, fe.Fields["phone"])
		assert.Equal(t, msgRequired, fe.Fields["email"])
		assert.Equal(t, msgRequired, fe.Fields["rollnumber"])
		assert.False(t, fe.Has("name"))
	})

	t.Run("blank phone", func(t *testing.T) {
		input := tonyStark()
		input["phone"] = ""
		_, err := env.members.Create(input)
		fe, ok := apierrors.AsFieldError(err)
		require.True(t, ok)
		assert.Equal(t, MsgPhoneRequired, fe.Fields["phone"])
	})

	t.Run("bad phone", func(t *testing.T) {
		input := tonyStark()
		input["phone"] = "123-456-7894"
		_, err := env.members.Create(input)
		fe, ok := apierrors.AsFieldError(err)
		require.True(t, ok)
		assert.True(t, fe.Has("phone"))
	})

	t.Run("bad email", func(t *testing.T) {
		input := tonyStark()
		input["email"] = "not-an-email"
		_, err := env.members.Create(input)
		fe, ok := apierrors.AsFieldError(err)
		require.True(t, ok)
		assert.True(t, fe.Has("email"))
	})

	t.Run("wrong types", func(t *testing.T) {
		input := tonyStark()
		input["rollnumber"] = "one thousand"
		input["abroad_flag"] = "sometimes"
		input["address"] = float64(7)
		_, err := env.members.Create(input)
		fe, ok := apierrors.AsFieldError(err)
		require.True(t, ok)
		assert.Equal(t, msgNotInteger, fe.Fields["rollnumber"])
		assert.Equal(t, msgNotBoolean, fe.Fields["abroad_flag"])
		assert.Equal(t, msgNotString, fe.Fields["address"])
	})

	assert.Equal(t, int64(0), countRows(t, env.db, &models.User{}))
}

func TestMemberService_UpdateRejectsEmailAndLockedFields(t *testing.T) {
	env := setupTestEnv(t)
	member := testhelpers.CreateMember(t, env.db, "Steve Rogers", "111.222.3333", 1, false)

	_, err := env.members.Update(member.ID, MemberInput{"email": "cap@avengers.com", "name": "Cap"})
	fe, ok := apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, MsgEmailLocked, fe.Fields["email"])

	_, err = env.members.Update(member.ID, MemberInput{"member_score": 5, "present": 2, "name": "Cap"})
	fe, ok = apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Len(t, fe.Fields, 2)
	assert.True(t, fe.Has("member_score"))
	assert.True(t, fe.Has("present"))

	stored, err := env.members.Get(member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steve Rogers", stored.Name)
}

func TestMemberService_UpdateAppliesFields(t *testing.T) {
	env := setupTestEnv(t)
	member := testhelpers.CreateMember(t, env.db, "Steve Rogers", "111.222.3333", 1, false)
	testhelpers.CreateMember(t, env.db, "Bucky Barnes", "111.222.4444", 2, false)

	updated, err := env.members.Update(member.ID, MemberInput{
		"position":      "Rush Chair",
		"abroad_flag":   true,
		"temp_password": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rush Chair", updated.Position)
	assert.True(t, updated.AbroadFlag)
	assert.False(t, updated.TempPassword)

	_, err = env.members.Update(member.ID, MemberInput{"phone": "111.222.4444"})
	assert.True(t, apierrors.IsKind(err, apierrors.KindConflict))

	_, err = env.members.Update(9999, MemberInput{"name": "Nobody"})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberService_UpdateRejectsBlankPhone(t *testing.T) {
	env := setupTestEnv(t)
	member, err := env.members.Create(tonyStark())
	require.NoError(t, err)

	_, err = env.members.Update(member.ID, MemberInput{"phone": ""})
	fe, ok := apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindValidation, fe.Kind)
	assert.Equal(t, msgBlank, fe.Fields["phone"])

	_, _, err = env.members.Replace(member.ID, MemberInput{"phone": ""})
	assert.True(t, apierrors.IsKind(err, apierrors.KindValidation))

	stored, err := env.members.Get(member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.Phone, stored.Phone)
}

func TestMemberService_Replace(t *testing.T) {
	env := setupTestEnv(t)

	member, created, err := env.members.Replace(42, tonyStark())
	require.NoError(t, err)
	assert.True(t, created)

	member, created, err = env.members.Replace(member.ID, MemberInput{"position": "Treasurer"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Treasurer", member.Position)
}

func TestMemberService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	member := testhelpers.CreateMember(t, env.db, "Steve Rogers", "111.222.3333", 1, false)

	err := env.members.Delete(123)
	fe, ok := apierrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindNotFound, fe.Kind)
	assert.Equal(t, MsgUnknownPrimaryKey, fe.Fields["primary_key"])

	require.NoError(t, env.members.Delete(member.ID))
	assert.Equal(t, int64(0), countRows(t, env.db, &models.Member{}))
	assert.Equal(t, int64(0), countRows(t, env.db, &models.User{}))
}

func TestMemberService_List(t *testing.T) {
	env := setupTestEnv(t)
	testhelpers.CreateMember(t, env.db, "Steve Rogers", "111.222.3333", 1, false)
	testhelpers.CreateMember(t, env.db, "Bucky Barnes", "111.222.4444", 2, false)

	members, total, err := env.members.List(
		query.Spec{Orders: []query.Order{{Field: "rollnumber", Desc: true}}},
		utils.PaginationParams{Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, members, 2)
	assert.Equal(t, "Bucky Barnes", members[0].Name)
}
