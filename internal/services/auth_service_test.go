package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/testhelpers"
)

func TestAuthService_Login(t *testing.T) {
	env := setupTestEnv(t)
	testhelpers.CreateUser(t, env.db, "existing", "existing@example.com", "supersecret", false)

	user, err := env.auth.Login(LoginInput{Username: " existing ", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, "existing", user.Username)

	_, err = env.auth.Login(LoginInput{Username: "existing", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(LoginInput{Username: "missing", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetCaller(t *testing.T) {
	env := setupTestEnv(t)
	member := testhelpers.CreateMember(t, env.db, "Steve Rogers", "111.222.3333", 1, true)
	admin := testhelpers.CreateUser(t, env.db, "admin", "admin@example.com", "supersecret", true)

	caller, err := env.auth.GetCaller(member.UserID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, caller.MemberID)
	assert.True(t, caller.IsStaff)
	assert.True(t, caller.IsSelf(member.ID))

	caller, err = env.auth.GetCaller(admin.ID)
	require.NoError(t, err)
	assert.Zero(t, caller.MemberID)
	assert.False(t, caller.IsSelf(0))

	_, err = env.auth.GetCaller(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_ChangePassword(t *testing.T) {
	env := setupTestEnv(t)
	member, err := env.members.Create(tonyStark())
	require.NoError(t, err)
	require.True(t, member.TempPassword)

	err = env.auth.ChangePassword(member.UserID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "newpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = env.auth.ChangePassword(member.UserID, ChangePasswordInput{CurrentPassword: "Stark1000", NewPassword: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	require.NoError(t, env.auth.ChangePassword(member.UserID, ChangePasswordInput{
		CurrentPassword: "Stark1000",
		NewPassword:     "newpassword",
	}))

	_, err = env.auth.Login(LoginInput{Username: "tony.stark", Password: "newpassword"})
	require.NoError(t, err)

	var stored models.Member
	require.NoError(t, env.db.First(&stored, member.ID).Error)
	assert.False(t, stored.TempPassword)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := setupTestEnv(t)

	created, err := env.auth.EnsureAdmin("", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = env.auth.EnsureAdmin("root", "", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	created, err = env.auth.EnsureAdmin("root", "", "supersecret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.auth.EnsureAdmin("root", "", "supersecret")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := env.auth.Login(LoginInput{Username: "root", Password: "supersecret"})
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.Equal(t, "root@localhost", user.Email)
}
