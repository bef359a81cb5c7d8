package dto

import "github.com/wooglin/roster-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// CurrentUserDTO is the response of GET /auth/me
type CurrentUserDTO struct {
	UserDTO
	MemberID     *uint64 `json:"member_id"`
	TempPassword bool    `json:"temp_password"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsStaff:  user.IsStaff,
	}
}

// ToCurrentUserDTO adds the caller's member record, when there is one.
func ToCurrentUserDTO(user models.User, member *models.Member) CurrentUserDTO {
	out := CurrentUserDTO{UserDTO: ToUserDTO(user)}
	if member != nil {
		id := member.ID
		out.MemberID = &id
		out.TempPassword = member.TempPassword
	}
	return out
}
