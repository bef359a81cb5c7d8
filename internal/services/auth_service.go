package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wooglin/roster-api/internal/constants"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/policy"
	"github.com/wooglin/roster-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// Caller is the authenticated identity behind a request. MemberID is zero
// for users without a roster entry, such as the bootstrap admin.
type Caller struct {
	UserID   uint64
	Username string
	IsStaff  bool
	MemberID uint64
}

// Role maps the caller's staff flag to a policy role.
func (c Caller) Role() policy.Role {
	return policy.RoleFor(c.IsStaff)
}

// IsSelf reports whether memberID is the caller's own member record.
func (c Caller) IsSelf(memberID uint64) bool {
	return c.MemberID != 0 && c.MemberID == memberID
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, memberRepo repository.MemberRepository) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// GetCaller resolves a session's user id into a Caller.
func (s *AuthService) GetCaller(userID uint64) (*Caller, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	caller := &Caller{UserID: user.ID, Username: user.Username, IsStaff: user.IsStaff}

	member, err := s.memberRepo.FindByUserID(user.ID)
	switch {
	case err == nil:
		caller.MemberID = member.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find member: %w", err)
	}

	return caller, nil
}

// CurrentUser returns the user and, when the user has a roster entry, its
// member record.
func (s *AuthService) CurrentUser(userID uint64) (*models.User, *models.Member, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, nil, err
	}

	member, err := s.memberRepo.FindByUserID(user.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user, nil, nil
	case err != nil:
		return nil, nil, fmt.Errorf("failed to find member: %w", err)
	}
	return user, member, nil
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the caller's password and clears temp_password on
// their member record.
func (s *AuthService) ChangePassword(userID uint64, input ChangePasswordInput) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap staff account when it does not exist.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(username, email, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}

	taken, err := s.userRepo.UsernameExists(username)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return false, nil
	}

	if len(password) < constants.MinPasswordLength {
		return false, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, ErrFailedToHashPassword
	}

	if email == "" {
		email = username + "@localhost"
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash), IsStaff: true}
	if err := s.userRepo.Create(user); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
