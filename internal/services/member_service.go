package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wooglin/roster-api/internal/constants"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/policy"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/utils"
	"github.com/wooglin/roster-api/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("member not found")

// Member error messages, keyed by the field they are reported under.
const (
	MsgPhoneRequired     = "A phone number is required for a member account to be created."
	MsgDuplicatePhone    = "A member account with that phone number already exists."
	MsgDuplicateEmail    = "I'm sorry, it looks like there's already a user with that email."
	MsgEmailLocked       = "Email is a field that must be modified by an administrator manually."
	MsgMissingPrimaryKey = "The request given does not have an included primary key."
	MsgUnknownPrimaryKey = "The specified primary key does not exist."
	MsgMemberDeleted     = "The delete operation has completed successfully. If this has been done in error, contact your Administrator."

	msgRequired   = "This field is required."
	msgBlank      = "This field may not be blank."
	msgNotString  = "Not a valid string."
	msgNotInteger = "A valid integer is required."
	msgNotBoolean = "Must be a valid boolean."
)

// requiredOnCreate are the member fields a create request must carry.
// Phone is checked separately for its own message.
var requiredOnCreate = []string{
	policy.FieldName, policy.FieldFirstName, policy.FieldLastName,
	policy.FieldLegalName, policy.FieldAddress, policy.FieldEmail,
	policy.FieldRollnumber,
}

var maxLengths = map[string]int{
	policy.FieldName:      127,
	policy.FieldFirstName: 127,
	policy.FieldLastName:  127,
	policy.FieldLegalName: 127,
	policy.FieldAddress:   511,
	policy.FieldEmail:     127,
	policy.FieldPhone:     15,
	policy.FieldPosition:  255,
}

// MemberInput is a decoded JSON request body. Field presence matters, so it
// stays a map until validated.
type MemberInput map[string]any

func (in MemberInput) has(field string) bool {
	_, ok := in[field]
	return ok
}

func (in MemberInput) str(field string) string {
	s, _ := in[field].(string)
	return s
}

// MemberService validates and persists roster members.
type MemberService struct {
	memberRepo repository.MemberRepository
	userRepo   repository.UserRepository
	email      validation.EmailValidator

	// HashCost is the bcrypt cost for temporary passwords.
	HashCost int
}

// NewMemberService creates a new MemberService.
func NewMemberService(memberRepo repository.MemberRepository, userRepo repository.UserRepository, email validation.EmailValidator) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		email:      email,
		HashCost:   bcrypt.DefaultCost,
	}
}

// Create validates input and creates the member with its paired user. The
// calculated fields are always member_score=-1, present=0 and
// temp_password=true.
func (s *MemberService) Create(input MemberInput) (*models.Member, error) {
	if err := s.checkFormats(input); err != nil {
		return nil, err
	}

	member := &models.Member{Position: constants.DefaultPosition}
	_, errs := applyMemberFields(member, input, writableOnCreate(), true)

	for _, f := range requiredOnCreate {
		if _, bad := errs[f]; bad {
			continue
		}
		if !input.has(f) {
			errs[f] = msgRequired
		}
	}
	if _, bad := errs[policy.FieldPhone]; !bad && member.Phone == "" {
		errs[policy.FieldPhone] = MsgPhoneRequired
	}
	if len(errs) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, errs)
	}

	member.MemberScore = -1
	member.Present = 0
	member.TempPassword = true
	member.Email = strings.TrimSpace(member.Email)

	if taken, err := s.memberRepo.PhoneExists(member.Phone, 0); err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	} else if taken {
		return nil, apierrors.Conflict(policy.FieldPhone, MsgDuplicatePhone)
	}

	if taken, err := s.userRepo.EmailExists(member.Email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, apierrors.Conflict(policy.FieldEmail, MsgDuplicateEmail)
	}

	username := utils.DeriveUsername(member.Name)
	if taken, err := s.userRepo.UsernameExists(username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, apierrors.Conflict(policy.FieldName, usernameTaken(username))
	}

	password := utils.DeriveTempPassword(member.Name, member.LastName, member.Rollnumber)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{Username: username, Email: member.Email, PasswordHash: string(hash)}
	if err := s.memberRepo.CreateWithUser(user, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(member, username)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return member, nil
}

// Update applies a partial update. Email and the locked calculated fields
// reject the whole request.
func (s *MemberService) Update(id uint64, input MemberInput) (*models.Member, error) {
	if input.has(policy.FieldEmail) {
		return nil, apierrors.Validation(policy.FieldEmail, MsgEmailLocked)
	}

	locked := map[string]string{}
	for _, f := range policy.PatchLockedFields {
		if input.has(f) {
			locked[f] = f + " is a calculated field and cannot be updated via PATCH."
		}
	}
	if len(locked) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, locked)
	}

	member, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if err := s.checkFormats(input); err != nil {
		return nil, err
	}

	fields, errs := applyMemberFields(member, input, patchable(), false)
	if len(errs) > 0 {
		return nil, apierrors.NewFieldErrors(apierrors.KindValidation, errs)
	}

	if _, ok := fields[policy.FieldPhone]; ok {
		taken, err := s.memberRepo.PhoneExists(member.Phone, member.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone: %w", err)
		}
		if taken {
			return nil, apierrors.Conflict(policy.FieldPhone, MsgDuplicatePhone)
		}
	}

	if err := s.memberRepo.Update(member, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflict(policy.FieldPhone, MsgDuplicatePhone)
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return s.Get(id)
}

// Replace handles PUT: a missing member is created from input, an existing
// one is partially updated. created reports which happened.
func (s *MemberService) Replace(id uint64, input MemberInput) (member *models.Member, created bool, err error) {
	_, err = s.Get(id)
	switch {
	case errors.Is(err, ErrMemberNotFound):
		member, err = s.Create(input)
		return member, err == nil, err
	case err != nil:
		return nil, false, err
	}

	member, err = s.Update(id, input)
	return member, false, err
}

// Get retrieves a member by ID.
func (s *MemberService) Get(id uint64) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

// List retrieves a page of members matching spec.
func (s *MemberService) List(spec query.Spec, params utils.PaginationParams) ([]models.Member, int64, error) {
	members, total, err := s.memberRepo.List(spec, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

// Delete removes a member and its paired user.
func (s *MemberService) Delete(id uint64) error {
	if err := s.memberRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierrors.NotFoundField("primary_key", MsgUnknownPrimaryKey)
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// checkFormats validates non-empty email and phone values.
func (s *MemberService) checkFormats(input MemberInput) error {
	if email := input.str(policy.FieldEmail); email != "" {
		if err := s.email.Validate(strings.TrimSpace(email)); err != nil {
			return apierrors.Validation(policy.FieldEmail, validation.MsgInvalidEmail)
		}
	}
	if phone := input.str(policy.FieldPhone); phone != "" {
		if err := validation.ValidatePhone(phone); err != nil {
			return apierrors.Validation(policy.FieldPhone, validation.MsgInvalidPhone)
		}
	}
	return nil
}

// duplicateError works out which unique constraint a racing insert hit.
func (s *MemberService) duplicateError(member *models.Member, username string) error {
	if taken, err := s.memberRepo.PhoneExists(member.Phone, 0); err == nil && taken {
		return apierrors.Conflict(policy.FieldPhone, MsgDuplicatePhone)
	}
	if taken, err := s.userRepo.EmailExists(member.Email); err == nil && taken {
		return apierrors.Conflict(policy.FieldEmail, MsgDuplicateEmail)
	}
	return apierrors.Conflict(policy.FieldName, usernameTaken(username))
}

func usernameTaken(username string) string {
	return fmt.Sprintf("A user account with the username %s already exists.", username)
}

func writableOnCreate() []string {
	return policy.WritableFields(policy.RoleAdmin, policy.EntityMember)
}

// patchable is every admin-writable field plus the calculated fields that
// are not locked.
func patchable() []string {
	fields := policy.WritableFields(policy.RoleAdmin, policy.EntityMember)
	for _, f := range policy.CalculatedFields {
		if !contains(policy.PatchLockedFields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// applyMemberFields copies the allowed fields present in input onto member.
// It returns the column values that changed hands and per-field messages
// for values of the wrong type. On create a blank phone is left unset so
// the caller reports it as required.
func applyMemberFields(member *models.Member, input MemberInput, allowed []string, creating bool) (map[string]any, map[string]string) {
	fields := map[string]any{}
	errs := map[string]string{}

	for _, f := range allowed {
		raw, ok := input[f]
		if !ok {
			continue
		}

		switch f {
		case policy.FieldRollnumber:
			n, ok := toInt(raw)
			if !ok {
				errs[f] = msgNotInteger
				continue
			}
			member.Rollnumber = n
			fields[f] = n

		case policy.FieldInactiveFlag, policy.FieldAbroadFlag, policy.FieldTempPassword:
			b, ok := toBool(raw)
			if !ok {
				errs[f] = msgNotBoolean
				continue
			}
			setMemberBool(member, f, b)
			fields[f] = b

		default:
			str, ok := raw.(string)
			if !ok {
				errs[f] = msgNotString
				continue
			}
			if str == "" {
				if !(creating && f == policy.FieldPhone) {
					errs[f] = msgBlank
				}
				continue
			}
			if max, ok := maxLengths[f]; ok && len([]rune(str)) > max {
				errs[f] = fmt.Sprintf("Ensure this field has no more than %d characters.", max)
				continue
			}
			setMemberString(member, f, str)
			fields[f] = str
		}
	}

	return fields, errs
}

func setMemberString(m *models.Member, field, value string) {
	switch field {
	case policy.FieldName:
		m.Name = value
	case policy.FieldFirstName:
		m.FirstName = value
	case policy.FieldLastName:
		m.LastName = value
	case policy.FieldLegalName:
		m.LegalName = value
	case policy.FieldAddress:
		m.Address = value
	case policy.FieldEmail:
		m.Email = value
	case policy.FieldPhone:
		m.Phone = value
	case policy.FieldPosition:
		m.Position = value
	}
}

func setMemberBool(m *models.Member, field string, value bool) {
	switch field {
	case policy.FieldInactiveFlag:
		m.InactiveFlag = value
	case policy.FieldAbroadFlag:
		m.AbroadFlag = value
	case policy.FieldTempPassword:
		m.TempPassword = value
	}
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	return false, false
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
