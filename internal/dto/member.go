package dto

import (
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/policy"
	"github.com/wooglin/roster-api/internal/utils"
)

// MemberListResponse is a page of role-shaped member records.
type MemberListResponse struct {
	Members    []map[string]any         `json:"members"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// MemberRecord flattens a member into its field map.
func MemberRecord(m models.Member) map[string]any {
	return map[string]any{
		policy.FieldID:           m.ID,
		policy.FieldName:         m.Name,
		policy.FieldFirstName:    m.FirstName,
		policy.FieldLastName:     m.LastName,
		policy.FieldLegalName:    m.LegalName,
		policy.FieldAddress:      m.Address,
		policy.FieldEmail:        m.Email,
		policy.FieldPhone:        m.Phone,
		policy.FieldRollnumber:   m.Rollnumber,
		policy.FieldMemberScore:  m.MemberScore,
		policy.FieldInactiveFlag: m.InactiveFlag,
		policy.FieldAbroadFlag:   m.AbroadFlag,
		policy.FieldTempPassword: m.TempPassword,
		policy.FieldPresent:      m.Present,
		policy.FieldPosition:     m.Position,
	}
}

// ToMemberDTO returns the fields of m that role may read.
func ToMemberDTO(role policy.Role, m models.Member) map[string]any {
	return policy.Shape(role, policy.EntityMember, MemberRecord(m))
}

// ToMemberListResponse shapes every member of a page.
func ToMemberListResponse(role policy.Role, members []models.Member, params utils.PaginationParams, total int64) MemberListResponse {
	shaped := make([]map[string]any, len(members))
	for i, m := range members {
		shaped[i] = ToMemberDTO(role, m)
	}
	return MemberListResponse{
		Members:    shaped,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
