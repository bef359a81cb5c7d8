package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/dto"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/query"
	"github.com/wooglin/roster-api/internal/services"
	"github.com/wooglin/roster-api/internal/utils"
)

// MemberHandler serves the roster.
type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// ListMembers returns a page of members, filtered and ordered by the query
// string and shaped for the caller's role.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	spec, err := query.Parse(c.Request.URL.Query(), who.Role())
	if err != nil {
		respondError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	members, total, err := h.memberService.List(spec, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(who.Role(), members, params, total))
}

// CreateMember adds a member and its login account.
func (h *MemberHandler) CreateMember(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	input, ok := bindMemberInput(c)
	if !ok {
		return
	}

	member, err := h.memberService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(who.Role(), *member))
}

// GetMember returns one member shaped for the caller's role.
func (h *MemberHandler) GetMember(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	member, err := h.memberService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(who.Role(), *member))
}

// ReplaceMember handles PUT. A missing member is created.
func (h *MemberHandler) ReplaceMember(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	input, ok := bindMemberInput(c)
	if !ok {
		return
	}

	member, created, err := h.memberService.Replace(id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToMemberDTO(who.Role(), *member))
}

// UpdateMember handles PATCH.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	input, ok := bindMemberInput(c)
	if !ok {
		return
	}

	member, err := h.memberService.Update(id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(who.Role(), *member))
}

// DeleteMember removes a member and its login account. Without an id in
// the path the request is rejected.
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	if c.Param("id") == "" {
		apierrors.Respond(c, apierrors.Validation("primary_key", services.MsgMissingPrimaryKey))
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.memberService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"delete": services.MsgMemberDeleted})
}

func bindMemberInput(c *gin.Context) (services.MemberInput, bool) {
	var input services.MemberInput
	if err := c.ShouldBindJSON(&input); err != nil || input == nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return nil, false
	}
	return input, true
}
