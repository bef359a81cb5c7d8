package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/dto"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/services"
	"go.uber.org/zap"
)

// ShiftHandler serves sober bro shifts and their sign-ups.
type ShiftHandler struct {
	shiftService *services.ShiftService
	logger       *zap.Logger
}

func NewShiftHandler(shiftService *services.ShiftService, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService, logger: logger}
}

type assignmentRequest struct {
	Member *uint64 `json:"member"`
}

// ListShifts returns the shifts of the next month.
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	shifts, err := h.shiftService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shifts": dto.ToShiftDTOs(shifts, h.shiftService.Location())})
}

// UpcomingShifts returns the shifts beginning in the next 15 minutes with
// their sober bros.
func (h *ShiftHandler) UpcomingShifts(c *gin.Context) {
	shifts, err := h.shiftService.Upcoming()
	if err != nil {
		h.logger.Error("Failed to query upcoming shifts", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	if len(shifts) == 0 {
		c.JSON(http.StatusOK, gin.H{"no_shifts": services.MsgNoUpcomingShifts})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shifts": dto.ToUpcomingShiftDTOs(shifts, h.shiftService.Location())})
}

func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var input services.ShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return
	}

	shift, err := h.shiftService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToShiftDTO(*shift, h.shiftService.Location()))
}

func (h *ShiftHandler) GetShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	shift, err := h.shiftService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftDTO(*shift, h.shiftService.Location()))
}

// ReplaceShift handles PUT. A missing shift is created.
func (h *ShiftHandler) ReplaceShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input services.ShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return
	}

	shift, created, err := h.shiftService.Replace(id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToShiftDTO(*shift, h.shiftService.Location()))
}

// UpdateShift handles PATCH.
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input services.ShiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return
	}

	shift, err := h.shiftService.Update(id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftDTO(*shift, h.shiftService.Location()))
}

func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.shiftService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": services.MsgShiftDeleted})
}

// ListBrothers returns the trimmed sign-ups of a shift.
func (h *ShiftHandler) ListBrothers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	assignments, err := h.shiftService.ListAssignments(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAssignmentDTOs(assignments))
}

// AddBrother signs a member up for a shift.
func (h *ShiftHandler) AddBrother(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	memberID, ok := bindMemberID(c)
	if !ok {
		return
	}

	assignment, err := h.shiftService.AddAssignment(who, id, memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAssignmentDTO(*assignment))
}

// RemoveBrother drops a member from a shift. The member id may come from
// the body or the member query parameter.
func (h *ShiftHandler) RemoveBrother(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	memberID, ok := bindMemberID(c)
	if !ok {
		return
	}

	msg, err := h.shiftService.RemoveAssignment(who, id, memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// bindMemberID reads the member id from the member query parameter or the
// JSON body. A missing id is left nil for the service to reject.
func bindMemberID(c *gin.Context) (*uint64, bool) {
	if raw := c.Query("member"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.Respond(c, apierrors.Validation("member", services.MsgMemberIDRequired))
			return nil, false
		}
		return &id, true
	}

	if c.Request.ContentLength == 0 {
		return nil, true
	}

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			apierrors.Respond(c, apierrors.Validation("member", services.MsgMemberIDRequired))
			return nil, false
		}
		apierrors.BadRequest(c, msgInvalidBody)
		return nil, false
	}
	return req.Member, true
}
