package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/dto"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/services"
	"github.com/wooglin/roster-api/internal/utils"
)

// EventHandler serves events and guest check-ins.
type EventHandler struct {
	eventService *services.EventService
	location     *time.Location
}

func NewEventHandler(eventService *services.EventService, loc *time.Location) *EventHandler {
	return &EventHandler{eventService: eventService, location: loc}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	events, total, err := h.eventService.List(params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventListResponse(events, h.location, params, total))
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var input services.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return
	}

	event, err := h.eventService.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEventDTO(*event, h.location))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEventDTO(*event, h.location))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": services.MsgEventDeleted})
}

// CheckIn records a guest arriving at the event.
func (h *EventHandler) CheckIn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input services.CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apierrors.BadRequest(c, msgInvalidBody)
		return
	}

	attendance, err := h.eventService.CheckIn(id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttendanceDTO(*attendance, h.location))
}

// ListCheckIns returns the attendance of an event in arrival order.
func (h *EventHandler) ListCheckIns(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	attendances, err := h.eventService.Attendance(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAttendanceDTOs(attendances, h.location))
}

// RaiseHelp flags that a guest needs a sober bro.
func (h *EventHandler) RaiseHelp(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	guestID, ok := parseID(c, "guest_id")
	if !ok {
		return
	}

	attendance, err := h.eventService.RaiseHelp(id, guestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAttendanceDTO(*attendance, h.location))
}
