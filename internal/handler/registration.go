package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// RegistrationHandler serves signup, admission and registration
// cancellation.
type RegistrationHandler struct {
	Registrations *service.RegistrationService
}

func NewRegistrationHandler(rg *service.RegistrationService) *RegistrationHandler {
	if rg == nil {
		panic("nil service passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Registrations: rg}
}

// ----- DTOs -----

type rejectReq struct {
	Reason string `json:"reason"`
}

type registrationResp struct {
	ID          uint64    `json:"id"`
	VolunteerID uint64    `json:"volunteer_id"`
	EventID     uint64    `json:"event_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRegistrationResp(reg *model.Registration) registrationResp {
	return registrationResp{
		ID:          reg.ID,
		VolunteerID: reg.VolunteerID,
		EventID:     reg.EventID,
		Status:      string(reg.Status),
		CreatedAt:   reg.CreatedAt,
		UpdatedAt:   reg.UpdatedAt,
	}
}

// Register signs the caller up for an event.
func (h *RegistrationHandler) Register(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	reg, err := h.Registrations.Register(c.Request().Context(), uid, eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toRegistrationResp(reg))
}

// Admit promotes a waitlisted registration within capacity.
func (h *RegistrationHandler) Admit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Registrations.Admit(c.Request().Context(), id, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResp(reg))
}

// Reject declines a registration on the event side.
func (h *RegistrationHandler) Reject(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	var req rejectReq
	_ = c.Bind(&req)
	reg, err := h.Registrations.Reject(c.Request().Context(), id, uid, getRole(c), req.Reason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResp(reg))
}

// Cancel ends a registration; repeat calls succeed with the same end
// state.
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	reg, err := h.Registrations.Cancel(c.Request().Context(), id, uid, getRole(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toRegistrationResp(reg))
}

// ListByEvent returns the event's registrations, waitlist order first.
func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	regs, err := h.Registrations.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]registrationResp, 0, len(regs))
	for i := range regs {
		out = append(out, toRegistrationResp(&regs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"registrations": out})
}
