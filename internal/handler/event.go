package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// EventHandler serves the event-scoped routes: proposal creation, reads,
// cancellation requests and the admin shortcuts.
type EventHandler struct {
	Events        *service.EventService
	Approvals     *service.ApprovalService
	Registrations *service.RegistrationService
}

func NewEventHandler(ev *service.EventService, ap *service.ApprovalService, rg *service.RegistrationService) *EventHandler {
	if ev == nil || ap == nil || rg == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{Events: ev, Approvals: ap, Registrations: rg}
}

// ----- DTOs -----

type createEventReq struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	MaxParticipants uint32 `json:"max_participants"`
}

type cancelReq struct {
	Reason string `json:"reason"`
}

type eventResp struct {
	ID                  uint64     `json:"id"`
	OwnerID             uint64     `json:"owner_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	MaxParticipants     uint32     `json:"max_participants"`
	CurrentParticipants uint32     `json:"current_participants"`
	Status              string     `json:"status"`
	AverageRating       float64    `json:"average_rating"`
	RatingCount         uint32     `json:"rating_count"`
	CancelReason        *string    `json:"cancel_reason,omitempty"`
	CancelledBy         *uint64    `json:"cancelled_by,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toEventResp(ev *model.Event) eventResp {
	return eventResp{
		ID:                  ev.ID,
		OwnerID:             ev.OwnerID,
		Title:               ev.Title,
		Description:         ev.Description,
		MaxParticipants:     ev.MaxParticipants,
		CurrentParticipants: ev.CurrentParticipants,
		Status:              string(ev.Status),
		AverageRating:       ev.AverageRating,
		RatingCount:         ev.RatingCount,
		CancelReason:        ev.CancelReason,
		CancelledBy:         ev.CancelledBy,
		CancelledAt:         ev.CancelledAt,
		CreatedAt:           ev.CreatedAt,
		UpdatedAt:           ev.UpdatedAt,
	}
}

// Create proposes a new event.  The event starts PENDING; the response
// includes the approval request an admin has to resolve.
func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, approval, err := h.Events.Create(c.Request().Context(), uid, service.CreateEventInput{
		Title:           req.Title,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"event":    toEventResp(ev),
		"approval": toApprovalResp(approval),
	})
}

// Get returns one event.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// List returns events, optionally filtered by ?status=.
func (h *EventHandler) List(c echo.Context) error {
	status := model.EventStatus(c.QueryParam("status"))
	evs, err := h.Events.List(c.Request().Context(), status)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]eventResp, 0, len(evs))
	for i := range evs {
		out = append(out, toEventResp(&evs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// RequestCancel opens a cancellation request for an approved event.
func (h *EventHandler) RequestCancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req cancelReq
	_ = c.Bind(&req)
	approval, err := h.Approvals.Submit(c.Request().Context(), uid, getRole(c),
		service.EventCancellation{EventID: id, Reason: req.Reason})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toApprovalResp(approval))
}

// ForceCancel cancels an event immediately.  Admin only; the route guard
// enforces the role, the service writes the audit trail.
func (h *EventHandler) ForceCancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req cancelReq
	_ = c.Bind(&req)
	ev, err := h.Approvals.ForceCancel(c.Request().Context(), id, uid, req.Reason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// Reconcile recomputes the participant counter from registration rows.
func (h *EventHandler) Reconcile(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	n, err := h.Registrations.Reconcile(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "current_participants": n})
}
