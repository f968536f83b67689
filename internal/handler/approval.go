package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// ApprovalHandler serves the approval request queue: promotion submissions,
// the admin review listing and resolution.
type ApprovalHandler struct {
	Approvals *service.ApprovalService
}

func NewApprovalHandler(ap *service.ApprovalService) *ApprovalHandler {
	if ap == nil {
		panic("nil service passed to NewApprovalHandler")
	}
	return &ApprovalHandler{Approvals: ap}
}

// ----- DTOs -----

type promotionReq struct {
	TargetRole string `json:"target_role"` // ORGANIZER | ADMIN
}

type resolveReq struct {
	Decision string `json:"decision"` // approve | reject
	Note     string `json:"note"`
}

type approvalResp struct {
	ID          uint64     `json:"id"`
	Type        string     `json:"type"`
	EventID     *uint64    `json:"event_id,omitempty"`
	RequesterID uint64     `json:"requester_id"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	ReviewerID  *uint64    `json:"reviewer_id,omitempty"`
	ReviewNote  string     `json:"review_note,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toApprovalResp(req *model.ApprovalRequest) approvalResp {
	return approvalResp{
		ID:          req.ID,
		Type:        string(req.Type),
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Reason:      req.Reason,
		Status:      string(req.Status),
		ReviewerID:  req.ReviewerID,
		ReviewNote:  req.ReviewNote,
		ResolvedAt:  req.ResolvedAt,
		CreatedAt:   req.CreatedAt,
	}
}

// SubmitPromotion opens a role promotion request for the caller.
func (h *ApprovalHandler) SubmitPromotion(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req promotionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.TargetRole))
	approval, err := h.Approvals.Submit(c.Request().Context(), uid, getRole(c),
		service.RolePromotion{TargetRole: role})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toApprovalResp(approval))
}

// Get returns one request.
func (h *ApprovalHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	req, err := h.Approvals.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toApprovalResp(req))
}

// List returns requests, optionally filtered by ?status= (defaults to the
// pending review queue).
func (h *ApprovalHandler) List(c echo.Context) error {
	status := model.ApprovalStatus(c.QueryParam("status"))
	if c.QueryParam("status") == "" {
		status = model.ApprovalPending
	}
	reqs, err := h.Approvals.List(c.Request().Context(), status)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]approvalResp, 0, len(reqs))
	for i := range reqs {
		out = append(out, toApprovalResp(&reqs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"approvals": out})
}

// Resolve applies an admin's decision to a pending request.
func (h *ApprovalHandler) Resolve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req resolveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	decision := service.Decision(strings.ToLower(strings.TrimSpace(req.Decision)))
	resolved, err := h.Approvals.Resolve(c.Request().Context(), id, decision, uid, req.Note)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toApprovalResp(resolved))
}
