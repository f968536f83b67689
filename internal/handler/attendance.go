package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/model"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

// AttendanceHandler serves check-out and feedback submission.
type AttendanceHandler struct {
	Attendances *service.AttendanceService
}

func NewAttendanceHandler(at *service.AttendanceService) *AttendanceHandler {
	if at == nil {
		panic("nil service passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Attendances: at}
}

// ----- DTOs -----

type feedbackReq struct {
	Rating  uint8  `json:"rating"`
	Comment string `json:"comment"`
}

type feedbackPart struct {
	Rating      uint8     `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type attendanceResp struct {
	ID             uint64        `json:"id"`
	RegistrationID uint64        `json:"registration_id"`
	EventID        uint64        `json:"event_id"`
	Status         string        `json:"status"`
	CheckOutTime   *time.Time    `json:"check_out_time,omitempty"`
	Feedback       *feedbackPart `json:"feedback,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func toAttendanceResp(att *model.Attendance) attendanceResp {
	resp := attendanceResp{
		ID:             att.ID,
		RegistrationID: att.RegistrationID,
		EventID:        att.EventID,
		Status:         string(att.Status),
		CheckOutTime:   att.CheckOutTime,
		CreatedAt:      att.CreatedAt,
		UpdatedAt:      att.UpdatedAt,
	}
	if att.Feedback != nil {
		resp.Feedback = &feedbackPart{
			Rating:      att.Feedback.Rating,
			Comment:     att.Feedback.Comment,
			SubmittedAt: att.Feedback.SubmittedAt,
		}
	}
	return resp
}

// CheckOut completes an in-progress attendance.
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendance id"})
	}
	att, err := h.Attendances.CheckOut(c.Request().Context(), id, uid, getRole(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toAttendanceResp(att))
}

// SubmitFeedback records the caller's one-shot rating for their completed
// attendance.
func (h *AttendanceHandler) SubmitFeedback(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendance id"})
	}
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	att, err := h.Attendances.SubmitFeedback(c.Request().Context(), id, uid, req.Rating, req.Comment)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toAttendanceResp(att))
}

// Get returns one attendance.
func (h *AttendanceHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendance id"})
	}
	att, err := h.Attendances.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toAttendanceResp(att))
}
