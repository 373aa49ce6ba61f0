package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
	"github.com/noah-isme/tutor-roster-api/pkg/response"
)

type ledgerService interface {
	Attendance(ctx context.Context, id string) (*dto.AttendanceView, error)
	MarkAttendance(ctx context.Context, id string, req dto.MarkAttendanceRequest) (*dto.AttendanceView, error)
	UnmarkAttendance(ctx context.Context, id string, week string) (*dto.AttendanceView, error)
	Payments(ctx context.Context, id string) (*dto.PaymentView, error)
	Pay(ctx context.Context, id string, req dto.PaymentRequest) (*dto.PaymentView, error)
	Unpay(ctx context.Context, id string, month string) (*dto.PaymentView, error)
	DeletePayment(ctx context.Context, id string, month string) (*dto.PaymentView, error)
	Overdue(ctx context.Context) ([]dto.OverdueItem, error)
}

// LedgerHandler exposes attendance and payment commands.
type LedgerHandler struct {
	ledgers ledgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledgers ledgerService) *LedgerHandler {
	return &LedgerHandler{ledgers: ledgers}
}

// Attendance godoc
// @Summary Attended weeks of a student
// @Tags Attendance
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Person is a tutor"
// @Security BearerAuth
// @Router /people/{id}/attendance [get]
func (h *LedgerHandler) Attendance(c *gin.Context) {
	view, err := h.ledgers.Attendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// MarkAttendance godoc
// @Summary Mark a week as attended
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body dto.MarkAttendanceRequest true "Week marker, e.g. 2024-03-W2"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Already marked"
// @Failure 422 {object} response.Envelope "Outside the attendance window"
// @Security BearerAuth
// @Router /people/{id}/attendance [post]
func (h *LedgerHandler) MarkAttendance(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.ledgers.MarkAttendance(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// UnmarkAttendance godoc
// @Summary Remove attendance for a week
// @Tags Attendance
// @Produce json
// @Param id path string true "Person ID"
// @Param week path string true "Week marker, e.g. 2024-03-W2"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Not marked"
// @Security BearerAuth
// @Router /people/{id}/attendance/{week} [delete]
func (h *LedgerHandler) UnmarkAttendance(c *gin.Context) {
	view, err := h.ledgers.UnmarkAttendance(c.Request.Context(), c.Param("id"), c.Param("week"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Payments godoc
// @Summary Payment ledger and status
// @Tags Payments
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /people/{id}/payments [get]
func (h *LedgerHandler) Payments(c *gin.Context) {
	view, err := h.ledgers.Payments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Pay godoc
// @Summary Mark a month as paid
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body dto.PaymentRequest true "Month, e.g. 2024-03"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Already paid"
// @Failure 422 {object} response.Envelope "Outside the payment window"
// @Security BearerAuth
// @Router /people/{id}/payments [post]
func (h *LedgerHandler) Pay(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.ledgers.Pay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Unpay godoc
// @Summary Mark a paid month as unpaid
// @Tags Payments
// @Produce json
// @Param id path string true "Person ID"
// @Param month path string true "Month, e.g. 2024-03"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Already unpaid"
// @Security BearerAuth
// @Router /people/{id}/payments/{month}/unpay [post]
func (h *LedgerHandler) Unpay(c *gin.Context) {
	view, err := h.ledgers.Unpay(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// DeletePayment godoc
// @Summary Delete a recorded payment
// @Tags Payments
// @Produce json
// @Param id path string true "Person ID"
// @Param month path string true "Month, e.g. 2024-03"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "No payment recorded"
// @Security BearerAuth
// @Router /people/{id}/payments/{month} [delete]
func (h *LedgerHandler) DeletePayment(c *gin.Context) {
	view, err := h.ledgers.DeletePayment(c.Request.Context(), c.Param("id"), c.Param("month"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Overdue godoc
// @Summary People with overdue payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments/overdue [get]
func (h *LedgerHandler) Overdue(c *gin.Context) {
	items, err := h.ledgers.Overdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, map[string]interface{}{"count": len(items)})
}
