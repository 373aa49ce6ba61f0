package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-roster-api/internal/service"
	"github.com/noah-isme/tutor-roster-api/pkg/response"
)

type exportService interface {
	PaymentRoster(ctx context.Context, format string) (*service.ExportFile, error)
}

// ExportHandler serves downloadable roster reports.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// PaymentRoster godoc
// @Summary Download the payment roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /exports/payments [get]
func (h *ExportHandler) PaymentRoster(c *gin.Context) {
	file, err := h.exports.PaymentRoster(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
