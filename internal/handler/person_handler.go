package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	"github.com/noah-isme/tutor-roster-api/internal/middleware"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
	"github.com/noah-isme/tutor-roster-api/pkg/response"
)

type personService interface {
	List(ctx context.Context, filter models.PersonFilter) ([]dto.PersonSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.PersonView, bool, error)
	Create(ctx context.Context, req dto.CreatePersonRequest) (*dto.PersonView, error)
	Update(ctx context.Context, id string, req dto.UpdatePersonRequest) (*dto.PersonView, error)
	Delete(ctx context.Context, id string) error
}

// PersonHandler exposes roster membership endpoints.
type PersonHandler struct {
	people personService
}

// NewPersonHandler constructs PersonHandler.
func NewPersonHandler(people personService) *PersonHandler {
	return &PersonHandler{people: people}
}

// List godoc
// @Summary List people on the roster
// @Tags People
// @Produce json
// @Param search query string false "Search by name, email or phone"
// @Param role query string false "student or tutor"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "name, join_date or created_at"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /people [get]
func (h *PersonHandler) List(c *gin.Context) {
	var filter models.PersonFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Role = models.PersonRole(strings.ToLower(strings.TrimSpace(c.Query("role"))))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	people, pagination, err := h.people.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, people, pagination)
}

// Get godoc
// @Summary Get a person with both ledgers
// @Tags People
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /people/{id} [get]
func (h *PersonHandler) Get(c *gin.Context) {
	person, cacheHit, err := h.people.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, person, nil, middleware.ResponseMeta(c))
}

// Create godoc
// @Summary Add a student or tutor
// @Tags People
// @Accept json
// @Produce json
// @Param payload body dto.CreatePersonRequest true "Person payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /people [post]
func (h *PersonHandler) Create(c *gin.Context) {
	var req dto.CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.people.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, person)
}

// Update godoc
// @Summary Edit contact details
// @Tags People
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param payload body dto.UpdatePersonRequest true "Contact payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /people/{id} [put]
func (h *PersonHandler) Update(c *gin.Context) {
	var req dto.UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	person, err := h.people.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// Delete godoc
// @Summary Remove a person and their ledgers
// @Tags People
// @Param id path string true "Person ID"
// @Success 204
// @Security BearerAuth
// @Router /people/{id} [delete]
func (h *PersonHandler) Delete(c *gin.Context) {
	if err := h.people.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
