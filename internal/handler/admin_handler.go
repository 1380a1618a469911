package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/admision-uni/preinscripcion-api/internal/dto"
	"github.com/admision-uni/preinscripcion-api/internal/middleware"
	"github.com/admision-uni/preinscripcion-api/internal/models"
	"github.com/admision-uni/preinscripcion-api/internal/service"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
	"github.com/admision-uni/preinscripcion-api/pkg/response"
)

// AdminSubmissions is the slice of the submission service the administrative
// endpoints need.
type AdminSubmissions interface {
	List(ctx context.Context, filter models.PreinscripcionFilter) ([]models.Preinscripcion, *models.Pagination, error)
	LookupByDocument(ctx context.Context, document string) (*models.Preinscripcion, error)
	Transition(ctx context.Context, document string, target models.State, actor *models.AdminClaims) (*models.Preinscripcion, error)
	SoftDelete(ctx context.Context, document string, actor *models.AdminClaims) error
	Restore(ctx context.Context, document string, actor *models.AdminClaims) (*models.Preinscripcion, error)
	Estadisticas(ctx context.Context) (*models.Estadisticas, error)
}

// AdminHandler exposes the administrative endpoints behind JWT auth.
type AdminHandler struct {
	submissions AdminSubmissions
	metrics     *service.MetricsService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(submissions AdminSubmissions, metrics *service.MetricsService) *AdminHandler {
	return &AdminHandler{submissions: submissions, metrics: metrics}
}

// List returns live submissions filtered and paginated.
func (h *AdminHandler) List(c *gin.Context) {
	var filter models.PreinscripcionFilter
	filter.State = models.State(strings.ToUpper(strings.TrimSpace(c.Query("estado"))))
	if filter.State != "" && !models.ValidState(filter.State) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown estado filter"))
		return
	}
	filter.Program = strings.TrimSpace(c.Query("escuela"))
	filter.Search = strings.TrimSpace(c.Query("buscar"))
	if recent, err := strconv.Atoi(c.DefaultQuery("recientes", "0")); err == nil && recent > 0 {
		filter.RecentDays = recent
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "15")); err == nil {
		filter.PageSize = size
	}

	items, pagination, err := h.submissions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get returns a single live submission by document number.
func (h *AdminHandler) Get(c *gin.Context) {
	p, err := h.submissions.LookupByDocument(c.Request.Context(), c.Param("documento"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Transition moves a submission to the requested lifecycle state.
func (h *AdminHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	target := models.State(strings.ToUpper(strings.TrimSpace(req.State)))
	p, err := h.submissions.Transition(c.Request.Context(), c.Param("documento"), target, middleware.CurrentAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountTransition(string(target))

	response.JSON(c, http.StatusOK, p, nil)
}

// Delete soft-deletes a submission.
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.submissions.SoftDelete(c.Request.Context(), c.Param("documento"), middleware.CurrentAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Restore clears the soft-delete marker on a submission.
func (h *AdminHandler) Restore(c *gin.Context) {
	p, err := h.submissions.Restore(c.Request.Context(), c.Param("documento"), middleware.CurrentAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Estadisticas returns the aggregate snapshot.
func (h *AdminHandler) Estadisticas(c *gin.Context) {
	stats, err := h.submissions.Estadisticas(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
