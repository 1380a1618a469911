package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admision-uni/preinscripcion-api/internal/dto"
	"github.com/admision-uni/preinscripcion-api/internal/models"
	"github.com/admision-uni/preinscripcion-api/internal/service"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
	"github.com/admision-uni/preinscripcion-api/pkg/response"
)

// SelfServiceSubmissions is the slice of the submission service the public
// endpoints need.
type SelfServiceSubmissions interface {
	Register(ctx context.Context, req dto.PreinscripcionPayload) (*models.Preinscripcion, error)
	VerifyAndFetch(ctx context.Context, document, code string) (*models.Preinscripcion, error)
	Amend(ctx context.Context, document string, req dto.AmendRequest) (*models.Preinscripcion, error)
	CheckDocument(ctx context.Context, req dto.VerificarDocumentoRequest) (bool, error)
}

// FichaRenderer renders the printable registration form.
type FichaRenderer interface {
	Render(p *models.Preinscripcion, variant service.FichaVariant) ([]byte, error)
}

// PreinscripcionHandler exposes the public self-service endpoints. Every
// operation that returns applicant data requires the document number together
// with the security code.
type PreinscripcionHandler struct {
	submissions SelfServiceSubmissions
	fichas      FichaRenderer
	metrics     *service.MetricsService
}

// NewPreinscripcionHandler constructs PreinscripcionHandler.
func NewPreinscripcionHandler(submissions SelfServiceSubmissions, fichas FichaRenderer, metrics *service.MetricsService) *PreinscripcionHandler {
	return &PreinscripcionHandler{submissions: submissions, fichas: fichas, metrics: metrics}
}

// Create registers a new submission and returns the one-time security code.
func (h *PreinscripcionHandler) Create(c *gin.Context) {
	var req dto.PreinscripcionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	p, err := h.submissions.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountRegistration()

	response.Created(c, dto.CreateResponse{
		Message:      "Preinscripción registrada correctamente",
		SecurityCode: p.SecurityCode,
	})
}

// Consultar returns a submission after verifying document number and security code.
func (h *PreinscripcionHandler) Consultar(c *gin.Context) {
	var req dto.ConsultarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	p, err := h.submissions.VerifyAndFetch(c.Request.Context(), req.DocumentNumber, req.SecurityCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// Amend applies the one-time self-service edit.
func (h *PreinscripcionHandler) Amend(c *gin.Context) {
	var req dto.AmendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	p, err := h.submissions.Amend(c.Request.Context(), c.Param("documento"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// VerificarDocumento reports whether a document number is already registered.
func (h *PreinscripcionHandler) VerificarDocumento(c *gin.Context) {
	var req dto.VerificarDocumentoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	exists, err := h.submissions.CheckDocument(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.VerificarDocumentoResponse{Exists: exists, Message: "Documento disponible"}
	if exists {
		resp.Message = "El documento ya se encuentra registrado"
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Ficha renders the printable registration form. The caller authenticates with
// the security code; the "tipo" query selects the office or email variant.
func (h *PreinscripcionHandler) Ficha(c *gin.Context) {
	code := c.Query("codigo")
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "codigo is required"))
		return
	}

	variant := service.FichaOficina
	if tipo := c.Query("tipo"); tipo != "" {
		switch service.FichaVariant(tipo) {
		case service.FichaOficina, service.FichaCorreo:
			variant = service.FichaVariant(tipo)
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown ficha type %q", tipo)))
			return
		}
	}

	p, err := h.submissions.VerifyAndFetch(c.Request.Context(), c.Param("documento"), code)
	if err != nil {
		response.Error(c, err)
		return
	}

	pdf, err := h.fichas.Render(p, variant)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ficha"))
		return
	}
	h.metrics.CountFicha(string(variant))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ficha_%s.pdf", p.DocumentNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
