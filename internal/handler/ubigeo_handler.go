package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admision-uni/preinscripcion-api/internal/ubigeo"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
	"github.com/admision-uni/preinscripcion-api/pkg/response"
)

// UbigeoHandler serves the geographic dictionaries the registration form is
// built from. The files are static per deployment, so responses are long-lived
// cacheable.
type UbigeoHandler struct {
	resolver *ubigeo.FileResolver
}

// NewUbigeoHandler constructs UbigeoHandler.
func NewUbigeoHandler(resolver *ubigeo.FileResolver) *UbigeoHandler {
	return &UbigeoHandler{resolver: resolver}
}

// Departamentos serves the department dictionary.
func (h *UbigeoHandler) Departamentos(c *gin.Context) {
	h.serve(c, "departamentos")
}

// Provincias serves the province dictionary, keyed by department id.
func (h *UbigeoHandler) Provincias(c *gin.Context) {
	h.serve(c, "provincias")
}

// Distritos serves the district dictionary, keyed by province id.
func (h *UbigeoHandler) Distritos(c *gin.Context) {
	h.serve(c, "distritos")
}

func (h *UbigeoHandler) serve(c *gin.Context, name string) {
	data, ok := h.resolver.Raw(name)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "dictionary not loaded"))
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
