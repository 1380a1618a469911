package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admision-uni/preinscripcion-api/internal/dto"
	"github.com/admision-uni/preinscripcion-api/internal/models"
	"github.com/admision-uni/preinscripcion-api/internal/service"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
)

type selfServiceMock struct {
	registerResp *models.Preinscripcion
	registerErr  error
	verifyResp   *models.Preinscripcion
	verifyErr    error
	amendResp    *models.Preinscripcion
	amendErr     error
	exists       bool
}

func (m *selfServiceMock) Register(ctx context.Context, req dto.PreinscripcionPayload) (*models.Preinscripcion, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return m.registerResp, nil
}

func (m *selfServiceMock) VerifyAndFetch(ctx context.Context, document, code string) (*models.Preinscripcion, error) {
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return m.verifyResp, nil
}

func (m *selfServiceMock) Amend(ctx context.Context, document string, req dto.AmendRequest) (*models.Preinscripcion, error) {
	if m.amendErr != nil {
		return nil, m.amendErr
	}
	return m.amendResp, nil
}

func (m *selfServiceMock) CheckDocument(ctx context.Context, req dto.VerificarDocumentoRequest) (bool, error) {
	return m.exists, nil
}

type fichaRendererMock struct {
	pdf []byte
	err error
}

func (m *fichaRendererMock) Render(p *models.Preinscripcion, variant service.FichaVariant) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pdf, nil
}

func jsonRequest(t *testing.T, method, target string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPreinscripcionHandlerCreateReturnsSecurityCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	created := &models.Preinscripcion{DocumentNumber: "71234567", SecurityCode: "XY9ZQ", State: models.StatePending}
	handler := NewPreinscripcionHandler(&selfServiceMock{registerResp: created}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/preinscripciones", dto.PreinscripcionPayload{})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data dto.CreateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "XY9ZQ", envelope.Data.SecurityCode)
}

func TestPreinscripcionHandlerCreateDuplicateDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{registerErr: appErrors.ErrDuplicateDocument}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/preinscripciones", dto.PreinscripcionPayload{})

	handler.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_DOCUMENT")
}

func TestPreinscripcionHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/preinscripciones", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreinscripcionHandlerConsultarHidesSecurityCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	record := &models.Preinscripcion{DocumentNumber: "71234567", SecurityCode: "XY9ZQ", State: models.StatePending}
	handler := NewPreinscripcionHandler(&selfServiceMock{verifyResp: record}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/preinscripciones/consultar", dto.ConsultarRequest{
		DocumentNumber: "71234567",
		SecurityCode:   "XY9ZQ",
	})

	handler.Consultar(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "71234567")
	assert.NotContains(t, w.Body.String(), "XY9ZQ")
}

func TestPreinscripcionHandlerConsultarNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{verifyErr: appErrors.ErrNotFound}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/preinscripciones/consultar", dto.ConsultarRequest{
		DocumentNumber: "00000000",
		SecurityCode:   "AAAAA",
	})

	handler.Consultar(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreinscripcionHandlerAmendForbiddenAfterFirstEdit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{amendErr: appErrors.ErrAlreadyModified}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/preinscripciones/71234567", dto.AmendRequest{SecurityCode: "XY9ZQ"})
	c.Params = gin.Params{{Key: "documento", Value: "71234567"}}

	handler.Amend(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ALREADY_MODIFIED")
}

func TestPreinscripcionHandlerVerificarDocumento(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{exists: true}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPost, "/preinscripciones/verificar-documento", dto.VerificarDocumentoRequest{
		DocumentType:   "DNI",
		DocumentNumber: "71234567",
	})

	handler.VerificarDocumento(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.VerificarDocumentoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Exists)
}

func TestPreinscripcionHandlerFichaRequiresCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/preinscripciones/71234567/ficha", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "documento", Value: "71234567"}}

	handler.Ficha(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreinscripcionHandlerFichaServesPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	record := &models.Preinscripcion{DocumentNumber: "71234567", SecurityCode: "XY9ZQ"}
	handler := NewPreinscripcionHandler(
		&selfServiceMock{verifyResp: record},
		&fichaRendererMock{pdf: []byte("%PDF-1.3")},
		nil,
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/preinscripciones/71234567/ficha?codigo=XY9ZQ&tipo=correo", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "documento", Value: "71234567"}}

	handler.Ficha(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ficha_71234567.pdf")
}

func TestPreinscripcionHandlerFichaRejectsUnknownVariant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPreinscripcionHandler(&selfServiceMock{}, &fichaRendererMock{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/preinscripciones/71234567/ficha?codigo=XY9ZQ&tipo=fax", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "documento", Value: "71234567"}}

	handler.Ficha(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
