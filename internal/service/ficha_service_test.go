package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admision-uni/preinscripcion-api/internal/models"
)

func fichaFixture() *models.Preinscripcion {
	dep := "AMAZONAS"
	return &models.Preinscripcion{
		DocumentType:        "DNI",
		DocumentNumber:      "71234567",
		GivenNames:          "MARIA ELENA",
		PaternalSurname:     "QUISPE",
		MaternalSurname:     "MAMANI",
		BirthDate:           time.Date(2007, 3, 15, 0, 0, 0, 0, time.UTC),
		Gender:              "FEMENINO",
		MaritalStatus:       "SOLTERO",
		PersonalPhone:       "987654321",
		GuardianPhone:       "912345678",
		Email:               "maria@example.com",
		BirthCountry:        "PERÚ",
		BirthDepartment:     "01",
		BirthDepartmentName: &dep,
		ResidenceCountry:    "PERÚ",
		Address:             "JR. AMAZONAS 123",
		SchoolName:          "I.E. SAN JUAN",
		SchoolYearFinished:  "2024",
		Program:             "INGENIERIA DE SISTEMAS",
		InOtherUniversity:   "NO",
		EthnicIdentity:      "MESTIZO",
		HasConadis:          "NO",
		MotherTongue:        "CASTELLANO",
		SecurityCode:        "XY9ZQ",
		State:               models.StatePending,
	}
}

func TestFichaServiceRendersPDF(t *testing.T) {
	svc := NewFichaService()

	pdf, err := svc.Render(fichaFixture(), FichaOficina)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestFichaServiceRendersBothVariants(t *testing.T) {
	svc := NewFichaService()

	office, err := svc.Render(fichaFixture(), FichaOficina)
	require.NoError(t, err)
	mail, err := svc.Render(fichaFixture(), FichaCorreo)
	require.NoError(t, err)

	// The variants differ only in their footer text.
	assert.NotEqual(t, office, mail)
}

func TestFichaServiceNilSubmission(t *testing.T) {
	svc := NewFichaService()

	_, err := svc.Render(nil, FichaOficina)
	require.Error(t, err)
}
