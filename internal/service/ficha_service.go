package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/admision-uni/preinscripcion-api/internal/models"
)

// FichaVariant selects the footer of the printed registration form.
type FichaVariant string

const (
	// FichaOficina is the copy the applicant hands in at the admission office.
	FichaOficina FichaVariant = "oficina"
	// FichaCorreo is the copy sent by email, carrying the security code.
	FichaCorreo FichaVariant = "correo"
)

// FichaService renders the printable registration form for a submission.
type FichaService struct{}

// NewFichaService constructs the renderer.
func NewFichaService() *FichaService {
	return &FichaService{}
}

type fichaRow struct {
	label string
	value string
}

// Render produces the A4 registration form as a PDF document.
func (s *FichaService) Render(p *models.Preinscripcion, variant FichaVariant) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("ficha requires a submission")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr("FICHA DE PREINSCRIPCIÓN"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Documento N° %s", p.DocumentNumber)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	s.section(pdf, tr, "DATOS PERSONALES", []fichaRow{
		{"Apellidos y nombres", p.FullName()},
		{"Tipo de documento", p.DocumentType},
		{"Número de documento", p.DocumentNumber},
		{"Fecha de nacimiento", p.BirthDate.Format("02/01/2006")},
		{"Edad", fmt.Sprintf("%d años", p.Age(time.Now()))},
		{"Género", p.Gender},
		{"Estado civil", p.MaritalStatus},
		{"Celular personal", p.PersonalPhone},
		{"Celular del apoderado", p.GuardianPhone},
		{"Correo electrónico", p.Email},
	})

	s.section(pdf, tr, "LUGAR DE NACIMIENTO", []fichaRow{
		{"País", p.BirthCountry},
		{"Departamento", nameOrCode(p.BirthDepartmentName, p.BirthDepartment)},
		{"Provincia", nameOrCode(p.BirthProvinceName, p.BirthProvince)},
		{"Distrito", nameOrCode(p.BirthDistrictName, p.BirthDistrict)},
	})

	s.section(pdf, tr, "LUGAR DE RESIDENCIA", []fichaRow{
		{"País", p.ResidenceCountry},
		{"Departamento", nameOrCode(p.ResidenceDepartmentName, p.ResidenceDepartment)},
		{"Provincia", nameOrCode(p.ResidenceProvinceName, p.ResidenceProvince)},
		{"Distrito", nameOrCode(p.ResidenceDistrictName, p.ResidenceDistrict)},
		{"Dirección", p.Address},
	})

	s.section(pdf, tr, "ESTUDIOS SECUNDARIOS", []fichaRow{
		{"Colegio", p.SchoolName},
		{"Año de término", p.SchoolYearFinished},
		{"Departamento", nameOrCode(p.SchoolDepartmentName, p.SchoolDepartment)},
		{"Provincia", nameOrCode(p.SchoolProvinceName, p.SchoolProvince)},
		{"Distrito", nameOrCode(p.SchoolDistrictName, p.SchoolDistrict)},
	})

	s.section(pdf, tr, "INFORMACIÓN ADICIONAL", []fichaRow{
		{"Escuela profesional", p.Program},
		{"Estudia en otra universidad", p.InOtherUniversity},
		{"Identidad étnica", p.EthnicIdentity},
		{"Carné CONADIS", p.HasConadis},
		{"Lengua materna", p.MotherTongue},
		{"Estado", string(p.State)},
	})

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	switch variant {
	case FichaCorreo:
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Su código de seguridad es %s. Consérvelo: lo necesitará para consultar o modificar su preinscripción.", p.SecurityCode)), "", 1, "L", false, 0, "")
	default:
		pdf.CellFormat(0, 5, tr("Presente esta ficha junto con su documento de identidad en la oficina de admisión."), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generado el %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "L", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render ficha: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *FichaService) section(pdf *gofpdf.Fpdf, tr func(string) string, title string, rows []fichaRow) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 7, tr(title), "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(60, 6, tr(row.label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(120, 6, tr(strings.TrimSpace(row.value)), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func nameOrCode(name *string, code string) string {
	if name != nil && *name != "" {
		return *name
	}
	return code
}
