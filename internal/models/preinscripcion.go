package models

import "time"

// State is the lifecycle state of a pre-registration. Values are stored
// verbatim in the database and on the wire, matching the legacy contract.
type State string

const (
	StatePending  State = "PENDIENTE"
	StateEnrolled State = "INSCRITO"
	StateRejected State = "RECHAZADO"
)

// Transitions is the canonical transition table. PENDING is the sole initial
// state; both terminal states have no outgoing edges. Adding an intermediate
// state (a PAGADO step was floated at some point) is an edit here, not a code
// change elsewhere: every transition check reads this table.
var Transitions = map[State][]State{
	StatePending:  {StateEnrolled, StateRejected},
	StateEnrolled: {},
	StateRejected: {},
}

// ValidState reports whether s is a known lifecycle state.
func ValidState(s State) bool {
	_, ok := Transitions[s]
	return ok
}

// CanTransition reports whether the table allows moving from one state to another.
func CanTransition(from, to State) bool {
	for _, next := range Transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a state has no outgoing transitions.
func IsTerminal(s State) bool {
	return len(Transitions[s]) == 0
}

// Preinscripcion is a single pre-registration submission. Column and JSON
// names keep the Spanish identifiers of the legacy API so existing frontends
// keep working. The security code is never serialized.
type Preinscripcion struct {
	ID int64 `db:"id" json:"id"`

	// Sworn declarations (SI/NO).
	HasDNI              string `db:"tiene_dni" json:"tiene_dni"`
	HasStudyCertificate string `db:"tiene_certificado_estudios" json:"tiene_certificado_estudios"`
	InFifthYear         string `db:"cursara_5to_anio" json:"cursara_5to_anio"`

	// Personal data.
	DocumentType    string    `db:"tipo_documento" json:"tipo_documento"`
	DocumentNumber  string    `db:"numero_documento" json:"numero_documento"`
	PaternalSurname string    `db:"apellido_paterno" json:"apellido_paterno"`
	MaternalSurname string    `db:"apellido_materno" json:"apellido_materno"`
	GivenNames      string    `db:"nombres" json:"nombres"`
	PersonalPhone   string    `db:"celular_personal" json:"celular_personal"`
	GuardianPhone   string    `db:"celular_apoderado" json:"celular_apoderado"`
	Email           string    `db:"correo_electronico" json:"correo_electronico"`
	Gender          string    `db:"genero" json:"genero"`
	MaritalStatus   string    `db:"estado_civil" json:"estado_civil"`
	BirthDate       time.Time `db:"fecha_nacimiento" json:"fecha_nacimiento"`

	// Birth place: fixed-width numeric codes (2/4/6 digits) plus names cached
	// at write time. A name is present only if its code resolved.
	BirthCountry        string  `db:"pais_nacimiento" json:"pais_nacimiento"`
	BirthDepartment     string  `db:"departamento_nacimiento" json:"departamento_nacimiento"`
	BirthProvince       string  `db:"provincia_nacimiento" json:"provincia_nacimiento"`
	BirthDistrict       string  `db:"distrito_nacimiento" json:"distrito_nacimiento"`
	BirthUbigeo         string  `db:"ubigeo_nacimiento" json:"ubigeo_nacimiento"`
	BirthDepartmentName *string `db:"departamento_nacimiento_nombre" json:"departamento_nacimiento_nombre,omitempty"`
	BirthProvinceName   *string `db:"provincia_nacimiento_nombre" json:"provincia_nacimiento_nombre,omitempty"`
	BirthDistrictName   *string `db:"distrito_nacimiento_nombre" json:"distrito_nacimiento_nombre,omitempty"`

	// Residence.
	ResidenceCountry        string  `db:"pais_residencia" json:"pais_residencia"`
	ResidenceDepartment     string  `db:"departamento_residencia" json:"departamento_residencia"`
	ResidenceProvince       string  `db:"provincia_residencia" json:"provincia_residencia"`
	ResidenceDistrict       string  `db:"distrito_residencia" json:"distrito_residencia"`
	ResidenceUbigeo         string  `db:"ubigeo_residencia" json:"ubigeo_residencia"`
	ResidenceDepartmentName *string `db:"departamento_residencia_nombre" json:"departamento_residencia_nombre,omitempty"`
	ResidenceProvinceName   *string `db:"provincia_residencia_nombre" json:"provincia_residencia_nombre,omitempty"`
	ResidenceDistrictName   *string `db:"distrito_residencia_nombre" json:"distrito_residencia_nombre,omitempty"`
	Address                 string  `db:"direccion_completa" json:"direccion_completa"`

	// Secondary school.
	SchoolYearFinished   string  `db:"anio_termino_secundaria" json:"anio_termino_secundaria"`
	SchoolCountry        string  `db:"pais_colegio" json:"pais_colegio"`
	SchoolDepartment     string  `db:"departamento_colegio" json:"departamento_colegio"`
	SchoolProvince       string  `db:"provincia_colegio" json:"provincia_colegio"`
	SchoolDistrict       string  `db:"distrito_colegio" json:"distrito_colegio"`
	SchoolDepartmentName *string `db:"departamento_colegio_nombre" json:"departamento_colegio_nombre,omitempty"`
	SchoolProvinceName   *string `db:"provincia_colegio_nombre" json:"provincia_colegio_nombre,omitempty"`
	SchoolDistrictName   *string `db:"distrito_colegio_nombre" json:"distrito_colegio_nombre,omitempty"`
	SchoolID             *string `db:"colegio_id" json:"colegio_id,omitempty"`
	SchoolName           string  `db:"nombre_colegio" json:"nombre_colegio"`

	// Additional information.
	Program           string `db:"escuela_profesional" json:"escuela_profesional"`
	InOtherUniversity string `db:"esta_en_otra_universidad" json:"esta_en_otra_universidad"`
	EthnicIdentity    string `db:"identidad_etnica" json:"identidad_etnica"`
	HasConadis        string `db:"tiene_conadis" json:"tiene_conadis"`
	MotherTongue      string `db:"lengua_materna" json:"lengua_materna"`

	// Control fields. SecurityCode is generated once at creation and never
	// reissued; CanModify flips to false on the single self-service edit.
	SecurityCode string     `db:"codigo_seguridad" json:"-"`
	CanModify    bool       `db:"puede_modificar" json:"puede_modificar"`
	State        State      `db:"estado" json:"estado"`
	ModifiedAt   *time.Time `db:"fecha_modificacion" json:"fecha_modificacion,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

// FullName joins given names and surnames the way the printed form shows them.
func (p *Preinscripcion) FullName() string {
	return p.GivenNames + " " + p.PaternalSurname + " " + p.MaternalSurname
}

// Age is derived from the birth date at the given reference time.
func (p *Preinscripcion) Age(now time.Time) int {
	years := now.Year() - p.BirthDate.Year()
	anniversary := p.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Editable reports whether the one-time self-service edit is still available.
func (p *Preinscripcion) Editable() bool {
	return p.CanModify && p.State == StatePending
}

// IsDeleted reports whether the record is soft-deleted.
func (p *Preinscripcion) IsDeleted() bool {
	return p.DeletedAt != nil
}

// PreinscripcionFilter encapsulates allowed search parameters for the admin listing.
type PreinscripcionFilter struct {
	State      State
	Program    string
	Search     string
	RecentDays int
	Page       int
	PageSize   int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// StateCount pairs a lifecycle state with its number of live submissions.
type StateCount struct {
	State State `db:"estado" json:"estado"`
	Count int   `db:"total" json:"total"`
}

// ProgramCount pairs a professional school with its number of live submissions.
type ProgramCount struct {
	Program string `db:"escuela_profesional" json:"escuela_profesional"`
	Count   int    `db:"total" json:"total"`
}

// Estadisticas is the aggregate snapshot served to administrators.
type Estadisticas struct {
	Total      int            `json:"total"`
	ByState    []StateCount   `json:"por_estado"`
	ByProgram  []ProgramCount `json:"por_escuela"`
	RecentDays int            `json:"dias_recientes"`
	Recent     int            `json:"recientes"`
}
