package dto

// PreinscripcionPayload carries the applicant-supplied fields for creation and
// for the one-time self-service amendment. Control fields (estado,
// puede_modificar, codigo_seguridad) deliberately have no counterpart here:
// nothing a caller sends can reach them.
type PreinscripcionPayload struct {
	// Sworn declarations.
	HasDNI              string `json:"tiene_dni" validate:"required,oneof=SI NO"`
	HasStudyCertificate string `json:"tiene_certificado_estudios" validate:"required,oneof=SI NO"`
	InFifthYear         string `json:"cursara_5to_anio" validate:"required,oneof=SI NO"`

	// Personal data.
	DocumentType    string `json:"tipo_documento" validate:"required,oneof=DNI CARNE_EXTRANJERIA"`
	DocumentNumber  string `json:"numero_documento" validate:"required,max=12"`
	PaternalSurname string `json:"apellido_paterno" validate:"required,max=100"`
	MaternalSurname string `json:"apellido_materno" validate:"required,max=100"`
	GivenNames      string `json:"nombres" validate:"required,max=150"`
	PersonalPhone   string `json:"celular_personal" validate:"required,len=9,numeric,startswith=9"`
	GuardianPhone   string `json:"celular_apoderado" validate:"required,len=9,numeric,startswith=9"`
	Email           string `json:"correo_electronico" validate:"required,email,max=150"`
	Gender          string `json:"genero" validate:"required,oneof=MASCULINO FEMENINO OTRO"`
	MaritalStatus   string `json:"estado_civil" validate:"required,oneof=SOLTERO CASADO CONVIVIENTE DIVORCIADO VIUDO"`
	BirthDate       string `json:"fecha_nacimiento" validate:"required,datetime=2006-01-02"`

	// Birth place codes (2/4/6 fixed-width digits).
	BirthCountry    string `json:"pais_nacimiento" validate:"omitempty,max=50"`
	BirthDepartment string `json:"departamento_nacimiento" validate:"required,len=2,numeric"`
	BirthProvince   string `json:"provincia_nacimiento" validate:"required,len=4,numeric"`
	BirthDistrict   string `json:"distrito_nacimiento" validate:"required,len=6,numeric"`
	BirthUbigeo     string `json:"ubigeo_nacimiento" validate:"required,len=6,numeric"`

	// Residence.
	ResidenceCountry    string `json:"pais_residencia" validate:"omitempty,max=50"`
	ResidenceDepartment string `json:"departamento_residencia" validate:"required,len=2,numeric"`
	ResidenceProvince   string `json:"provincia_residencia" validate:"required,len=4,numeric"`
	ResidenceDistrict   string `json:"distrito_residencia" validate:"required,len=6,numeric"`
	ResidenceUbigeo     string `json:"ubigeo_residencia" validate:"required,len=6,numeric"`
	Address             string `json:"direccion_completa" validate:"required,max=500"`

	// Secondary school.
	SchoolYearFinished string  `json:"anio_termino_secundaria" validate:"required,len=4,numeric"`
	SchoolCountry      string  `json:"pais_colegio" validate:"required,max=50"`
	SchoolDepartment   string  `json:"departamento_colegio" validate:"required,len=2,numeric"`
	SchoolProvince     string  `json:"provincia_colegio" validate:"required,len=4,numeric"`
	SchoolDistrict     string  `json:"distrito_colegio" validate:"required,len=6,numeric"`
	SchoolID           *string `json:"colegio_id" validate:"omitempty,max=30"`
	SchoolName         string  `json:"nombre_colegio" validate:"required,max=255"`

	// Additional information.
	Program           string `json:"escuela_profesional" validate:"required,max=150"`
	InOtherUniversity string `json:"esta_en_otra_universidad" validate:"required,oneof=SI NO"`
	EthnicIdentity    string `json:"identidad_etnica" validate:"required,max=100"`
	HasConadis        string `json:"tiene_conadis" validate:"required,oneof=SI NO"`
	MotherTongue      string `json:"lengua_materna" validate:"required,max=50"`
}

// AmendRequest is the self-service update payload: the full field set plus the
// security code received at creation time.
type AmendRequest struct {
	SecurityCode string `json:"codigo_seguridad" validate:"required,len=5"`
	PreinscripcionPayload
}

// ConsultarRequest authenticates a self-service lookup.
type ConsultarRequest struct {
	DocumentNumber string `json:"numero_documento" validate:"required,max=12"`
	SecurityCode   string `json:"codigo_seguridad" validate:"required,len=5"`
}

// VerificarDocumentoRequest probes whether a document number is already taken.
type VerificarDocumentoRequest struct {
	DocumentType   string `json:"tipo_documento" validate:"required,oneof=DNI CARNE_EXTRANJERIA"`
	DocumentNumber string `json:"numero_documento" validate:"required,max=12"`
}

// TransitionRequest is the admin payload driving a lifecycle transition.
type TransitionRequest struct {
	State string `json:"estado" validate:"required"`
}

// CreateResponse returns the one-time security code to the applicant. This is
// the only place the code is ever serialized.
type CreateResponse struct {
	Message      string `json:"message"`
	SecurityCode string `json:"codigo_seguridad"`
}

// VerificarDocumentoResponse reports document availability.
type VerificarDocumentoResponse struct {
	Exists  bool   `json:"existe"`
	Message string `json:"message"`
}
