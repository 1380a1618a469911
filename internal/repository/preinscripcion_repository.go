package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/admision-uni/preinscripcion-api/internal/models"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
)

const pqUniqueViolation = "23505"

const preinscripcionColumns = `id, tiene_dni, tiene_certificado_estudios, cursara_5to_anio,
	tipo_documento, numero_documento, apellido_paterno, apellido_materno, nombres,
	celular_personal, celular_apoderado, correo_electronico, genero, estado_civil, fecha_nacimiento,
	pais_nacimiento, departamento_nacimiento, provincia_nacimiento, distrito_nacimiento, ubigeo_nacimiento,
	departamento_nacimiento_nombre, provincia_nacimiento_nombre, distrito_nacimiento_nombre,
	pais_residencia, departamento_residencia, provincia_residencia, distrito_residencia, ubigeo_residencia,
	departamento_residencia_nombre, provincia_residencia_nombre, distrito_residencia_nombre, direccion_completa,
	anio_termino_secundaria, pais_colegio, departamento_colegio, provincia_colegio, distrito_colegio,
	departamento_colegio_nombre, provincia_colegio_nombre, distrito_colegio_nombre, colegio_id, nombre_colegio,
	escuela_profesional, esta_en_otra_universidad, identidad_etnica, tiene_conadis, lengua_materna,
	codigo_seguridad, puede_modificar, estado, fecha_modificacion, created_at, updated_at, deleted_at`

// PreinscripcionRepository manages persistence for pre-registration records.
// Soft-deleted rows are excluded from every lookup unless the method name says
// otherwise.
type PreinscripcionRepository struct {
	db *sqlx.DB
}

// NewPreinscripcionRepository constructs a PreinscripcionRepository.
func NewPreinscripcionRepository(db *sqlx.DB) *PreinscripcionRepository {
	return &PreinscripcionRepository{db: db}
}

// Create inserts a new submission. Uniqueness lives in the database: a unique
// violation is translated to the typed conflict for whichever key collided so
// the service can decide whether to retry (security code) or surface it
// (document number).
func (r *PreinscripcionRepository) Create(ctx context.Context, p *models.Preinscripcion) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	const query = `INSERT INTO preinscripciones (
		tiene_dni, tiene_certificado_estudios, cursara_5to_anio,
		tipo_documento, numero_documento, apellido_paterno, apellido_materno, nombres,
		celular_personal, celular_apoderado, correo_electronico, genero, estado_civil, fecha_nacimiento,
		pais_nacimiento, departamento_nacimiento, provincia_nacimiento, distrito_nacimiento, ubigeo_nacimiento,
		departamento_nacimiento_nombre, provincia_nacimiento_nombre, distrito_nacimiento_nombre,
		pais_residencia, departamento_residencia, provincia_residencia, distrito_residencia, ubigeo_residencia,
		departamento_residencia_nombre, provincia_residencia_nombre, distrito_residencia_nombre, direccion_completa,
		anio_termino_secundaria, pais_colegio, departamento_colegio, provincia_colegio, distrito_colegio,
		departamento_colegio_nombre, provincia_colegio_nombre, distrito_colegio_nombre, colegio_id, nombre_colegio,
		escuela_profesional, esta_en_otra_universidad, identidad_etnica, tiene_conadis, lengua_materna,
		codigo_seguridad, puede_modificar, estado, created_at, updated_at
	) VALUES (
		:tiene_dni, :tiene_certificado_estudios, :cursara_5to_anio,
		:tipo_documento, :numero_documento, :apellido_paterno, :apellido_materno, :nombres,
		:celular_personal, :celular_apoderado, :correo_electronico, :genero, :estado_civil, :fecha_nacimiento,
		:pais_nacimiento, :departamento_nacimiento, :provincia_nacimiento, :distrito_nacimiento, :ubigeo_nacimiento,
		:departamento_nacimiento_nombre, :provincia_nacimiento_nombre, :distrito_nacimiento_nombre,
		:pais_residencia, :departamento_residencia, :provincia_residencia, :distrito_residencia, :ubigeo_residencia,
		:departamento_residencia_nombre, :provincia_residencia_nombre, :distrito_residencia_nombre, :direccion_completa,
		:anio_termino_secundaria, :pais_colegio, :departamento_colegio, :provincia_colegio, :distrito_colegio,
		:departamento_colegio_nombre, :provincia_colegio_nombre, :distrito_colegio_nombre, :colegio_id, :nombre_colegio,
		:escuela_profesional, :esta_en_otra_universidad, :identidad_etnica, :tiene_conadis, :lengua_materna,
		:codigo_seguridad, :puede_modificar, :estado, :created_at, :updated_at
	) RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, p)
	if err != nil {
		return translateUniqueViolation(err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&p.ID); err != nil {
			return fmt.Errorf("scan inserted id: %w", err)
		}
	}
	return rows.Err()
}

// FindByDocument fetches a live submission by its document number.
func (r *PreinscripcionRepository) FindByDocument(ctx context.Context, document string) (*models.Preinscripcion, error) {
	query := fmt.Sprintf(`SELECT %s FROM preinscripciones WHERE numero_documento = $1 AND deleted_at IS NULL`, preinscripcionColumns)
	var p models.Preinscripcion
	if err := r.db.GetContext(ctx, &p, query, document); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByDocumentAndCode fetches a live submission only when both secrets
// match. A wrong code and a missing document produce the same sql.ErrNoRows.
func (r *PreinscripcionRepository) FindByDocumentAndCode(ctx context.Context, document, code string) (*models.Preinscripcion, error) {
	query := fmt.Sprintf(`SELECT %s FROM preinscripciones WHERE numero_documento = $1 AND codigo_seguridad = $2 AND deleted_at IS NULL`, preinscripcionColumns)
	var p models.Preinscripcion
	if err := r.db.GetContext(ctx, &p, query, document, code); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByDocumentIncludingDeleted is the admin-only lookup that also sees
// soft-deleted rows.
func (r *PreinscripcionRepository) FindByDocumentIncludingDeleted(ctx context.Context, document string) (*models.Preinscripcion, error) {
	query := fmt.Sprintf(`SELECT %s FROM preinscripciones WHERE numero_documento = $1`, preinscripcionColumns)
	var p models.Preinscripcion
	if err := r.db.GetContext(ctx, &p, query, document); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns live submissions matching the provided filters.
func (r *PreinscripcionRepository) List(ctx context.Context, filter models.PreinscripcionFilter) ([]models.Preinscripcion, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("estado = $%d", len(args)+1))
		args = append(args, filter.State)
	}
	if filter.Program != "" {
		conditions = append(conditions, fmt.Sprintf("escuela_profesional = $%d", len(args)+1))
		args = append(args, filter.Program)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(numero_documento ILIKE $%d OR nombres ILIKE $%d OR apellido_paterno ILIKE $%d OR apellido_materno ILIKE $%d)", n, n, n, n))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.RecentDays > 0 {
		conditions = append(conditions, fmt.Sprintf("created_at >= NOW() - ($%d || ' days')::interval", len(args)+1))
		args = append(args, filter.RecentDays)
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 15
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM preinscripciones WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		preinscripcionColumns, where, size, offset)

	var items []models.Preinscripcion
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list preinscripciones: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM preinscripciones WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count preinscripciones: %w", err)
	}
	return items, total, nil
}

// Amend applies the one-time self-service edit. The field update and the
// modify-flag flip happen in a single statement guarded by the edit-window
// predicate, so a partially applied amendment is never observable and two
// concurrent amendments cannot both succeed. Zero rows affected means the
// window closed between read and write.
func (r *PreinscripcionRepository) Amend(ctx context.Context, p *models.Preinscripcion) error {
	p.UpdatedAt = time.Now().UTC()
	now := p.UpdatedAt
	p.ModifiedAt = &now

	const query = `UPDATE preinscripciones SET
		tiene_dni = :tiene_dni, tiene_certificado_estudios = :tiene_certificado_estudios, cursara_5to_anio = :cursara_5to_anio,
		tipo_documento = :tipo_documento, apellido_paterno = :apellido_paterno, apellido_materno = :apellido_materno, nombres = :nombres,
		celular_personal = :celular_personal, celular_apoderado = :celular_apoderado, correo_electronico = :correo_electronico,
		genero = :genero, estado_civil = :estado_civil, fecha_nacimiento = :fecha_nacimiento,
		pais_nacimiento = :pais_nacimiento, departamento_nacimiento = :departamento_nacimiento, provincia_nacimiento = :provincia_nacimiento,
		distrito_nacimiento = :distrito_nacimiento, ubigeo_nacimiento = :ubigeo_nacimiento,
		departamento_nacimiento_nombre = :departamento_nacimiento_nombre, provincia_nacimiento_nombre = :provincia_nacimiento_nombre,
		distrito_nacimiento_nombre = :distrito_nacimiento_nombre,
		pais_residencia = :pais_residencia, departamento_residencia = :departamento_residencia, provincia_residencia = :provincia_residencia,
		distrito_residencia = :distrito_residencia, ubigeo_residencia = :ubigeo_residencia,
		departamento_residencia_nombre = :departamento_residencia_nombre, provincia_residencia_nombre = :provincia_residencia_nombre,
		distrito_residencia_nombre = :distrito_residencia_nombre, direccion_completa = :direccion_completa,
		anio_termino_secundaria = :anio_termino_secundaria, pais_colegio = :pais_colegio, departamento_colegio = :departamento_colegio,
		provincia_colegio = :provincia_colegio, distrito_colegio = :distrito_colegio,
		departamento_colegio_nombre = :departamento_colegio_nombre, provincia_colegio_nombre = :provincia_colegio_nombre,
		distrito_colegio_nombre = :distrito_colegio_nombre, colegio_id = :colegio_id, nombre_colegio = :nombre_colegio,
		escuela_profesional = :escuela_profesional, esta_en_otra_universidad = :esta_en_otra_universidad,
		identidad_etnica = :identidad_etnica, tiene_conadis = :tiene_conadis, lengua_materna = :lengua_materna,
		puede_modificar = FALSE, fecha_modificacion = :fecha_modificacion, updated_at = :updated_at
	WHERE id = :id AND puede_modificar = TRUE AND estado = 'PENDIENTE' AND deleted_at IS NULL`

	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("amend preinscripcion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("amend preinscripcion: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	p.CanModify = false
	return nil
}

// UpdateState moves a submission between lifecycle states with an optimistic
// guard on the source state. Returns false when the row was not in the
// expected source state at write time.
func (r *PreinscripcionRepository) UpdateState(ctx context.Context, id int64, from, to models.State) (bool, error) {
	const query = `UPDATE preinscripciones SET estado = $1, updated_at = $2 WHERE id = $3 AND estado = $4 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update state: %w", err)
	}
	return affected > 0, nil
}

// SoftDelete marks a live submission as deleted.
func (r *PreinscripcionRepository) SoftDelete(ctx context.Context, document string) error {
	const query = `UPDATE preinscripciones SET deleted_at = $1, updated_at = $1 WHERE numero_documento = $2 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), document)
	if err != nil {
		return fmt.Errorf("soft delete preinscripcion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete preinscripcion: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Restore clears the soft-delete marker. Returns false when the record was
// not deleted.
func (r *PreinscripcionRepository) Restore(ctx context.Context, document string) (bool, error) {
	const query = `UPDATE preinscripciones SET deleted_at = NULL, updated_at = $1 WHERE numero_documento = $2 AND deleted_at IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), document)
	if err != nil {
		return false, fmt.Errorf("restore preinscripcion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("restore preinscripcion: %w", err)
	}
	return affected > 0, nil
}

// CodeExists checks security code uniqueness across every submission ever
// created, soft-deleted rows included.
func (r *PreinscripcionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM preinscripciones WHERE codigo_seguridad = $1 LIMIT 1", code)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check security code: %w", err)
	}
	return true, nil
}

// ExistsByDocument checks whether a live submission holds the document number.
func (r *PreinscripcionRepository) ExistsByDocument(ctx context.Context, document string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM preinscripciones WHERE numero_documento = $1 AND deleted_at IS NULL LIMIT 1", document)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check document: %w", err)
	}
	return true, nil
}

// Stats aggregates live submissions for the admin dashboard.
func (r *PreinscripcionRepository) Stats(ctx context.Context, recentDays int) (*models.Estadisticas, error) {
	stats := &models.Estadisticas{RecentDays: recentDays}

	if err := r.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM preinscripciones WHERE deleted_at IS NULL"); err != nil {
		return nil, fmt.Errorf("count total: %w", err)
	}

	const byState = `SELECT estado, COUNT(*) AS total FROM preinscripciones WHERE deleted_at IS NULL GROUP BY estado ORDER BY estado`
	if err := r.db.SelectContext(ctx, &stats.ByState, byState); err != nil {
		return nil, fmt.Errorf("count by state: %w", err)
	}

	const byProgram = `SELECT escuela_profesional, COUNT(*) AS total FROM preinscripciones WHERE deleted_at IS NULL GROUP BY escuela_profesional ORDER BY total DESC`
	if err := r.db.SelectContext(ctx, &stats.ByProgram, byProgram); err != nil {
		return nil, fmt.Errorf("count by program: %w", err)
	}

	const recent = `SELECT COUNT(*) FROM preinscripciones WHERE deleted_at IS NULL AND created_at >= NOW() - ($1 || ' days')::interval`
	if err := r.db.GetContext(ctx, &stats.Recent, recent, recentDays); err != nil {
		return nil, fmt.Errorf("count recent: %w", err)
	}

	return stats, nil
}

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		switch {
		case strings.Contains(pqErr.Constraint, "codigo_seguridad"):
			return appErrors.Wrap(err, appErrors.ErrDuplicateCode.Code, appErrors.ErrDuplicateCode.Status, appErrors.ErrDuplicateCode.Message)
		case strings.Contains(pqErr.Constraint, "numero_documento"):
			return appErrors.Wrap(err, appErrors.ErrDuplicateDocument.Code, appErrors.ErrDuplicateDocument.Status, appErrors.ErrDuplicateDocument.Message)
		}
	}
	return fmt.Errorf("create preinscripcion: %w", err)
}
