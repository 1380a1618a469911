package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/admision-uni/preinscripcion-api/internal/dto"
	"github.com/admision-uni/preinscripcion-api/internal/models"
	"github.com/admision-uni/preinscripcion-api/internal/repository"
	"github.com/admision-uni/preinscripcion-api/internal/ubigeo"
	appErrors "github.com/admision-uni/preinscripcion-api/pkg/errors"
)

const (
	estadisticasCacheKey = "preinscripciones:estadisticas"
	recentWindowDays     = 7
)

type preinscripcionStore interface {
	Create(ctx context.Context, p *models.Preinscripcion) error
	FindByDocument(ctx context.Context, document string) (*models.Preinscripcion, error)
	FindByDocumentAndCode(ctx context.Context, document, code string) (*models.Preinscripcion, error)
	FindByDocumentIncludingDeleted(ctx context.Context, document string) (*models.Preinscripcion, error)
	List(ctx context.Context, filter models.PreinscripcionFilter) ([]models.Preinscripcion, int, error)
	Amend(ctx context.Context, p *models.Preinscripcion) error
	UpdateState(ctx context.Context, id int64, from, to models.State) (bool, error)
	SoftDelete(ctx context.Context, document string) error
	Restore(ctx context.Context, document string) (bool, error)
	ExistsByDocument(ctx context.Context, document string) (bool, error)
	Stats(ctx context.Context, recentDays int) (*models.Estadisticas, error)
}

type codeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type auditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

type welcomeNotifier interface {
	Welcome(n WelcomeNotification)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string)
}

type cacheMetrics interface {
	RecordCacheLookup(hit bool)
}

/// PreinscripcionService owns the submission lifecycle: intake, the one-time
// self-service amendment, admin-driven state transitions and soft
// deletion/restore. All state changes flow through here.
type PreinscripcionService struct {
	repo      preinscripcionStore
	codes     codeGenerator
	resolver  ubigeo.Resolver
	audit     auditRecorder
	notifier  welcomeNotifier
	cache     statsCache
	cacheTTL  time.Duration
	metrics   cacheMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// PreinscripcionServiceOption configures the service.
type PreinscripcionServiceOption func(*PreinscripcionService)

// WithStatsCache enables caching of the statistics snapshot.
func WithStatsCache(cache statsCache, ttl time.Duration) PreinscripcionServiceOption {
	return func(s *PreinscripcionService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithCacheMetrics reports statistics cache hits and misses.
func WithCacheMetrics(m cacheMetrics) PreinscripcionServiceOption {
	return func(s *PreinscripcionService) {
		s.metrics = m
	}
}

// WithWelcomeNotifier sets the welcome notification sink.
func WithWelcomeNotifier(n welcomeNotifier) PreinscripcionServiceOption {
	return func(s *PreinscripcionService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewPreinscripcionService constructs the service.
func NewPreinscripcionService(
	repo preinscripcionStore,
	codes codeGenerator,
	resolver ubigeo.Resolver,
	audit auditRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	opts ...PreinscripcionServiceOption,
) *PreinscripcionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &PreinscripcionService{
		repo:      repo,
		codes:     codes,
		resolver:  resolver,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cacheTTL:  5 * time.Minute,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Register creates a new submission in the PENDING state, generates its
// security code and caches the resolved geographic names. A security-code
// collision on insert is retried once with a fresh code; a document collision
// surfaces immediately.
func (s *PreinscripcionService) Register(ctx context.Context, req dto.PreinscripcionPayload) (*models.Preinscripcion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}

	p := &models.Preinscripcion{
		DocumentNumber: req.DocumentNumber,
		BirthDate:      birthDate,
		State:          models.StatePending,
		CanModify:      true,
	}
	s.applyPayload(p, req)

	for attempt := 0; attempt < 2; attempt++ {
		code, err := s.codes.Generate(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate security code")
		}
		p.SecurityCode = code

		err = s.repo.Create(ctx, p)
		if err == nil {
			break
		}
		if appErrors.Is(err, appErrors.ErrDuplicateCode) && attempt == 0 {
			// Lost the race on the code despite the pre-check. One fresh
			// attempt before giving up.
			continue
		}
		var typed *appErrors.Error
		if errors.As(err, &typed) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register submission")
	}

	s.recordEvent(ctx, models.AuditActionCreate, p, nil,
		fmt.Sprintf("submission registered for document %s", p.DocumentNumber))
	s.invalidateStats(ctx)

	if s.notifier != nil {
		s.notifier.Welcome(WelcomeNotification{
			Email:          p.Email,
			FullName:       p.FullName(),
			DocumentNumber: p.DocumentNumber,
			SecurityCode:   p.SecurityCode,
		})
	}

	return p, nil
}

// LookupByDocument fetches a live submission by its document number.
func (s *PreinscripcionService) LookupByDocument(ctx context.Context, document string) (*models.Preinscripcion, error) {
	p, err := s.repo.FindByDocument(ctx, document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return p, nil
}

// VerifyAndFetch is the self-service authentication primitive: it succeeds
// only on an exact match of document number and security code against a live
// record. The failure shape is identical whether the document does not exist
// or the code is wrong, so valid document numbers cannot be enumerated.
func (s *PreinscripcionService) VerifyAndFetch(ctx context.Context, document, code string) (*models.Preinscripcion, error) {
	p, err := s.repo.FindByDocumentAndCode(ctx, document, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify submission")
	}
	return p, nil
}

// Amend performs the one-time self-service edit. The caller authenticates
// with both secrets; the document number itself is immutable. Field changes
// and the closing of the edit window are applied atomically.
func (s *PreinscripcionService) Amend(ctx context.Context, document string, req dto.AmendRequest) (*models.Preinscripcion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid amendment payload")
	}

	p, err := s.VerifyAndFetch(ctx, document, req.SecurityCode)
	if err != nil {
		return nil, err
	}

	if !p.CanModify {
		return nil, appErrors.ErrAlreadyModified
	}
	if p.State != models.StatePending {
		return nil, appErrors.ErrNotPending
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}
	p.BirthDate = birthDate
	s.applyPayload(p, req.PreinscripcionPayload)

	if err := s.repo.Amend(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The edit window closed between read and write: a concurrent
			// amendment or transition won.
			return nil, appErrors.ErrAlreadyModified
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to amend submission")
	}

	s.recordEvent(ctx, models.AuditActionAmend, p, nil,
		fmt.Sprintf("submission amended for document %s", p.DocumentNumber))

	return p, nil
}

// Transition moves a submission to a target state if the transition table
// allows it. The write carries an optimistic guard on the source state, so
// two administrators racing on the same record cannot both succeed.
func (s *PreinscripcionService) Transition(ctx context.Context, document string, target models.State, actor *models.AdminClaims) (*models.Preinscripcion, error) {
	if !models.ValidState(target) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown state %q", target))
	}

	p, err := s.LookupByDocument(ctx, document)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(p.State, target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", p.State, target))
	}

	moved, err := s.repo.UpdateState(ctx, p.ID, p.State, target)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update state")
	}
	if !moved {
		// The record left the source state after our read.
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("submission is no longer %s", p.State))
	}

	from := p.State
	p.State = target

	s.recordEvent(ctx, models.AuditActionTransition, p, actor,
		fmt.Sprintf("state changed from %s to %s for document %s", from, target, p.DocumentNumber))
	s.invalidateStats(ctx)

	return p, nil
}

// SoftDelete marks a submission as deleted without destroying it.
func (s *PreinscripcionService) SoftDelete(ctx context.Context, document string, actor *models.AdminClaims) error {
	if err := s.repo.SoftDelete(ctx, document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	s.recordEvent(ctx, models.AuditActionSoftDelete, &models.Preinscripcion{DocumentNumber: document}, actor,
		fmt.Sprintf("submission deleted for document %s", document))
	s.invalidateStats(ctx)
	return nil
}

// Restore clears the soft-delete marker. Restoring a record that is not
// deleted is a precondition failure, not a no-op.
func (s *PreinscripcionService) Restore(ctx context.Context, document string, actor *models.AdminClaims) (*models.Preinscripcion, error) {
	p, err := s.repo.FindByDocumentIncludingDeleted(ctx, document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if !p.IsDeleted() {
		return nil, appErrors.ErrNotDeleted
	}

	restored, err := s.repo.Restore(ctx, document)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to restore submission")
	}
	if !restored {
		return nil, appErrors.ErrNotDeleted
	}
	p.DeletedAt = nil

	s.recordEvent(ctx, models.AuditActionRestore, p, actor,
		fmt.Sprintf("submission restored for document %s", document))
	s.invalidateStats(ctx)

	return p, nil
}

// CheckDocument reports whether a live submission already holds the document.
func (s *PreinscripcionService) CheckDocument(ctx context.Context, req dto.VerificarDocumentoRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	exists, err := s.repo.ExistsByDocument(ctx, req.DocumentNumber)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check document")
	}
	return exists, nil
}

// List returns submissions for administrators, with pagination metadata.
func (s *PreinscripcionService) List(ctx context.Context, filter models.PreinscripcionFilter) ([]models.Preinscripcion, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 15
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Estadisticas returns the cached aggregate snapshot.
func (s *PreinscripcionService) Estadisticas(ctx context.Context) (*models.Estadisticas, error) {
	if s.cache != nil {
		var cached models.Estadisticas
		if err := s.cache.Get(ctx, estadisticasCacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheLookup(true)
			}
			return &cached, nil
		} else if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Sugar().Warnw("estadisticas cache read failed", "error", err)
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(false)
		}
	}

	stats, err := s.repo.Stats(ctx, recentWindowDays)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate statistics")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, estadisticasCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Sugar().Warnw("estadisticas cache write failed", "error", err)
		}
	}
	return stats, nil
}

// applyPayload copies the whitelisted applicant fields onto the entity and
// refreshes the cached geographic names. The control fields and the document
// number are intentionally out of reach: the payload has no way to express
// them.
func (s *PreinscripcionService) applyPayload(p *models.Preinscripcion, req dto.PreinscripcionPayload) {
	p.HasDNI = req.HasDNI
	p.HasStudyCertificate = req.HasStudyCertificate
	p.InFifthYear = req.InFifthYear

	p.DocumentType = req.DocumentType
	p.PaternalSurname = req.PaternalSurname
	p.MaternalSurname = req.MaternalSurname
	p.GivenNames = req.GivenNames
	p.PersonalPhone = req.PersonalPhone
	p.GuardianPhone = req.GuardianPhone
	p.Email = req.Email
	p.Gender = req.Gender
	p.MaritalStatus = req.MaritalStatus

	p.BirthCountry = defaultCountry(req.BirthCountry)
	p.BirthDepartment = req.BirthDepartment
	p.BirthProvince = req.BirthProvince
	p.BirthDistrict = req.BirthDistrict
	p.BirthUbigeo = req.BirthUbigeo
	p.BirthDepartmentName, p.BirthProvinceName, p.BirthDistrictName =
		ubigeo.Names(s.resolver, req.BirthDepartment, req.BirthProvince, req.BirthDistrict)

	p.ResidenceCountry = defaultCountry(req.ResidenceCountry)
	p.ResidenceDepartment = req.ResidenceDepartment
	p.ResidenceProvince = req.ResidenceProvince
	p.ResidenceDistrict = req.ResidenceDistrict
	p.ResidenceUbigeo = req.ResidenceUbigeo
	p.ResidenceDepartmentName, p.ResidenceProvinceName, p.ResidenceDistrictName =
		ubigeo.Names(s.resolver, req.ResidenceDepartment, req.ResidenceProvince, req.ResidenceDistrict)
	p.Address = req.Address

	p.SchoolYearFinished = req.SchoolYearFinished
	p.SchoolCountry = defaultCountry(req.SchoolCountry)
	p.SchoolDepartment = req.SchoolDepartment
	p.SchoolProvince = req.SchoolProvince
	p.SchoolDistrict = req.SchoolDistrict
	p.SchoolDepartmentName, p.SchoolProvinceName, p.SchoolDistrictName =
		ubigeo.Names(s.resolver, req.SchoolDepartment, req.SchoolProvince, req.SchoolDistrict)
	p.SchoolID = req.SchoolID
	p.SchoolName = req.SchoolName

	p.Program = req.Program
	p.InOtherUniversity = req.InOtherUniversity
	p.EthnicIdentity = req.EthnicIdentity
	p.HasConadis = req.HasConadis
	p.MotherTongue = req.MotherTongue
}

func (s *PreinscripcionService) recordEvent(ctx context.Context, action string, p *models.Preinscripcion, actor *models.AdminClaims, summary string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:   action,
		Resource: "preinscripcion",
		Summary:  summary,
	}
	if p.DocumentNumber != "" {
		doc := p.DocumentNumber
		log.ResourceID = &doc
	}
	if actor != nil {
		subject := actor.Subject
		log.Actor = &subject
	}
	if snapshot, err := json.Marshal(map[string]interface{}{"estado": p.State, "puede_modificar": p.CanModify}); err == nil {
		log.NewValues = snapshot
	}
	s.audit.Record(ctx, log)
}

func (s *PreinscripcionService) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, estadisticasCacheKey)
	}
}

func defaultCountry(raw string) string {
	if raw == "" {
		return "PERÚ"
	}
	return raw
}
