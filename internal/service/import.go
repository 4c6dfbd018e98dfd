// Package service owns import sessions and drives the pipeline stages:
// parse, auto-map, validate, load, reconcile.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buslane/buslane/internal/domain"
	"github.com/buslane/buslane/internal/loader"
	"github.com/buslane/buslane/internal/logger"
	"github.com/buslane/buslane/internal/mapper"
	"github.com/buslane/buslane/internal/notify"
	"github.com/buslane/buslane/internal/schema"
	"github.com/buslane/buslane/internal/storage"
	"github.com/buslane/buslane/internal/tabular"
	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for unknown or reset session IDs.
	ErrSessionNotFound = errors.New("import session not found")

	// ErrLoadInProgress rejects re-submission while a load is running.
	ErrLoadInProgress = errors.New("a load is already in progress for this session")

	// ErrUploadTooLarge rejects uploads over the configured ceiling before
	// any parsing happens.
	ErrUploadTooLarge = errors.New("uploaded file is too large")

	// ErrUnknownField is returned when a mapping change names a field the
	// schema does not declare.
	ErrUnknownField = errors.New("unknown schema field")

	// ErrUnknownHeader is returned when a mapping change names a header the
	// uploaded file does not contain.
	ErrUnknownHeader = errors.New("header not present in uploaded file")
)

// AuditStore persists the durable record of each import attempt.
type AuditStore interface {
	Create(ctx context.Context, audit *domain.ImportAudit) error
	List(ctx context.Context, limit, offset int) ([]domain.ImportAudit, error)
}

// ImportConfig holds configuration for the import service.
type ImportConfig struct {
	BatchSize      int
	PreviewRows    int
	MaxUploadBytes int64
}

// ImportService manages import sessions. A session exclusively owns its
// parsed document and mapping; sessions are never shared between uploads.
type ImportService struct {
	registry *schema.Registry
	loader   *loader.Loader
	audits   AuditStore
	archive  storage.ObjectStorage // nil disables archiving
	notifier notify.Notifier       // nil disables notifications
	logger   *logger.Logger

	batchSize      int
	previewRows    int
	maxUploadBytes int64

	sessions *sessionStore
}

// NewImportService creates a new import service. archive and notifier may be
// nil; both are best-effort collaborators.
func NewImportService(
	registry *schema.Registry,
	sink loader.Sink,
	audits AuditStore,
	archive storage.ObjectStorage,
	notifier notify.Notifier,
	log *logger.Logger,
	cfg *ImportConfig,
) *ImportService {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = loader.DefaultBatchSize
	}
	previewRows := cfg.PreviewRows
	if previewRows <= 0 {
		previewRows = mapper.DefaultPreviewRows
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = tabular.MaxFileSize
	}

	return &ImportService{
		registry:       registry,
		loader:         loader.New(sink),
		audits:         audits,
		archive:        archive,
		notifier:       notifier,
		logger:         log,
		batchSize:      batchSize,
		previewRows:    previewRows,
		maxUploadBytes: maxUpload,
		sessions:       newSessionStore(),
	}
}

// log returns a logger from context if available, otherwise the service's.
func (s *ImportService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// Registry exposes the schema catalog to callers.
func (s *ImportService) Registry() *schema.Registry {
	return s.registry
}

// CreateSession parses an upload, auto-maps its columns against the target
// schema, and registers a new session. Parsing failure is fatal to the
// session: nothing is registered and no mapping exists.
func (s *ImportService) CreateSession(ctx context.Context, schemaID, fileName string, data []byte, actor string) (*SessionView, error) {
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrUploadTooLarge, len(data), s.maxUploadBytes)
	}

	def, err := s.registry.Get(schemaID)
	if err != nil {
		return nil, err
	}

	doc, err := tabular.Parse(fileName, data)
	if err != nil {
		return nil, err
	}

	// Auto-map runs exactly once, here. Later changes are manual only.
	mapping := mapper.AutoMap(doc.Headers, def)

	sess := &session{
		id:        uuid.New().String(),
		schemaID:  schemaID,
		actor:     actor,
		createdAt: time.Now(),
		doc:       doc,
		mapping:   mapping,
		raw:       data,
	}
	s.sessions.put(sess)

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldSessionID: sess.id,
		logger.FieldSchema:    schemaID,
		"file_name":           fileName,
		"rows":                doc.RowCount(),
		"headers":             len(doc.Headers),
	}).Info("Import session created")

	return s.view(sess, def), nil
}

// Session returns the current state of a session.
func (s *ImportService) Session(id string) (*SessionView, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	def, err := s.registry.Get(sess.schemaID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, def), nil
}

// SetMapping applies a manual mapping change: assign a header to a field or
// unset the field. Manual changes permanently shadow the auto-mapped value.
func (s *ImportService) SetMapping(ctx context.Context, id, fieldKey, header string, unset bool) (*SessionView, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	def, err := s.registry.Get(sess.schemaID)
	if err != nil {
		return nil, err
	}

	if def.Field(fieldKey) == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, fieldKey)
	}

	sess.mu.Lock()
	if sess.loading {
		sess.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	if unset {
		sess.mapping.Unset(fieldKey)
	} else {
		if !containsHeader(sess.doc.Headers, header) {
			sess.mu.Unlock()
			return nil, fmt.Errorf("%w: %q", ErrUnknownHeader, header)
		}
		sess.mapping.Set(fieldKey, header)
	}
	sess.mu.Unlock()

	return s.view(sess, def), nil
}

// Load runs the batched load for a session. One load at a time per session;
// re-submission is rejected while in flight. The audit write, file archive,
// and webhook notification are best-effort and never alter the returned
// result.
func (s *ImportService) Load(ctx context.Context, id string) (*domain.ImportResult, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return nil, err
	}
	def, err := s.registry.Get(sess.schemaID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.loading {
		sess.mu.Unlock()
		return nil, ErrLoadInProgress
	}
	sess.loading = true
	sess.progress = 0
	sess.mu.Unlock()
	defer func() {
		sess.mu.Lock()
		sess.loading = false
		sess.mu.Unlock()
	}()

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldSessionID: sess.id,
		logger.FieldActor:     sess.actor,
	})

	result, err := s.loader.Load(ctx, sess.doc, sess.mapping, def, loader.Options{
		BatchSize: s.batchSize,
		Progress:  sess.setProgress,
	})
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.lastResult = result
	sess.mu.Unlock()

	s.archiveUpload(ctx, sess, def)

	audit := &domain.ImportAudit{
		ID:           uuid.New().String(),
		SchemaID:     def.ID,
		FileName:     sess.doc.FileName,
		TotalRows:    result.TotalRows,
		ImportedRows: result.ImportedCount,
		SkippedRows:  result.SkippedCount,
		ErrorRows:    result.ErrorCount,
		Actor:        sess.actor,
		CreatedAt:    time.Now(),
	}
	if err := s.audits.Create(ctx, audit); err != nil {
		// Observability, not a correctness dependency: the result stands.
		s.log(ctx).WithError(err).Error("Failed to persist import audit")
	}

	if s.notifier != nil {
		if err := s.notifier.ImportCompleted(ctx, audit); err != nil {
			s.log(ctx).WithError(err).Warn("Failed to deliver import notification")
		}
	}

	return result, nil
}

// Progress returns the cumulative completion percentage of the session's
// in-flight (or last) load.
func (s *ImportService) Progress(id string) (int, error) {
	sess, err := s.sessions.get(id)
	if err != nil {
		return 0, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.progress, nil
}

// ResetSession discards a session and its document.
func (s *ImportService) ResetSession(id string) error {
	return s.sessions.remove(id)
}

// Audits lists recent import audit records.
func (s *ImportService) Audits(ctx context.Context, limit, offset int) ([]domain.ImportAudit, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.audits.List(ctx, limit, offset)
}

// archiveUpload stores the raw upload bytes next to the audit trail.
func (s *ImportService) archiveUpload(ctx context.Context, sess *session, def *domain.SchemaDefinition) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%s_%s", def.ID, sess.id, sess.doc.FileName)
	err := s.archive.Upload(ctx, key, bytes.NewReader(sess.raw), int64(len(sess.raw)), "application/octet-stream")
	if err != nil {
		s.log(ctx).WithError(err).WithField("archive_key", key).Warn("Failed to archive uploaded file")
		return
	}
	s.log(ctx).WithField("archive_key", key).Debug("Uploaded file archived")
}

func (s *ImportService) view(sess *session, def *domain.SchemaDefinition) *SessionView {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	validation := mapper.Validate(sess.doc, sess.mapping, def, s.previewRows)
	return &SessionView{
		ID:         sess.id,
		SchemaID:   sess.schemaID,
		FileName:   sess.doc.FileName,
		Actor:      sess.actor,
		CreatedAt:  sess.createdAt,
		Headers:    sess.doc.Headers,
		RowCount:   sess.doc.RowCount(),
		Mapping:    sess.mapping.Assignments(),
		Validation: validation,
		Loading:    sess.loading,
		Progress:   sess.progress,
		LastResult: sess.lastResult,
	}
}

func containsHeader(headers []string, header string) bool {
	for _, h := range headers {
		if h == header {
			return true
		}
	}
	return false
}
