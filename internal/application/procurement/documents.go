package procurement

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ObjectStorage is the document store collaborator. URLs it returns are opaque
// and are persisted as is.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// FileUpload is a file received with a request
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Document kinds, used as storage key prefixes
const (
	DocumentKindLoa        = "loa"
	DocumentKindInvoice    = "invoice"
	DocumentKindAmendment  = "amendment"
	DocumentKindSupporting = "document"
)

// DocumentError reports a file that could not be stored
type DocumentError struct {
	Filename string
	Err      error
}

// Error implements the error interface
func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to process document %q", e.Filename)
}

// Unwrap returns the storage error
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the DOCUMENT_PROCESSING_FAILED domain error
func (e *DocumentError) Is(target error) bool {
	t, ok := target.(*shared.DomainError)
	return ok && t.Code == shared.CodeDocumentProcessing
}

// ErrDocumentProcessing matches every *DocumentError
var ErrDocumentProcessing = shared.ErrDocumentProcessing

// documentKey builds the storage key for a file owned by an LOA
func documentKey(loaID uuid.UUID, kind, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	return fmt.Sprintf("loas/%s/%s/%s-%s", loaID, kind, uuid.NewString(), name)
}

type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// Compensator records undo steps for side effects that cannot join a database
// transaction. On failure the steps run in reverse order. A failing step is
// logged and never replaces the error that triggered the rollback.
type Compensator struct {
	steps   []compensation
	logger  *zap.Logger
	metrics *telemetry.ProcurementMetrics
}

// NewCompensator creates an empty compensator
func NewCompensator(logger *zap.Logger) *Compensator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compensator{logger: logger}
}

// Add records an undo step
func (c *Compensator) Add(name string, undo func(ctx context.Context) error) {
	c.steps = append(c.steps, compensation{name: name, undo: undo})
}

// Len returns the number of recorded steps
func (c *Compensator) Len() int {
	return len(c.steps)
}

// Compensate runs every recorded step in reverse order and returns the failures
func (c *Compensator) Compensate(ctx context.Context) []error {
	var failures []error
	defer func(steps int) {
		c.metrics.RecordCompensation(ctx, steps, len(failures))
	}(len(c.steps))
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.undo(ctx); err != nil {
			c.logger.Warn("Compensation step failed",
				zap.String("step", step.name),
				zap.Error(err),
			)
			failures = append(failures, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	c.steps = nil
	return failures
}

// documentUploader stores request files and registers their removal with a Compensator
type documentUploader struct {
	storage ObjectStorage
	logger  *zap.Logger
	metrics *telemetry.ProcurementMetrics
}

// compensator returns an empty Compensator sharing the uploader's logger and metrics
func (u documentUploader) compensator() *Compensator {
	c := NewCompensator(u.logger)
	c.metrics = u.metrics
	return c
}

// upload stores file under the LOA and registers a compensating delete
func (u documentUploader) upload(ctx context.Context, comp *Compensator, loaID uuid.UUID, kind string, file *FileUpload) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "document", "upload",
		attribute.String(telemetry.SpanAttrLoaID, loaID.String()),
		attribute.String(telemetry.SpanAttrDocumentKind, kind),
		attribute.Int(telemetry.SpanAttrDocumentBytes, len(file.Data)),
	)
	defer span.End()

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := u.storage.Upload(ctx, documentKey(loaID, kind, file.Filename), file.Data, contentType)
	u.metrics.RecordDocumentUpload(ctx, kind, len(file.Data), err)
	if err != nil {
		telemetry.RecordError(span, err)
		u.logger.Error("Document upload failed",
			zap.String("filename", file.Filename),
			zap.String("kind", kind),
			zap.Error(err),
		)
		return "", &DocumentError{Filename: file.Filename, Err: err}
	}
	if comp != nil {
		comp.Add("delete uploaded "+kind+" "+file.Filename, func(ctx context.Context) error {
			return u.storage.Delete(ctx, url)
		})
	}
	return url, nil
}

// discard removes a replaced object after the new state has been saved. Failures are only logged.
func (u documentUploader) discard(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := u.storage.Delete(ctx, *url); err != nil {
		u.logger.Warn("Failed to delete replaced document", zap.String("url", *url), zap.Error(err))
	}
}
