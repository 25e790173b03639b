package procurement

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// Field limits for an other document
const (
	DocumentTitleMinLength = 3
	DocumentTitleMaxLength = 100
)

// OtherDocument is any supporting document filed against an LOA
type OtherDocument struct {
	shared.BaseEntity
	LoaID       uuid.UUID
	Title       string
	DocumentURL string
}

// NewOtherDocument creates a document record. The document must already be uploaded.
func NewOtherDocument(loaID uuid.UUID, title, documentURL string) (*OtherDocument, error) {
	d := &OtherDocument{
		BaseEntity:  shared.NewBaseEntity(),
		LoaID:       loaID,
		Title:       strings.TrimSpace(title),
		DocumentURL: documentURL,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the document's fields
func (d *OtherDocument) Validate() error {
	var errs shared.ValidationErrors
	if d.LoaID == uuid.Nil {
		errs.Add("loa_id", "LOA ID is required")
	}
	n := utf8.RuneCountInString(d.Title)
	if n < DocumentTitleMinLength || n > DocumentTitleMaxLength {
		errs.Addf("title", "title must be between %d and %d characters", DocumentTitleMinLength, DocumentTitleMaxLength)
	}
	if strings.TrimSpace(d.DocumentURL) == "" {
		errs.Add("document", "document is required")
	}
	return errs.Err("Document validation failed")
}

// Retitle changes the document title
func (d *OtherDocument) Retitle(title string) error {
	previous := d.Title
	d.Title = strings.TrimSpace(title)
	if err := d.Validate(); err != nil {
		d.Title = previous
		return err
	}
	d.Touch()
	return nil
}

// ReplaceDocument points the record at a newly uploaded file and returns the URL it replaced
func (d *OtherDocument) ReplaceDocument(url string) string {
	previous := d.DocumentURL
	d.DocumentURL = url
	d.Touch()
	return previous
}
