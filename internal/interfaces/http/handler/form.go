package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	procurementapp "github.com/procurement/backend/internal/application/procurement"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultMaxFileSize caps a single uploaded document
const DefaultMaxFileSize int64 = 10 << 20

// multipart memory kept in RAM before spilling to temp files
const multipartMemory = 8 << 20

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func isMultipart(c *gin.Context) bool {
	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseDate accepts RFC 3339 timestamps and plain dates
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// formReader reads multipart form fields, collecting every malformed value
// as a field error instead of stopping at the first one
type formReader struct {
	c           *gin.Context
	maxFileSize int64
	errs        shared.ValidationErrors
}

func newFormReader(c *gin.Context, maxFileSize int64) (*formReader, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &formReader{c: c, maxFileSize: maxFileSize}, nil
}

func (r *formReader) lookup(key string) (string, bool) {
	return r.c.GetPostForm(key)
}

func (r *formReader) str(key string) string {
	v, _ := r.lookup(key)
	return strings.TrimSpace(v)
}

func (r *formReader) strPtr(key string) *string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}

// nonEmpty is strPtr that also treats a blank value as absent
func (r *formReader) nonEmpty(key string) *string {
	v := r.strPtr(key)
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func (r *formReader) decimal(key string) *decimal.Decimal {
	v := r.nonEmpty(key)
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		r.errs.Add(key, "must be a number")
		return nil
	}
	return &d
}

func (r *formReader) boolPtr(key string) *bool {
	v := r.nonEmpty(key)
	if v == nil {
		return nil
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		r.errs.Add(key, "must be true or false")
		return nil
	}
	return &b
}

func (r *formReader) date(key string) *time.Time {
	v := r.nonEmpty(key)
	if v == nil {
		return nil
	}
	t, err := parseDate(*v)
	if err != nil {
		r.errs.Add(key, "must be a date (YYYY-MM-DD or RFC 3339)")
		return nil
	}
	return &t
}

// optional maps an absent key to unset, and a blank or "null" value to an
// explicit null
func (r *formReader) optional(key string) shared.Optional[string] {
	v, ok := r.lookup(key)
	if !ok {
		return shared.Optional[string]{}
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "null" {
		return shared.Null[string]()
	}
	return shared.Some(v)
}

func (r *formReader) optionalDecimal(key string) shared.Optional[decimal.Decimal] {
	o := r.optional(key)
	if !o.Set || o.Null {
		return shared.Optional[decimal.Decimal]{Set: o.Set, Null: o.Null}
	}
	d, err := decimal.NewFromString(o.Value)
	if err != nil {
		r.errs.Add(key, "must be a number")
		return shared.Optional[decimal.Decimal]{}
	}
	return shared.Some(d)
}

// tags reads either one JSON-encoded value or repeated plain values
func (r *formReader) tags(key string) procurement.TagInput {
	values, ok := r.c.GetPostFormArray(key)
	if !ok {
		return procurement.TagInput{}
	}
	if len(values) == 1 {
		return procurement.TagsFromEncoded(values[0])
	}
	return procurement.TagsFromList(values)
}

func (r *formReader) file(key string) *procurementapp.FileUpload {
	fh, err := r.c.FormFile(key)
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			r.errs.Add(key, "could not read uploaded file")
		}
		return nil
	}
	upload, err := readUpload(fh, r.maxFileSize)
	if err != nil {
		r.errs.Add(key, err.Error())
		return nil
	}
	return upload
}

func (r *formReader) err() error {
	return r.errs.Err("Request validation failed")
}

func readUpload(fh *multipart.FileHeader, maxSize int64) (*procurementapp.FileUpload, error) {
	if fh.Size > maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}
	if fh.Size == 0 {
		return nil, errors.New("file is empty")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", maxSize)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &procurementapp.FileUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
