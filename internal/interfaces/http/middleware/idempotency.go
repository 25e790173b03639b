package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotency-Replayed"

	maxIdempotencyKeyLength = 255
)

// IdempotencyOption configures the idempotency middleware
type IdempotencyOption func(*idempotency)

// WithIdempotencyConfig sets TTLs and the enabled flag
func WithIdempotencyConfig(cfg shared.IdempotencyConfig) IdempotencyOption {
	return func(i *idempotency) {
		i.config = cfg
	}
}

// WithIdempotencyLogger sets the logger
func WithIdempotencyLogger(logger *zap.Logger) IdempotencyOption {
	return func(i *idempotency) {
		i.logger = logger
	}
}

type idempotency struct {
	store  shared.IdempotencyStore
	config shared.IdempotencyConfig
	logger *zap.Logger
}

// Idempotency replays the stored response of a mutating request that is
// retried with the same Idempotency-Key header. Requests without the header
// pass through untouched. A key reused with a different body is rejected, as
// is a retry that arrives while the first request is still running.
//
// Store failures are logged and the request proceeds without protection.
// Responses of 500 and above release the key so the client may retry.
func Idempotency(store shared.IdempotencyStore, opts ...IdempotencyOption) gin.HandlerFunc {
	i := &idempotency{
		store:  store,
		config: shared.DefaultIdempotencyConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}

	return func(c *gin.Context) {
		if !i.config.Enabled || store == nil || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortIdempotency(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}
		i.handle(c, key)
	}
}

func (i *idempotency) handle(c *gin.Context, key string) {
	ctx := c.Request.Context()
	log := i.logger.With(zap.String("idempotency_key", key), zap.String("path", c.Request.URL.Path))

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// Usually the body limit tripping; let the handler report it
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	// Scope the key by method and route so one key cannot replay across endpoints
	storeKey := c.Request.Method + ":" + c.Request.URL.Path + ":" + key
	hash := bodyHash(c.GetHeader("Content-Type"), body)

	reserved, err := i.store.Reserve(ctx, storeKey, shared.IdempotencyRecord{
		InProgress: true,
		BodyHash:   hash,
		CreatedAt:  time.Now(),
	}, i.config.LockTTL)
	if err != nil {
		log.Warn("idempotency reserve failed, processing without protection", zap.Error(err))
		c.Next()
		return
	}

	if !reserved {
		i.replay(c, log, storeKey, hash)
		return
	}

	recorder := &responseRecorder{ResponseWriter: c.Writer}
	c.Writer = recorder

	// A panicking handler surfaces as a 500 from the outer recovery, so the
	// key must be freed before the panic continues upward.
	defer func() {
		if r := recover(); r != nil {
			if err := i.store.Release(ctx, storeKey); err != nil {
				log.Warn("idempotency release failed", zap.Error(err))
			}
			panic(r)
		}
	}()

	c.Next()

	status := recorder.Status()
	if status >= http.StatusInternalServerError {
		if err := i.store.Release(ctx, storeKey); err != nil {
			log.Warn("idempotency release failed", zap.Error(err))
		}
		return
	}

	record := shared.IdempotencyRecord{
		StatusCode:  status,
		Body:        recorder.body.Bytes(),
		ContentType: recorder.Header().Get("Content-Type"),
		BodyHash:    hash,
		CreatedAt:   time.Now(),
	}
	if err := i.store.Complete(ctx, storeKey, record, i.config.TTL); err != nil {
		log.Warn("idempotency complete failed", zap.Error(err))
	}
}

func (i *idempotency) replay(c *gin.Context, log *zap.Logger, storeKey, hash string) {
	record, err := i.store.Load(c.Request.Context(), storeKey)
	if err != nil {
		log.Warn("idempotency load failed", zap.Error(err))
		abortIdempotency(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Idempotency store unavailable")
		return
	}
	if record == nil {
		// Expired between Reserve and Load
		abortIdempotency(c, http.StatusConflict, dto.ErrCodeIdempotencyInProgress, "Request with this Idempotency-Key is being processed")
		return
	}
	if record.BodyHash != hash {
		abortIdempotency(c, http.StatusUnprocessableEntity, dto.ErrCodeIdempotencyMismatch, "Idempotency-Key was used with a different request body")
		return
	}
	if record.InProgress {
		abortIdempotency(c, http.StatusConflict, dto.ErrCodeIdempotencyInProgress, "Request with this Idempotency-Key is being processed")
		return
	}

	log.Debug("replaying stored response", zap.Int("status", record.StatusCode))
	c.Header(IdempotencyReplayedHeader, "true")
	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}
	c.Data(record.StatusCode, contentType, record.Body)
	c.Abort()
}

func abortIdempotency(c *gin.Context, status int, code, message string) {
	resp := dto.NewErrorResponse(code, message)
	resp.Error.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(status, resp)
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// bodyHash ignores the multipart boundary, which differs between retries of
// the same form
func bodyHash(contentType string, body []byte) string {
	h := sha256.New()
	if i := strings.Index(contentType, "boundary="); i >= 0 {
		boundary := contentType[i+len("boundary="):]
		body = bytes.ReplaceAll(body, []byte(boundary), nil)
		contentType = contentType[:i]
	}
	h.Write([]byte(contentType))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseRecorder captures the response body for storage
type responseRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
