package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/logger"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/procurement/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware,
// falling back to the inbound header
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status and code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	resp := dto.NewErrorResponse(code, message)
	resp.Error.RequestID = getRequestID(c)
	c.JSON(statusCode, resp)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationFailed sends a 400 with field-level details
func (h *BaseHandler) ValidationFailed(c *gin.Context, message string, fields []shared.FieldError) {
	details := make([]dto.ErrorDetail, len(fields))
	for i, f := range fields {
		details[i] = dto.ErrorDetail{Field: f.Field, Message: f.Message}
	}
	resp := dto.NewValidationErrorResponse(message, details)
	resp.Error.RequestID = getRequestID(c)
	c.JSON(http.StatusBadRequest, resp)
}

// BindError reports a request that could not be bound or failed binding tags
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return
	}
	middleware.HandleValidationError(c, err)
}

// HandleError maps service errors to HTTP responses. Validation errors keep
// their field list, domain errors map by code, and anything else is logged
// and answered with a 500 carrying the request id.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		h.ValidationFailed(c, validationErr.Message, validationErr.Fields)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	// Document failures wrap the storage error; report the file, not the cause
	if errors.Is(err, shared.ErrDocumentProcessing) {
		h.Error(c, http.StatusBadGateway, dto.ErrCodeDocumentProcessing, err.Error())
		return
	}

	logger.L(c.Request.Context()).Error("unhandled error",
		zap.Error(err),
		zap.String("path", c.FullPath()),
	)
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// requestError reports a body that could not be decoded, or the field errors
// found while converting it
func (h *BaseHandler) requestError(c *gin.Context, err error) {
	var be bindErr
	if !errors.As(err, &be) {
		h.HandleError(c, err)
		return
	}
	var maxBytesErr *http.MaxBytesError
	if !errors.As(be.err, &maxBytesErr) && isMultipart(c) {
		h.BadRequest(c, "Malformed multipart form")
		return
	}
	h.BindError(c, be.err)
}

// bindErr marks a request body that could not be decoded at all
type bindErr struct{ err error }

func (e bindErr) Error() string { return e.err.Error() }
func (e bindErr) Unwrap() error { return e.err }
