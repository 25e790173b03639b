package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/procurement/backend/internal/domain/procurement"
	"github.com/procurement/backend/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON/form tag names in errors
// and the procurement-specific rules loastatus and billstatus
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("loastatus", func(fl validator.FieldLevel) bool {
			return procurement.LoaStatus(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("billstatus", func(fl validator.FieldLevel) bool {
			return procurement.BillStatus(fl.Field().String()).IsValid()
		})
	})
}

// FormatValidationErrors builds the error envelope for a binding failure
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ErrorDetail
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ErrorDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}

	resp := dto.NewValidationErrorResponse("Request validation failed", details)
	if len(details) == 0 {
		resp.Error.Code = dto.ErrCodeInvalidJSON
		resp.Error.Message = "Malformed request body"
	}
	resp.Error.RequestID = requestID
	return resp
}

// HandleValidationError writes a 400 for a binding failure
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(RequestIDKey)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid", "uuid4":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "loastatus":
		return "Unknown LOA status"
	case "billstatus":
		return "Must be one of: REGISTERED RETURNED PAYMENT_MADE"
	case "url", "http_url":
		return "Invalid URL format"
	case "gtefield":
		return "Must not be before " + e.Param()
	default:
		return "Invalid value"
	}
}
