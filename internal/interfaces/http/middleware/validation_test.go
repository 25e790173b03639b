package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusRequest struct {
	Status string `json:"status" binding:"required,loastatus"`
	Bill   string `json:"bill_status" binding:"omitempty,billstatus"`
	Title  string `json:"title" binding:"omitempty,min=3,max=100"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.POST("/test", func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return r
}

func postJSON(r *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestSetupValidator_LoaStatus(t *testing.T) {
	r := newValidationRouter()

	w, _ := postJSON(r, `{"status":"CHASE_PAYMENT"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := postJSON(r, `{"status":"PAID"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "status", resp.Error.Details[0].Field)
	assert.Equal(t, "Unknown LOA status", resp.Error.Details[0].Message)
}

func TestSetupValidator_ReportsEveryField(t *testing.T) {
	r := newValidationRouter()

	w, resp := postJSON(r, `{"bill_status":"LOST","title":"ab"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", fields["status"])
	assert.Contains(t, fields["bill_status"], "REGISTERED")
	assert.Equal(t, "Must be at least 3 characters", fields["title"])
}

func TestFormatValidationErrors_MalformedBody(t *testing.T) {
	r := newValidationRouter()

	w, resp := postJSON(r, `{"status":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}

func TestFormatValidationErrors_PlainError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("boom"), "rid")
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	assert.Equal(t, "rid", resp.Error.RequestID)
}
