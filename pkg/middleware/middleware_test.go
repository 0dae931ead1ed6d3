package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truthlens/truthlens-api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

type bindRequest struct {
	Title *string `json:"title" validate:"required"`
}

func TestCorrelationID_GeneratesAndPropagates(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())

	var fromGin, fromCtx string
	router.GET("/", func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromCtx = logger.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	header := w.Header().Get(CorrelationIDHeader)
	assert.NotEmpty(t, header)
	assert.Equal(t, header, fromGin)
	assert.Equal(t, header, fromCtx)
}

func TestCorrelationID_ReusesIncomingHeader(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationIDHeader, "ext-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "ext-123", w.Header().Get(CorrelationIDHeader))
}

func TestRecovery_RendersEnvelope(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := parseResponse(t, w)
	assert.False(t, response["success"].(bool))
	assert.Equal(t, "internal server error", response["error"].(map[string]interface{})["message"])
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name       string
		production bool
	}{
		{"development", false},
		{"production", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(SecurityHeaders(tt.production))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.production, w.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(16))
	router.POST("/", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.JSON(http.StatusOK, body)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"this body is too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, float64(http.StatusRequestEntityTooLarge), parseResponse(t, w)["error"].(map[string]interface{})["code"])
}

func TestValidateAndBind(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantFields bool
	}{
		{"valid", `{"title":"Phone"}`, true, false},
		{"empty title allowed", `{"title":""}`, true, false},
		{"missing title", `{}`, false, true},
		{"malformed json", `{"title":`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req bindRequest
			ok := ValidateAndBind(c, &req)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			response := parseResponse(t, w)
			assert.False(t, response["success"].(bool))
			if tt.wantFields {
				fields := response["fields"].(map[string]interface{})
				assert.Equal(t, "title is required", fields["title"])
			} else {
				assert.NotEmpty(t, response["details"])
			}
		})
	}
}

func TestMetricsAndLogger_DoNotAlterResponse(t *testing.T) {
	router := gin.New()
	router.Use(CorrelationID(), RequestLogger(), Metrics())
	router.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
