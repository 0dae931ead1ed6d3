package helpers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truthlens/truthlens-api/internal/listing"
)

// AssertAnalysis asserts status, confidence and reasons of a result
func AssertAnalysis(t *testing.T, status listing.Status, confidence float64, reasons []string, actual *listing.AnalysisResult) {
	t.Helper()
	require.NotNil(t, actual)
	assert.Equal(t, status, actual.Status)
	assert.InDelta(t, confidence, actual.Confidence, 1e-9)
	assert.Equal(t, reasons, actual.Reasons)
}

// AssertConfidenceInRange asserts the confidence invariant
func AssertConfidenceInRange(t *testing.T, actual *listing.AnalysisResult) {
	t.Helper()
	assert.GreaterOrEqual(t, actual.Confidence, 0.0)
	assert.LessOrEqual(t, actual.Confidence, 1.0)
}

// AssertErrorEnvelope asserts the common error body for a failed request
func AssertErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	require.Equal(t, code, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, code, body.Error.Code)
	assert.Equal(t, message, body.Error.Message)
}
