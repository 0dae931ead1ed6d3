package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/truthlens/truthlens-api/internal/detector"
	"github.com/truthlens/truthlens-api/test/mocks"
)

func legitResult() *AnalysisResult {
	return &AnalysisResult{
		Status:     StatusLegit,
		Confidence: 0.8,
		Reasons:    []string{ReasonGoodRating, ReasonManyReviews},
		Indicators: Indicators{LegitIndicators: 3},
	}
}

func TestBlend_HighScoreDowngradesLegit(t *testing.T) {
	d := new(mocks.MockDetector)
	verdict := detector.Verdict{"score": 0.85}
	d.On("Detect", mock.Anything, "Wireless Earbuds Crystal clear sound").Return(verdict, nil)

	result := legitResult()
	NewBlender(d).Blend(context.Background(), ProductListing{
		Title:       "Wireless Earbuds",
		Description: "Crystal clear sound",
	}, result)

	assert.Equal(t, StatusUncertain, result.Status)
	assert.InDelta(t, 0.6, result.Confidence, 1e-9)
	assert.Equal(t, []string{ReasonGoodRating, ReasonManyReviews, ReasonAIGenerated}, result.Reasons)
	assert.Equal(t, verdict, result.AIAnalysis)
	assert.Empty(t, result.AIError)
	assert.Equal(t, Indicators{LegitIndicators: 3}, result.Indicators)
	d.AssertExpectations(t)
}

func TestBlend_ConfidenceFloor(t *testing.T) {
	d := new(mocks.MockDetector)
	d.On("Detect", mock.Anything, mock.Anything).Return(detector.Verdict{"score": 0.99}, nil)

	result := legitResult()
	result.Confidence = 0.4
	NewBlender(d).Blend(context.Background(), ProductListing{Title: "x"}, result)

	assert.Equal(t, StatusUncertain, result.Status)
	assert.InDelta(t, 0.3, result.Confidence, 1e-9)
}

func TestBlend_VerdictWithoutDowngrade(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		verdict detector.Verdict
	}{
		{"score at threshold", StatusLegit, detector.Verdict{"score": 0.7}},
		{"low score", StatusLegit, detector.Verdict{"score": 0.1}},
		{"missing score", StatusLegit, detector.Verdict{"error": "quota"}},
		{"non numeric score", StatusLegit, detector.Verdict{"score": "high"}},
		{"scam stays scam", StatusScam, detector.Verdict{"score": 0.95}},
		{"uncertain stays uncertain", StatusUncertain, detector.Verdict{"score": 0.95}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := new(mocks.MockDetector)
			d.On("Detect", mock.Anything, mock.Anything).Return(tt.verdict, nil)

			result := legitResult()
			result.Status = tt.status
			NewBlender(d).Blend(context.Background(), ProductListing{Title: "Headphones"}, result)

			assert.Equal(t, tt.status, result.Status)
			assert.Equal(t, 0.8, result.Confidence)
			assert.Equal(t, []string{ReasonGoodRating, ReasonManyReviews}, result.Reasons)
			assert.Equal(t, tt.verdict, result.AIAnalysis)
		})
	}
}

func TestBlend_BlankTextSkipsDetector(t *testing.T) {
	for _, l := range []ProductListing{{}, {Title: "  ", Description: "\t"}} {
		d := new(mocks.MockDetector)

		result := legitResult()
		NewBlender(d).Blend(context.Background(), l, result)

		assert.Equal(t, legitResult(), result)
		assert.Nil(t, result.AIAnalysis)
		assert.Empty(t, result.AIError)
		d.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
	}
}

func TestBlend_DetectorFailureLeavesResult(t *testing.T) {
	d := new(mocks.MockDetector)
	d.On("Detect", mock.Anything, "Deal ").Return(nil, errors.New("detector: dial tcp: connection refused"))

	result := legitResult()
	NewBlender(d).Blend(context.Background(), ProductListing{Title: "Deal"}, result)

	assert.Equal(t, "detector: dial tcp: connection refused", result.AIError)
	assert.Nil(t, result.AIAnalysis)

	want := legitResult()
	want.AIError = result.AIError
	assert.Equal(t, want, result)
	d.AssertNumberOfCalls(t, "Detect", 1)
}
