package listing

import (
	"context"
	"math"
	"strings"

	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	aiScoreThreshold = 0.7
	aiConfidenceDrop = 0.2
	aiConfidenceMin  = 0.3
)

// Blender folds an AI-generation verdict into a rule-based result.
type Blender struct {
	detector Detector
}

// NewBlender creates a blender backed by d.
func NewBlender(d Detector) *Blender {
	return &Blender{detector: d}
}

// Blend calls the detector at most once with the listing's title and
// description and mutates result in place. Detector failures are recorded
// in result.AIError and never returned.
func (b *Blender) Blend(ctx context.Context, l ProductListing, result *AnalysisResult) {
	text := l.Title + " " + l.Description
	if strings.TrimSpace(text) == "" {
		blendOutcomes.WithLabelValues("skipped").Inc()
		return
	}

	verdict, err := b.detector.Detect(ctx, text)
	if err != nil {
		blendOutcomes.WithLabelValues("error").Inc()
		logger.WithContext(ctx).Warn("AI detection unavailable", zap.Error(err))
		result.AIError = err.Error()
		return
	}

	result.AIAnalysis = verdict
	score, ok := verdict.Score()
	if !ok || score <= aiScoreThreshold || result.Status != StatusLegit {
		blendOutcomes.WithLabelValues("verdict").Inc()
		return
	}

	blendOutcomes.WithLabelValues("downgraded").Inc()
	result.Status = StatusUncertain
	result.Confidence = math.Max(aiConfidenceMin, result.Confidence-aiConfidenceDrop)
	result.Reasons = append(result.Reasons, ReasonAIGenerated)
}
