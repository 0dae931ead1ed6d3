package listing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/truthlens/truthlens-api/internal/detector"
	"github.com/truthlens/truthlens-api/pkg/common"
	"github.com/truthlens/truthlens-api/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service runs listing analyses.
type Service struct {
	detector  Detector
	evaluator *Evaluator
	blender   *Blender
	tracer    trace.Tracer
}

// NewService creates a listing service that consults d for AI detection.
func NewService(d Detector) *Service {
	return &Service{
		detector:  d,
		evaluator: NewEvaluator(),
		blender:   NewBlender(d),
		tracer:    otel.Tracer("github.com/truthlens/truthlens-api/internal/listing"),
	}
}

// Analyze scores a listing with the indicator rules and blends in the AI
// detector's verdict. Detector failures are part of the result; only an
// internal fault returns an error, as a 500 *common.AppError.
func (s *Service) Analyze(ctx context.Context, l ProductListing) (result *AnalysisResult, err error) {
	ctx, span := s.tracer.Start(ctx, "listing.Analyze")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			cause := fmt.Errorf("%v", r)
			analysisFailures.Inc()
			span.RecordError(cause)
			span.SetStatus(codes.Error, "analysis panicked")
			logger.WithContext(ctx).Error("listing analysis failed", zap.Any("panic", r), zap.Stack("stack"))
			result = nil
			err = common.NewAppError(http.StatusInternalServerError, "Analysis error: "+cause.Error(), cause)
		}
	}()

	tally := s.evaluator.Evaluate(l)
	recordRules(tally.Fired)

	status, confidence := Classify(tally.ScamScore, tally.LegitScore)
	result = &AnalysisResult{
		Status:     status,
		Confidence: confidence,
		Reasons:    tally.Reasons,
		Indicators: Indicators{
			ScamIndicators:  tally.ScamScore,
			LegitIndicators: tally.LegitScore,
		},
	}

	s.blender.Blend(ctx, l, result)

	span.SetAttributes(
		attribute.String("listing.status", string(result.Status)),
		attribute.Float64("listing.confidence", result.Confidence),
		attribute.Bool("listing.ai_error", result.AIError != ""),
	)
	analysesTotal.WithLabelValues(string(result.Status)).Inc()
	logger.WithContext(ctx).Info("listing analyzed",
		zap.String("status", string(result.Status)),
		zap.Float64("confidence", result.Confidence),
		zap.Ints("rules", tally.Fired),
	)

	return result, nil
}

// CheckText passes text straight to the detector. Failures come back as a
// 502 *common.AppError.
func (s *Service) CheckText(ctx context.Context, text string) (detector.Verdict, error) {
	verdict, err := s.detector.Detect(ctx, text)
	if err != nil {
		logger.WithContext(ctx).Warn("check-text failed", zap.Error(err))
		return nil, common.NewBadGatewayError("API error: "+err.Error(), err)
	}
	return verdict, nil
}
