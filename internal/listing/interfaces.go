package listing

import (
	"context"

	"github.com/truthlens/truthlens-api/internal/detector"
)

// Detector scores text for AI generation. *detector.Client implements it.
type Detector interface {
	Detect(ctx context.Context, text string) (detector.Verdict, error)
}
