package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/truthlens/truthlens-api/internal/detector"
)

// MockDetector is a mock implementation of the AI-text detector
type MockDetector struct {
	mock.Mock
}

// Detect mocks scoring text
func (m *MockDetector) Detect(ctx context.Context, text string) (detector.Verdict, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(detector.Verdict), args.Error(1)
}
