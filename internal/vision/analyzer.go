// Package vision estimates the nutrition of a meal from a photo or a short
// description without going through the backend.
package vision

import (
	"context"
	"fmt"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/rs/zerolog"
)

// Input is what the user gave us: an image, a description, or both.
type Input struct {
	Image       []byte
	MIMEType    string
	Description string
}

// Analyzer turns a meal photo or description into nutrition estimates.
type Analyzer interface {
	// Analyze returns the estimate for one meal.
	Analyze(ctx context.Context, in Input) (*models.NutritionData, error)
	// Close releases any client held by the analyzer.
	Close() error
}

// AnalyzerFactory creates a new analyzer instance based on configuration
type AnalyzerFactory interface {
	CreateAnalyzer(ctx context.Context) (Analyzer, error)
}

// Analyzer types accepted by NewAnalyzer.
const (
	TypeNone   = "none"
	TypeGoogle = "google"
	TypeCanned = "canned"
)

// NewAnalyzer creates the analyzer named by cfg.Type. TypeNone, or an empty
// type, returns a nil Analyzer and no error.
func NewAnalyzer(ctx context.Context, cfg Config, log zerolog.Logger) (Analyzer, error) {
	var factory AnalyzerFactory

	switch cfg.Type {
	case "", TypeNone:
		return nil, nil
	case TypeGoogle:
		google := cfg.Google
		google.ConfigPath = cfg.ConfigPath
		if err := google.Load(log); err != nil {
			return nil, fmt.Errorf("failed to load Google config: %w", err)
		}
		factory = NewGoogleAnalyzerFactory(google, log)
	case TypeCanned:
		factory = cannedFactory{}
	default:
		return nil, fmt.Errorf("unsupported analyzer type: %s", cfg.Type)
	}
	return factory.CreateAnalyzer(ctx)
}
