package vision

import (
	"context"
	"strings"

	"github.com/franckalain/fittrack/internal/models"
)

// Canned returns the same middle-of-the-road estimate for every meal. It
// keeps the analysis flow usable in demos without cloud credentials.
type Canned struct{}

type cannedFactory struct{}

func (cannedFactory) CreateAnalyzer(context.Context) (Analyzer, error) {
	return Canned{}, nil
}

// Analyze returns a fixed estimate labelled with the description, if any.
func (Canned) Analyze(_ context.Context, in Input) (*models.NutritionData, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = "Image analysis"
	}
	confidence := 0.6
	return &models.NutritionData{
		FoodDescription: desc,
		Calories:        300,
		Protein:         15,
		Carbs:           35,
		Fat:             12,
		Quantity:        1,
		Unit:            "serving",
		Confidence:      &confidence,
	}, nil
}

func (Canned) Close() error { return nil }
