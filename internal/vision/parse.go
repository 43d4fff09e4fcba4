package vision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/franckalain/fittrack/internal/models"
)

// defaultConfidence is assumed when the model omits or garbles confidence.
const defaultConfidence = 0.75

// ParseAnalysis extracts the JSON object from a model reply and fills in
// missing or malformed fields. fallbackDesc names the food when the reply
// does not.
func ParseAnalysis(reply, fallbackDesc string) (*models.NutritionData, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	out := &models.NutritionData{
		FoodDescription: stringField(raw, "food_description", fallbackDesc),
		Calories:        numberField(raw, "calories", 0),
		Protein:         numberField(raw, "protein_grams", 0),
		Carbs:           numberField(raw, "carb_grams", 0),
		Fat:             numberField(raw, "fat_grams", 0),
		Quantity:        numberField(raw, "quantity", 0),
		Unit:            stringField(raw, "unit", "serving"),
	}
	confidence := numberField(raw, "confidence", defaultConfidence)
	if confidence < 0 || confidence > 1 {
		confidence = defaultConfidence
	}
	out.Confidence = &confidence
	return out, nil
}

func stringField(raw map[string]any, key, def string) string {
	if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func numberField(raw map[string]any, key string, def float64) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
