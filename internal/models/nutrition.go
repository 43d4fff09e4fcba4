package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// JustNow is the display sentinel for entries logged in this session that
// have not been stamped by the backend yet.
const JustNow = "Just now"

// Timestamp is an instant that encodes the zero time as JustNow.
type Timestamp struct {
	time.Time
}

// Now returns the sentinel timestamp.
func Now() Timestamp { return Timestamp{} }

// IsJustNow reports whether the timestamp is the sentinel.
func (t Timestamp) IsJustNow() bool { return t.Time.IsZero() }

// Layouts without a zone are the backend's SQLite CURRENT_TIMESTAMP, which
// is UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsJustNow() {
		return json.Marshal(JustNow)
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, JustNow) {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// FoodEntry is one logged food item. Entries are never edited in place.
type FoodEntry struct {
	Description string    `json:"food_description"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein_grams"`
	Carbs       float64   `json:"carb_grams"`
	Fat         float64   `json:"fat_grams"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	Timestamp   Timestamp `json:"timestamp"`
	MealType    string    `json:"meal_type,omitempty"`

	// Confidence is only set for AI-derived entries.
	Confidence *float64 `json:"confidence,omitempty"`
}

// Validate checks the numeric ranges of an entry.
func (e FoodEntry) Validate() error {
	switch {
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("food description is required")
	case e.Calories < 0, e.Protein < 0, e.Carbs < 0, e.Fat < 0:
		return fmt.Errorf("nutrient values must not be negative")
	case e.Quantity <= 0:
		return fmt.Errorf("quantity must be positive")
	case e.Confidence != nil && (*e.Confidence < 0 || *e.Confidence > 1):
		return fmt.Errorf("confidence must be within [0,1]")
	}
	return nil
}

// NutritionData is the result of an AI food analysis.
type NutritionData struct {
	FoodDescription      string   `json:"food_description"`
	Calories             float64  `json:"calories"`
	Protein              float64  `json:"protein_grams"`
	Carbs                float64  `json:"carb_grams"`
	Fat                  float64  `json:"fat_grams"`
	Fiber                float64  `json:"fiber_grams,omitempty"`
	Sugar                float64  `json:"sugar_grams,omitempty"`
	SodiumMg             float64  `json:"sodium_mg,omitempty"`
	Quantity             float64  `json:"quantity"`
	Unit                 string   `json:"unit"`
	Confidence           *float64 `json:"confidence,omitempty"`
	Ingredients          []string `json:"ingredients,omitempty"`
	PortionSize          string   `json:"portion_size,omitempty"`
	MealType             string   `json:"meal_type,omitempty"`
	CookingMethod        string   `json:"cooking_method,omitempty"`
	EstimatedWeightGrams float64  `json:"estimated_weight_grams,omitempty"`
	NutritionTip         string   `json:"nutrition_tip,omitempty"`
	Error                string   `json:"error,omitempty"`
}

// Entry converts an analysis into a loggable entry stamped JustNow.
func (n NutritionData) Entry() FoodEntry {
	quantity := n.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	unit := n.Unit
	if unit == "" {
		unit = "serving"
	}
	return FoodEntry{
		Description: n.FoodDescription,
		Calories:    n.Calories,
		Protein:     n.Protein,
		Carbs:       n.Carbs,
		Fat:         n.Fat,
		Quantity:    quantity,
		Unit:        unit,
		MealType:    n.MealType,
		Confidence:  n.Confidence,
	}
}

// FoodItem is a food database search hit.
type FoodItem struct {
	ID          int     `json:"id,omitempty"`
	FdcID       int     `json:"fdc_id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	BrandName   string  `json:"brand_name,omitempty"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	Fiber       float64 `json:"fiber,omitempty"`
	Sugar       float64 `json:"sugar,omitempty"`
	Sodium      float64 `json:"sodium,omitempty"`
	Source      string  `json:"source,omitempty"`
}

// Label returns the best display name of the item.
func (f FoodItem) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Description
}

// Entry converts a search hit into a single-serving entry.
func (f FoodItem) Entry() FoodEntry {
	return FoodEntry{
		Description: f.Label(),
		Calories:    f.Calories,
		Protein:     f.Protein,
		Carbs:       f.Carbs,
		Fat:         f.Fat,
		Quantity:    1,
		Unit:        "serving",
	}
}

// Goals holds the per-user daily targets.
type Goals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DefaultGoals is used until a profile supplies its own targets.
var DefaultGoals = Goals{Calories: 2000, Protein: 150, Carbs: 250, Fat: 65}

// Valid reports whether every target is positive.
func (g Goals) Valid() bool {
	return g.Calories > 0 && g.Protein > 0 && g.Carbs > 0 && g.Fat > 0
}
