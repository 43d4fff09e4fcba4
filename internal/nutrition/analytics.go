package nutrition

import (
	"math"

	"github.com/franckalain/fittrack/internal/models"
)

// MealTypeAverage is the average calories of one meal type.
type MealTypeAverage struct {
	MealType    string `json:"meal_type"`
	Count       int    `json:"count"`
	AvgCalories int    `json:"avg_calories"`
}

// AnalyticsSummary holds the figures shown on the analytics tab.
type AnalyticsSummary struct {
	DaysTracked int               `json:"days_tracked"`
	TotalMeals  int               `json:"total_meals"`
	AvgCalories int               `json:"avg_calories"`
	AvgProtein  int               `json:"avg_protein"`
	MealTypes   []MealTypeAverage `json:"meal_types"`
}

// Summarize derives the analytics tab figures from a report.
func Summarize(data models.AnalyticsData) AnalyticsSummary {
	s := AnalyticsSummary{
		DaysTracked: len(data.DailyData),
		AvgCalories: int(math.Round(data.Averages.Calories)),
		AvgProtein:  int(math.Round(data.Averages.Protein)),
	}
	for _, d := range data.DailyData {
		s.TotalMeals += d.Meals
	}
	for _, m := range data.MealDistribution {
		avg := MealTypeAverage{MealType: m.MealType, Count: m.Count}
		if m.Count > 0 {
			avg.AvgCalories = int(math.Round(m.TotalCalories / float64(m.Count)))
		}
		s.MealTypes = append(s.MealTypes, avg)
	}
	return s
}
