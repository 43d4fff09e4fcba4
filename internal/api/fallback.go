package api

import (
	"strings"
	"time"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
)

// Demo data served when the backend cannot be reached.

const demoToken = "demo-token"

var demoFoods = []models.FoodItem{
	{ID: 1, Name: "Grilled Chicken Breast", Calories: 231, Protein: 43.5, Carbs: 0, Fat: 5, Source: "local"},
	{ID: 2, Name: "Brown Rice (1 cup)", Calories: 216, Protein: 5, Carbs: 45, Fat: 1.8, Source: "local"},
	{ID: 3, Name: "Salmon Fillet", Calories: 206, Protein: 22, Carbs: 0, Fat: 12, Source: "local"},
	{ID: 4, Name: "Greek Yogurt", Calories: 100, Protein: 17, Carbs: 6, Fat: 0, Source: "local"},
	{ID: 5, Name: "Avocado", Calories: 234, Protein: 3, Carbs: 12, Fat: 21, Source: "local"},
}

func demoSearch(query string) []models.FoodItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.FoodItem, 0, len(demoFoods))
	for _, f := range demoFoods {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			out = append(out, f)
		}
	}
	return out
}

func demoUser(username, email string) *models.User {
	if email == "" {
		email = username + "@demo.com"
	}
	return &models.User{ID: 1, Username: username, Email: email}
}

func demoAnalysis() *models.NutritionData {
	confidence := 0.85
	return &models.NutritionData{
		FoodDescription:      "Mixed salad with grilled chicken",
		Calories:             350,
		Protein:              25,
		Carbs:                15,
		Fat:                  20,
		Fiber:                8,
		Sugar:                5,
		SodiumMg:             450,
		Quantity:             1,
		Unit:                 "serving",
		Confidence:           &confidence,
		Ingredients:          []string{"lettuce", "chicken breast", "tomatoes", "olive oil"},
		PortionSize:          "medium",
		MealType:             "lunch",
		CookingMethod:        "grilled",
		EstimatedWeightGrams: 300,
		NutritionTip:         nutrition.Tip(350, 25, 15, 20),
	}
}

// demoDaily returns three entries adding up to 1250 kcal, 85 g protein,
// 150 g carbs and 45 g fat.
func demoDaily(date string) models.DailyNutrition {
	entries := []models.FoodEntry{
		{Description: "Brown rice bowl", Calories: 550, Protein: 25, Carbs: 100, Fat: 18, Quantity: 1, Unit: "bowl", MealType: "dinner"},
		{Description: "Grilled chicken salad", Calories: 450, Protein: 40, Carbs: 20, Fat: 22, Quantity: 1, Unit: "serving", MealType: "lunch"},
		{Description: "Greek yogurt with berries", Calories: 250, Protein: 20, Carbs: 30, Fat: 5, Quantity: 1, Unit: "cup", MealType: "breakfast"},
	}
	totals := nutrition.Aggregate(entries)
	return models.DailyNutrition{
		Date: date,
		Nutrition: models.NutritionTotals{
			Calories:  totals.Calories,
			Protein:   totals.Protein,
			Carbs:     totals.Carbs,
			Fat:       totals.Fat,
			Fiber:     25,
			Sugar:     30,
			Sodium:    1200,
			FoodCount: len(entries),
		},
		FoodEntries: entries,
		Goals:       models.DefaultGoals,
	}
}

var demoDays = []models.DayStats{
	{Calories: 1800, Protein: 120, Carbs: 200, Fat: 60, Meals: 3},
	{Calories: 2100, Protein: 140, Carbs: 250, Fat: 70, Meals: 4},
	{Calories: 1950, Protein: 130, Carbs: 220, Fat: 65, Meals: 3},
}

// demoAnalytics covers the days up to and including today so streaks
// computed from it stay current.
func demoAnalytics(days int, today time.Time) models.AnalyticsData {
	n := min(days, len(demoDays))
	data := models.AnalyticsData{
		Period: models.AnalyticsPeriod{
			StartDate: today.AddDate(0, 0, -(days - 1)).Format(nutrition.DateLayout),
			EndDate:   today.Format(nutrition.DateLayout),
			Days:      days,
		},
		Averages: models.Goals{Calories: 1950, Protein: 130, Carbs: 223, Fat: 65},
		TopFoods: []models.TopFood{
			{Name: "Grilled Chicken Breast", Frequency: 5, AvgCalories: 231},
			{Name: "Brown Rice", Frequency: 4, AvgCalories: 216},
		},
		MealDistribution: []models.MealShare{
			{MealType: "breakfast", Count: 7, TotalCalories: 3500},
			{MealType: "lunch", Count: 7, TotalCalories: 4200},
		},
	}
	for i := 0; i < n; i++ {
		d := demoDays[i]
		d.Date = today.AddDate(0, 0, i-(n-1)).Format(nutrition.DateLayout)
		data.DailyData = append(data.DailyData, d)
	}
	return data
}

func demoWater(date string) models.WaterIntakeRecord {
	return models.WaterIntakeRecord{Date: date, TotalML: 1500, GoalML: 2500}
}

var (
	foodAdded     = models.WriteResponse{Success: true, Message: "Food added successfully"}
	waterRecorded = models.WriteResponse{Success: true, Message: "Water intake recorded"}
)

var offline = models.HealthStatus{
	Status:  "offline",
	Message: "Backend server is not responding - using demo mode",
}
