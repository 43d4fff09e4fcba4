package models

// User is the profile returned by login and register.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Goals    *Goals `json:"goals,omitempty"`
}

// AuthResponse is the body of /register and /login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AddFoodRequest is the body of /add-food.
type AddFoodRequest struct {
	FoodEntry
	Date string `json:"date,omitempty"`
}

// WriteResponse is returned by the write endpoints.
type WriteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NutritionTotals is the backend's view of a day's totals.
type NutritionTotals struct {
	Calories  float64 `json:"calories"`
	Protein   float64 `json:"protein"`
	Carbs     float64 `json:"carbs"`
	Fat       float64 `json:"fat"`
	Fiber     float64 `json:"fiber,omitempty"`
	Sugar     float64 `json:"sugar,omitempty"`
	Sodium    float64 `json:"sodium,omitempty"`
	FoodCount int     `json:"food_count,omitempty"`
}

// DailyNutrition is the body of /daily-nutrition.
type DailyNutrition struct {
	Date        string          `json:"date"`
	Nutrition   NutritionTotals `json:"nutrition"`
	FoodEntries []FoodEntry     `json:"food_entries"`
	Goals       Goals           `json:"goals"`
}

// AnalyticsPeriod is the window an analytics report covers.
type AnalyticsPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// DayStats is one day of an analytics report.
type DayStats struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Meals    int     `json:"meals"`
}

// TopFood is a frequently logged food.
type TopFood struct {
	Name        string  `json:"name"`
	Frequency   int     `json:"frequency"`
	AvgCalories float64 `json:"avg_calories"`
}

// MealShare is the calorie share of one meal type.
type MealShare struct {
	MealType      string  `json:"meal_type"`
	Count         int     `json:"count"`
	TotalCalories float64 `json:"total_calories"`
}

// AnalyticsData is the body of /analytics.
type AnalyticsData struct {
	Period           AnalyticsPeriod `json:"period"`
	DailyData        []DayStats      `json:"daily_data"`
	Averages         Goals           `json:"averages"`
	TopFoods         []TopFood       `json:"top_foods"`
	MealDistribution []MealShare     `json:"meal_distribution"`
}

// WaterIntakeRequest is the body of POST /water-intake.
type WaterIntakeRequest struct {
	AmountML int    `json:"amount_ml"`
	Date     string `json:"date,omitempty"`
}

// WaterIntakeRecord is the body of GET /water-intake.
type WaterIntakeRecord struct {
	Date    string `json:"date"`
	TotalML int    `json:"total_ml"`
	GoalML  int    `json:"goal_ml"`
}

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
