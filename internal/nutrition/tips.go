package nutrition

// Tip picks a short piece of advice for a meal from its macro profile. Rules
// are checked in order and the first match wins.
func Tip(calories, protein, carbs, fat float64) string {
	if MacroCalories(protein, carbs, fat) == 0 {
		return "Add more variety to your meals for better nutrition balance."
	}
	split := MacroPercentages(protein, carbs, fat)

	switch {
	case carbs > 100 && fat < 10:
		return "High in carbohydrates and low in fats. Good pre-workout energy; pair it with protein or fat for a better balance."
	case protein > 30:
		return "Rich in protein, which supports muscle recovery and keeps you full longer."
	case fat > 25:
		return "High fat content gives sustained energy; keep portions moderate if you are managing calories."
	case between(split.ProteinPct, 20, 35) && between(split.CarbsPct, 45, 65) && between(split.FatPct, 20, 35):
		return "Well-balanced macronutrient profile for steady energy and satiety."
	case protein < 10:
		return "Consider adding more protein to this meal for muscle support and satiety."
	case calories > 600:
		return "High-calorie meal, suited to active days or post-workout recovery. Balance it with lighter meals."
	case calories < 200:
		return "Light option, good as a snack or when managing portion sizes."
	default:
		return "Good nutritional choice! Include a variety of colorful foods for micronutrients."
	}
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// HydrationMessage returns the encouragement shown under the water tracker.
func HydrationMessage(percent int) string {
	switch {
	case percent >= 100:
		return "Hydration goal achieved! Excellent work!"
	case percent >= 75:
		return "Almost there! You're doing great."
	case percent >= 25:
		return "Good progress! Keep up the hydration."
	default:
		return "Stay hydrated! Drink more water throughout the day."
	}
}
