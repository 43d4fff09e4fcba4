package nutrition

import "math"

// Energy per gram of each macronutrient, in kcal.
const (
	ProteinKcalPerGram = 4
	CarbsKcalPerGram   = 4
	FatKcalPerGram     = 9
)

// MacroCalories returns the calories contributed by the given macros.
func MacroCalories(protein, carbs, fat float64) float64 {
	return ProteinKcalPerGram*protein + CarbsKcalPerGram*carbs + FatKcalPerGram*fat
}

// MacroSplit is each macro's share of macro calories, in percent.
type MacroSplit struct {
	ProteinPct float64 `json:"protein_pct"`
	CarbsPct   float64 `json:"carbs_pct"`
	FatPct     float64 `json:"fat_pct"`
}

// MacroPercentages splits macro calories by source. A zero total yields an
// all-zero split.
func MacroPercentages(protein, carbs, fat float64) MacroSplit {
	total := MacroCalories(protein, carbs, fat)
	if total <= 0 {
		return MacroSplit{}
	}
	return MacroSplit{
		ProteinPct: ProteinKcalPerGram * protein / total * 100,
		CarbsPct:   CarbsKcalPerGram * carbs / total * 100,
		FatPct:     FatKcalPerGram * fat / total * 100,
	}
}

// Rounded returns the split rounded to whole percents for legends.
func (s MacroSplit) Rounded() (protein, carbs, fat int) {
	return int(math.Round(s.ProteinPct)), int(math.Round(s.CarbsPct)), int(math.Round(s.FatPct))
}

// Arcs positions the three macro segments on a ring. Segments are drawn in
// the order protein, carbs, fat and are contiguous.
type Arcs struct {
	Circumference    float64 `json:"circumference"`
	ProteinOffset    float64 `json:"protein_offset"`
	CarbsOffsetStart float64 `json:"carbs_offset_start"`
	FatOffsetStart   float64 `json:"fat_offset_start"`
	ProteinLength    float64 `json:"protein_length"`
	CarbsLength      float64 `json:"carbs_length"`
	FatLength        float64 `json:"fat_length"`
}

// ArcOffsets computes segment starts and lengths for a ring of the given
// circumference.
func ArcOffsets(split MacroSplit, circumference float64) Arcs {
	return Arcs{
		Circumference:    circumference,
		ProteinOffset:    0,
		CarbsOffsetStart: split.ProteinPct / 100 * circumference,
		FatOffsetStart:   (split.ProteinPct + split.CarbsPct) / 100 * circumference,
		ProteinLength:    split.ProteinPct / 100 * circumference,
		CarbsLength:      split.CarbsPct / 100 * circumference,
		FatLength:        split.FatPct / 100 * circumference,
	}
}

// Circumference of a circle with the given radius.
func Circumference(radius float64) float64 {
	return 2 * math.Pi * radius
}

// CircularProgress returns value/limit as a percent clamped to [0,100].
func CircularProgress(value, limit float64) float64 {
	if limit <= 0 || math.IsNaN(value) {
		return 0
	}
	return clamp(value/limit*100, 0, 100)
}

// RingDashOffset is the stroke offset that leaves percent of the ring drawn.
func RingDashOffset(percent, circumference float64) float64 {
	return circumference - clamp(percent, 0, 100)/100*circumference
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
