package constants

// QualityCategory is the canonical water-quality classification derived
// from a sample's HPI value.
type QualityCategory string

// Stable values (store these exact strings in DB).
const (
	QualityExcellent QualityCategory = "excellent" // HPI < 25
	QualityGood      QualityCategory = "good"      // 25 <= HPI < 50
	QualityPoor      QualityCategory = "poor"      // 50 <= HPI < 75
	QualityVeryPoor  QualityCategory = "very_poor" // HPI >= 75
)

var allCategories = []QualityCategory{
	QualityExcellent,
	QualityGood,
	QualityPoor,
	QualityVeryPoor,
}

// CategoriesAsStrings returns the quality categories for client-side display.
func CategoriesAsStrings() []string {
	result := make([]string, len(allCategories))
	for i, c := range allCategories {
		result[i] = string(c)
	}
	return result
}
