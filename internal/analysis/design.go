package analysis

import "cvscore/internal/types"

const placeholderDesignScore = 75

// CalculateDesignScore returns a fixed placeholder. Visual design cannot be
// judged from structured CV data.
func CalculateDesignScore(types.CVRecord) types.DesignScore {
	return types.DesignScore{
		Overall:     placeholderDesignScore,
		Layout:      placeholderDesignScore,
		Typography:  placeholderDesignScore,
		Consistency: placeholderDesignScore,
		Notes:       []string{"Design scoring needs the rendered document and is not evaluated from CV data"},
	}
}
