package domain

import (
	"fmt"
	"strings"
)

// Emulsion limits for drawing-line coolant.
const (
	EmulsionPHMin       = 8.5
	EmulsionPHMax       = 9.5
	EmulsionBacteriaMax = 100000
)

// EvaluateEmulsion reports whether a reading is within limits and, if not,
// what the operator should do. A missing bacteria count is within limits.
func EvaluateEmulsion(ph float64, bacteria *float64) (withinSpec bool, action string) {
	var actions []string
	if ph < EmulsionPHMin || ph > EmulsionPHMax {
		actions = append(actions, "pH out of range. Adjust emulsion concentration.")
	}
	if bacteria != nil && *bacteria > EmulsionBacteriaMax {
		actions = append(actions, fmt.Sprintf("Bacteria count too high (%s cfu/ml). Add Grotan WS.", formatCount(*bacteria)))
	}
	return len(actions) == 0, strings.Join(actions, " ")
}

func formatCount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
