package table

import (
	"math"
	"strconv"
)

// ParseNumber interprets a cell as a float64. Empty, malformed and NaN cells are not numbers.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v in plain decimal notation with the fewest digits that
// parse back to v. Exponent form is never used.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
