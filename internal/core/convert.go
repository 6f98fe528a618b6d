package core

// convert.go coerces raw CSV cells into Row values.
//
// Dataset exports are messy:
//   - Numeric columns contain blanks, "-", "NEW" or "Not rated"
//   - Spreadsheet exports wrap cells as ="value"
//   - Vote counts occasionally arrive as decimals or negatives
//
// Text cells fall back to a per-column default; numeric cells fall back to 0.
// No cell value ever fails a load.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/restaurants/internal/schema"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation. Thousands separators
// are not accepted.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Unwraps the spreadsheet text formula ="..."
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// ParseNumber parses a cleaned cell as a float. It reports false for
// anything that is not a plain finite number.
func ParseNumber(s string) (float64, bool) {
	s = CleanCell(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ToRating converts a rating cell. Unparseable and negative values become 0.
func ToRating(s string) float64 {
	f, ok := ParseNumber(s)
	if !ok || f < 0 {
		return 0
	}
	return f
}

// ToVotes converts a vote count cell. Fractions are truncated; unparseable
// and negative values become 0.
func ToVotes(s string) int64 {
	f, ok := ParseNumber(s)
	if !ok || f < 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

// ToText returns the cleaned cell, or def when it is blank.
func ToText(s, def string) string {
	s = CleanCell(s)
	if s == "" {
		return def
	}
	return s
}

// coerceCell converts a raw cell to the type its column declares.
func coerceCell(spec schema.FieldSpec, cell string) any {
	switch spec.Type {
	case schema.FieldFloat:
		return ToRating(cell)
	case schema.FieldInteger:
		return ToVotes(cell)
	default:
		return ToText(cell, spec.Default)
	}
}

// buildRow coerces one record. Cells missing from a short record count as blank.
func buildRow(record []string, idx schema.HeaderIndex, line int) Row {
	cells := make(map[string]any, len(schema.RestaurantFieldSpecs))
	for _, spec := range schema.RestaurantFieldSpecs {
		cells[spec.Name] = coerceCell(spec, idx.Cell(record, spec.Name))
	}
	return newRow(
		cells[schema.FieldName].(string),
		cells[schema.FieldAddress].(string),
		cells[schema.FieldCuisines].(string),
		cells[schema.FieldLocality].(string),
		cells[schema.FieldRating].(float64),
		cells[schema.FieldVotes].(int64),
		line,
	)
}
