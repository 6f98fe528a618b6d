// Package templates renders the search UI. Components are written in .templ
// files; run `templ generate` after editing them.
package templates

import (
	"strconv"

	"github.com/JonMunkholm/restaurants/internal/core"
)

// SearchView is everything the search page shows.
type SearchView struct {
	Cuisine  string // Echoed back into the form
	Location string

	Searched bool // False on the landing page
	Records  []core.Record

	// Notice is set for empty results; Error for failed searches and for an
	// unusable dataset on the landing page.
	Notice *core.UserMessage
	Error  *core.UserMessage
}

func alertRole(kind string) string {
	if kind == "error" {
		return "alert"
	}
	return "status"
}

func resultCount(n int) string {
	if n == 1 {
		return "1 restaurant found"
	}
	return strconv.Itoa(n) + " restaurants found"
}

// formatCell renders a Record value: ratings with one decimal.
func formatCell(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
