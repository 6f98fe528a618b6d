package schema

import (
	"fmt"
	"sort"
	"strings"
)

// CanonicalName trims, lowercases and replaces each interior space with an
// underscore. "  Aggregate Rating " becomes "aggregate_rating".
func CanonicalName(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.ReplaceAll(h, " ", "_")
}

// Normalize maps each original header to its canonical name.
// It never fails; unknown headers simply normalize to some string.
func Normalize(headers []string) map[string]string {
	out := make(map[string]string, len(headers))
	for _, h := range headers {
		out[h] = CanonicalName(h)
	}
	return out
}

// Canonicalize returns the canonical names in source order.
func Canonicalize(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = CanonicalName(h)
	}
	return out
}

// MissingFieldsError reports required fields absent from a header row.
type MissingFieldsError struct {
	Missing   []string // Sorted
	Available []string // Canonical headers that were present, in source order
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required columns %v (available columns: %v)", e.Missing, e.Available)
}

// Validate checks that every required name is among the canonical headers.
// On failure it returns a *MissingFieldsError.
func Validate(canonical []string, required []string) error {
	present := make(map[string]struct{}, len(canonical))
	for _, h := range canonical {
		present[h] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return &MissingFieldsError{
		Missing:   missing,
		Available: append([]string(nil), canonical...),
	}
}

// HeaderIndex maps canonical column names to their position in a record.
type HeaderIndex map[string]int

// MakeHeaderIndex indexes canonical headers. When two headers normalize to the
// same name the first one wins; the rest are returned as duplicates.
func MakeHeaderIndex(canonical []string) (HeaderIndex, []string) {
	idx := make(HeaderIndex, len(canonical))
	var dups []string
	for i, h := range canonical {
		if _, ok := idx[h]; ok {
			dups = append(dups, h)
			continue
		}
		idx[h] = i
	}
	return idx, dups
}

// Cell returns the raw value of a column, or "" when the column is absent
// or the record is short.
func (idx HeaderIndex) Cell(record []string, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(record) {
		return ""
	}
	return record[pos]
}
