package core

import (
	"strings"
	"time"

	"github.com/JonMunkholm/restaurants/internal/schema"
	"github.com/google/uuid"
)

// Row is one typed, defaulted restaurant record. Rows are owned by a Table
// and handed out by value.
type Row struct {
	Name            string
	Address         string
	Cuisines        string
	Locality        string
	AggregateRating float64
	Votes           int64

	// Line is the 1-indexed line of the source file the row started on.
	Line int

	cuisinesFold string
	localityFold string
}

func newRow(name, address, cuisines, locality string, rating float64, votes int64, line int) Row {
	return Row{
		Name:            name,
		Address:         address,
		Cuisines:        cuisines,
		Locality:        locality,
		AggregateRating: rating,
		Votes:           votes,
		Line:            line,
		cuisinesFold:    strings.ToLower(cuisines),
		localityFold:    strings.ToLower(locality),
	}
}

// Table is the immutable in-memory dataset. A Table is never modified after
// Load returns it; a reload builds a new one.
type Table struct {
	rows     []Row
	columns  []string
	source   string
	encoding string
	loadID   uuid.UUID
	loadedAt time.Time
	bytes    int64
}

// Len returns the number of rows. A nil Table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of all rows in source order.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return append([]Row(nil), t.rows...)
}

// Columns returns the canonical headers of the source, in source order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.columns...)
}

// Source returns the path the table was loaded from.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}

// Encoding returns the name of the decoding that succeeded.
func (t *Table) Encoding() string {
	if t == nil {
		return ""
	}
	return t.encoding
}

// LoadID identifies this particular load of the dataset.
func (t *Table) LoadID() uuid.UUID {
	if t == nil {
		return uuid.Nil
	}
	return t.loadID
}

// LoadedAt returns when the load finished.
func (t *Table) LoadedAt() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.loadedAt
}

// Bytes returns the size of the source as read.
func (t *Table) Bytes() int64 {
	if t == nil {
		return 0
	}
	return t.bytes
}

// Usable reports whether the table holds any rows. A successfully loaded
// table always does.
func (t *Table) Usable() bool {
	return t.Len() > 0
}

// Snapshot is the load-once state consulted by every search: either a valid
// Table, or an empty unusable Table paired with the error that caused it.
type Snapshot struct {
	Table *Table
	Err   error
}

// NewSnapshot wraps a successfully loaded table.
func NewSnapshot(t *Table) *Snapshot {
	return &Snapshot{Table: t}
}

// FailedSnapshot records a failed load of source.
func FailedSnapshot(source string, err error) *Snapshot {
	return &Snapshot{Table: &Table{source: source}, Err: err}
}

// Usable reports whether searches can run against the snapshot.
func (s *Snapshot) Usable() bool {
	return s != nil && s.Err == nil && s.Table.Usable()
}

// Query holds the two optional search strings. Absent and blank are the same.
type Query struct {
	Cuisine  string `json:"cuisine_query"`
	Location string `json:"location_query"`
}

// Normalize trims and lowercases both strings.
func (q Query) Normalize() Query {
	return Query{
		Cuisine:  strings.ToLower(strings.TrimSpace(q.Cuisine)),
		Location: strings.ToLower(strings.TrimSpace(q.Location)),
	}
}

// IsEmpty reports whether neither string carries search text.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Cuisine) == "" && strings.TrimSpace(q.Location) == ""
}

// Record is a search result row reduced to the display columns.
type Record struct {
	Name            string  `json:"name"`
	Address         string  `json:"address"`
	Cuisines        string  `json:"cuisines"`
	Locality        string  `json:"locality"`
	AggregateRating float64 `json:"aggregate_rating"`
	Votes           int64   `json:"votes"`
}

// Value returns the value of a display column by canonical name.
func (r Record) Value(column string) any {
	switch column {
	case schema.FieldName:
		return r.Name
	case schema.FieldAddress:
		return r.Address
	case schema.FieldCuisines:
		return r.Cuisines
	case schema.FieldLocality:
		return r.Locality
	case schema.FieldRating:
		return r.AggregateRating
	case schema.FieldVotes:
		return r.Votes
	default:
		return nil
	}
}

// Values returns the record's values in schema.DisplayColumns order.
func (r Record) Values() []any {
	out := make([]any, len(schema.DisplayColumns))
	for i, col := range schema.DisplayColumns {
		out[i] = r.Value(col)
	}
	return out
}

// Outcome is the variant of a search Result.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// EmptyReason says why a search produced no rows. It is not an error.
type EmptyReason string

const (
	ReasonNone       EmptyReason = ""
	ReasonNoCriteria EmptyReason = "no_criteria_given"
	ReasonNoMatches  EmptyReason = "no_matches"
)

// Result is the outcome of a search. Exactly one of Records (OutcomeOK),
// Reason (OutcomeEmpty) or Err (OutcomeError) is meaningful.
type Result struct {
	Outcome Outcome
	Query   Query // Normalized query that was executed
	Records []Record
	Reason  EmptyReason
	Err     error
	Message UserMessage // Renderable message for empty and error outcomes
}

// DatasetStatus describes the snapshot currently being served.
type DatasetStatus struct {
	Source          string       `json:"source"`
	Usable          bool         `json:"usable"`
	Rows            int          `json:"rows"`
	Columns         []string     `json:"columns,omitempty"`
	Encoding        string       `json:"encoding,omitempty"`
	LoadID          string       `json:"load_id,omitempty"`
	LoadedAt        *time.Time   `json:"loaded_at,omitempty"`
	Bytes           int64        `json:"bytes"`
	Error           *UserMessage `json:"error,omitempty"`
	LastReloadError *UserMessage `json:"last_reload_error,omitempty"`
	Reloading       bool         `json:"reloading"`
}
