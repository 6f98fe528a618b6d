package core

import (
	"sort"
	"strings"
)

// Search filters the snapshot's table by the query and returns the matches
// sorted by rating, then votes (both descending), then name (ascending).
//
// Matching is a case-insensitive substring test: the cuisine query against
// the cuisines column, the location query against the locality column. When
// both are given a row must match both. The table is never modified.
func Search(snap *Snapshot, q Query) Result {
	nq := q.Normalize()

	if !snap.Usable() {
		var cause error
		if snap != nil {
			cause = snap.Err
		}
		err := &QueryError{Cause: cause}
		return Result{
			Outcome: OutcomeError,
			Query:   nq,
			Err:     err,
			Message: MapError(err),
		}
	}

	if nq.IsEmpty() {
		return emptyResult(nq, ReasonNoCriteria)
	}

	matched := filterRows(snap.Table.rows, nq)
	if len(matched) == 0 {
		return emptyResult(nq, ReasonNoMatches)
	}

	sortRows(matched)

	return Result{
		Outcome: OutcomeOK,
		Query:   nq,
		Records: project(matched),
	}
}

func emptyResult(q Query, reason EmptyReason) Result {
	return Result{
		Outcome: OutcomeEmpty,
		Query:   q,
		Reason:  reason,
		Message: EmptyMessage(reason),
	}
}

// filterRows expects a normalized query.
func filterRows(rows []Row, q Query) []Row {
	var out []Row
	for _, row := range rows {
		if q.Cuisine != "" && !strings.Contains(row.cuisinesFold, q.Cuisine) {
			continue
		}
		if q.Location != "" && !strings.Contains(row.localityFold, q.Location) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func lessRow(a, b Row) bool {
	if a.AggregateRating != b.AggregateRating {
		return a.AggregateRating > b.AggregateRating
	}
	if a.Votes != b.Votes {
		return a.Votes > b.Votes
	}
	return a.Name < b.Name
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessRow(rows[i], rows[j])
	})
}

func project(rows []Row) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = Record{
			Name:            row.Name,
			Address:         row.Address,
			Cuisines:        row.Cuisines,
			Locality:        row.Locality,
			AggregateRating: row.AggregateRating,
			Votes:           row.Votes,
		}
	}
	return out
}
