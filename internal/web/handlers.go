package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/JonMunkholm/restaurants/internal/schema"
	"github.com/JonMunkholm/restaurants/internal/web/templates"
)

// SearchResponse is the JSON body of GET /api/restaurants.
type SearchResponse struct {
	Outcome string            `json:"outcome"`
	Query   core.Query        `json:"query"`
	Columns []string          `json:"columns"`
	Results []core.Record     `json:"results"`
	Count   int               `json:"count"`
	Reason  core.EmptyReason  `json:"reason,omitempty"`
	Message *core.UserMessage `json:"message,omitempty"`
}

// ReloadResponse is the JSON body of POST /api/dataset/reload.
type ReloadResponse struct {
	Reloaded bool               `json:"reloaded"`
	Status   core.DatasetStatus `json:"status"`
	Error    *core.UserMessage  `json:"error,omitempty"`
}

// queryFromRequest reads the two search parameters. Missing parameters are
// treated as blank.
func queryFromRequest(r *http.Request) core.Query {
	q := r.URL.Query()
	return core.Query{
		Cuisine:  q.Get("cuisine_query"),
		Location: q.Get("location_query"),
	}
}

// handleIndex renders the search page. An unusable dataset is shown up front.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := templates.SearchView{}
	if snap := s.service.Snapshot(); !snap.Usable() {
		msg := core.MapError(snap.Err)
		view.Error = &msg
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.SearchPage(view).Render(r.Context(), w)
}

// handleFindRestaurants runs a search and renders the page, or just the
// results region for HTMX requests.
func (s *Server) handleFindRestaurants(w http.ResponseWriter, r *http.Request) {
	query := queryFromRequest(r)
	result := s.service.Search(r.Context(), query)

	if result.Outcome == core.OutcomeError {
		s.respondError(w, r, result.Err, statusForError(result.Err))
		return
	}

	view := templates.SearchView{
		Cuisine:  query.Cuisine,
		Location: query.Location,
		Searched: true,
		Records:  result.Records,
	}
	if result.Outcome == core.OutcomeEmpty {
		msg := result.Message
		view.Notice = &msg
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		templates.Results(view).Render(r.Context(), w)
		return
	}
	templates.SearchPage(view).Render(r.Context(), w)
}

// handleAPISearch runs a search and returns the result as JSON.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	result := s.service.Search(r.Context(), queryFromRequest(r))

	if result.Outcome == core.OutcomeError {
		s.respondError(w, r, result.Err, statusForError(result.Err))
		return
	}

	resp := SearchResponse{
		Outcome: result.Outcome.String(),
		Query:   result.Query,
		Columns: schema.DisplayColumns,
		Results: result.Records,
		Count:   len(result.Records),
	}
	if resp.Results == nil {
		resp.Results = []core.Record{}
	}
	if result.Outcome == core.OutcomeEmpty {
		msg := result.Message
		resp.Reason = result.Reason
		resp.Message = &msg
	}
	writeJSON(w, resp)
}

// handleDatasetStatus returns the state of the served dataset.
func (s *Server) handleDatasetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Status())
}

// handleReload reloads the dataset from disk. A failed reload that kept the
// previous dataset still answers 200 with the error attached.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)

	snap, err := s.service.Reload(ctx)
	if err != nil && !snap.Usable() {
		s.respondError(w, r, err, statusForError(err))
		return
	}
	if errors.Is(err, core.ErrReloadInProgress) {
		s.respondError(w, r, err, http.StatusConflict)
		return
	}

	resp := ReloadResponse{
		Reloaded: err == nil,
		Status:   s.service.Status(),
	}
	if err != nil {
		msg := core.MapError(err)
		resp.Error = &msg
	}
	writeJSON(w, resp)
}

// handleHealth reports 200 when a usable dataset is being served.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	if !snap.Usable() {
		msg := core.MapError(snap.Err)
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  msg,
		})
		return
	}
	writeJSON(w, map[string]any{
		"status":  "ok",
		"rows":    snap.Table.Len(),
		"load_id": snap.Table.LoadID().String(),
	})
}
