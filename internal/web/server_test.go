package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/restaurants/internal/config"
	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetCSV = " Name ,Address,Cuisines,Locality,Aggregate Rating,Votes\n" +
	"Bella,1 Road,Italian,Connaught Place,4.2,100\n" +
	"Roma,2 Road,\"Italian, Pizza\",Saket,4.2,50\n" +
	"Dragon,3 Road,Chinese,Saket,3.9,80\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ShutdownTimeout: time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zomato.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestServer(t *testing.T, path string, cfg *config.Config) *Server {
	t.Helper()
	svc := core.OpenService(context.Background(), path, core.LoadOptions{})
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func do(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func search(cuisine, location string) string {
	v := url.Values{}
	v.Set("cuisine_query", cuisine)
	v.Set("location_query", location)
	return v.Encode()
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `name="cuisine_query"`)
	assert.Contains(t, body, `name="location_query"`)
	assert.NotContains(t, body, `role="alert"`)
}

func TestIndex_UnusableDataset(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"), testConfig())

	rec := do(s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Code: DATA001")
}

func TestFindRestaurants(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/find-restaurants?"+search("italian", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "2 restaurants found")
	assert.Contains(t, body, `value="italian"`)
	assert.Less(t, strings.Index(body, ">Bella<"), strings.Index(body, ">Roma<"))
	assert.NotContains(t, body, "Dragon")
}

func TestFindRestaurants_HTMXPartial(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/find-restaurants?"+search("", "SAKET"), map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Roma")
	assert.Contains(t, body, "Dragon")
}

func TestFindRestaurants_Empty(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/find-restaurants?"+search("  ", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a cuisine")

	rec = do(s, http.MethodGet, "/find-restaurants?"+search("sushi", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No restaurants found")
}

func TestFindRestaurants_UnusableDataset(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"), testConfig())

	rec := do(s, http.MethodGet, "/find-restaurants?"+search("italian", ""), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Code: DATA001")
}

func TestAPISearch(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/api/restaurants?"+search("Italian", "saket"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Outcome)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Roma", resp.Results[0].Name)
	assert.Equal(t, "italian", resp.Query.Cuisine)
	assert.Equal(t, []string{"name", "address", "cuisines", "locality", "aggregate_rating", "votes"}, resp.Columns)
}

func TestAPISearch_Empty(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/api/restaurants", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "empty", resp.Outcome)
	assert.Equal(t, core.ReasonNoCriteria, resp.Reason)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Results)
	require.NotNil(t, resp.Message)
	assert.Equal(t, "QRY001", resp.Message.Code)
}

func TestAPISearch_UnusableDataset(t *testing.T) {
	s := newTestServer(t, writeDataset(t, "name,address\nA,1 Road\n"), testConfig())

	rec := do(s, http.MethodGet, "/api/restaurants?"+search("italian", ""), nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "DATA004", resp.Code)
	assert.NotEmpty(t, resp.Message)
}

func TestDatasetStatus(t *testing.T) {
	path := writeDataset(t, datasetCSV)
	s := newTestServer(t, path, testConfig())

	rec := do(s, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st core.DatasetStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.True(t, st.Usable)
	assert.Equal(t, 3, st.Rows)
	assert.Equal(t, path, st.Source)
	assert.Equal(t, "utf-8", st.Encoding)
}

func TestReload(t *testing.T) {
	path := writeDataset(t, datasetCSV)
	s := newTestServer(t, path, testConfig())

	require.NoError(t, os.WriteFile(path, []byte(datasetCSV+"Sakura,4 Road,Sushi,Saket,4.8,10\n"), 0o644))

	rec := do(s, http.MethodPost, "/api/dataset/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Reloaded)
	assert.Equal(t, 4, resp.Status.Rows)
	assert.Nil(t, resp.Error)

	rec = do(s, http.MethodGet, "/api/restaurants?"+search("sushi", ""), nil)
	assert.Contains(t, rec.Body.String(), "Sakura")
}

func TestReload_FailureKeepsDataset(t *testing.T) {
	path := writeDataset(t, datasetCSV)
	s := newTestServer(t, path, testConfig())

	require.NoError(t, os.Remove(path))

	rec := do(s, http.MethodPost, "/api/dataset/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReloadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Reloaded)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DATA001", resp.Error.Code)
	assert.True(t, resp.Status.Usable)
	assert.Equal(t, 3, resp.Status.Rows)
}

func TestReload_StillUnusable(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"), testConfig())

	rec := do(s, http.MethodPost, "/api/dataset/reload", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "DATA001", resp.Code)
}

func TestReload_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/api/dataset/reload", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())
	rec := do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	s = newTestServer(t, writeDataset(t, ""), testConfig())
	rec = do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATA002")
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "REQ404", resp.Code)

	rec = do(s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	cfg := testConfig()
	cfg.Security.EnableCSP = false
	s = newTestServer(t, writeDataset(t, datasetCSV), cfg)
	rec = do(s, http.MethodGet, "/", nil)
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t, writeDataset(t, datasetCSV), testConfig())

	rec := do(s, http.MethodGet, "/static/style.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	s := newTestServer(t, writeDataset(t, datasetCSV), cfg)

	for i := 0; i < 2; i++ {
		rec := do(s, http.MethodGet, "/api/dataset", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := do(s, http.MethodGet, "/api/dataset", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "RATE001", resp.Code)

	// Another client is unaffected.
	req := httptest.NewRequest(http.MethodGet, "/api/dataset", nil)
	req.RemoteAddr = "192.0.2.99:1234"
	other := httptest.NewRecorder()
	s.Router().ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimiter_WindowReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	rl.stop()
	rl.stop()
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"reload in progress", core.ErrReloadInProgress, http.StatusConflict},
		{"table unavailable", &core.QueryError{Cause: &core.LoadError{Kind: core.KindNotFound}}, http.StatusServiceUnavailable},
		{"not found", &core.LoadError{Kind: core.KindNotFound}, http.StatusUnprocessableEntity},
		{"missing fields", &core.LoadError{Kind: core.KindMissingFields}, http.StatusUnprocessableEntity},
		{"unexpected", &core.LoadError{Kind: core.KindUnexpected}, http.StatusInternalServerError},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestWithRequestMetadata(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/dataset/reload", nil)
	req.RemoteAddr = "203.0.113.7:4444"

	ctx := WithRequestMetadata(context.Background(), req)
	assert.Equal(t, "203.0.113.7", core.ClientIPFromContext(ctx))
	assert.Equal(t, core.TriggerAPI, core.ReloadTriggerFromContext(ctx))
}
