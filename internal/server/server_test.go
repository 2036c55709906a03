package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-service/internal/config"
	"github.com/sells-group/scrape-service/internal/model"
	"github.com/sells-group/scrape-service/internal/scrape"
)

type stubRunner struct {
	resp   *model.ScrapeResponse
	err    error
	gotURL string
}

func (s *stubRunner) Run(_ context.Context, rawURL string) (*model.ScrapeResponse, error) {
	s.gotURL = rawURL
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
	}
}

func postScrape(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/scrape", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(&stubRunner{}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestScrapeEndpoint_Success(t *testing.T) {
	runner := &stubRunner{resp: &model.ScrapeResponse{
		FetchedURL: "https://example.com/",
		Extraction: model.Extraction{
			Title:     "Example Domain",
			WordCount: 12,
		},
		Warnings: []string{"Content-Type: text/html"},
	}}
	router := NewRouter(runner, testServerConfig())

	rec := postScrape(t, router, `{"url": "https://example.com/"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com/", runner.gotURL)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://example.com/", body["fetched_url"])
	assert.Equal(t, "Example Domain", body["title"])
	assert.Equal(t, float64(12), body["word_count"])
	assert.Equal(t, []any{"Content-Type: text/html"}, body["warnings"])
}

func TestScrapeEndpoint_InvalidBody(t *testing.T) {
	router := NewRouter(&stubRunner{}, testServerConfig())

	rec := postScrape(t, router, "not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
}

func TestScrapeEndpoint_MissingURL(t *testing.T) {
	router := NewRouter(&stubRunner{}, testServerConfig())

	rec := postScrape(t, router, `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"url is required"}`, rec.Body.String())
}

func TestScrapeEndpoint_MapsPipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "robots denial",
			err:        &scrape.Error{Kind: scrape.KindRobotsDenied, Message: "robots.txt forbids scraping."},
			wantStatus: http.StatusForbidden,
			wantDetail: "robots.txt forbids scraping.",
		},
		{
			name:       "oversize page",
			err:        &scrape.Error{Kind: scrape.KindTooLarge, Message: "Page is too large to fetch safely."},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantDetail: "Page is too large to fetch safely.",
		},
		{
			name:       "unclassified",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Scrape failed unexpectedly.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(&stubRunner{err: tt.err}, testServerConfig())

			rec := postScrape(t, router, `{"url": "https://example.com/"}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantDetail, body["error"])
		})
	}
}

func TestScrapeEndpoint_CORSPreflight(t *testing.T) {
	router := NewRouter(&stubRunner{}, testServerConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/scrape", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestScrapeEndpoint_RejectsGet(t *testing.T) {
	router := NewRouter(&stubRunner{}, testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/scrape", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
