package scrape

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scrape-service/internal/model"
)

type stubEnricher struct {
	enrichment *model.Enrichment
	err        error
	calls      int
}

func (s *stubEnricher) Enrich(_ context.Context, _ *model.Extraction) (*model.Enrichment, error) {
	s.calls++
	return s.enrichment, s.err
}

const testPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <title>Example Domain</title>
  <meta name="description" content="An example page.">
</head>
<body>
  <h1>Example Domain</h1>
  <p>This domain is for use in illustrative examples in documents.</p>
  <a href="https://www.iana.org/domains/example">More information</a>
</body>
</html>`

func siteServer(t *testing.T, robots string, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(robots))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func publicResolver(t *testing.T) {
	t.Helper()
	stubResolver(t, []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil)
}

func TestPipelineRun_Success(t *testing.T) {
	publicResolver(t)
	srv := siteServer(t, "User-agent: *\nAllow: /\n", testPage)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	resp, err := p.Run(context.Background(), "http://site.test/page")

	require.NoError(t, err)
	assert.Equal(t, "http://site.test/page", resp.FetchedURL)
	assert.Equal(t, "Example Domain", resp.Title)
	assert.Equal(t, "An example page.", resp.Description)
	assert.Equal(t, "en", resp.Language)
	assert.Greater(t, resp.WordCount, 5)
	assert.Equal(t, []string{"https://www.iana.org/domains/example"}, resp.Links)
	assert.Equal(t, []string{"Content-Type: text/html; charset=utf-8"}, resp.Warnings)
	assert.Nil(t, resp.Enrichment)
}

func TestPipelineRun_ArticleScenario(t *testing.T) {
	publicResolver(t)
	article := `<html lang="en"><head><title>Article</title></head><body>
<h1>One Heading</h1>
<p>Body copy with enough words to count.</p>
<a href="/first">First</a>
<a href="/second">Second</a>
<a href="/first">First again</a>
</body></html>`
	srv := siteServer(t, "User-agent: *\nAllow: /\n", article)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	resp, err := p.Run(context.Background(), "http://site.test/article")

	require.NoError(t, err)
	assert.Len(t, resp.Headings["h1"], 1)
	assert.Equal(t, []string{"http://site.test/first", "http://site.test/second"}, resp.Links)
	assert.Contains(t, resp.Warnings, "Content-Type: text/html; charset=utf-8")
	assert.Nil(t, resp.Enrichment)
}

func TestPipelineRun_RejectsUnparseableURL(t *testing.T) {
	p := NewPipeline(NewFetcher(testScrapeConfig()), nil)
	_, err := p.Run(context.Background(), "http://%zz")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindInvalidScheme, serr.Kind)
	assert.Equal(t, "Invalid URL.", serr.Message)
}

func TestPipelineRun_RejectsBlockedTarget(t *testing.T) {
	p := NewPipeline(NewFetcher(testScrapeConfig()), nil)
	_, err := p.Run(context.Background(), "http://localhost:8080/admin")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindBlockedHost, serr.Kind)
	assert.Equal(t, "Local targets are not allowed.", serr.Message)
}

func TestPipelineRun_RobotsDenied(t *testing.T) {
	publicResolver(t)
	srv := siteServer(t, "User-agent: *\nDisallow: /\n", testPage)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	_, err := p.Run(context.Background(), "http://site.test/page")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindRobotsDenied, serr.Kind)
	assert.Equal(t, "robots.txt forbids scraping.", serr.Message)
	assert.Equal(t, http.StatusForbidden, serr.HTTPStatus())
}

func TestPipelineRun_RobotsUnreachableWarns(t *testing.T) {
	publicResolver(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			// Drop the connection so the robots download itself fails.
			if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
				_ = conn.Close()
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testPage))
	}))
	t.Cleanup(srv.Close)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	resp, err := p.Run(context.Background(), "http://site.test/page")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"robots.txt could not be downloaded; assuming allow.",
		"Content-Type: text/html",
	}, resp.Warnings)
}

func TestPipelineRun_FetchErrorPropagates(t *testing.T) {
	publicResolver(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	_, err := p.Run(context.Background(), "http://site.test/page")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindUpstreamStatus, serr.Kind)
	assert.Equal(t, "Upstream returned status 503.", serr.Message)
}

func TestPipelineRun_LoginWallAborts(t *testing.T) {
	publicResolver(t)
	page := `<html><body><form id="signin"><input type="password" name="pw"></form></body></html>`
	srv := siteServer(t, "", page)

	p := NewPipeline(newTestFetcher(t, srv), nil)
	_, err := p.Run(context.Background(), "http://site.test/account")

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, KindLoginWall, serr.Kind)
	assert.Equal(t, "Login form detected; scraping aborted.", serr.Message)
	assert.Equal(t, http.StatusBadRequest, serr.HTTPStatus())
}

func TestPipelineRun_EnrichmentAttached(t *testing.T) {
	publicResolver(t)
	srv := siteServer(t, "", testPage)

	stub := &stubEnricher{enrichment: &model.Enrichment{Summary: "a short reference page", Category: "Reference"}}
	p := NewPipeline(newTestFetcher(t, srv), stub)
	resp, err := p.Run(context.Background(), "http://site.test/page")

	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	require.NotNil(t, resp.Enrichment)
	assert.Equal(t, "a short reference page", resp.Summary)
	assert.Equal(t, "Reference", resp.Category)
}

func TestPipelineRun_EnrichmentFailureDegrades(t *testing.T) {
	publicResolver(t)
	srv := siteServer(t, "", testPage)

	stub := &stubEnricher{err: errors.New("api down")}
	p := NewPipeline(newTestFetcher(t, srv), stub)
	resp, err := p.Run(context.Background(), "http://site.test/page")

	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Nil(t, resp.Enrichment)
}
