package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sells-group/scrape-service/internal/config"
)

const (
	// maxDownloadBytes caps how much of a page we will download.
	maxDownloadBytes = 1_000_000

	// maxRedirects bounds redirect chains. Every hop is re-checked against
	// the host guard before it is followed.
	maxRedirects = 10
)

// scrapableContentTypes are the content types the extractor understands.
var scrapableContentTypes = []string{"text/html", "application/xhtml+xml"}

// Fetcher downloads pages within the service's safety policy: HTML only,
// bounded size, redirects re-validated hop by hop.
type Fetcher struct {
	client       *http.Client
	robotsClient *http.Client
	userAgent    string
}

// NewFetcher builds a Fetcher from config. The robots client gets its own
// timeout so a slow robots.txt does not count against the page fetch.
func NewFetcher(cfg config.ScrapeConfig) *Fetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: time.Duration(cfg.ConnectTimeoutSecs) * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   time.Duration(cfg.RequestTimeoutSecs) * time.Second,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errf(KindConnection, "Request failed: too many redirects")
				}
				if gerr := validateTarget(req.Context(), req.URL); gerr != nil {
					return gerr
				}
				return nil
			},
		},
		robotsClient: &http.Client{
			Timeout:   time.Duration(cfg.RobotsTimeoutSecs) * time.Second,
			Transport: transport,
		},
		userAgent: cfg.UserAgent,
	}
}

// fetchHTML downloads the target and returns its decoded HTML plus non-fatal
// warnings. The body is read through a limit reader so an unbounded response
// cannot exceed maxDownloadBytes even when Content-Length lies.
func (f *Fetcher) fetchHTML(ctx context.Context, u *url.URL) (string, []string, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", nil, wrapf(KindInvalidScheme, err, "Invalid URL.")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, classifyFetchErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, errf(KindUpstreamStatus, "Upstream returned status %d.", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isScrapable(contentType) {
		return "", nil, errf(KindUnsupportedType, "Unsupported content type.")
	}

	if resp.ContentLength > maxDownloadBytes {
		return "", nil, errf(KindTooLarge, "Page is too large to fetch safely.")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return "", nil, classifyFetchErr(err)
	}
	if len(body) > maxDownloadBytes {
		return "", nil, errf(KindTooLarge, "Page is too large to fetch safely.")
	}

	html := strings.ToValidUTF8(string(body), "�")
	return html, []string{fmt.Sprintf("Content-Type: %s", contentType)}, nil
}

func isScrapable(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, allowed := range scrapableContentTypes {
		if strings.Contains(ct, allowed) {
			return true
		}
	}
	return false
}

// classifyFetchErr sorts transport failures into the error taxonomy. Host
// guard rejections raised during redirects pass through unchanged.
func classifyFetchErr(err error) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
		return wrapf(KindTimeout, err, "Request timed out.")
	}
	return wrapf(KindConnection, err, "Request failed: %v", err)
}
