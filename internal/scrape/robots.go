package scrape

import (
	"context"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const robotsUnreachableWarning = "robots.txt could not be downloaded; assuming allow."

// checkRobots downloads the target host's robots.txt and tests the request
// path. Download or parse failures allow the fetch with a warning. A parsed
// response yields its verdict: 4xx statuses allow everything, 5xx disallow
// everything.
func (f *Fetcher) checkRobots(ctx context.Context, u *url.URL) (bool, []string) {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true, []string{robotsUnreachableWarning}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.robotsClient.Do(req)
	if err != nil {
		zap.L().Debug("robots: download failed, allowing",
			zap.String("robots_url", robotsURL),
			zap.Error(err),
		)
		return true, []string{robotsUnreachableWarning}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		zap.L().Debug("robots: parse failed, allowing",
			zap.String("robots_url", robotsURL),
			zap.Error(err),
		)
		return true, []string{robotsUnreachableWarning}
	}

	return data.FindGroup(f.userAgent).Test(u.RequestURI()), nil
}
