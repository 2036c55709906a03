// Package extract turns fetched HTML into the structured page record:
// metadata, visible text, resource references, and content blocks.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-service/internal/model"
)

// ErrLoginWall reports a page that is a login gate rather than content.
var ErrLoginWall = eris.New("login wall detected")

// Collection caps, enforced inside the loops so parsing stops early on
// pathological pages.
const (
	maxLinks       = 100
	maxImages      = 50
	maxVideos      = 20
	maxScripts     = 30
	maxStylesheets = 20
	maxTables      = 20
	maxForms       = 10
	maxButtons     = 50
	maxLists       = 30
	maxListItems   = 50
	maxParagraphs  = 100
	maxQuotes      = 30
	maxCodeBlocks  = 20

	maxExcerptRunes   = 1200
	maxCodeBlockRunes = 500
	minCodeBlockRunes = 10
)

// Extract parses a page into the structured record. The base URL resolves
// relative references. A login-walled page returns ErrLoginWall with no
// partial record.
func Extract(htmlStr string, base *url.URL) (*model.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}

	ext := &model.Extraction{}

	extractBasicMeta(doc, ext)

	// Resource references come off the unpruned tree; pruning below removes
	// the script and stylesheet nodes they point at.
	extractResources(doc, base, ext)

	doc.Find("script, style, noscript, iframe").Remove()

	text := visibleText(doc)
	ext.FullText = text
	ext.WordCount = len(strings.Fields(text))
	ext.TextExcerpt = excerpt(text, maxExcerptRunes)

	extractHeadings(doc, ext)
	extractMetaTags(doc, ext)
	extractSocialTags(doc, ext)
	extractBlocks(doc, ext)

	if isLoginWall(doc, text) {
		return nil, ErrLoginWall
	}

	return ext, nil
}

func extractBasicMeta(doc *goquery.Document, ext *model.Extraction) {
	ext.Title = strings.TrimSpace(doc.Find("title").First().Text())
	ext.Description = strings.TrimSpace(doc.Find(`meta[name='description']`).First().AttrOr("content", ""))

	lang := strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))
	if lang == "" {
		content := doc.Find(`meta[http-equiv='Content-Language']`).First().AttrOr("content", "")
		lang = strings.TrimSpace(strings.SplitN(content, ",", 2)[0])
	}
	ext.Language = lang
}

func extractResources(doc *goquery.Document, base *url.URL, ext *model.Extraction) {
	ext.Links = collectRefs(doc.Find("a[href]"), "href", base, maxLinks)
	ext.Images = collectRefs(doc.Find("img[src]"), "src", base, maxImages)
	ext.Videos = collectRefs(doc.Find("video[src], video source[src]"), "src", base, maxVideos)
	ext.Scripts = collectRefs(doc.Find("script[src]"), "src", base, maxScripts)
	ext.Stylesheets = collectRefs(doc.Find(`link[rel='stylesheet'][href]`), "href", base, maxStylesheets)
}

// collectRefs resolves each attribute value against base and keeps unique
// http(s) results in document order, stopping at the cap.
func collectRefs(sel *goquery.Selection, attr string, base *url.URL, limit int) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{})
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		ref, err := url.Parse(strings.TrimSpace(s.AttrOr(attr, "")))
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		resolved := abs.String()
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
		return len(out) < limit
	})
	return out
}

func extractHeadings(doc *goquery.Document, ext *model.Extraction) {
	headings := make(map[string][]string, 6)
	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		texts := make([]string, 0)
		doc.Find(level).Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		headings[level] = texts
	}
	ext.Headings = headings
}

// extractMetaTags keys each meta element by its name, property, or http-equiv
// attribute, first one present. Keys are lowercased; later duplicates win.
func extractMetaTags(doc *goquery.Document, ext *model.Extraction) {
	tags := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		if name == "" {
			name = s.AttrOr("property", "")
		}
		if name == "" {
			name = s.AttrOr("http-equiv", "")
		}
		content := s.AttrOr("content", "")
		if name == "" || content == "" {
			return
		}
		tags[strings.ToLower(name)] = content
	})
	ext.MetaTags = tags
}

func extractSocialTags(doc *goquery.Document, ext *model.Extraction) {
	tags := make(map[string]string)
	doc.Find(`meta[property^='og:']`).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimPrefix(s.AttrOr("property", ""), "og:")
		if content := s.AttrOr("content", ""); name != "" && content != "" {
			tags["og:"+name] = content
		}
	})
	doc.Find(`meta[name^='twitter:']`).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimPrefix(s.AttrOr("name", ""), "twitter:")
		if content := s.AttrOr("content", ""); name != "" && content != "" {
			tags["twitter:"+name] = content
		}
	})
	ext.SocialTags = tags
}
