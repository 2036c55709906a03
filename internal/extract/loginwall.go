package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// isLoginWall flags pages that gate their content behind a login: a password
// input, a form whose id mentions login, or "login" appearing within the
// first 500 characters of the visible text.
func isLoginWall(doc *goquery.Document, text string) bool {
	if doc.Find(`input[type='password']`).Length() > 0 {
		return true
	}

	found := false
	doc.Find("form[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(s.AttrOr("id", "")), "login") {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}

	head := []rune(strings.ToLower(text))
	if len(head) > 500 {
		head = head[:500]
	}
	return strings.Contains(string(head), "login")
}
