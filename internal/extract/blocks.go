package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/scrape-service/internal/model"
)

// extractBlocks fills the content-structure fields: tables, forms, buttons,
// lists, paragraphs, quotes, and code blocks.
func extractBlocks(doc *goquery.Document, ext *model.Extraction) {
	ext.Tables = extractTables(doc)
	ext.Forms = extractForms(doc)
	ext.Buttons = extractButtons(doc)
	ext.Lists = extractLists(doc)
	ext.Paragraphs = collectTexts(doc, "p", maxParagraphs)
	ext.Quotes = collectTexts(doc, "blockquote", maxQuotes)
	ext.CodeBlocks = extractCodeBlocks(doc)
}

func extractTables(doc *goquery.Document) []model.Table {
	tables := make([]model.Table, 0)
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		table := model.Table{
			Headers: make([]string, 0),
			Rows:    make([][]string, 0),
		}
		t.Find("th").Each(func(_ int, th *goquery.Selection) {
			table.Headers = append(table.Headers, strings.TrimSpace(th.Text()))
		})
		t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := make([]string, 0)
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(td.Text()))
			})
			if len(cells) > 0 {
				table.Rows = append(table.Rows, cells)
			}
		})
		tables = append(tables, table)
		return len(tables) < maxTables
	})
	return tables
}

// extractForms keeps forms that carry at least one input. The method defaults
// to GET and is uppercased.
func extractForms(doc *goquery.Document) []model.Form {
	forms := make([]model.Form, 0)
	doc.Find("form").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		method := strings.ToUpper(strings.TrimSpace(f.AttrOr("method", "")))
		if method == "" {
			method = "GET"
		}
		form := model.Form{
			Action: f.AttrOr("action", ""),
			Method: method,
			Inputs: make([]model.FormInput, 0),
		}
		f.Find("input").Each(func(_ int, in *goquery.Selection) {
			typ := in.AttrOr("type", "")
			if typ == "" {
				typ = "text"
			}
			form.Inputs = append(form.Inputs, model.FormInput{
				Type:        typ,
				Name:        in.AttrOr("name", ""),
				Placeholder: in.AttrOr("placeholder", ""),
				Label:       in.AttrOr("aria-label", ""),
			})
		})
		if len(form.Inputs) == 0 {
			return true
		}
		forms = append(forms, form)
		return len(forms) < maxForms
	})
	return forms
}

func extractButtons(doc *goquery.Document) []model.Button {
	buttons := make([]model.Button, 0)
	doc.Find("button").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		buttons = append(buttons, model.Button{
			Text:    strings.TrimSpace(b.Text()),
			Type:    b.AttrOr("type", ""),
			Classes: strings.Fields(b.AttrOr("class", "")),
		})
		return len(buttons) < maxButtons
	})
	return buttons
}

func extractLists(doc *goquery.Document) []model.List {
	lists := make([]model.List, 0)
	doc.Find("ul, ol").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		items := make([]string, 0)
		l.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			if t := strings.TrimSpace(li.Text()); t != "" {
				items = append(items, t)
			}
			return len(items) < maxListItems
		})
		lists = append(lists, model.List{Type: goquery.NodeName(l), Items: items})
		return len(lists) < maxLists
	})
	return lists
}

func collectTexts(doc *goquery.Document, selector string, limit int) []string {
	out := make([]string, 0)
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
		return len(out) < limit
	})
	return out
}

// extractCodeBlocks gathers pre blocks plus code elements outside any pre.
// Snippets at or under the noise threshold are skipped; kept ones are trimmed
// and truncated to maxCodeBlockRunes.
func extractCodeBlocks(doc *goquery.Document) []string {
	blocks := make([]string, 0)
	add := func(raw string) bool {
		if utf8.RuneCountInString(raw) <= minCodeBlockRunes {
			return true
		}
		snippet := strings.TrimSpace(raw)
		if runes := []rune(snippet); len(runes) > maxCodeBlockRunes {
			snippet = string(runes[:maxCodeBlockRunes])
		}
		blocks = append(blocks, snippet)
		return len(blocks) < maxCodeBlocks
	}

	doc.Find("pre").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		return add(s.Text())
	})
	if len(blocks) < maxCodeBlocks {
		doc.Find("code").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.ParentsFiltered("pre").Length() > 0 {
				return true
			}
			return add(s.Text())
		})
	}
	return blocks
}
