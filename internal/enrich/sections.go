package enrich

import (
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/scrape-service/internal/model"
)

// sectionLabels are the reply headers the prompt asks for.
var sectionLabels = []string{
	"SUMMARY:",
	"KEY_POINTS:",
	"CATEGORY:",
	"SENTIMENT:",
	"ENTITIES:",
	"TOPICS:",
	"KEYWORDS:",
	"STRUCTURED_DATA:",
	"INSIGHTS:",
}

// splitSections slices the reply into per-label chunks. Labels may appear in
// any order; each chunk runs from its label to the start of the next label
// present in the reply.
func splitSections(answer string) map[string]string {
	type mark struct {
		label string
		start int
		end   int
	}
	marks := make([]mark, 0, len(sectionLabels))
	for _, label := range sectionLabels {
		if idx := strings.Index(answer, label); idx >= 0 {
			marks = append(marks, mark{label: label, start: idx, end: idx + len(label)})
		}
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	sections := make(map[string]string, len(marks))
	for i, m := range marks {
		stop := len(answer)
		if i+1 < len(marks) {
			stop = marks[i+1].start
		}
		sections[m.label] = strings.TrimSpace(answer[m.end:stop])
	}
	return sections
}

// splitList turns a section into list items, one per line, with leading
// bullet characters stripped. Blank lines are dropped.
func splitList(section string) []string {
	items := make([]string, 0)
	for _, line := range strings.Split(section, "\n") {
		if item := strings.Trim(line, "-• \t\r"); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// cleanJSON strips markdown fences and any prose around the outermost JSON
// value, which may be an object or an array.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		if end := strings.LastIndex(s, "]"); end > arrStart {
			return s[arrStart : end+1]
		}
	case objStart >= 0:
		if end := strings.LastIndex(s, "}"); end > objStart {
			return s[objStart : end+1]
		}
	}
	return s
}

// parseAnalysis maps the sectioned reply onto an Enrichment. JSON-valued
// sections that fail to parse are dropped with a warning; text sections are
// kept as written.
func parseAnalysis(answer string) *model.Enrichment {
	sections := splitSections(answer)
	enr := &model.Enrichment{}

	if v, ok := sections["SUMMARY:"]; ok {
		enr.Summary = v
	}
	if v, ok := sections["KEY_POINTS:"]; ok {
		enr.KeyPoints = splitList(v)
	}
	if v, ok := sections["CATEGORY:"]; ok {
		enr.Category = v
	}
	if v, ok := sections["SENTIMENT:"]; ok {
		enr.Sentiment = strings.ToLower(v)
	}
	if v, ok := sections["ENTITIES:"]; ok && v != "" {
		var entities []model.Entity
		if err := json.Unmarshal([]byte(cleanJSON(v)), &entities); err != nil {
			zap.L().Warn("enrich: entities section not parseable", zap.Error(err))
		} else {
			enr.Entities = entities
		}
	}
	if v, ok := sections["TOPICS:"]; ok {
		enr.Topics = splitList(v)
	}
	if v, ok := sections["KEYWORDS:"]; ok {
		enr.Keywords = splitList(v)
	}
	if v, ok := sections["STRUCTURED_DATA:"]; ok && v != "" {
		var data map[string]any
		if err := json.Unmarshal([]byte(cleanJSON(v)), &data); err != nil {
			zap.L().Warn("enrich: structured data section not parseable", zap.Error(err))
		} else {
			enr.StructuredData = data
		}
	}
	if v, ok := sections["INSIGHTS:"]; ok {
		enr.Insights = v
	}

	return enr
}
