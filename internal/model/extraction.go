package model

// Extraction is the structured record pulled from a single HTML page.
// List fields are always non-nil and capped at collection time, in document
// encounter order.
type Extraction struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	TextExcerpt string              `json:"text_excerpt"`
	FullText    string              `json:"full_text"`
	Links       []string            `json:"links"`
	Images      []string            `json:"images"`
	Headings    map[string][]string `json:"headings"`
	MetaTags    map[string]string   `json:"meta_tags"`
	SocialTags  map[string]string   `json:"social_tags"`
	Language    string              `json:"language,omitempty"`
	WordCount   int                 `json:"word_count"`
	Tables      []Table             `json:"tables"`
	Forms       []Form              `json:"forms"`
	Buttons     []Button            `json:"buttons"`
	Videos      []string            `json:"videos"`
	Scripts     []string            `json:"scripts"`
	Stylesheets []string            `json:"stylesheets"`
	Lists       []List              `json:"lists"`
	Paragraphs  []string            `json:"paragraphs"`
	Quotes      []string            `json:"quotes"`
	CodeBlocks  []string            `json:"code_blocks"`
}

// Table holds the header and body cells of one HTML table.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Form describes an HTML form and its input fields.
type Form struct {
	Action string      `json:"action"`
	Method string      `json:"method"`
	Inputs []FormInput `json:"inputs"`
}

// FormInput describes a single input element within a form.
type FormInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	Label       string `json:"label"`
}

// Button describes a button element.
type Button struct {
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Classes []string `json:"classes"`
}

// List holds one ordered or unordered list.
type List struct {
	Type  string   `json:"type"` // "ul" or "ol"
	Items []string `json:"items"`
}
