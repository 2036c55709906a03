package model

// EntityType classifies a named entity surfaced by analysis.
type EntityType string

const (
	EntityPerson   EntityType = "PERSON"
	EntityOrg      EntityType = "ORG"
	EntityLocation EntityType = "LOCATION"
	EntityProduct  EntityType = "PRODUCT"
)

// Entity is a named entity mentioned on the page.
type Entity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// Enrichment holds the model-derived analysis of an extraction. The whole
// struct is absent when analysis is disabled or fails; individual JSON-valued
// fields are absent when only their parsing fails.
type Enrichment struct {
	Summary        string         `json:"ai_summary,omitempty"`
	KeyPoints      []string       `json:"ai_key_points,omitempty"`
	Category       string         `json:"ai_category,omitempty"`
	Sentiment      string         `json:"ai_sentiment,omitempty"`
	Entities       []Entity       `json:"ai_entities,omitempty"`
	Topics         []string       `json:"ai_topics,omitempty"`
	Keywords       []string       `json:"ai_keywords,omitempty"`
	StructuredData map[string]any `json:"ai_structured_data,omitempty"`
	Insights       string         `json:"ai_insights,omitempty"`
}
