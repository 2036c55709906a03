// Package enrich runs the optional AI analysis stage over an extraction.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scrape-service/internal/config"
	"github.com/sells-group/scrape-service/internal/model"
	"github.com/sells-group/scrape-service/internal/scrape"
	"github.com/sells-group/scrape-service/pkg/anthropic"
)

// maxContentRunes bounds how much page text goes into the prompt.
const maxContentRunes = 8000

const analysisTemperature = 0.7

const analysisSystem = "You are a helpful assistant that analyzes web content and provides concise summaries and insights."

const analysisPromptTemplate = `Analyze the following webpage content and provide:
1. A concise summary (2-3 sentences)
2. 3-5 key points
3. Content category (e.g., news, blog, documentation, e-commerce, etc.)
4. Overall sentiment: positive, neutral, or negative
5. Named entities as a JSON array of {"name": "...", "type": "..."} where type is PERSON, ORG, LOCATION, or PRODUCT
6. 3-5 main topics
7. 5-10 keywords
8. Structured data worth keeping (prices, dates, contact details) as a JSON object
9. One or two notable insights about the page

Title: %s

Page stats: %d tables, %d forms, %d links

Content: %s

Format your response as:
SUMMARY: <summary>
KEY_POINTS:
- <point>
CATEGORY: <category>
SENTIMENT: <sentiment>
ENTITIES: <json array>
TOPICS:
- <topic>
KEYWORDS:
- <keyword>
STRUCTURED_DATA: <json object>
INSIGHTS: <insights>`

// Enricher analyzes extractions with the Anthropic API.
type Enricher struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

var _ scrape.Enricher = (*Enricher)(nil)

// New builds an Enricher from config.
func New(client anthropic.Client, cfg config.AnthropicConfig) *Enricher {
	return &Enricher{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
	}
}

// Enrich sends the page to the model and parses the sectioned reply. Errors
// surface to the caller, which treats the whole stage as best-effort.
func (e *Enricher) Enrich(ctx context.Context, ext *model.Extraction) (*model.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	title := ext.Title
	if title == "" {
		title = "Not provided"
	}
	content := ext.FullText
	if runes := []rune(content); len(runes) > maxContentRunes {
		content = string(runes[:maxContentRunes])
	}

	temperature := analysisTemperature
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    []anthropic.SystemBlock{{Text: analysisSystem}},
		Messages: []anthropic.Message{{
			Role: "user",
			Content: fmt.Sprintf(analysisPromptTemplate,
				title, len(ext.Tables), len(ext.Forms), len(ext.Links), content),
		}},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: create message")
	}

	answer := responseText(resp)
	if answer == "" {
		return nil, eris.New("enrich: empty response")
	}
	resp.Usage.LogCost(e.model, "analysis")

	return parseAnalysis(answer), nil
}

func responseText(resp *anthropic.MessageResponse) string {
	parts := make([]string, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
