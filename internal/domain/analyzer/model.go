package analyzer

import "time"

// Sentiment labels the service can return. Anything the model says that is
// not recognizably positive or negative collapses to neutral.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Config configures the analysis pipeline.
type Config struct {
	Model                  string
	DefaultMaxSummaryWords int
	MaxInputTokens         int
	CacheTTL               time.Duration
}

// Request is the inbound analysis payload.
type Request struct {
	Text            string `json:"text"`
	MaxSummaryWords int    `json:"max_summary_words"`
}

// Response bundles the three derived results for one input text.
type Response struct {
	Summary   string   `json:"summary"`
	Keywords  []string `json:"keywords"`
	Sentiment string   `json:"sentiment"`
}
