package entity

// ScoredChunk is a raw vector-store match: the ingested passage text,
// its similarity score (0..1, cosine) and whatever metadata the store
// attached at ingestion time.
type ScoredChunk struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
