package retriever

// HighlightField holds the fragments the search service highlighted for one
// field of a hit.
type HighlightField struct {
	Field     string   `json:"field"`
	Fragments []string `json:"fragments"`
}

// Hit represents a single search result as returned by Elasticsearch.
// Highlight keeps the field order of the response; HasHighlight is true
// whenever the hit carried a highlight object, even an empty one.
type Hit struct {
	ID           string           `json:"id"`
	Index        string           `json:"index"`
	Score        float64          `json:"score"`
	Source       map[string]any   `json:"source,omitempty"`
	Highlight    []HighlightField `json:"highlight,omitempty"`
	HasHighlight bool             `json:"has_highlight"`
}
