package mode

import "fmt"

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Hybrid fuses keyword and semantic rankings with RRF.
	Hybrid   Mode = "hybrid"
	Semantic Mode = "semantic"
	Keyword  Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Hybrid || m == Semantic || m == Keyword
}

// NeedsEmbedding reports whether the mode requires a query vector.
func (m Mode) NeedsEmbedding() bool {
	return m == Hybrid || m == Semantic
}

// Parse converts raw input to a Mode; empty input yields Hybrid.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Hybrid, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown search mode %q (want hybrid, semantic or keyword)", s)
	}
	return m, nil
}
