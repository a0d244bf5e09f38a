// Package types provides shared types used across multiple packages.
// This package has no dependencies on other cardforge packages to avoid import cycles.
package types

import "strings"

// Page is one page of extracted text, as produced by the external extractor.
// Pages are immutable once handed to the pipeline.
type Page struct {
	PageNumber int      `json:"pageNumber"`
	Text       string   `json:"text"`
	Lines      []string `json:"lines,omitempty"`
	WordCount  int      `json:"wordCount"`
}

// Metadata describes the source document. Title, Author and Source together
// derive the content identifier used for caching and run deduplication.
type Metadata struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	Source string `json:"source,omitempty"`
}

// Extract is the input contract from the extraction collaborator.
// Pages may be empty, in which case the pipeline falls back to word-based
// chunking over Text.
type Extract struct {
	Text     string   `json:"text"`
	Pages    []Page   `json:"pages,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// TotalWords returns the word count across all pages, or of the raw text
// when no page structure exists.
func (e *Extract) TotalWords() int {
	if len(e.Pages) == 0 {
		return CountWords(e.Text)
	}
	total := 0
	for _, p := range e.Pages {
		total += p.WordCount
	}
	return total
}

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
