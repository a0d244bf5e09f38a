package types

// DetectionMethod indicates which detection tier produced a chapter structure.
type DetectionMethod string

const (
	// DetectionLLMMapping indicates model-driven title listing plus page-range mapping.
	DetectionLLMMapping DetectionMethod = "llm_mapping"
	// DetectionPageWindows indicates the page-window fallback (pseudo-chapters).
	DetectionPageWindows DetectionMethod = "page_windows"
	// DetectionWordWindows indicates the word-stream fallback (no page structure).
	DetectionWordWindows DetectionMethod = "word_windows"
)

// Chapter is one detected chapter. Created by the structure detector and
// consumed read-only thereafter. After gap-filling, page ranges across a
// document's chapters are non-overlapping and contiguous.
type Chapter struct {
	Title           string          `json:"title"`
	StartPage       int             `json:"startPage"`
	EndPage         int             `json:"endPage"`
	Content         string          `json:"content"`
	WordCount       int             `json:"wordCount"`
	DetectionMethod DetectionMethod `json:"detectionMethod"`
	// IsGapFilled marks chapters synthesized to cover an unmapped page range.
	IsGapFilled bool `json:"isGapFilled,omitempty"`
}

// Structure is the full output of chapter detection.
type Structure struct {
	Chapters        []Chapter       `json:"chapters"`
	DetectionMethod DetectionMethod `json:"detectionMethod"`
}
