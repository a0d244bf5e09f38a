package structure

import (
	"fmt"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

// TitleListSystemPrompt asks the model to list chapter titles from a book's
// opening pages.
const TitleListSystemPrompt = `You are a book structure analyzer.
Given the opening pages of a book, list the chapter titles in reading order.

Rules:
- Use the table of contents when one is present; otherwise infer titles from
  headings in the text.
- Return titles exactly as printed, without page numbers.
- Skip front matter that is not a chapter (copyright page, dedication,
  acknowledgments) unless the book clearly treats it as a chapter.
- If you cannot identify any chapters, return an empty list.

Return JSON: {"titles": ["...", "..."]}`

// TocPagesSystemPrompt asks the model to identify table-of-contents pages.
const TocPagesSystemPrompt = `You are a book structure analyzer.
Given the opening pages of a book, identify which page numbers contain the
table of contents (the listing of chapters, not the chapters themselves).

Return JSON: {"tocPages": [3, 4]}
Return {"tocPages": []} if there is no table of contents.`

// RangeMappingSystemPrompt asks the model to map chapter titles to page ranges.
const RangeMappingSystemPrompt = `You are a book structure analyzer.
You are given a list of chapter titles and excerpts from a book's pages.
Map each chapter title to the page range where its content appears.

Rules:
- startPage is the page where the chapter's body text begins.
- endPage is the last page before the next chapter begins.
- Never map a chapter to the table of contents pages.
- Ranges must not overlap and must be in reading order.
- Omit a chapter if you cannot locate it rather than guessing.

Return JSON: {"chapters": [{"title": "...", "startPage": 1, "endPage": 12}]}`

// BuildTitleListPrompt builds the user prompt for chapter title listing.
func BuildTitleListPrompt(pages []types.Page) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Opening pages (%d shown):\n", len(pages)))
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if len(text) > 1500 {
			text = text[:1500] + "..."
		}
		lines = append(lines, fmt.Sprintf("--- page %d ---\n%s", p.PageNumber, text))
	}
	lines = append(lines, "\nList the chapter titles as JSON.")
	return strings.Join(lines, "\n")
}

// BuildTocPagesPrompt builds the user prompt for ToC page detection.
func BuildTocPagesPrompt(pages []types.Page) string {
	var lines []string
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if len(text) > 800 {
			text = text[:800] + "..."
		}
		lines = append(lines, fmt.Sprintf("--- page %d (%d words) ---\n%s", p.PageNumber, p.WordCount, text))
	}
	lines = append(lines, "\nWhich page numbers are table-of-contents pages? Return JSON.")
	return strings.Join(lines, "\n")
}

// BuildRangeMappingPrompt builds the user prompt for title-to-range mapping.
// Pages already identified as ToC are excluded from the excerpts.
func BuildRangeMappingPrompt(titles []string, pages []types.Page, tocPages map[int]bool) string {
	var lines []string
	lines = append(lines, "Chapter titles:")
	for i, title := range titles {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, title))
	}

	lines = append(lines, "\nPage excerpts (ToC pages excluded):")
	for _, p := range pages {
		if tocPages[p.PageNumber] {
			continue
		}
		excerpt := strings.TrimSpace(p.Text)
		// First lines carry the headings; that is all range mapping needs.
		if len(excerpt) > 300 {
			excerpt = excerpt[:300] + "..."
		}
		lines = append(lines, fmt.Sprintf("--- page %d ---\n%s", p.PageNumber, excerpt))
	}

	lines = append(lines, "\nMap every title you can locate to its page range. Return JSON.")
	return strings.Join(lines, "\n")
}
