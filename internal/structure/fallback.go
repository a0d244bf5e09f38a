package structure

import (
	"fmt"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

// Page-window fallback sizing by words-per-page density.
const (
	densePagesPerWindow  = 5
	mediumPagesPerWindow = 8
	sparsePagesPerWindow = 12

	denseWordsPerPage  = 400
	mediumWordsPerPage = 150

	pageWindowOverlap = 0.20
)

// pageWindows treats overlapping page windows as pseudo-chapters when no
// usable chapter structure was detected.
func pageWindows(pages []types.Page) []types.Chapter {
	if len(pages) == 0 {
		return nil
	}

	totalWords := 0
	for _, p := range pages {
		totalWords += p.WordCount
	}
	wordsPerPage := totalWords / len(pages)

	window := sparsePagesPerWindow
	switch {
	case wordsPerPage > denseWordsPerPage:
		window = densePagesPerWindow
	case wordsPerPage >= mediumWordsPerPage:
		window = mediumPagesPerWindow
	}

	step := window - int(float64(window)*pageWindowOverlap)
	if step < 1 {
		step = 1
	}

	var chapters []types.Chapter
	for start := 0; start < len(pages); start += step {
		end := start + window
		if end > len(pages) {
			end = len(pages)
		}

		var texts []string
		for _, p := range pages[start:end] {
			texts = append(texts, p.Text)
		}
		content := strings.Join(texts, "\n\n")

		chapters = append(chapters, types.Chapter{
			Title:           fmt.Sprintf("Pages %d-%d", pages[start].PageNumber, pages[end-1].PageNumber),
			StartPage:       pages[start].PageNumber,
			EndPage:         pages[end-1].PageNumber,
			Content:         content,
			WordCount:       types.CountWords(content),
			DetectionMethod: types.DetectionPageWindows,
		})

		if end == len(pages) {
			break
		}
	}
	return chapters
}

// Word-window fallback sizing. Window size scales with document length
// between the min and max bounds; consecutive windows share a 10% overlap.
const (
	minWordsPerWindow = 1000
	maxWordsPerWindow = 2000
	wordWindowDivisor = 25
	wordWindowOverlap = 0.10
)

// wordWindows chunks the raw word stream directly when no page structure
// exists at all.
func wordWindows(text string) []types.Chapter {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	window := len(words) / wordWindowDivisor
	if window < minWordsPerWindow {
		window = minWordsPerWindow
	}
	if window > maxWordsPerWindow {
		window = maxWordsPerWindow
	}

	step := window - int(float64(window)*wordWindowOverlap)
	if step < 1 {
		step = 1
	}

	var chapters []types.Chapter
	section := 0
	for start := 0; start < len(words); start += step {
		end := start + window
		if end > len(words) {
			end = len(words)
		}
		section++

		content := strings.Join(words[start:end], " ")
		chapters = append(chapters, types.Chapter{
			Title:           fmt.Sprintf("Section %d", section),
			Content:         content,
			WordCount:       end - start,
			DetectionMethod: types.DetectionWordWindows,
		})

		if end == len(words) {
			break
		}
	}
	return chapters
}
