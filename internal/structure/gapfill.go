package structure

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/cardforge/cardforge/internal/types"
)

// maxMergeableGap is the largest unmapped page run merged into the preceding
// chapter. Larger gaps are only bridged by a synthesized chapter when
// sequential numbering proves exactly one chapter is missing.
const maxMergeableGap = 10

var chapterNumberPattern = regexp.MustCompile(`(?i)^\s*(?:chapter|ch\.?|part)\s+(\d+)`)

// chapterNumber extracts a leading chapter number from a title, or 0.
func chapterNumber(title string) int {
	m := chapterNumberPattern.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// fillGaps reconciles unmapped page ranges between mapped chapters. Small
// gaps extend the preceding chapter; large gaps become a synthesized chapter
// only when the titles prove exactly one sequential chapter is missing.
// The result is sorted by start page with non-overlapping, contiguous ranges.
func fillGaps(chapters []types.Chapter) []types.Chapter {
	if len(chapters) == 0 {
		return chapters
	}

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].StartPage < chapters[j].StartPage
	})

	filled := make([]types.Chapter, 0, len(chapters))
	filled = append(filled, chapters[0])

	for _, next := range chapters[1:] {
		cur := &filled[len(filled)-1]

		// Overlap: truncate the preceding chapter.
		if next.StartPage <= cur.EndPage {
			cur.EndPage = next.StartPage - 1
			if cur.EndPage < cur.StartPage {
				// Preceding chapter collapsed entirely; drop it.
				filled = filled[:len(filled)-1]
			}
			filled = append(filled, next)
			continue
		}

		gap := next.StartPage - cur.EndPage - 1
		switch {
		case gap == 0:
			// Already contiguous.
		case gap <= maxMergeableGap:
			cur.EndPage = next.StartPage - 1
		default:
			curNum := chapterNumber(cur.Title)
			nextNum := chapterNumber(next.Title)
			if curNum > 0 && nextNum == curNum+2 {
				// Exactly one chapter provably missing: synthesize it.
				filled = append(filled, types.Chapter{
					Title:           fmt.Sprintf("Chapter %d", curNum+1),
					StartPage:       cur.EndPage + 1,
					EndPage:         next.StartPage - 1,
					DetectionMethod: cur.DetectionMethod,
					IsGapFilled:     true,
				})
			} else {
				cur.EndPage = next.StartPage - 1
			}
		}
		filled = append(filled, next)
	}

	sort.SliceStable(filled, func(i, j int) bool {
		return filled[i].StartPage < filled[j].StartPage
	})
	return filled
}

// rebuildContent re-derives chapter content, word counts and page clamping
// from the page set after gap-filling adjusted the ranges. ToC pages are
// excluded from content.
func rebuildContent(chapters []types.Chapter, pages []types.Page, tocPages map[int]bool) []types.Chapter {
	pageByNum := make(map[int]*types.Page, len(pages))
	minPage, maxPage := 0, 0
	for i := range pages {
		p := &pages[i]
		pageByNum[p.PageNumber] = p
		if minPage == 0 || p.PageNumber < minPage {
			minPage = p.PageNumber
		}
		if p.PageNumber > maxPage {
			maxPage = p.PageNumber
		}
	}

	out := chapters[:0]
	for _, ch := range chapters {
		if ch.StartPage < minPage {
			ch.StartPage = minPage
		}
		if ch.EndPage > maxPage {
			ch.EndPage = maxPage
		}
		if ch.EndPage < ch.StartPage {
			continue
		}

		content := ""
		for n := ch.StartPage; n <= ch.EndPage; n++ {
			if tocPages[n] {
				continue
			}
			if p, ok := pageByNum[n]; ok {
				if content != "" {
					content += "\n\n"
				}
				content += p.Text
			}
		}
		ch.Content = content
		ch.WordCount = types.CountWords(content)
		out = append(out, ch)
	}
	return out
}
