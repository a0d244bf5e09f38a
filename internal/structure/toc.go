package structure

import (
	"context"
	"regexp"

	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/types"
)

const (
	// tocSearchWindow is how many opening pages are examined for a ToC.
	tocSearchWindow = 15
	// tocMaxWordCount is the heuristic word-count ceiling for a ToC page;
	// listing pages are sparse compared to body text.
	tocMaxWordCount = 150
	// tocMinChapterRefs is the minimum number of "chapter N" references a
	// page needs before the heuristic calls it a ToC page.
	tocMinChapterRefs = 3
)

var chapterRefPattern = regexp.MustCompile(`(?i)\bchapter\s+\d+`)

// detectTocPages identifies table-of-contents pages so range mapping can
// exclude them. The model is asked first; on failure a conservative
// heuristic takes over. Either way the result is a set of page numbers.
func (d *Detector) detectTocPages(ctx context.Context, pages []types.Page) map[int]bool {
	window := pages
	if len(window) > tocSearchWindow {
		window = window[:tocSearchWindow]
	}

	var resp struct {
		TocPages []int `json:"tocPages"`
	}
	err := d.caller.CompleteJSON(ctx, BuildTocPagesPrompt(window), providers.CompleteOptions{
		Task:        providers.TaskStructure,
		System:      TocPagesSystemPrompt,
		Temperature: 0,
		MaxTokens:   512,
	}, TocPagesJSONSchema(), &resp)
	if err == nil {
		toc := make(map[int]bool, len(resp.TocPages))
		for _, n := range resp.TocPages {
			toc[n] = true
		}
		return toc
	}

	d.logger.Warn("model ToC detection failed, using heuristic", "error", err)
	return heuristicTocPages(window)
}

// heuristicTocPages flags sparse opening pages dense with "chapter N"
// references. Deliberately conservative: a missed ToC page only degrades
// range mapping, while a false positive removes body content.
func heuristicTocPages(pages []types.Page) map[int]bool {
	toc := make(map[int]bool)
	for _, p := range pages {
		if p.WordCount >= tocMaxWordCount {
			continue
		}
		refs := chapterRefPattern.FindAllString(p.Text, -1)
		if len(refs) >= tocMinChapterRefs {
			toc[p.PageNumber] = true
		}
	}
	return toc
}
