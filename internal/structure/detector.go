// Package structure recovers a document's chapter structure from extracted
// page text. Detection runs a strict fallback ladder: model-driven title
// listing plus page-range mapping, then page windows, then raw word windows.
package structure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/types"
)

// titleListWindow is how many opening pages are shown for title listing.
const titleListWindow = 10

// Detector recovers chapter structure. A nil cache disables structure
// caching; everything else is required.
type Detector struct {
	caller      *providers.Caller
	cache       *cache.Store
	logger      *slog.Logger
	maxChapters int
}

// DetectorConfig configures a Detector.
type DetectorConfig struct {
	Caller      *providers.Caller
	Cache       *cache.Store // Optional
	Logger      *slog.Logger // Optional
	MaxChapters int          // Ceiling on detected chapters (default 200)
}

// NewDetector creates a new Detector.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxChapters <= 0 {
		cfg.MaxChapters = 200
	}
	return &Detector{
		caller:      cfg.Caller,
		cache:       cfg.Cache,
		logger:      cfg.Logger,
		maxChapters: cfg.MaxChapters,
	}
}

// Detect returns the chapter structure for a document, trying each detection
// tier only when the prior tier yields zero usable chapters. Successful
// structures are cached by content identifier so repeated runs skip
// detection entirely.
func (d *Detector) Detect(ctx context.Context, contentID string, ext *types.Extract) (*types.Structure, error) {
	if d.cache != nil {
		var cached types.Structure
		if d.cache.GetJSON(ctx, contentID, cache.KindStructure, &cached) && len(cached.Chapters) > 0 {
			d.logger.Info("chapter structure cache hit",
				"content_id", contentID,
				"chapters", len(cached.Chapters),
				"method", cached.DetectionMethod)
			return &cached, nil
		}
	}

	result, err := d.detect(ctx, ext)
	if err != nil {
		return nil, err
	}

	if len(result.Chapters) > d.maxChapters {
		d.logger.Warn("truncating chapter structure",
			"detected", len(result.Chapters), "max", d.maxChapters)
		result.Chapters = result.Chapters[:d.maxChapters]
	}

	if d.cache != nil {
		if err := d.cache.SetJSON(ctx, contentID, cache.KindStructure, result); err != nil {
			d.logger.Warn("failed to cache chapter structure", "error", err)
		}
	}
	return result, nil
}

func (d *Detector) detect(ctx context.Context, ext *types.Extract) (*types.Structure, error) {
	// No page structure at all: only the word-stream fallback applies.
	if len(ext.Pages) == 0 {
		chapters := wordWindows(ext.Text)
		if len(chapters) == 0 {
			return nil, fmt.Errorf("document has no pages and no text")
		}
		d.logger.Info("detected structure from word windows", "chapters", len(chapters))
		return &types.Structure{Chapters: chapters, DetectionMethod: types.DetectionWordWindows}, nil
	}

	// Tier 1: model-driven title listing + page-range mapping.
	chapters, err := d.detectByMapping(ctx, ext.Pages)
	if err != nil {
		d.logger.Warn("title mapping tier failed", "error", err)
	}
	if len(chapters) > 0 {
		d.logger.Info("detected structure from title mapping", "chapters", len(chapters))
		return &types.Structure{Chapters: chapters, DetectionMethod: types.DetectionLLMMapping}, nil
	}

	// Tier 2: page-window pseudo-chapters.
	chapters = pageWindows(ext.Pages)
	if len(chapters) > 0 {
		d.logger.Info("detected structure from page windows", "chapters", len(chapters))
		return &types.Structure{Chapters: chapters, DetectionMethod: types.DetectionPageWindows}, nil
	}

	// Tier 3: raw word stream.
	chapters = wordWindows(ext.Text)
	if len(chapters) == 0 {
		return nil, fmt.Errorf("all detection tiers produced zero chapters")
	}
	d.logger.Info("detected structure from word windows", "chapters", len(chapters))
	return &types.Structure{Chapters: chapters, DetectionMethod: types.DetectionWordWindows}, nil
}

// detectByMapping runs the deterministic tier-1 ladder: list chapter titles
// from the opening pages, detect and exclude ToC pages, map each title to a
// page range, then gap-fill. All model calls run at temperature 0 so
// identical input text yields identical chapter boundaries.
func (d *Detector) detectByMapping(ctx context.Context, pages []types.Page) ([]types.Chapter, error) {
	opening := pages
	if len(opening) > titleListWindow {
		opening = opening[:titleListWindow]
	}

	var titleResp struct {
		Titles []string `json:"titles"`
	}
	err := d.caller.CompleteJSON(ctx, BuildTitleListPrompt(opening), providers.CompleteOptions{
		Task:        providers.TaskStructure,
		System:      TitleListSystemPrompt,
		Temperature: 0,
		MaxTokens:   2048,
	}, TitleListJSONSchema(), &titleResp)
	if err != nil {
		return nil, fmt.Errorf("chapter title listing failed: %w", err)
	}
	if len(titleResp.Titles) == 0 {
		return nil, nil
	}

	tocPages := d.detectTocPages(ctx, pages)

	var rangeResp struct {
		Chapters []struct {
			Title     string `json:"title"`
			StartPage int    `json:"startPage"`
			EndPage   int    `json:"endPage"`
		} `json:"chapters"`
	}
	err = d.caller.CompleteJSON(ctx, BuildRangeMappingPrompt(titleResp.Titles, pages, tocPages), providers.CompleteOptions{
		Task:        providers.TaskStructure,
		System:      RangeMappingSystemPrompt,
		Temperature: 0,
		MaxTokens:   4096,
	}, RangeMappingJSONSchema(), &rangeResp)
	if err != nil {
		return nil, fmt.Errorf("title-to-range mapping failed: %w", err)
	}

	var chapters []types.Chapter
	for _, r := range rangeResp.Chapters {
		if r.Title == "" || r.StartPage <= 0 || r.EndPage < r.StartPage {
			d.logger.Warn("dropping invalid chapter range",
				"title", r.Title, "start", r.StartPage, "end", r.EndPage)
			continue
		}
		chapters = append(chapters, types.Chapter{
			Title:           r.Title,
			StartPage:       r.StartPage,
			EndPage:         r.EndPage,
			DetectionMethod: types.DetectionLLMMapping,
		})
	}
	if len(chapters) == 0 {
		return nil, nil
	}

	chapters = fillGaps(chapters)
	chapters = rebuildContent(chapters, pages, tocPages)
	return chapters, nil
}
