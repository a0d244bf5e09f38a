package structure

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cardforge/cardforge/internal/types"
)

func makePages(count, wordsPerPage int) []types.Page {
	pages := make([]types.Page, count)
	for i := range pages {
		words := make([]string, wordsPerPage)
		for j := range words {
			words[j] = fmt.Sprintf("w%d", j)
		}
		pages[i] = types.Page{
			PageNumber: i + 1,
			Text:       strings.Join(words, " "),
			WordCount:  wordsPerPage,
		}
	}
	return pages
}

func TestPageWindows_DensitySizing(t *testing.T) {
	tests := []struct {
		name         string
		wordsPerPage int
		wantWindow   int
	}{
		{"dense", 500, densePagesPerWindow},
		{"medium", 250, mediumPagesPerWindow},
		{"sparse", 80, sparsePagesPerWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapters := pageWindows(makePages(40, tt.wordsPerPage))
			if len(chapters) == 0 {
				t.Fatal("no pseudo-chapters produced")
			}
			first := chapters[0]
			got := first.EndPage - first.StartPage + 1
			if got != tt.wantWindow {
				t.Errorf("first window spans %d pages, want %d", got, tt.wantWindow)
			}
		})
	}
}

func TestPageWindows_Overlap(t *testing.T) {
	chapters := pageWindows(makePages(40, 500))
	if len(chapters) < 2 {
		t.Fatal("expected multiple windows")
	}
	// 20% overlap: the next window starts before the previous one ends.
	if chapters[1].StartPage > chapters[0].EndPage {
		t.Errorf("windows do not overlap: first ends %d, second starts %d",
			chapters[0].EndPage, chapters[1].StartPage)
	}
}

func TestPageWindows_CoversAllPages(t *testing.T) {
	pages := makePages(17, 300)
	chapters := pageWindows(pages)

	last := chapters[len(chapters)-1]
	if last.EndPage != 17 {
		t.Errorf("last window ends at %d, want 17", last.EndPage)
	}
	if chapters[0].StartPage != 1 {
		t.Errorf("first window starts at %d, want 1", chapters[0].StartPage)
	}
}

func TestWordWindows_Bounds(t *testing.T) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	chapters := wordWindows(strings.Join(words, " "))

	if len(chapters) < 2 {
		t.Fatalf("got %d chapters, want several", len(chapters))
	}
	for i, ch := range chapters {
		if ch.WordCount > maxWordsPerWindow {
			t.Errorf("chapter %d has %d words, above max %d", i, ch.WordCount, maxWordsPerWindow)
		}
		if ch.DetectionMethod != types.DetectionWordWindows {
			t.Errorf("chapter %d method = %s", i, ch.DetectionMethod)
		}
	}

	// 10% overlap: consecutive windows share words.
	firstWords := strings.Fields(chapters[0].Content)
	secondWords := strings.Fields(chapters[1].Content)
	tail := firstWords[len(firstWords)-1]
	found := false
	for _, w := range secondWords[:len(secondWords)/2] {
		if w == tail {
			found = true
			break
		}
	}
	if !found {
		t.Error("consecutive word windows do not overlap")
	}
}

func TestWordWindows_Empty(t *testing.T) {
	if got := wordWindows("   "); got != nil {
		t.Errorf("expected nil for empty text, got %d chapters", len(got))
	}
}

func TestHeuristicTocPages(t *testing.T) {
	pages := []types.Page{
		{PageNumber: 1, Text: "A Long Book Title", WordCount: 4},
		{PageNumber: 2, Text: "Chapter 1 .... 5\nChapter 2 .... 19\nChapter 3 .... 33", WordCount: 12},
		{PageNumber: 3, Text: strings.Repeat("body text ", 100) + " as discussed in chapter 2", WordCount: 205},
	}

	toc := heuristicTocPages(pages)
	if !toc[2] {
		t.Error("page 2 should be flagged as ToC")
	}
	if toc[1] {
		t.Error("page 1 has too few chapter references to be ToC")
	}
	if toc[3] {
		t.Error("dense body page should never be flagged as ToC")
	}
}
