package structure

import (
	"testing"

	"github.com/cardforge/cardforge/internal/types"
)

func ch(title string, start, end int) types.Chapter {
	return types.Chapter{Title: title, StartPage: start, EndPage: end, DetectionMethod: types.DetectionLLMMapping}
}

// assertContiguous checks the gap-fill postcondition: sorted, non-overlapping,
// no uncovered page between the first and last chapter.
func assertContiguous(t *testing.T, chapters []types.Chapter) {
	t.Helper()
	for i := 1; i < len(chapters); i++ {
		prev, cur := chapters[i-1], chapters[i]
		if cur.StartPage != prev.EndPage+1 {
			t.Errorf("gap or overlap between %q (ends %d) and %q (starts %d)",
				prev.Title, prev.EndPage, cur.Title, cur.StartPage)
		}
	}
}

func TestFillGaps_SmallGapMergesIntoPreceding(t *testing.T) {
	chapters := fillGaps([]types.Chapter{
		ch("Chapter 1", 1, 10),
		ch("Chapter 2", 14, 25), // 3-page gap
	})

	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].EndPage != 13 {
		t.Errorf("preceding chapter should absorb the gap, got end page %d", chapters[0].EndPage)
	}
	assertContiguous(t, chapters)
}

func TestFillGaps_LargeGapWithProvableMissingChapter(t *testing.T) {
	chapters := fillGaps([]types.Chapter{
		ch("Chapter 1", 1, 10),
		ch("Chapter 3", 26, 40), // 15-page gap, exactly Chapter 2 missing
	})

	if len(chapters) != 3 {
		t.Fatalf("got %d chapters, want 3 (synthesized middle)", len(chapters))
	}
	mid := chapters[1]
	if mid.Title != "Chapter 2" || !mid.IsGapFilled {
		t.Errorf("expected gap-filled Chapter 2, got %+v", mid)
	}
	if mid.StartPage != 11 || mid.EndPage != 25 {
		t.Errorf("synthesized chapter covers %d-%d, want 11-25", mid.StartPage, mid.EndPage)
	}
	assertContiguous(t, chapters)
}

func TestFillGaps_LargeGapWithoutProof(t *testing.T) {
	tests := []struct {
		name   string
		titles [2]string
	}{
		{"non-numbered titles", [2]string{"The Beginning", "The End"}},
		{"more than one missing", [2]string{"Chapter 1", "Chapter 4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapters := fillGaps([]types.Chapter{
				ch(tt.titles[0], 1, 10),
				ch(tt.titles[1], 30, 40),
			})
			if len(chapters) != 2 {
				t.Fatalf("got %d chapters, want 2 (no synthesis without proof)", len(chapters))
			}
			if chapters[0].EndPage != 29 {
				t.Errorf("gap should merge into preceding chapter, got end %d", chapters[0].EndPage)
			}
			assertContiguous(t, chapters)
		})
	}
}

func TestFillGaps_OverlapTruncatesPreceding(t *testing.T) {
	chapters := fillGaps([]types.Chapter{
		ch("Chapter 1", 1, 15),
		ch("Chapter 2", 12, 25),
	})

	if len(chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(chapters))
	}
	if chapters[0].EndPage != 11 {
		t.Errorf("overlapping preceding chapter should truncate to 11, got %d", chapters[0].EndPage)
	}
	assertContiguous(t, chapters)
}

func TestFillGaps_ResortsByStartPage(t *testing.T) {
	chapters := fillGaps([]types.Chapter{
		ch("Chapter 2", 11, 20),
		ch("Chapter 1", 1, 10),
	})

	if chapters[0].Title != "Chapter 1" {
		t.Errorf("chapters not re-sorted by start page: %q first", chapters[0].Title)
	}
	assertContiguous(t, chapters)
}

func TestChapterNumber(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Chapter 7: The Reckoning", 7},
		{"chapter 12", 12},
		{"Ch. 3 Introduction", 3},
		{"Part 2", 2},
		{"Epilogue", 0},
		{"12 Angry Men", 0},
	}

	for _, tt := range tests {
		if got := chapterNumber(tt.title); got != tt.want {
			t.Errorf("chapterNumber(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}
}
