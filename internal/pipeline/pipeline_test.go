package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/config"
	"github.com/cardforge/cardforge/internal/embed"
	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/svcctx"
	"github.com/cardforge/cardforge/internal/types"
)

func testGeneration() *config.GenerationCfg {
	return &config.GenerationCfg{
		ChunkWindowSize:         2,
		RetrievalTopK:           2,
		MaxFlashcardsPerChapter: 25,
		MaxQuizzesPerChapter:    10,
		MaxChapters:             200,
		BatchSize:               4,
		BatchDelayMS:            0,
		Applications:            false,
	}
}

func testContext(t *testing.T, mock *providers.MockClient, store *cache.Store) context.Context {
	t.Helper()
	caller := providers.NewCaller(providers.CallerConfig{
		Client:      mock,
		CheapModel:  "cheap-model",
		StrongModel: "strong-model",
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
	})
	return svcctx.WithServices(context.Background(), &svcctx.Services{
		Caller:   caller,
		Embedder: embed.NewMockEmbedder(16),
		Cache:    store,
	})
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.NewStore(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// scriptedMock answers every pipeline tier. Card titles carry a running
// counter so deduplication keeps them all; judgments always pass.
func scriptedMock(numChapters int) *providers.MockClient {
	mock := providers.NewMockClient()

	var titles []string
	var mapping []string
	for i := 1; i <= numChapters; i++ {
		titles = append(titles, fmt.Sprintf("%q", fmt.Sprintf("Chapter %d", i)))
		mapping = append(mapping, fmt.Sprintf(
			`{"title": "Chapter %d", "startPage": %d, "endPage": %d}`,
			i, 2+(i-1)*5, 1+i*5))
	}

	var counter atomic.Int64
	mock.ResponseFunc = func(prompt string) string {
		n := counter.Add(1)
		switch {
		case strings.Contains(prompt, "List the chapter titles"):
			return fmt.Sprintf(`{"titles": [%s]}`, strings.Join(titles, ", "))
		case strings.Contains(prompt, "table-of-contents pages"):
			return `{"tocPages": [1]}`
		case strings.Contains(prompt, "Map every title"):
			return fmt.Sprintf(`{"chapters": [%s]}`, strings.Join(mapping, ", "))
		case strings.Contains(prompt, "Write one flashcard"):
			return fmt.Sprintf(
				`{"title": "Fact %d", "front": "What is fact %d?", "back": "Fact %d is established.", "difficulty": "easy"}`,
				n, n, n)
		case strings.Contains(prompt, "quiz questions as JSON"):
			return fmt.Sprintf(
				`{"questions": [{"title": "Quiz %d", "question": "Which holds for item %d?", "choices": ["right", "wrong", "worse", "worst"], "correctAnswer": "A", "explanation": "Only one holds."}]}`,
				n, n)
		case strings.Contains(prompt, "Write the chapter summary"):
			return fmt.Sprintf(`{"title": "Summary %d", "narrative": "The chapter develops its argument step by step."}`, n)
		case strings.Contains(prompt, "Write the book overview"):
			return `{"title": "Book Overview", "narrative": "The book covers its subject across all chapters."}`
		case strings.Contains(prompt, "Judge this card"):
			return `{"accurate": true, "reason": "ok", "score": 0.9}`
		}
		return ""
	}
	return mock
}

// tocExtract builds a document with a one-page table of contents followed by
// numChapters chapters of five dense pages each.
func tocExtract(numChapters int) *types.Extract {
	var pages []types.Page

	var tocLines []string
	for i := 1; i <= numChapters; i++ {
		tocLines = append(tocLines, fmt.Sprintf("Chapter %d .... %d", i, 2+(i-1)*5))
	}
	pages = append(pages, types.Page{
		PageNumber: 1,
		Text:       strings.Join(tocLines, "\n"),
		WordCount:  numChapters * 4,
	})

	pageNum := 2
	for i := 1; i <= numChapters; i++ {
		for p := 0; p < 5; p++ {
			words := make([]string, 120)
			for w := range words {
				words[w] = fmt.Sprintf("chapter%dword%d", i, p*120+w)
			}
			pages = append(pages, types.Page{
				PageNumber: pageNum,
				Text:       strings.Join(words, " "),
				WordCount:  len(words),
			})
			pageNum++
		}
	}

	return &types.Extract{
		Pages:    pages,
		Metadata: types.Metadata{Title: "Test Book", Author: "Test Author", Source: "test.pdf"},
	}
}

func TestRun_EndToEndWithTOC(t *testing.T) {
	const numChapters = 10
	mock := scriptedMock(numChapters)
	ctx := testContext(t, mock, newStore(t))
	r := NewRunner(RunnerConfig{Registry: NewRunRegistry(), Generation: testGeneration()})

	result, err := r.Run(ctx, tocExtract(numChapters))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Chapters) != numChapters {
		t.Fatalf("got %d chapters, want %d", len(result.Chapters), numChapters)
	}
	for i := 1; i < len(result.Chapters); i++ {
		prev, cur := result.Chapters[i-1], result.Chapters[i]
		if cur.StartPage != prev.EndPage+1 {
			t.Errorf("gap or overlap between %q and %q", prev.Title, cur.Title)
		}
	}

	flashcardsByChapter := make(map[string]int)
	quizzesByChapter := make(map[string]int)
	summaries := 0
	overviews := 0
	for _, c := range result.Cards {
		switch c.Type {
		case types.CardFlashcard:
			flashcardsByChapter[c.ChapterContext]++
		case types.CardQuiz:
			quizzesByChapter[c.ChapterContext]++
		case types.CardSummary:
			if c.ChapterContext == "Book Overview" {
				overviews++
			} else {
				summaries++
			}
		}
	}

	for _, ch := range result.Chapters {
		if flashcardsByChapter[ch.Title] == 0 {
			t.Errorf("chapter %q has no flashcards", ch.Title)
		}
		if quizzesByChapter[ch.Title] == 0 {
			t.Errorf("chapter %q has no quiz cards", ch.Title)
		}
	}
	if summaries != numChapters {
		t.Errorf("got %d summaries, want %d", summaries, numChapters)
	}
	if overviews != 1 {
		t.Errorf("got %d overview cards, want exactly 1", overviews)
	}

	if len(result.ChunkMapping) == 0 {
		t.Error("result carries no chunk mapping")
	}
	for _, c := range result.Cards {
		for _, id := range c.SourceChunks {
			if result.ChunkMapping[id] == nil {
				t.Errorf("card %q references chunk %d missing from the mapping", c.Title, id)
			}
		}
	}
}

func TestRun_WarmCacheIsByteIdentical(t *testing.T) {
	mock := scriptedMock(3)
	ctx := testContext(t, mock, newStore(t))
	r := NewRunner(RunnerConfig{Generation: testGeneration()})

	first, err := r.Run(ctx, tocExtract(3))
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	callsAfterFirst := mock.RequestCount()

	second, err := r.Run(ctx, tocExtract(3))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if mock.RequestCount() != callsAfterFirst {
		t.Errorf("warm-cache run made %d extra model calls",
			mock.RequestCount()-callsAfterFirst)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("warm-cache result differs from the original run")
	}
}

func TestRun_InFlightIdentifierFailsFast(t *testing.T) {
	mock := scriptedMock(3)
	ctx := testContext(t, mock, nil)
	registry := NewRunRegistry()
	r := NewRunner(RunnerConfig{Registry: registry, Generation: testGeneration()})

	ext := tocExtract(3)
	contentID := cache.ContentID(ext.Metadata)
	if err := registry.Begin(contentID); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	if _, err := r.Run(ctx, ext); err == nil {
		t.Error("Run should fail fast while the identifier is in flight")
	}

	registry.End(contentID)
	if _, err := r.Run(ctx, ext); err != nil {
		t.Errorf("Run after release failed: %v", err)
	}
}

func TestRun_NoPagesFallsThroughToWordWindows(t *testing.T) {
	mock := scriptedMock(0)
	ctx := testContext(t, mock, nil)
	r := NewRunner(RunnerConfig{Generation: testGeneration()})

	words := make([]string, 4000)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	ext := &types.Extract{
		Text:     strings.Join(words, " "),
		Metadata: types.Metadata{Title: "Raw Text", Source: "raw.txt"},
	}

	result, err := r.Run(ctx, ext)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Chapters) == 0 {
		t.Fatal("no chapters from word fallback")
	}
	if result.Chapters[0].DetectionMethod != types.DetectionWordWindows {
		t.Errorf("method = %s, want %s",
			result.Chapters[0].DetectionMethod, types.DetectionWordWindows)
	}
	if len(result.Cards) == 0 {
		t.Fatal("no cards produced from word fallback")
	}

	seen := make(map[string]bool)
	for _, c := range result.Cards {
		key := string(c.Type) + c.Title
		if seen[key] {
			t.Errorf("duplicate card survived: %s %q", c.Type, c.Title)
		}
		seen[key] = true
	}
}

func TestRun_StageFailureAborts(t *testing.T) {
	// A mock with no script answers nothing parseable, so the flashcard tier
	// dies while the structure tiers fall back without model help.
	mock := providers.NewMockClient()
	ctx := testContext(t, mock, nil)
	r := NewRunner(RunnerConfig{Generation: testGeneration()})

	if _, err := r.Run(ctx, tocExtract(2)); err == nil {
		t.Error("expected the run to abort when synthesis produces nothing")
	}
}
