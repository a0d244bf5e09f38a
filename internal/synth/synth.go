// Package synth runs the tiered card generation sequence: flashcards from
// chunk windows, applications and quizzes from flashcards, one summary per
// chapter, and a single book overview. Tiers run strictly in order because
// each consumes the previous tier's output as context.
package synth

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/index"
	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/types"
)

// Tier names used for debug persistence.
const (
	TierFlashcards   = "flashcards"
	TierApplications = "applications"
	TierQuizzes      = "quizzes"
	TierSummaries    = "summaries"
	TierOverview     = "overview"
)

// Synthesizer generates the card set for one pipeline run.
type Synthesizer struct {
	caller *providers.Caller
	index  *index.Index
	cache  *cache.Store
	logger *slog.Logger

	windowSize       int
	topK             int
	maxPerChapter    int
	maxQuizzes       int
	applications     bool
	applicationGroup int
	batchSize        int
	batchDelay       time.Duration
	debugTiers       bool
}

// Config configures a Synthesizer.
type Config struct {
	Caller *providers.Caller
	Index  *index.Index
	Cache  *cache.Store // Optional; needed only for debug tier persistence
	Logger *slog.Logger // Optional

	WindowSize              int  // Chunks per flashcard window (default 4)
	RetrievalTopK           int  // Retrieved neighbors per window (default 3)
	MaxFlashcardsPerChapter int  // Default 25
	MaxQuizzesPerChapter    int  // Default 10
	Applications            bool // Generate tier-2 application cards
	BatchSize               int  // Generation calls in flight (default 3)
	BatchDelay              time.Duration
	DebugTierCache          bool // Persist each tier's raw output
}

// New creates a Synthesizer.
func New(cfg Config) *Synthesizer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 4
	}
	if cfg.RetrievalTopK < 0 {
		cfg.RetrievalTopK = 0
	} else if cfg.RetrievalTopK == 0 {
		cfg.RetrievalTopK = 3
	}
	if cfg.MaxFlashcardsPerChapter <= 0 {
		cfg.MaxFlashcardsPerChapter = 25
	}
	if cfg.MaxQuizzesPerChapter <= 0 {
		cfg.MaxQuizzesPerChapter = 10
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	return &Synthesizer{
		caller:           cfg.Caller,
		index:            cfg.Index,
		cache:            cfg.Cache,
		logger:           cfg.Logger,
		windowSize:       cfg.WindowSize,
		topK:             cfg.RetrievalTopK,
		maxPerChapter:    cfg.MaxFlashcardsPerChapter,
		maxQuizzes:       cfg.MaxQuizzesPerChapter,
		applications:     cfg.Applications,
		applicationGroup: 3,
		batchSize:        cfg.BatchSize,
		batchDelay:       cfg.BatchDelay,
		debugTiers:       cfg.DebugTierCache,
	}
}

// Synthesize runs every tier in order and returns the combined card set.
// Individual card failures are logged and skipped; an empty flashcard tier is
// fatal because every later tier depends on it.
func (s *Synthesizer) Synthesize(ctx context.Context, contentID string, chapters []types.Chapter, chunks []types.Chunk) ([]types.Card, error) {
	flashcards, err := s.flashcards(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(flashcards) == 0 {
		return nil, fmt.Errorf("flashcard tier produced zero cards from %d chunks", len(chunks))
	}
	s.persistTier(ctx, contentID, TierFlashcards, flashcards)

	cards := append([]types.Card{}, flashcards...)
	byChapter := groupByChapter(flashcards)

	if s.applications {
		apps, err := s.applicationCards(ctx, byChapter)
		if err != nil {
			return nil, err
		}
		s.persistTier(ctx, contentID, TierApplications, apps)
		cards = append(cards, apps...)
	}

	quizzes, err := s.quizCards(ctx, byChapter)
	if err != nil {
		return nil, err
	}
	s.persistTier(ctx, contentID, TierQuizzes, quizzes)
	cards = append(cards, quizzes...)

	summaries, err := s.summaryCards(ctx, byChapter)
	if err != nil {
		return nil, err
	}
	s.persistTier(ctx, contentID, TierSummaries, summaries)
	cards = append(cards, summaries...)

	if overview, err := s.overviewCard(ctx, chapters); err != nil {
		s.logger.Warn("book overview generation failed", "error", err)
	} else {
		s.persistTier(ctx, contentID, TierOverview, []types.Card{overview})
		cards = append(cards, overview)
	}

	s.logger.Info("card synthesis complete",
		"flashcards", len(flashcards),
		"quizzes", len(quizzes),
		"summaries", len(summaries),
		"total", len(cards))
	return cards, nil
}

// flashcards runs tier 1: one card per chunk window, each window augmented
// with retrieved neighbors from elsewhere in the document.
func (s *Synthesizer) flashcards(ctx context.Context, chunks []types.Chunk) ([]types.Card, error) {
	windows := s.buildWindows(chunks)
	if len(windows) == 0 {
		return nil, nil
	}

	results := make([]*types.Card, len(windows))
	var mu sync.Mutex

	err := providers.RunBatches(ctx, len(windows), s.batchSize, s.batchDelay, func(ctx context.Context, i int) {
		card, err := s.flashcardForWindow(ctx, windows[i])
		if err != nil {
			s.logger.Warn("flashcard generation failed, skipping window",
				"chapter", windows[i][0].ChapterTitle,
				"first_chunk", windows[i][0].ID,
				"error", err)
			return
		}
		mu.Lock()
		results[i] = &card
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	var cards []types.Card
	for _, c := range results {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

// buildWindows groups chunks into fixed-size windows that never span a
// chapter boundary, capped per chapter.
func (s *Synthesizer) buildWindows(chunks []types.Chunk) [][]types.Chunk {
	var windows [][]types.Chunk
	perChapter := make(map[string]int)

	for start := 0; start < len(chunks); {
		title := chunks[start].ChapterTitle
		end := start
		for end < len(chunks) && end-start < s.windowSize && chunks[end].ChapterTitle == title {
			end++
		}
		if perChapter[title] < s.maxPerChapter {
			windows = append(windows, chunks[start:end])
			perChapter[title]++
		}
		start = end
	}
	return windows
}

func (s *Synthesizer) flashcardForWindow(ctx context.Context, window []types.Chunk) (types.Card, error) {
	exclude := make(map[int]bool, len(window))
	sourceChunks := make([]int, 0, len(window))
	var tags []string
	for _, c := range window {
		exclude[c.ID] = true
		sourceChunks = append(sourceChunks, c.ID)
		tags = mergeTags(tags, c.Entities)
	}

	var neighbors []index.Match
	if s.index != nil && s.topK > 0 {
		var err error
		neighbors, err = s.index.Query(ctx, windowText(window), s.topK, exclude)
		if err != nil {
			// Retrieval is augmentation; the window alone still works.
			s.logger.Warn("neighbor retrieval failed", "first_chunk", window[0].ID, "error", err)
		}
	}

	var resp struct {
		Title      string   `json:"title"`
		Front      string   `json:"front"`
		Back       string   `json:"back"`
		Difficulty string   `json:"difficulty"`
		Tags       []string `json:"tags"`
	}
	err := s.caller.CompleteJSON(ctx, BuildFlashcardPrompt(window, neighbors), providers.CompleteOptions{
		Task:      providers.TaskCardGen,
		System:    FlashcardSystemPrompt,
		MaxTokens: 1024,
	}, FlashcardJSONSchema(), &resp)
	if err != nil {
		return types.Card{}, err
	}

	return types.NewCard(types.Card{
		ID:             uuid.New().String(),
		Type:           types.CardFlashcard,
		Title:          resp.Title,
		Difficulty:     resp.Difficulty,
		Tags:           mergeTags(tags, resp.Tags),
		ChapterContext: window[0].ChapterTitle,
		SourceChunks:   sourceChunks,
		Flashcard:      &types.FlashcardPayload{Front: resp.Front, Back: resp.Back},
	})
}

// applicationCards runs tier 2: one applied scenario per group of flashcards
// from the same chapter. Chapters with fewer than two flashcards are skipped.
func (s *Synthesizer) applicationCards(ctx context.Context, byChapter map[string][]types.Card) ([]types.Card, error) {
	type group struct {
		chapter    string
		flashcards []types.Card
	}
	var groups []group
	for _, chapter := range sortedChapters(byChapter) {
		fcs := byChapter[chapter]
		for start := 0; start+2 <= len(fcs); start += s.applicationGroup {
			end := start + s.applicationGroup
			if end > len(fcs) {
				end = len(fcs)
			}
			if end-start < 2 {
				break
			}
			groups = append(groups, group{chapter: chapter, flashcards: fcs[start:end]})
		}
	}
	if len(groups) == 0 {
		return nil, nil
	}

	results := make([]*types.Card, len(groups))
	var mu sync.Mutex

	err := providers.RunBatches(ctx, len(groups), s.batchSize, s.batchDelay, func(ctx context.Context, i int) {
		g := groups[i]
		var resp struct {
			Title      string   `json:"title"`
			Scenario   string   `json:"scenario"`
			Question   string   `json:"question"`
			Solution   []string `json:"solution"`
			Difficulty string   `json:"difficulty"`
		}
		err := s.caller.CompleteJSON(ctx, BuildApplicationPrompt(g.chapter, g.flashcards), providers.CompleteOptions{
			Task:      providers.TaskCardGen,
			System:    ApplicationSystemPrompt,
			MaxTokens: 1536,
		}, ApplicationJSONSchema(), &resp)
		if err != nil {
			s.logger.Warn("application generation failed, skipping group",
				"chapter", g.chapter, "error", err)
			return
		}

		card, err := types.NewCard(types.Card{
			ID:             uuid.New().String(),
			Type:           types.CardApplication,
			Title:          resp.Title,
			Difficulty:     resp.Difficulty,
			ChapterContext: g.chapter,
			SourceChunks:   unionSourceChunks(g.flashcards),
			SourceCards:    cardIDs(g.flashcards),
			Application: &types.ApplicationPayload{
				Scenario: resp.Scenario,
				Question: resp.Question,
				Solution: resp.Solution,
			},
		})
		if err != nil {
			s.logger.Warn("discarding invalid application card", "chapter", g.chapter, "error", err)
			return
		}
		mu.Lock()
		results[i] = &card
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	var cards []types.Card
	for _, c := range results {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

// quizCards runs tier 3: one generation call per chapter returning several
// questions. Answer letters convert to zero-based indexes, and every
// question's choices are rotated by a content-derived offset so the correct
// answer position does not concentrate on whatever letter the model favors.
func (s *Synthesizer) quizCards(ctx context.Context, byChapter map[string][]types.Card) ([]types.Card, error) {
	chapters := sortedChapters(byChapter)
	results := make([][]types.Card, len(chapters))
	var mu sync.Mutex

	err := providers.RunBatches(ctx, len(chapters), s.batchSize, s.batchDelay, func(ctx context.Context, i int) {
		chapter := chapters[i]
		fcs := byChapter[chapter]

		var resp struct {
			Questions []struct {
				Title         string   `json:"title"`
				Question      string   `json:"question"`
				Choices       []string `json:"choices"`
				CorrectAnswer string   `json:"correctAnswer"`
				Explanation   string   `json:"explanation"`
				Difficulty    string   `json:"difficulty"`
			} `json:"questions"`
		}
		err := s.caller.CompleteJSON(ctx, BuildQuizPrompt(chapter, fcs, s.maxQuizzes), providers.CompleteOptions{
			Task:      providers.TaskCardGen,
			System:    QuizSystemPrompt,
			MaxTokens: 3072,
		}, QuizJSONSchema(), &resp)
		if err != nil {
			s.logger.Warn("quiz generation failed, skipping chapter", "chapter", chapter, "error", err)
			return
		}

		var cards []types.Card
		for _, q := range resp.Questions {
			if len(cards) >= s.maxQuizzes {
				break
			}
			correct, ok := answerIndex(q.CorrectAnswer, len(q.Choices))
			if !ok {
				s.logger.Warn("dropping quiz with unmappable answer",
					"chapter", chapter, "answer", q.CorrectAnswer)
				continue
			}
			choices, correct := rotateChoices(q.Choices, correct, q.Question)

			card, err := types.NewCard(types.Card{
				ID:             uuid.New().String(),
				Type:           types.CardQuiz,
				Title:          q.Title,
				Difficulty:     q.Difficulty,
				ChapterContext: chapter,
				SourceChunks:   unionSourceChunks(fcs),
				SourceCards:    cardIDs(fcs),
				Quiz: &types.QuizPayload{
					Question:           q.Question,
					Choices:            choices,
					CorrectAnswerIndex: correct,
					Explanation:        q.Explanation,
				},
			})
			if err != nil {
				s.logger.Warn("discarding invalid quiz card", "chapter", chapter, "error", err)
				continue
			}
			cards = append(cards, card)
		}
		mu.Lock()
		results[i] = cards
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	var cards []types.Card
	for _, chapterCards := range results {
		cards = append(cards, chapterCards...)
	}
	return cards, nil
}

// summaryCards runs tier 4: one narrative summary per chapter, sourcing the
// union of the chapter flashcards' chunks.
func (s *Synthesizer) summaryCards(ctx context.Context, byChapter map[string][]types.Card) ([]types.Card, error) {
	chapters := sortedChapters(byChapter)
	results := make([]*types.Card, len(chapters))
	var mu sync.Mutex

	err := providers.RunBatches(ctx, len(chapters), s.batchSize, s.batchDelay, func(ctx context.Context, i int) {
		chapter := chapters[i]
		fcs := byChapter[chapter]

		var resp struct {
			Title     string `json:"title"`
			Narrative string `json:"narrative"`
		}
		err := s.caller.CompleteJSON(ctx, BuildSummaryPrompt(chapter, fcs), providers.CompleteOptions{
			Task:      providers.TaskCardGen,
			System:    SummarySystemPrompt,
			MaxTokens: 2048,
		}, SummaryJSONSchema(), &resp)
		if err != nil {
			s.logger.Warn("summary generation failed, skipping chapter", "chapter", chapter, "error", err)
			return
		}

		card, err := types.NewCard(types.Card{
			ID:             uuid.New().String(),
			Type:           types.CardSummary,
			Title:          resp.Title,
			ChapterContext: chapter,
			SourceChunks:   unionSourceChunks(fcs),
			SourceCards:    cardIDs(fcs),
			Summary:        &types.SummaryPayload{Narrative: resp.Narrative},
		})
		if err != nil {
			s.logger.Warn("discarding invalid summary card", "chapter", chapter, "error", err)
			return
		}
		mu.Lock()
		results[i] = &card
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	var cards []types.Card
	for _, c := range results {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

// overviewCard synthesizes the single book-level card from chapter openings.
func (s *Synthesizer) overviewCard(ctx context.Context, chapters []types.Chapter) (types.Card, error) {
	var resp struct {
		Title     string `json:"title"`
		Narrative string `json:"narrative"`
	}
	err := s.caller.CompleteJSON(ctx, BuildOverviewPrompt(chapters), providers.CompleteOptions{
		Task:      providers.TaskCardGen,
		System:    OverviewSystemPrompt,
		MaxTokens: 2048,
	}, SummaryJSONSchema(), &resp)
	if err != nil {
		return types.Card{}, err
	}

	return types.NewCard(types.Card{
		ID:             uuid.New().String(),
		Type:           types.CardSummary,
		Title:          resp.Title,
		ChapterContext: "Book Overview",
		Summary:        &types.SummaryPayload{Narrative: resp.Narrative},
	})
}

func (s *Synthesizer) persistTier(ctx context.Context, contentID, tier string, cards []types.Card) {
	if !s.debugTiers || s.cache == nil || len(cards) == 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, contentID, cache.KindTier(tier), cards); err != nil {
		s.logger.Warn("failed to persist tier output", "tier", tier, "error", err)
	}
}

// answerIndex maps a correct-answer token to a zero-based choice index.
// Accepts letters ("B", "b)", "(c)") and bare digits.
func answerIndex(answer string, choices int) (int, bool) {
	token := strings.TrimFunc(strings.TrimSpace(answer), func(r rune) bool {
		return r == '(' || r == ')' || r == '.' || r == ':' || r == ' '
	})
	if token == "" {
		return 0, false
	}

	c := token[0]
	switch {
	case c >= 'A' && c <= 'Z':
		idx := int(c - 'A')
		return idx, idx < choices
	case c >= 'a' && c <= 'z':
		idx := int(c - 'a')
		return idx, idx < choices
	case c >= '0' && c <= '9':
		idx := int(c - '0')
		return idx, idx < choices
	}
	return 0, false
}

// rotateChoices rotates the choice list by an offset derived from the
// question text, tracking the correct index through the rotation. The offset
// is content-derived so reruns stay deterministic while positions spread
// evenly across a batch.
func rotateChoices(choices []string, correct int, question string) ([]string, int) {
	n := len(choices)
	if n < 2 {
		return choices, correct
	}
	h := fnv.New32a()
	h.Write([]byte(question))
	offset := int(h.Sum32()) % n
	if offset < 0 {
		offset += n
	}

	rotated := make([]string, n)
	for i, c := range choices {
		rotated[(i+offset)%n] = c
	}
	return rotated, (correct + offset) % n
}

func windowText(window []types.Chunk) string {
	var b strings.Builder
	for i, c := range window {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// groupByChapter buckets flashcards by chapter context, preserving order.
func groupByChapter(flashcards []types.Card) map[string][]types.Card {
	byChapter := make(map[string][]types.Card)
	for _, fc := range flashcards {
		byChapter[fc.ChapterContext] = append(byChapter[fc.ChapterContext], fc)
	}
	return byChapter
}

// sortedChapters returns chapter keys in a stable order.
func sortedChapters(byChapter map[string][]types.Card) []string {
	chapters := make([]string, 0, len(byChapter))
	for chapter := range byChapter {
		chapters = append(chapters, chapter)
	}
	sort.Strings(chapters)
	return chapters
}

func unionSourceChunks(cards []types.Card) []int {
	seen := make(map[int]bool)
	var union []int
	for _, c := range cards {
		for _, id := range c.SourceChunks {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}
	sort.Ints(union)
	return union
}

func cardIDs(cards []types.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func mergeTags(existing, more []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	out := existing
	for _, t := range more {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
