// Package validate runs the quality gate over generated cards: a cheap
// per-card judgment, regeneration of failed cards on the strong model, and
// final title deduplication. Cards are never silently dropped by the gate;
// a card that cannot be repaired is kept as-is.
package validate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/types"
)

// Verdict is one judgment result.
type Verdict struct {
	Accurate bool    `json:"accurate"`
	Reason   string  `json:"reason"`
	Score    float64 `json:"score"`
}

// Validator runs the quality gate.
type Validator struct {
	caller     *providers.Caller
	logger     *slog.Logger
	batchSize  int
	batchDelay time.Duration
}

// Config configures a Validator.
type Config struct {
	Caller     *providers.Caller
	Logger     *slog.Logger // Optional
	BatchSize  int          // Judgment calls in flight (default 3)
	BatchDelay time.Duration
}

// New creates a Validator.
func New(cfg Config) *Validator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	return &Validator{
		caller:     cfg.Caller,
		logger:     cfg.Logger,
		batchSize:  cfg.BatchSize,
		batchDelay: cfg.BatchDelay,
	}
}

// Finalize judges every card, regenerates the ones that fail, and
// deduplicates the result. chunkMapping supplies the source passages each
// card is judged against. A judgment call that errors keeps the card:
// availability wins over strictness throughout this layer.
func (v *Validator) Finalize(ctx context.Context, cards []types.Card, chunkMapping map[int]*types.Chunk) ([]types.Card, error) {
	out := make([]types.Card, len(cards))
	copy(out, cards)
	var mu sync.Mutex
	enhanced := 0
	failed := 0

	err := providers.RunBatches(ctx, len(cards), v.batchSize, v.batchDelay, func(ctx context.Context, i int) {
		card := cards[i]
		sources := sourceTexts(card, chunkMapping)

		verdict, err := v.judge(ctx, card, sources)
		if err != nil {
			v.logger.Warn("card judgment failed, keeping card", "title", card.Title, "error", err)
			return
		}
		if verdict.Accurate {
			return
		}

		v.logger.Info("card failed validation, regenerating",
			"title", card.Title, "type", card.Type, "reason", verdict.Reason, "score", verdict.Score)

		replacement, err := v.enhance(ctx, card, verdict.Reason, sources)
		if err != nil {
			v.logger.Warn("regeneration failed, keeping original card",
				"title", card.Title, "error", err)
			mu.Lock()
			failed++
			mu.Unlock()
			return
		}

		mu.Lock()
		out[i] = replacement
		enhanced++
		mu.Unlock()
	})
	if err != nil {
		return nil, err
	}

	deduped := Dedupe(out)
	v.logger.Info("validation complete",
		"cards", len(cards),
		"enhanced", enhanced,
		"kept_after_double_failure", failed,
		"after_dedup", len(deduped))
	return deduped, nil
}

// judge runs the cheap accuracy check for one card.
func (v *Validator) judge(ctx context.Context, card types.Card, sources []string) (*Verdict, error) {
	var verdict Verdict
	err := v.caller.CompleteJSON(ctx, BuildJudgePrompt(card, sources), providers.CompleteOptions{
		Task:      providers.TaskValidate,
		System:    JudgeSystemPrompt,
		MaxTokens: 512,
	}, JudgeJSONSchema(), &verdict)
	if err != nil {
		return nil, err
	}
	return &verdict, nil
}

// enhance regenerates a failed card on the strong model, carrying over the
// original's identity and provenance and marking the replacement.
func (v *Validator) enhance(ctx context.Context, card types.Card, reason string, sources []string) (types.Card, error) {
	var resp struct {
		Title              string   `json:"title"`
		Front              string   `json:"front"`
		Back               string   `json:"back"`
		Scenario           string   `json:"scenario"`
		Question           string   `json:"question"`
		Solution           []string `json:"solution"`
		Choices            []string `json:"choices"`
		CorrectAnswerIndex int      `json:"correctAnswerIndex"`
		Explanation        string   `json:"explanation"`
		Narrative          string   `json:"narrative"`
	}
	err := v.caller.CompleteJSON(ctx, BuildEnhancePrompt(card, reason, sources), providers.CompleteOptions{
		Task:      providers.TaskEnhance,
		System:    EnhanceSystemPrompt,
		MaxTokens: 2048,
	}, EnhanceJSONSchema(card.Type), &resp)
	if err != nil {
		return types.Card{}, err
	}

	replacement := card
	replacement.Title = resp.Title
	replacement.Enhanced = true

	switch card.Type {
	case types.CardFlashcard:
		replacement.Flashcard = &types.FlashcardPayload{Front: resp.Front, Back: resp.Back}
	case types.CardApplication:
		replacement.Application = &types.ApplicationPayload{
			Scenario: resp.Scenario,
			Question: resp.Question,
			Solution: resp.Solution,
		}
	case types.CardQuiz:
		replacement.Quiz = &types.QuizPayload{
			Question:           resp.Question,
			Choices:            resp.Choices,
			CorrectAnswerIndex: resp.CorrectAnswerIndex,
			Explanation:        resp.Explanation,
		}
	case types.CardSummary:
		replacement.Summary = &types.SummaryPayload{Narrative: resp.Narrative}
	}

	return types.NewCard(replacement)
}

// sourceTexts resolves a card's source chunk IDs to their texts.
func sourceTexts(card types.Card, chunkMapping map[int]*types.Chunk) []string {
	var sources []string
	for _, id := range card.SourceChunks {
		if chunk, ok := chunkMapping[id]; ok && chunk != nil {
			sources = append(sources, chunk.Text)
		}
	}
	return sources
}
