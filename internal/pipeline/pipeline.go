// Package pipeline orchestrates one end-to-end run: structure detection,
// chunking, index build, tiered synthesis, and the validation gate. A run is
// strictly sequential per content identifier; each stage's full output is
// the next stage's precondition.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/chunker"
	"github.com/cardforge/cardforge/internal/config"
	"github.com/cardforge/cardforge/internal/index"
	"github.com/cardforge/cardforge/internal/structure"
	"github.com/cardforge/cardforge/internal/svcctx"
	"github.com/cardforge/cardforge/internal/synth"
	"github.com/cardforge/cardforge/internal/types"
	"github.com/cardforge/cardforge/internal/validate"
)

// Runner executes pipeline runs. The registry is injected by the owner so
// concurrent-run guarding lives with whoever coordinates runs, not in global
// state.
type Runner struct {
	registry *RunRegistry
	gen      *config.GenerationCfg
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Registry *RunRegistry // Optional; nil disables the concurrent-run guard
	// Generation overrides the context config manager's generation settings
	// when set.
	Generation *config.GenerationCfg
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{registry: cfg.Registry, gen: cfg.Generation}
}

// Run executes the full pipeline for one extracted document. Services come
// from the context. A final-result cache entry short-circuits the whole run;
// a stage failure aborts the run, leaving any cached intermediates valid for
// a retry.
func (r *Runner) Run(ctx context.Context, ext *types.Extract) (*types.Result, error) {
	svcs := svcctx.ServicesFrom(ctx)
	if svcs == nil || svcs.Caller == nil || svcs.Embedder == nil {
		return nil, fmt.Errorf("pipeline requires caller and embedder services on the context")
	}
	logger := svcctx.LoggerFrom(ctx)

	gen := r.generationCfg(svcs)
	contentID := cache.ContentID(ext.Metadata)
	logger = logger.With("content_id", contentID)

	if r.registry != nil {
		if err := r.registry.Begin(contentID); err != nil {
			return nil, err
		}
		defer r.registry.End(contentID)
	}

	// Idempotence: a final result on disk means the whole run is a lookup.
	if svcs.Cache != nil {
		var cached types.Result
		if svcs.Cache.GetJSON(ctx, contentID, cache.KindFinal, &cached) && len(cached.Cards) > 0 {
			logger.Info("final result cache hit", "cards", len(cached.Cards))
			return &cached, nil
		}
	}

	start := time.Now()
	logger.Info("pipeline run starting",
		"pages", len(ext.Pages),
		"words", ext.TotalWords())

	detector := structure.NewDetector(structure.DetectorConfig{
		Caller:      svcs.Caller,
		Cache:       svcs.Cache,
		Logger:      logger,
		MaxChapters: gen.MaxChapters,
	})
	st, err := detector.Detect(ctx, contentID, ext)
	if err != nil {
		return nil, fmt.Errorf("structure detection failed: %w", err)
	}

	chunks := chunker.New(logger).Split(st.Chapters)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking produced zero chunks from %d chapters", len(st.Chapters))
	}

	ix := index.New(index.Config{Embedder: svcs.Embedder, Logger: logger})
	if err := ix.Build(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index build failed: %w", err)
	}

	batchDelay := time.Duration(gen.BatchDelayMS) * time.Millisecond
	synthesizer := synth.New(synth.Config{
		Caller:                  svcs.Caller,
		Index:                   ix,
		Cache:                   svcs.Cache,
		Logger:                  logger,
		WindowSize:              gen.ChunkWindowSize,
		RetrievalTopK:           gen.RetrievalTopK,
		MaxFlashcardsPerChapter: gen.MaxFlashcardsPerChapter,
		MaxQuizzesPerChapter:    gen.MaxQuizzesPerChapter,
		Applications:            gen.Applications,
		BatchSize:               gen.BatchSize,
		BatchDelay:              batchDelay,
		DebugTierCache:          gen.DebugTierCache,
	})
	cards, err := synthesizer.Synthesize(ctx, contentID, st.Chapters, chunks)
	if err != nil {
		return nil, fmt.Errorf("card synthesis failed: %w", err)
	}

	chunkMapping := make(map[int]*types.Chunk, len(chunks))
	for i := range chunks {
		chunkMapping[chunks[i].ID] = &chunks[i]
	}

	validator := validate.New(validate.Config{
		Caller:     svcs.Caller,
		Logger:     logger,
		BatchSize:  gen.BatchSize,
		BatchDelay: batchDelay,
	})
	cards, err = validator.Finalize(ctx, cards, chunkMapping)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result := &types.Result{
		Cards:        cards,
		Chapters:     st.Chapters,
		ChunkMapping: chunkMapping,
	}

	if svcs.Cache != nil {
		if err := svcs.Cache.SetJSON(ctx, contentID, cache.KindFinal, result); err != nil {
			logger.Warn("failed to cache final result", "error", err)
		}
	}

	logger.Info("pipeline run complete",
		"chapters", len(st.Chapters),
		"chunks", len(chunks),
		"cards", len(cards),
		"method", st.DetectionMethod,
		"duration", time.Since(start))
	return result, nil
}

// generationCfg resolves generation settings: explicit override, then the
// context config manager, then defaults.
func (r *Runner) generationCfg(svcs *svcctx.Services) config.GenerationCfg {
	if r.gen != nil {
		return *r.gen
	}
	if svcs.Config != nil {
		if cfg := svcs.Config.Get(); cfg != nil {
			return cfg.Generation
		}
	}
	return config.DefaultConfig().Generation
}
