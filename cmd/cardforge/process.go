package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardforge/cardforge/internal/cache"
	"github.com/cardforge/cardforge/internal/config"
	"github.com/cardforge/cardforge/internal/embed"
	"github.com/cardforge/cardforge/internal/home"
	"github.com/cardforge/cardforge/internal/llmcall"
	"github.com/cardforge/cardforge/internal/pipeline"
	"github.com/cardforge/cardforge/internal/providers"
	"github.com/cardforge/cardforge/internal/svcctx"
	"github.com/cardforge/cardforge/internal/types"
)

var outFile string

var processCmd = &cobra.Command{
	Use:   "process <extract.json>",
	Short: "Run the full card generation pipeline on an extracted document",
	Long: `Process reads an extractor output file (text, pages, metadata as JSON),
runs structure detection, chunking, indexing, card synthesis, and validation,
and writes the resulting card set as JSON to stdout or --out.

Results are cached by content identifier under the cardforge home directory;
reprocessing the same document is a cache lookup.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, cleanup, err := buildServices()
		if err != nil {
			return err
		}
		defer cleanup()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read extract file: %w", err)
		}
		var ext types.Extract
		if err := json.Unmarshal(data, &ext); err != nil {
			return fmt.Errorf("failed to parse extract file: %w", err)
		}
		if ext.Text == "" && len(ext.Pages) == 0 {
			return fmt.Errorf("extract file has no text and no pages")
		}

		ctx := svcctx.WithServices(cmd.Context(), svcs)
		runner := pipeline.NewRunner(pipeline.RunnerConfig{Registry: pipeline.NewRunRegistry()})
		result, err := runner.Run(ctx, &ext)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		out = append(out, '\n')

		if outFile != "" {
			if err := os.WriteFile(outFile, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			svcs.Logger.Info("result written", "path", outFile, "cards", len(result.Cards))
			return nil
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	processCmd.Flags().StringVar(&outFile, "out", "", "write the result to a file instead of stdout")
}

// buildServices wires the home directory, config, providers, cache, and call
// recorder into a Services struct. The returned cleanup closes what needs
// closing.
func buildServices() (*svcctx.Services, func(), error) {
	logger := slog.Default()

	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}
	if cfgFile == "" && !h.ConfigExists() {
		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return nil, nil, fmt.Errorf("failed to write default config: %w", err)
		}
		logger.Info("wrote default config", "path", h.ConfigPath())
	}

	cfgPath := cfgFile
	if cfgPath == "" && h.ConfigExists() {
		cfgPath = h.ConfigPath()
	}
	manager, err := config.NewManager(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	cfg := manager.Get()

	store, err := cache.NewStore(h.CacheDBPath(), logger)
	if err != nil {
		return nil, nil, err
	}

	recorder := llmcall.NewRecorder(h.CallsPath(), logger)
	limiter := providers.NewRateLimiter(int(cfg.LLM.RateLimit))

	client := providers.NewOpenRouterClient(providers.OpenRouterConfig{
		APIKey:       config.ResolveEnvVars(cfg.LLM.APIKey),
		DefaultModel: cfg.LLM.CheapModel,
	})
	caller := providers.NewCaller(providers.CallerConfig{
		Client:      client,
		Limiter:     limiter,
		Recorder:    recorder,
		Logger:      logger,
		CheapModel:  cfg.LLM.CheapModel,
		StrongModel: cfg.LLM.StrongModel,
		MaxRetries:  cfg.LLM.MaxRetries,
		RetryDelay:  time.Second,
	})

	embedder := embed.NewOpenAIEmbedder(embed.OpenAIConfig{
		APIKey:     config.ResolveEnvVars(cfg.Embeddings.APIKey),
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		BatchSize:  cfg.Embeddings.BatchSize,
	})

	// Rate limit changes apply without a restart.
	manager.OnChange(func(c *config.Config) {
		limiter.SetLimit(int(c.LLM.RateLimit))
		logger.Info("config reloaded", "rate_limit", c.LLM.RateLimit)
	})
	manager.WatchConfig()

	svcs := &svcctx.Services{
		Config:   manager,
		Caller:   caller,
		Embedder: embedder,
		Cache:    store,
		Logger:   logger,
		Home:     h,
	}
	cleanup := func() {
		recorder.Close()
		if err := store.Close(); err != nil {
			logger.Warn("failed to close cache store", "error", err)
		}
	}
	return svcs, cleanup, nil
}
