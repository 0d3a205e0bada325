// go_clip — social video ingestion and creative analysis service.
//
// Accepts TikTok / YouTube / Instagram / Twitter URLs, resolves metadata
// through cascading providers, pulls timed-text transcripts where the
// platform exposes them, and synthesizes a structured creative analysis
// with an LLM. Items are persisted in Postgres or SQLite with checkpointed,
// resumable processing.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/joho/godotenv"

	"github.com/anatolykoptev/go_clip/internal/engine"
	"github.com/anatolykoptev/go_clip/internal/server"
	"github.com/anatolykoptev/go_clip/internal/store"
)

var (
	version  = "dev"
	httpPort = env.Str("PORT", "8890")
)

func main() {
	_ = godotenv.Load()

	initEngine()

	st, cleanup, err := openStore()
	if err != nil {
		slog.Error("store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	slog.Info("starting go_clip",
		slog.String("version", version),
		slog.String("port", httpPort),
	)

	router := server.NewRouter(st)
	if err := router.Run(":" + httpPort); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		AnalysisTokens:     env.Int("ANALYSIS_MAX_TOKENS", 2000),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 15*time.Second),
		OEmbedTimeout:      env.Duration("OEMBED_TIMEOUT", 10*time.Second),
		AggregatorTimeout:  env.Duration("AGGREGATOR_TIMEOUT", 15*time.Second),
		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", 8000),
		RatePerHost:        env.Float("RATE_PER_HOST", 4),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	apiBase := env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai")
	apiKey := env.Str("LLM_API_KEY", "")
	model := env.Str("LLM_MODEL", "gemini-2.5-flash")
	client := llm.NewClient(apiBase, apiKey, model,
		llm.WithFallbackKeys(env.List("LLM_API_KEY_FALLBACKS", "")),
		llm.WithMaxTokens(env.Int("LLM_MAX_TOKENS", 16384)),
		llm.WithTemperature(env.Float("LLM_TEMPERATURE", 0.3)),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	c.LLMClient = &llmCompleter{client: client}

	engine.Init(c)

	engine.InitCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 15*time.Minute),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)
}

// openStore picks Postgres when DATABASE_URL is set, local SQLite otherwise.
func openStore() (server.ItemStore, func(), error) {
	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		pg, err := store.ConnectPostgres(context.Background(), dbURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}

	sq, err := store.OpenSQLite(env.Str("SQLITE_PATH", ""))
	if err != nil {
		return nil, nil, err
	}
	return sq, func() { _ = sq.Close() }, nil
}

// llmCompleter adapts the go-kit llm client to the engine's completion
// contract, pinning max tokens per call.
type llmCompleter struct {
	client *llm.Client
}

func (a *llmCompleter) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	return a.client.Complete(ctx, system, user, llm.WithChatMaxTokens(maxTokens))
}
