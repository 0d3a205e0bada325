package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PipelineRuns       atomic.Int64
	PipelineCompleted  atomic.Int64
	PipelineFailed     atomic.Int64
	MetadataRequests   atomic.Int64
	MetadataErrors     atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"pipeline_runs":       metrics.PipelineRuns.Load(),
		"pipeline_completed":  metrics.PipelineCompleted.Load(),
		"pipeline_failed":     metrics.PipelineFailed.Load(),
		"metadata_requests":   metrics.MetadataRequests.Load(),
		"metadata_errors":     metrics.MetadataErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"pipeline_runs", "pipeline_completed", "pipeline_failed",
		"metadata_requests", "metadata_errors",
		"transcript_requests", "transcript_errors",
		"llm_calls", "llm_errors",
		"fetch_requests", "fetch_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
