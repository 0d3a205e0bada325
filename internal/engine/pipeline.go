package engine

import (
	"context"
	"fmt"
	"log/slog"
)

// Store is the persistent record collaborator. Update applies a partial
// field set — the pipeline never read-modify-writes whole records, so each
// checkpoint is its own committed write.
type Store interface {
	Get(ctx context.Context, id string) (*VideoItem, error)
	Create(ctx context.Context, item *VideoItem) error
	Update(ctx context.Context, id string, fields Fields) error
}

// ProcessItem runs the full ingestion pipeline for one item:
//
//	pending → processing → {completed | failed}
//
// Metadata, transcript and frames are best-effort and checkpointed as they
// arrive; the analysis stage is terminal. A terminal failure records
// error_message and status=failed without discarding earlier checkpoints.
// Re-invocation is always safe: every stage repeats and overwrites.
func ProcessItem(ctx context.Context, store Store, id string) error {
	metrics.PipelineRuns.Add(1)

	item, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("item not found: %s: %w", id, err)
	}

	platform := DetectPlatform(item.URL)
	if err := store.Update(ctx, id, Fields{
		"status":        StatusProcessing,
		"platform":      platform,
		"error_message": nil,
	}); err != nil {
		return fmt.Errorf("enter processing: %w", err)
	}

	return TrackOperation(ctx, "process:"+id, func(ctx context.Context) error {
		return runPipeline(ctx, store, item, platform)
	})
}

func runPipeline(ctx context.Context, store Store, item *VideoItem, platform Platform) error {
	log := slog.With(slog.String("item", item.ID), slog.String("platform", string(platform)))

	// Stage 1: metadata cascade, checkpointed immediately so a later failure
	// cannot lose it.
	meta := ResolveMetadata(ctx, platform, item.URL)
	if !meta.Empty() {
		if err := store.Update(ctx, item.ID, metadataFields(meta)); err != nil {
			return failItem(ctx, store, item.ID, fmt.Errorf("checkpoint metadata: %w", err))
		}
		log.Debug("metadata checkpointed", slog.Bool("thumbnail", meta.ThumbnailURL != ""))
	}

	// Stage 2: transcript and frames. Independent of each other, both
	// best-effort.
	transcript := ResolveTranscript(ctx, platform, item.URL, meta)
	frames := FrameReferences(
		firstPositive(meta.Duration, item.Duration),
		firstNonEmpty(meta.ThumbnailURL, item.ThumbnailURL),
	)

	derived := Fields{}
	if transcript.Text != "" {
		derived["transcript"] = transcript.Text
		derived["transcript_segments"] = transcript.Segments
	}
	if len(frames) > 0 {
		derived["frames"] = frames
	}
	if len(derived) > 0 {
		if err := store.Update(ctx, item.ID, derived); err != nil {
			return failItem(ctx, store, item.ID, fmt.Errorf("checkpoint transcript: %w", err))
		}
		log.Debug("transcript checkpointed",
			slog.Int("segments", len(transcript.Segments)),
			slog.Int("frames", len(frames)))
	}

	// Stage 3: analysis synthesis — terminal on failure.
	prompt := BuildAnalysisPrompt(item, platform, meta, transcript.Text)
	analysis, err := Synthesize(ctx, prompt)
	if err != nil {
		return failItem(ctx, store, item.ID, err)
	}

	final := Fields{
		"status":        StatusCompleted,
		"analysis":      analysis,
		"error_message": nil,
	}
	if title := completedTitle(item, meta, analysis); title != "" {
		final["title"] = title
	}
	if thumb := firstNonEmpty(meta.ThumbnailURL, item.ThumbnailURL); thumb != "" {
		final["thumbnail_url"] = thumb
	}
	if err := store.Update(ctx, item.ID, final); err != nil {
		return failItem(ctx, store, item.ID, fmt.Errorf("write completed: %w", err))
	}

	metrics.PipelineCompleted.Add(1)
	log.Info("item completed",
		slog.Bool("transcript", transcript.Text != ""),
		slog.Int("frames", len(frames)))
	return nil
}

// failItem records a terminal failure. Earlier checkpoints survive — only
// status and error_message change.
func failItem(ctx context.Context, store Store, id string, cause error) error {
	metrics.PipelineFailed.Add(1)
	slog.Error("item failed", slog.String("item", id), slog.Any("error", cause))

	if err := store.Update(ctx, id, Fields{
		"status":        StatusFailed,
		"error_message": cause.Error(),
	}); err != nil {
		slog.Error("failed-state write failed", slog.String("item", id), slog.Any("error", err))
	}
	return cause
}

// metadataFields builds the metadata checkpoint. Resolved fields overwrite;
// fields no provider supplied keep whatever the item already had.
func metadataFields(meta Metadata) Fields {
	f := Fields{}
	if meta.Title != "" {
		f["title"] = meta.Title
	}
	if meta.ThumbnailURL != "" {
		f["thumbnail_url"] = meta.ThumbnailURL
	}
	if meta.AuthorName != "" {
		f["author_name"] = meta.AuthorName
	}
	if meta.AuthorHandle != "" {
		f["author_handle"] = meta.AuthorHandle
	}
	if meta.Stats != nil {
		f["stats"] = meta.Stats
	}
	if meta.Music != "" {
		f["music"] = meta.Music
	}
	if len(meta.Hashtags) > 0 {
		f["hashtags"] = meta.Hashtags
	}
	if meta.Duration > 0 {
		f["duration"] = meta.Duration
	}
	return f
}

// completedTitle falls back to a cut of the concept summary when no provider
// resolved a title, so completed items are never nameless in the UI.
func completedTitle(item *VideoItem, meta Metadata, analysis *VideoAnalysis) string {
	if t := firstNonEmpty(meta.Title, item.Title); t != "" {
		return t
	}
	return Truncate(analysis.ConceptSummary, 60)
}
