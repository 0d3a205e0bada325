package engine

import (
	"context"
	"log/slog"
)

// ResolveTranscript retrieves a best-effort transcript for the platform.
// YouTube and TikTok have timed-text sources; the rest have none. A fetch
// failure at any stage degrades to an empty transcript, never an error.
func ResolveTranscript(ctx context.Context, platform Platform, rawURL string, meta Metadata) Transcript {
	metrics.TranscriptRequests.Add(1)

	var tr Transcript
	switch platform {
	case PlatformYouTube:
		tr = fetchYouTubeTranscript(ctx, rawURL)
	case PlatformTikTok:
		tr = fetchTikTokTranscript(ctx, rawURL, meta)
	default:
		return Transcript{}
	}

	if tr.Text == "" {
		metrics.TranscriptErrors.Add(1)
		slog.Debug("no transcript available",
			slog.String("platform", string(platform)),
			slog.String("url", rawURL))
	}
	return tr
}
