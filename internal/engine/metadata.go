package engine

import (
	"context"
	"log/slog"
)

// metadataProvider is one entry in a platform's cascade: an independent
// network call contributing whatever fields it can. Providers return an
// error only for logging; a failed provider is an empty contribution.
type metadataProvider struct {
	name  string
	fetch func(ctx context.Context, rawURL string) (Metadata, error)
}

// metadataCascade returns the ordered provider list for a platform. The
// ordering is policy, not invariant — new providers are added by appending.
func metadataCascade(p Platform) []metadataProvider {
	switch p {
	case PlatformTikTok:
		return []metadataProvider{
			{"tikwm", fetchTikWM},
			{"tiktok_oembed", fetchTikTokOEmbed},
			{"tiktok_page", fetchTikTokPage},
		}
	case PlatformYouTube:
		return []metadataProvider{{"youtube_oembed", fetchYouTubeOEmbed}}
	case PlatformInstagram:
		return []metadataProvider{{"instagram_oembed", fetchInstagramOEmbed}}
	case PlatformTwitter:
		return []metadataProvider{{"twitter_oembed", fetchTwitterOEmbed}}
	default:
		return nil
	}
}

// ResolveMetadata runs the platform's provider cascade and merges partial
// contributions. It never fails: with every provider down the item proceeds
// with whatever fields exist, possibly none.
func ResolveMetadata(ctx context.Context, platform Platform, rawURL string) Metadata {
	metrics.MetadataRequests.Add(1)
	merged := runCascade(ctx, rawURL, metadataCascade(platform))
	if merged.Title != "" {
		merged.Hashtags = ExtractHashtags(merged.Title)
	}
	return merged
}

// runCascade tries providers in priority order, merging fields as they come.
// The cascade stops as soon as the required field (thumbnail) is satisfied;
// later providers are never invoked.
func runCascade(ctx context.Context, rawURL string, providers []metadataProvider) Metadata {
	var merged Metadata
	for _, p := range providers {
		if merged.ThumbnailURL != "" {
			break
		}
		m, err := p.fetch(ctx, rawURL)
		if err != nil {
			metrics.MetadataErrors.Add(1)
			slog.Warn("metadata provider failed",
				slog.String("provider", p.name),
				slog.String("url", rawURL),
				slog.Any("error", err))
			continue
		}
		merged = mergeMetadata(merged, m)
	}
	return merged
}

// mergeMetadata fills empty fields of base from next. First provider to
// supply a field wins; nothing is overwritten.
func mergeMetadata(base, next Metadata) Metadata {
	if base.Title == "" {
		base.Title = next.Title
	}
	if base.ThumbnailURL == "" {
		base.ThumbnailURL = next.ThumbnailURL
	}
	if base.AuthorName == "" {
		base.AuthorName = next.AuthorName
	}
	if base.AuthorHandle == "" {
		base.AuthorHandle = next.AuthorHandle
	}
	if base.Duration == 0 {
		base.Duration = next.Duration
	}
	if base.Stats == nil {
		base.Stats = next.Stats
	}
	if base.Music == "" {
		base.Music = next.Music
	}
	if base.VideoURL == "" {
		base.VideoURL = next.VideoURL
	}
	if base.SubtitleURL == "" {
		base.SubtitleURL = next.SubtitleURL
	}
	return base
}
