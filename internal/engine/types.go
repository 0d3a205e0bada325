package engine

import "time"

// Platform identifies the video host a URL belongs to.
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformNone      Platform = "none"
)

// Status tracks an item through the processing state machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// VideoStats holds platform engagement counters. Counts are passed through
// from the platform as-is, never validated.
type VideoStats struct {
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// TranscriptSegment is one timed caption cue after normalization.
type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the output of the timed-text parser: full joined text plus
// the ordered, deduplicated segments it was built from.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// VideoFrame is a synthetic frame reference: a labeled timestamp bound to the
// video thumbnail. No real per-timestamp capture happens in this system.
type VideoFrame struct {
	URL       string `json:"url"`
	Timestamp int    `json:"timestamp"`
	Label     string `json:"label"`
}

// VideoPacing is the pacing block of an AI analysis.
type VideoPacing struct {
	Description   string  `json:"description"`
	EstimatedCuts int     `json:"estimated_cuts"`
	CutsPerMinute float64 `json:"cuts_per_minute"`
}

// CaptionOverlay is one on-screen text overlay identified by the analysis.
type CaptionOverlay struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
	Style     string  `json:"style"`
}

// Valid hook types the model may return. Anything else maps to "other".
var hookTypes = map[string]bool{
	"question":                 true,
	"shocking_stat":            true,
	"controversy":              true,
	"visual_pattern_interrupt": true,
	"relatable_moment":         true,
	"promise":                  true,
	"curiosity_gap":            true,
	"other":                    true,
}

// VideoAnalysis is the structured creative analysis returned by the model.
type VideoAnalysis struct {
	Hook             string           `json:"hook"`
	HookAnalysis     string           `json:"hook_analysis"`
	HookScore        *int             `json:"hook_score"`
	HookType         string           `json:"hook_type"`
	CTA              string           `json:"cta"`
	ConceptSummary   string           `json:"concept_summary"`
	Pacing           VideoPacing      `json:"pacing"`
	CaptionOverlays  []CaptionOverlay `json:"caption_overlays"`
	ContentThemes    []string         `json:"content_themes"`
	WinningElements  []string         `json:"winning_elements"`
	ImprovementAreas []string         `json:"improvement_areas"`
}

// Metadata is one provider's (possibly partial) contribution. The zero value
// means the provider had nothing; fields are merged across the cascade.
type Metadata struct {
	Title        string
	ThumbnailURL string
	AuthorName   string
	AuthorHandle string
	Duration     int // seconds, 0 = unknown
	Stats        *VideoStats
	Music        string
	VideoURL     string // direct play URL when a provider exposes one
	SubtitleURL  string // timed-text track URL when a provider exposes one
	Hashtags     []string
}

// Empty reports whether the metadata carries no usable field at all.
func (m Metadata) Empty() bool {
	return m.Title == "" && m.ThumbnailURL == "" && m.AuthorName == "" &&
		m.AuthorHandle == "" && m.Duration == 0 && m.Stats == nil &&
		m.Music == "" && m.SubtitleURL == ""
}

// VideoItem is the persisted record this pipeline mutates. Created externally
// in pending; derived fields are filled in progressively and overwritten on
// every re-run.
type VideoItem struct {
	ID           string              `json:"id"`
	URL          string              `json:"url"`
	Platform     Platform            `json:"platform"`
	Status       Status              `json:"status"`
	Title        string              `json:"title,omitempty"`
	ThumbnailURL string              `json:"thumbnail_url,omitempty"`
	AuthorName   string              `json:"author_name,omitempty"`
	AuthorHandle string              `json:"author_handle,omitempty"`
	Stats        *VideoStats         `json:"stats,omitempty"`
	Music        string              `json:"music,omitempty"`
	Hashtags     []string            `json:"hashtags,omitempty"`
	Duration     int                 `json:"duration,omitempty"`
	Transcript   string              `json:"transcript,omitempty"`
	Segments     []TranscriptSegment `json:"transcript_segments,omitempty"`
	Frames       []VideoFrame        `json:"frames,omitempty"`
	Analysis     *VideoAnalysis      `json:"analysis,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Fields is a partial update: column name → new value. Checkpoint writes use
// it so a failed later stage never unwinds earlier progress.
type Fields map[string]any
