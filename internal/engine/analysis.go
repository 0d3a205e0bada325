package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// BuildAnalysisPrompt assembles the synthesis prompt from everything the
// earlier stages gathered. Optional facts appear as labeled lines only when
// present.
func BuildAnalysisPrompt(item *VideoItem, platform Platform, meta Metadata, transcript string) string {
	section := noTranscriptMarker
	if transcript != "" {
		section = "Transcript: " + Truncate(transcript, cfg.MaxTranscriptChars)
	}

	var ctx strings.Builder
	if s := meta.Stats; s != nil {
		fmt.Fprintf(&ctx, "\nStats: %s views, %s likes, %s comments, %s shares",
			GroupDigits(s.Views), GroupDigits(s.Likes), GroupDigits(s.Comments), GroupDigits(s.Shares))
	}
	if meta.Music != "" {
		fmt.Fprintf(&ctx, "\nMusic/Sound: %s", meta.Music)
	}
	if len(meta.Hashtags) > 0 {
		fmt.Fprintf(&ctx, "\nHashtags: %s", strings.Join(meta.Hashtags, ", "))
	}
	if d := firstPositive(meta.Duration, item.Duration); d > 0 {
		fmt.Fprintf(&ctx, "\nDuration: %ds", d)
	}

	title := firstNonEmpty(meta.Title, item.Title, "Unknown")
	author := firstNonEmpty(meta.AuthorName, "Unknown")

	return fmt.Sprintf(analysisPrompt, section, item.URL, platform, title, author, ctx.String())
}

// Synthesize invokes the AI-completion collaborator and strict-parses the
// response. This is the terminal stage: a call or parse failure propagates to
// the orchestrator instead of degrading, because the analysis is the primary
// deliverable.
func Synthesize(ctx context.Context, prompt string) (*VideoAnalysis, error) {
	metrics.LLMCalls.Add(1)

	raw, err := cfg.LLMClient.Complete(ctx, analysisSystem, prompt, cfg.AnalysisTokens)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("analysis completion: %w", err)
	}

	jsonText := stripFences(raw)
	if jsonText == "" {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("analysis completion: empty response")
	}

	var analysis VideoAnalysis
	if err := json.Unmarshal([]byte(jsonText), &analysis); err != nil {
		metrics.LLMErrors.Add(1)
		return nil, fmt.Errorf("analysis parse failed on %q: %w", Truncate(jsonText, 200), err)
	}

	normalizeAnalysis(&analysis)
	return &analysis, nil
}

// normalizeAnalysis clamps the hook score into [1,10] (0 or missing becomes
// null) and maps unknown hook types to "other". Rejecting the whole analysis
// over a stray enum value would make the terminal stage needlessly brittle.
func normalizeAnalysis(a *VideoAnalysis) {
	if a.HookScore != nil {
		switch {
		case *a.HookScore <= 0:
			a.HookScore = nil
		case *a.HookScore > 10:
			ten := 10
			a.HookScore = &ten
		}
	}
	if a.HookType != "" && !hookTypes[a.HookType] {
		a.HookType = "other"
	}
	if a.CaptionOverlays == nil {
		a.CaptionOverlays = []CaptionOverlay{}
	}
	if a.ContentThemes == nil {
		a.ContentThemes = []string{}
	}
	if a.WinningElements == nil {
		a.WinningElements = []string{}
	}
	if a.ImprovementAreas == nil {
		a.ImprovementAreas = []string{}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
