package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeCompleter returns a canned response or error and records the prompt.
type fakeCompleter struct {
	response string
	err      error
	prompts  []string
	systems  []string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string, _ int) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, user)
	return f.response, f.err
}

const analysisFixture = `{
	"hook": "POV: you finally try the viral recipe",
	"hook_analysis": "Leads with a relatable scenario. Creates immediate curiosity.",
	"hook_score": 8,
	"hook_type": "relatable_moment",
	"cta": "Follow for part 2",
	"concept_summary": "A quick cooking video walking through a trending recipe.",
	"pacing": {"description": "Fast cuts typical of short-form cooking content", "estimated_cuts": 12, "cuts_per_minute": 21.2},
	"caption_overlays": [{"timestamp": 0, "text": "WAIT FOR IT", "style": "bold"}],
	"content_themes": ["cooking", "recipe", "food"],
	"winning_elements": ["strong hook"],
	"improvement_areas": ["earlier CTA"]
}`

func TestSynthesize(t *testing.T) {
	fake := &fakeCompleter{response: analysisFixture}
	Init(Config{LLMClient: fake})

	a, err := Synthesize(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if a.Hook != "POV: you finally try the viral recipe" {
		t.Errorf("Hook = %q", a.Hook)
	}
	if a.HookScore == nil || *a.HookScore != 8 {
		t.Errorf("HookScore = %v", a.HookScore)
	}
	if a.HookType != "relatable_moment" {
		t.Errorf("HookType = %q", a.HookType)
	}
	if a.Pacing.CutsPerMinute != 21.2 {
		t.Errorf("Pacing = %+v", a.Pacing)
	}
	if len(fake.systems) != 1 || !strings.Contains(fake.systems[0], "valid JSON") {
		t.Errorf("system prompt = %v", fake.systems)
	}
}

func TestSynthesizeStripsFences(t *testing.T) {
	fake := &fakeCompleter{response: "```json\n" + analysisFixture + "\n```"}
	Init(Config{LLMClient: fake})

	a, err := Synthesize(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if a.ConceptSummary == "" {
		t.Error("fenced response not parsed")
	}
}

func TestSynthesizeCompletionError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("rate limited")}
	Init(Config{LLMClient: fake})

	if _, err := Synthesize(context.Background(), "prompt"); err == nil {
		t.Fatal("want error when completion fails")
	}
}

func TestSynthesizeInvalidJSON(t *testing.T) {
	fake := &fakeCompleter{response: "Sure! Here is the analysis you asked for."}
	Init(Config{LLMClient: fake})

	_, err := Synthesize(context.Background(), "prompt")
	if err == nil {
		t.Fatal("want error for non-JSON response")
	}
	if !strings.Contains(err.Error(), "parse failed") {
		t.Errorf("error = %v", err)
	}
}

func TestSynthesizeEmptyResponse(t *testing.T) {
	fake := &fakeCompleter{response: "```json\n```"}
	Init(Config{LLMClient: fake})

	if _, err := Synthesize(context.Background(), "prompt"); err == nil {
		t.Fatal("want error for empty response")
	}
}

func TestNormalizeAnalysis(t *testing.T) {
	t.Run("clamps high score", func(t *testing.T) {
		score := 14
		a := &VideoAnalysis{HookScore: &score, HookType: "promise"}
		normalizeAnalysis(a)
		if a.HookScore == nil || *a.HookScore != 10 {
			t.Errorf("HookScore = %v, want 10", a.HookScore)
		}
	})

	t.Run("zero score becomes null", func(t *testing.T) {
		score := 0
		a := &VideoAnalysis{HookScore: &score}
		normalizeAnalysis(a)
		if a.HookScore != nil {
			t.Errorf("HookScore = %v, want nil", a.HookScore)
		}
	})

	t.Run("unknown hook type maps to other", func(t *testing.T) {
		a := &VideoAnalysis{HookType: "clickbait_supreme"}
		normalizeAnalysis(a)
		if a.HookType != "other" {
			t.Errorf("HookType = %q, want other", a.HookType)
		}
	})

	t.Run("nil slices become empty", func(t *testing.T) {
		a := &VideoAnalysis{}
		normalizeAnalysis(a)
		if a.ContentThemes == nil || a.CaptionOverlays == nil || a.WinningElements == nil || a.ImprovementAreas == nil {
			t.Errorf("slices not initialized: %+v", a)
		}
	})
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	Init(Config{LLMClient: &fakeCompleter{}})
	item := &VideoItem{URL: "https://www.tiktok.com/@chef.amy/video/1"}
	meta := Metadata{
		Title:      "the recipe everyone asked for",
		AuthorName: "Amy Cooks",
		Duration:   34,
		Stats:      &VideoStats{Views: 2400000, Likes: 152000, Comments: 812, Shares: 4300},
		Music:      "Aesthetic Vibes",
		Hashtags:   []string{"cooking", "fyp"},
	}

	prompt := BuildAnalysisPrompt(item, PlatformTikTok, meta, "so today we are making")
	for _, want := range []string{
		"Transcript: so today we are making",
		"Platform: tiktok",
		"Title: the recipe everyone asked for",
		"Author: Amy Cooks",
		"Stats: 2,400,000 views, 152,000 likes, 812 comments, 4,300 shares",
		"Music/Sound: Aesthetic Vibes",
		"Hashtags: cooking, fyp",
		"Duration: 34s",
		`"hook_score"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildAnalysisPromptNoTranscript(t *testing.T) {
	Init(Config{LLMClient: &fakeCompleter{}})
	item := &VideoItem{URL: "https://example.com/v"}

	prompt := BuildAnalysisPrompt(item, PlatformNone, Metadata{}, "")
	if !strings.Contains(prompt, noTranscriptMarker) {
		t.Error("prompt missing no-transcript marker")
	}
	if !strings.Contains(prompt, "Title: Unknown") || !strings.Contains(prompt, "Author: Unknown") {
		t.Error("prompt missing Unknown fallbacks")
	}
	if strings.Contains(prompt, "Stats:") || strings.Contains(prompt, "Music/Sound:") {
		t.Error("prompt has context lines that should be absent")
	}
}

func TestBuildAnalysisPromptTruncatesTranscript(t *testing.T) {
	Init(Config{LLMClient: &fakeCompleter{}, MaxTranscriptChars: 50})
	item := &VideoItem{URL: "https://example.com/v"}

	long := strings.Repeat("word ", 100)
	prompt := BuildAnalysisPrompt(item, PlatformYouTube, Metadata{}, long)
	if strings.Contains(prompt, long) {
		t.Error("transcript not truncated")
	}
	if !strings.Contains(prompt, "Transcript: ") {
		t.Error("truncated transcript section missing")
	}
}
