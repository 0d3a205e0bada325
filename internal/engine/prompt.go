package engine

// LLM prompt templates — data only, no logic.

// analysisSystem pins the model to strict JSON output.
const analysisSystem = `You are a video content strategist. Return only valid JSON.`

// analysisPrompt embeds everything gathered about the video.
// Args: transcript section, URL, platform, title, author, optional context lines.
const analysisPrompt = `You are a video content strategist analyzing a video for a marketing agency.

%s
Video URL: %s
Platform: %s
Title: %s
Author: %s%s

Analyze this video and return a JSON object with:
{
  "hook": "The first 1-3 sentences that serve as the hook",
  "hook_analysis": "Why this hook works or doesn't (2-3 sentences)",
  "hook_score": <1-10 integer rating of hook effectiveness>,
  "hook_type": "<one of: question, shocking_stat, controversy, visual_pattern_interrupt, relatable_moment, promise, curiosity_gap, other>",
  "cta": "Identified call-to-action, or 'Not identified' if unclear",
  "concept_summary": "2-3 sentence summary of what this video is about",
  "pacing": {
    "description": "Estimated pacing style based on platform norms and content type",
    "estimated_cuts": 0,
    "cuts_per_minute": 0
  },
  "caption_overlays": [],
  "content_themes": ["3-5 thematic tags"],
  "winning_elements": ["list of what likely works well"],
  "improvement_areas": ["list of potential improvements"]
}

Return ONLY the JSON, no other text.`

// noTranscriptMarker replaces the transcript section when no captions exist.
const noTranscriptMarker = `No transcript available - analyze based on available metadata only.`
