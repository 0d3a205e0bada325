package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Timed-text (WebVTT / SRT) cue parsing. Subtitle feeds from caption
// endpoints are messy: hour components come and go, millisecond separators
// are dots or commas, and rolling captions repeat the same cue text across
// adjacent windows. Everything here is pure — no IO, no errors: unparsable
// input yields an empty Transcript.

var (
	// (H:)MM:SS.mmm --> (H:)MM:SS.mmm with comma or dot millis.
	cueTimeRe = regexp.MustCompile(`(?:(\d{1,2}):)?(\d{1,2}):(\d{2})[.,](\d{1,3})\s*-->\s*(?:(\d{1,2}):)?(\d{1,2}):(\d{2})[.,](\d{1,3})`)
	// SRT cue sequence numbers.
	seqLineRe = regexp.MustCompile(`^\d+$`)
	// Inline markup: VTT voice/class tags and ASS-style directives.
	cueTagRe       = regexp.MustCompile(`<[^>]+>`)
	cueDirectiveRe = regexp.MustCompile(`\{\\[^}]*\}`)
)

// ParseTimedText converts a WebVTT- or SRT-like cue stream into a normalized
// transcript. Consecutive cues with byte-identical text collapse into one
// segment; non-consecutive repeats are preserved.
func ParseTimedText(raw string) Transcript {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	i := 0
	if i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "WEBVTT") {
		i++
	}

	var cues []TranscriptSegment
	for i < len(lines) {
		m := cueTimeRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		start := cueSeconds(m[1], m[2], m[3], m[4])
		end := cueSeconds(m[5], m[6], m[7], m[8])
		i++

		// Greedily consume the cue body: everything up to the next blank
		// line or timestamp, skipping stray sequence numbers.
		var parts []string
		for i < len(lines) {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				break
			}
			if cueTimeRe.MatchString(line) {
				break // next cue, no blank separator
			}
			if seqLineRe.MatchString(line) {
				i++
				continue
			}
			if text := cleanCueLine(line); text != "" {
				parts = append(parts, text)
			}
			i++
		}

		if len(parts) > 0 {
			cues = append(cues, TranscriptSegment{
				Start: start,
				End:   end,
				Text:  strings.Join(parts, " "),
			})
		}
	}

	return normalizeCues(cues)
}

// normalizeCues orders cues by start time, collapses consecutive duplicate
// texts (rolling-caption repetition) and joins the rest into the full text.
func normalizeCues(cues []TranscriptSegment) Transcript {
	sort.SliceStable(cues, func(a, b int) bool { return cues[a].Start < cues[b].Start })

	var segments []TranscriptSegment
	for _, c := range cues {
		if n := len(segments); n > 0 && segments[n-1].Text == c.Text {
			if c.End > segments[n-1].End {
				segments[n-1].End = c.End
			}
			continue
		}
		segments = append(segments, c)
	}

	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return Transcript{Text: strings.Join(texts, " "), Segments: segments}
}

// cleanCueLine strips inline markup tags and positioning directives.
func cleanCueLine(line string) string {
	line = cueTagRe.ReplaceAllString(line, "")
	line = cueDirectiveRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// cueSeconds converts (hours, minutes, seconds, millis) capture groups to
// seconds. The hour group is optional and defaults to 0.
func cueSeconds(h, m, s, ms string) float64 {
	hours := 0
	if h != "" {
		hours, _ = strconv.Atoi(h)
	}
	mins, _ := strconv.Atoi(m)
	secs, _ := strconv.Atoi(s)
	frac, _ := strconv.ParseFloat("0."+ms, 64)
	return float64(hours*3600+mins*60+secs) + frac
}
