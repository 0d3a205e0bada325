package engine

import "fmt"

// FrameReferences derives evenly spaced synthetic frame markers from a known
// duration and the single available thumbnail. Real per-timestamp extraction
// would require decoding the media, which this system deliberately avoids:
// every frame reuses the thumbnail URL and callers seek the player to the
// timestamp instead.
func FrameReferences(duration int, thumbnailURL string) []VideoFrame {
	if duration <= 0 {
		if thumbnailURL == "" {
			return nil
		}
		return []VideoFrame{{URL: thumbnailURL, Timestamp: 0, Label: "Cover"}}
	}

	divisor := cfg.FrameDivisor
	if divisor <= 0 {
		divisor = 5
	}
	floor := cfg.FrameFloor
	if floor <= 0 {
		floor = 3
	}
	interval := duration / divisor
	if interval < floor {
		interval = floor
	}

	var frames []VideoFrame
	for t := 0; t < duration; t += interval {
		label := fmt.Sprintf("%ds", t)
		if t == 0 {
			label = "Intro"
		}
		frames = append(frames, VideoFrame{URL: thumbnailURL, Timestamp: t, Label: label})
	}
	return frames
}
