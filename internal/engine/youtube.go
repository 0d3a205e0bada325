package engine

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"regexp"
)

var (
	youtubeOEmbedAPI    = "https://www.youtube.com/oembed"
	youtubeTimedTextAPI = "https://www.youtube.com/api/timedtext"
)

// The four URL shapes that carry an 11-character video id.
var youtubeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractYouTubeID pulls the video id out of a watch/short/embed/share URL,
// or "" when none matches.
func ExtractYouTubeID(rawURL string) string {
	for _, re := range youtubeIDPatterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

func fetchYouTubeOEmbed(ctx context.Context, rawURL string) (Metadata, error) {
	api := youtubeOEmbedAPI + "?url=" + url.QueryEscape(rawURL) + "&format=json"

	var data struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
		AuthorName   string `json:"author_name"`
	}
	if err := GetJSON(ctx, api, cfg.OEmbedTimeout, &data); err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Title:        data.Title,
		ThumbnailURL: data.ThumbnailURL,
		AuthorName:   data.AuthorName,
	}, nil
}

// timedTextDoc is the caption-track XML: <transcript><text start dur>…
type timedTextDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// fetchYouTubeTranscript requests the English caption track and adapts its
// XML cues into the timed-text shape before normalization. Missing captions
// degrade to an empty transcript.
func fetchYouTubeTranscript(ctx context.Context, rawURL string) Transcript {
	videoID := ExtractYouTubeID(rawURL)
	if videoID == "" {
		return Transcript{}
	}

	api := fmt.Sprintf("%s?v=%s&lang=en", youtubeTimedTextAPI, url.QueryEscape(videoID))
	body, err := Get(ctx, api, cfg.FetchTimeout, false)
	if err != nil {
		return Transcript{}
	}
	return parseTimedTextXML(body)
}

// parseTimedTextXML converts <text> cues to transcript segments. Cue bodies
// are double-escaped in the feed, so entities are unescaped after the XML
// decoder has already done one pass.
func parseTimedTextXML(body []byte) Transcript {
	var doc timedTextDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Transcript{}
	}

	var cues []TranscriptSegment
	for _, t := range doc.Texts {
		text := cleanCueLine(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		cues = append(cues, TranscriptSegment{
			Start: t.Start,
			End:   t.Start + t.Dur,
			Text:  text,
		})
	}
	return normalizeCues(cues)
}
