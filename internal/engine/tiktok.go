package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Endpoints are vars so tests can point them at local mocks.
var (
	tikwmAPI        = "https://www.tikwm.com/api/"
	tiktokOEmbedAPI = "https://www.tiktok.com/oembed"
)

// tikwmResponse is the aggregator API envelope. Stats appear either nested
// under statistics or as flat *_count fields depending on the video.
type tikwmResponse struct {
	Code int `json:"code"`
	Data struct {
		Title     string `json:"title"`
		Cover     string `json:"cover"`
		Play      string `json:"play"`
		Duration  int    `json:"duration"`
		Music     string `json:"music"`
		Subtitle  string `json:"subtitle"`
		MusicInfo *struct {
			Title  string `json:"title"`
			Author string `json:"author"`
		} `json:"music_info"`
		Author struct {
			UniqueID string `json:"unique_id"`
			Nickname string `json:"nickname"`
		} `json:"author"`
		Statistics *struct {
			DiggCount    int `json:"diggCount"`
			CommentCount int `json:"commentCount"`
			ShareCount   int `json:"shareCount"`
			PlayCount    int `json:"playCount"`
		} `json:"statistics"`
		DiggCount    int `json:"digg_count"`
		CommentCount int `json:"comment_count"`
		ShareCount   int `json:"share_count"`
		PlayCount    int `json:"play_count"`
	} `json:"data"`
}

// fetchTikWM queries the tikwm aggregator — the richest TikTok source:
// title, cover, author, stats, duration, music and a direct play URL.
func fetchTikWM(ctx context.Context, rawURL string) (Metadata, error) {
	api := tikwmAPI + "?url=" + url.QueryEscape(rawURL)

	var resp tikwmResponse
	if err := GetJSON(ctx, api, cfg.AggregatorTimeout, &resp); err != nil {
		return Metadata{}, err
	}
	if resp.Code != 0 {
		return Metadata{}, fmt.Errorf("tikwm: code %d", resp.Code)
	}

	d := resp.Data
	return Metadata{
		Title:        d.Title,
		ThumbnailURL: d.Cover,
		AuthorName:   d.Author.Nickname,
		AuthorHandle: d.Author.UniqueID,
		Duration:     d.Duration,
		Stats:        tikwmStats(resp),
		Music:        tikwmMusic(resp),
		VideoURL:     d.Play,
		SubtitleURL:  d.Subtitle,
	}, nil
}

func tikwmStats(resp tikwmResponse) *VideoStats {
	d := resp.Data
	if s := d.Statistics; s != nil {
		return &VideoStats{Views: s.PlayCount, Likes: s.DiggCount, Comments: s.CommentCount, Shares: s.ShareCount}
	}
	if d.PlayCount == 0 && d.DiggCount == 0 && d.CommentCount == 0 && d.ShareCount == 0 {
		return nil
	}
	return &VideoStats{Views: d.PlayCount, Likes: d.DiggCount, Comments: d.CommentCount, Shares: d.ShareCount}
}

func tikwmMusic(resp tikwmResponse) string {
	if mi := resp.Data.MusicInfo; mi != nil && mi.Title != "" {
		return mi.Title
	}
	return resp.Data.Music
}

// fetchTikTokOEmbed hits the official oEmbed endpoint. Title and thumbnail
// only — no stats, no duration.
func fetchTikTokOEmbed(ctx context.Context, rawURL string) (Metadata, error) {
	api := tiktokOEmbedAPI + "?url=" + url.QueryEscape(rawURL)

	var data struct {
		Title          string `json:"title"`
		ThumbnailURL   string `json:"thumbnail_url"`
		AuthorName     string `json:"author_name"`
		AuthorUniqueID string `json:"author_unique_id"`
	}
	if err := GetJSON(ctx, api, cfg.OEmbedTimeout, &data); err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Title:        data.Title,
		ThumbnailURL: data.ThumbnailURL,
		AuthorName:   data.AuthorName,
		AuthorHandle: data.AuthorUniqueID,
	}, nil
}

// authorFromOGTitle parses "Author on TikTok" style og:title values.
var authorFromOGTitle = regexp.MustCompile(`(?i)^(.+?)(?:\s+on\s+TikTok|\s*[-|])`)

// fetchTikTokPage scrapes the video page: og: meta tags for title/thumbnail
// plus the embedded rehydration payload for author, duration and stats.
func fetchTikTokPage(ctx context.Context, rawURL string) (Metadata, error) {
	body, err := CachedGet(ctx, rawURL, cfg.FetchTimeout, true)
	if err != nil {
		return Metadata{}, err
	}
	return parseTikTokPage(body)
}

func parseTikTokPage(body []byte) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return Metadata{}, fmt.Errorf("tiktok page: parse: %w", err)
	}

	ogImage, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	ogTitle, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	ogDescription, _ := doc.Find(`meta[property="og:description"]`).Attr("content")

	m := Metadata{ThumbnailURL: ogImage}
	if ogDescription != "" {
		m.Title = ogDescription
	} else {
		m.Title = ogTitle
	}

	if detail := rehydrationDetail(doc); detail != nil {
		item := detail.ItemInfo.ItemStruct
		m.AuthorName = item.Author.Nickname
		m.AuthorHandle = item.Author.UniqueID
		m.Duration = item.Video.Duration
		if s := item.Stats; s.PlayCount > 0 || s.DiggCount > 0 || s.CommentCount > 0 || s.ShareCount > 0 {
			m.Stats = &VideoStats{Views: s.PlayCount, Likes: s.DiggCount, Comments: s.CommentCount, Shares: s.ShareCount}
		}
		if track := pickSubtitleTrack(item.Video.SubtitleInfos); track != "" {
			m.SubtitleURL = track
		}
	}

	// og:title carries "Author on TikTok" when the payload is unavailable.
	if m.AuthorName == "" && ogTitle != "" {
		if match := authorFromOGTitle.FindStringSubmatch(ogTitle); match != nil {
			m.AuthorName = strings.TrimSpace(match[1])
		}
	}

	if m.ThumbnailURL == "" && m.Title == "" {
		return Metadata{}, fmt.Errorf("tiktok page: no og tags found")
	}
	return m, nil
}

// Rehydration payload shapes. TikTok changes this structure frequently, so
// everything is optional and a failed walk yields nothing.
type tiktokRehydration struct {
	DefaultScope map[string]json.RawMessage `json:"__DEFAULT_SCOPE__"`
}

type tiktokVideoDetail struct {
	ItemInfo struct {
		ItemStruct struct {
			Author struct {
				Nickname string `json:"nickname"`
				UniqueID string `json:"uniqueId"`
			} `json:"author"`
			Video struct {
				Duration      int                  `json:"duration"`
				SubtitleInfos []tiktokSubtitleInfo `json:"subtitleInfos"`
			} `json:"video"`
			Stats struct {
				PlayCount    int `json:"playCount"`
				DiggCount    int `json:"diggCount"`
				CommentCount int `json:"commentCount"`
				ShareCount   int `json:"shareCount"`
			} `json:"stats"`
		} `json:"itemStruct"`
	} `json:"itemInfo"`
}

type tiktokSubtitleInfo struct {
	LanguageCodeName string `json:"LanguageCodeName"`
	URL              string `json:"Url"`
	Format           string `json:"Format"`
}

// rehydrationDetail extracts the video-detail block from the page's
// __UNIVERSAL_DATA_FOR_REHYDRATION__ script tag, or nil.
func rehydrationDetail(doc *goquery.Document) *tiktokVideoDetail {
	raw := doc.Find(`script#__UNIVERSAL_DATA_FOR_REHYDRATION__`).First().Text()
	if raw == "" {
		return nil
	}
	var payload tiktokRehydration
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	blob, ok := payload.DefaultScope["webapp.video-detail"]
	if !ok {
		return nil
	}
	var detail tiktokVideoDetail
	if err := json.Unmarshal(blob, &detail); err != nil {
		return nil
	}
	return &detail
}

// pickSubtitleTrack prefers an English-tagged track, else the first one.
func pickSubtitleTrack(infos []tiktokSubtitleInfo) string {
	for _, info := range infos {
		code := strings.ToLower(info.LanguageCodeName)
		if strings.HasPrefix(code, "en") && info.URL != "" {
			return info.URL
		}
	}
	for _, info := range infos {
		if info.URL != "" {
			return info.URL
		}
	}
	return ""
}

// fetchTikTokTranscript resolves a TikTok subtitle track and parses it.
// Path 1: the page's rehydration payload lists timed-text tracks.
// Path 2: the aggregator's subtitle URL field, when the page yields nothing.
// Every failure degrades to an empty transcript.
func fetchTikTokTranscript(ctx context.Context, rawURL string, meta Metadata) Transcript {
	if m, err := fetchTikTokPage(ctx, rawURL); err == nil && m.SubtitleURL != "" {
		if tr := fetchTimedTextTrack(ctx, m.SubtitleURL); tr.Text != "" {
			return tr
		}
	}
	if meta.SubtitleURL != "" {
		return fetchTimedTextTrack(ctx, meta.SubtitleURL)
	}
	return Transcript{}
}

// fetchTimedTextTrack downloads one timed-text track and parses it.
func fetchTimedTextTrack(ctx context.Context, trackURL string) Transcript {
	body, err := Get(ctx, trackURL, cfg.FetchTimeout, false)
	if err != nil {
		return Transcript{}
	}
	return ParseTimedText(string(body))
}
