package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const tikwmFixture = `{
	"code": 0,
	"data": {
		"title": "POV: you finally try the viral recipe #cooking #fyp",
		"cover": "https://cdn.tikwm.com/cover.jpg",
		"play": "https://cdn.tikwm.com/play.mp4",
		"duration": 34,
		"music": "original sound",
		"music_info": {"title": "Aesthetic Vibes", "author": "someone"},
		"author": {"unique_id": "chef.amy", "nickname": "Amy Cooks"},
		"statistics": {"diggCount": 152000, "commentCount": 812, "shareCount": 4300, "playCount": 2400000}
	}
}`

func TestFetchTikWM(t *testing.T) {
	Init(Config{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("url") == "" {
			t.Error("missing url query param")
		}
		w.Write([]byte(tikwmFixture))
	}))
	defer srv.Close()

	old := tikwmAPI
	tikwmAPI = srv.URL
	defer func() { tikwmAPI = old }()

	m, err := fetchTikWM(context.Background(), "https://www.tiktok.com/@chef.amy/video/1")
	if err != nil {
		t.Fatalf("fetchTikWM: %v", err)
	}
	if m.Title != "POV: you finally try the viral recipe #cooking #fyp" {
		t.Errorf("Title = %q", m.Title)
	}
	if m.ThumbnailURL != "https://cdn.tikwm.com/cover.jpg" {
		t.Errorf("ThumbnailURL = %q", m.ThumbnailURL)
	}
	if m.AuthorHandle != "chef.amy" || m.AuthorName != "Amy Cooks" {
		t.Errorf("author = %q / %q", m.AuthorName, m.AuthorHandle)
	}
	if m.Duration != 34 {
		t.Errorf("Duration = %d", m.Duration)
	}
	if m.Stats == nil || m.Stats.Views != 2400000 || m.Stats.Likes != 152000 {
		t.Errorf("Stats = %+v", m.Stats)
	}
	if m.Music != "Aesthetic Vibes" {
		t.Errorf("Music = %q, want music_info title preferred", m.Music)
	}
}

func TestFetchTikWMFlatStatsFallback(t *testing.T) {
	Init(Config{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":0,"data":{"title":"t","cover":"https://c/1.jpg",
			"digg_count":10,"comment_count":2,"share_count":1,"play_count":500}}`))
	}))
	defer srv.Close()

	old := tikwmAPI
	tikwmAPI = srv.URL
	defer func() { tikwmAPI = old }()

	m, err := fetchTikWM(context.Background(), "https://www.tiktok.com/@u/video/2")
	if err != nil {
		t.Fatalf("fetchTikWM: %v", err)
	}
	if m.Stats == nil || m.Stats.Views != 500 || m.Stats.Likes != 10 {
		t.Errorf("Stats = %+v, want flat *_count fallback", m.Stats)
	}
}

func TestFetchTikWMErrorCode(t *testing.T) {
	Init(Config{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-1,"data":{}}`))
	}))
	defer srv.Close()

	old := tikwmAPI
	tikwmAPI = srv.URL
	defer func() { tikwmAPI = old }()

	if _, err := fetchTikWM(context.Background(), "https://www.tiktok.com/@u/video/3"); err == nil {
		t.Fatal("want error for non-zero code")
	}
}

const tiktokPageFixture = `<!doctype html><html><head>
<meta property="og:image" content="https://p16.tiktokcdn.com/img/cover~c5.jpeg">
<meta property="og:title" content="Amy Cooks on TikTok">
<meta property="og:description" content="the recipe everyone asked for #cooking">
</head><body>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">
{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{
	"author":{"nickname":"Amy Cooks","uniqueId":"chef.amy"},
	"video":{"duration":34,"subtitleInfos":[
		{"LanguageCodeName":"spa-ES","Url":"https://v16.tiktokcdn.com/sub-es.vtt","Format":"webvtt"},
		{"LanguageCodeName":"eng-US","Url":"https://v16.tiktokcdn.com/sub-en.vtt","Format":"webvtt"}
	]},
	"stats":{"playCount":2400000,"diggCount":152000,"commentCount":812,"shareCount":4300}
}}}}}
</script></body></html>`

func TestParseTikTokPage(t *testing.T) {
	m, err := parseTikTokPage([]byte(tiktokPageFixture))
	if err != nil {
		t.Fatalf("parseTikTokPage: %v", err)
	}
	if m.ThumbnailURL != "https://p16.tiktokcdn.com/img/cover~c5.jpeg" {
		t.Errorf("ThumbnailURL = %q", m.ThumbnailURL)
	}
	if m.Title != "the recipe everyone asked for #cooking" {
		t.Errorf("Title = %q, want og:description preferred", m.Title)
	}
	if m.AuthorHandle != "chef.amy" {
		t.Errorf("AuthorHandle = %q", m.AuthorHandle)
	}
	if m.Duration != 34 {
		t.Errorf("Duration = %d", m.Duration)
	}
	if m.Stats == nil || m.Stats.Shares != 4300 {
		t.Errorf("Stats = %+v", m.Stats)
	}
	if m.SubtitleURL != "https://v16.tiktokcdn.com/sub-en.vtt" {
		t.Errorf("SubtitleURL = %q, want the English track", m.SubtitleURL)
	}
}

func TestParseTikTokPageNoPayload(t *testing.T) {
	page := `<html><head>
<meta property="og:image" content="https://p16.tiktokcdn.com/cover.jpeg">
<meta property="og:title" content="Amy Cooks on TikTok">
</head><body></body></html>`

	m, err := parseTikTokPage([]byte(page))
	if err != nil {
		t.Fatalf("parseTikTokPage: %v", err)
	}
	if m.AuthorName != "Amy Cooks" {
		t.Errorf("AuthorName = %q, want parsed from og:title", m.AuthorName)
	}
	if m.Title != "Amy Cooks on TikTok" {
		t.Errorf("Title = %q, want og:title fallback", m.Title)
	}
}

func TestParseTikTokPageNoOGTags(t *testing.T) {
	if _, err := parseTikTokPage([]byte(`<html><body>blocked</body></html>`)); err == nil {
		t.Fatal("want error for page without og tags")
	}
}

func TestPickSubtitleTrack(t *testing.T) {
	tests := []struct {
		name  string
		infos []tiktokSubtitleInfo
		want  string
	}{
		{
			"prefers english",
			[]tiktokSubtitleInfo{
				{LanguageCodeName: "deu-DE", URL: "https://s/de"},
				{LanguageCodeName: "eng-US", URL: "https://s/en"},
			},
			"https://s/en",
		},
		{
			"first track when no english",
			[]tiktokSubtitleInfo{
				{LanguageCodeName: "deu-DE", URL: "https://s/de"},
				{LanguageCodeName: "fra-FR", URL: "https://s/fr"},
			},
			"https://s/de",
		},
		{"no tracks", nil, ""},
		{
			"skips english track without url",
			[]tiktokSubtitleInfo{
				{LanguageCodeName: "eng-US", URL: ""},
				{LanguageCodeName: "fra-FR", URL: "https://s/fr"},
			},
			"https://s/fr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickSubtitleTrack(tt.infos); got != tt.want {
				t.Errorf("pickSubtitleTrack() = %q, want %q", got, tt.want)
			}
		})
	}
}
