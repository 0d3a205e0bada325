package engine

import (
	"context"
	"net/url"
	"strings"
)

var twitterOEmbedAPI = "https://publish.twitter.com/oembed"

// fetchTwitterOEmbed synthesizes a title from the embed snippet — the oEmbed
// response has no title field and no thumbnail for tweets.
func fetchTwitterOEmbed(ctx context.Context, rawURL string) (Metadata, error) {
	api := twitterOEmbedAPI + "?url=" + url.QueryEscape(rawURL)

	var data struct {
		HTML       string `json:"html"`
		AuthorName string `json:"author_name"`
		AuthorURL  string `json:"author_url"`
	}
	if err := GetJSON(ctx, api, cfg.OEmbedTimeout, &data); err != nil {
		return Metadata{}, err
	}

	title := Truncate(ExtractText(data.HTML), 120)
	if title == "" {
		title = "Twitter Video"
	}
	author := data.AuthorName
	if author == "" {
		author = "Unknown"
	}
	return Metadata{
		Title:        title,
		AuthorName:   author,
		AuthorHandle: handleFromAuthorURL(data.AuthorURL),
	}, nil
}

// handleFromAuthorURL takes the last path element of an author profile URL.
func handleFromAuthorURL(authorURL string) string {
	if authorURL == "" {
		return ""
	}
	u, err := url.Parse(authorURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}
