package engine

import (
	"context"
	"net/url"
)

var instagramOEmbedAPI = "https://api.instagram.com/oembed"

// fetchInstagramOEmbed is the single Instagram source. The endpoint is
// deprecated upstream and often refuses; that just means an empty
// contribution.
func fetchInstagramOEmbed(ctx context.Context, rawURL string) (Metadata, error) {
	api := instagramOEmbedAPI + "?url=" + url.QueryEscape(rawURL)

	var data struct {
		Title        string `json:"title"`
		ThumbnailURL string `json:"thumbnail_url"`
		AuthorName   string `json:"author_name"`
	}
	if err := GetJSON(ctx, api, cfg.OEmbedTimeout, &data); err != nil {
		return Metadata{}, err
	}

	title := data.Title
	if title == "" {
		title = data.AuthorName
	}
	return Metadata{
		Title:        title,
		ThumbnailURL: data.ThumbnailURL,
		AuthorName:   data.AuthorName,
	}, nil
}
