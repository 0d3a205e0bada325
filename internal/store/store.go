// Package store persists video items in Postgres or SQLite behind the same
// partial-update contract the pipeline checkpoints through.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

// ErrNotFound is returned by Get when no item has the requested ID.
var ErrNotFound = errors.New("item not found")

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindJSON
)

// itemColumns whitelists the fields a partial Update may touch. Anything
// outside this map is a programming error, not data.
var itemColumns = map[string]columnKind{
	"url":                 kindText,
	"platform":            kindText,
	"status":              kindText,
	"title":               kindText,
	"thumbnail_url":       kindText,
	"author_name":         kindText,
	"author_handle":       kindText,
	"music":               kindText,
	"transcript":          kindText,
	"error_message":       kindText,
	"duration":            kindInt,
	"stats":               kindJSON,
	"hashtags":            kindJSON,
	"transcript_segments": kindJSON,
	"frames":              kindJSON,
	"analysis":            kindJSON,
}

// encodeField converts a checkpoint value into a driver-friendly one.
// JSON columns are serialized to text so both backends store them the same
// way; nil passes through to write SQL NULL.
func encodeField(key string, val any) (any, error) {
	kind, ok := itemColumns[key]
	if !ok {
		return nil, fmt.Errorf("unknown item field %q", key)
	}
	if val == nil {
		return nil, nil
	}
	switch kind {
	case kindJSON:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", key, err)
		}
		return string(b), nil
	default:
		switch v := val.(type) {
		case engine.Platform:
			return string(v), nil
		case engine.Status:
			return string(v), nil
		default:
			return val, nil
		}
	}
}

// sortedFieldKeys gives Update statements a stable column order.
func sortedFieldKeys(fields engine.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// itemRow is the flat scan target shared by both backends. JSON columns
// arrive as text and are decoded into the item afterwards.
type itemRow struct {
	item         engine.VideoItem
	statsJSON    []byte
	hashtagsJSON []byte
	segmentsJSON []byte
	framesJSON   []byte
	analysisJSON []byte
	errorMessage *string
}

func (r *itemRow) decode() (*engine.VideoItem, error) {
	item := r.item
	if r.errorMessage != nil {
		item.ErrorMessage = *r.errorMessage
	}
	if len(r.statsJSON) > 0 {
		if err := json.Unmarshal(r.statsJSON, &item.Stats); err != nil {
			return nil, fmt.Errorf("decode stats: %w", err)
		}
	}
	if len(r.hashtagsJSON) > 0 {
		if err := json.Unmarshal(r.hashtagsJSON, &item.Hashtags); err != nil {
			return nil, fmt.Errorf("decode hashtags: %w", err)
		}
	}
	if len(r.segmentsJSON) > 0 {
		if err := json.Unmarshal(r.segmentsJSON, &item.Segments); err != nil {
			return nil, fmt.Errorf("decode transcript_segments: %w", err)
		}
	}
	if len(r.framesJSON) > 0 {
		if err := json.Unmarshal(r.framesJSON, &item.Frames); err != nil {
			return nil, fmt.Errorf("decode frames: %w", err)
		}
	}
	if len(r.analysisJSON) > 0 {
		if err := json.Unmarshal(r.analysisJSON, &item.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
	}
	return &item, nil
}

// itemSelectColumns is the column list matching itemRow scan order.
const itemSelectColumns = `id, url, platform, status,
	COALESCE(title,''), COALESCE(thumbnail_url,''), COALESCE(author_name,''), COALESCE(author_handle,''),
	COALESCE(duration,0), COALESCE(music,''), COALESCE(transcript,''),
	stats, hashtags, transcript_segments, frames, analysis,
	error_message, created_at, updated_at`

func scanTargets(r *itemRow) []any {
	return []any{
		&r.item.ID, &r.item.URL, &r.item.Platform, &r.item.Status,
		&r.item.Title, &r.item.ThumbnailURL, &r.item.AuthorName, &r.item.AuthorHandle,
		&r.item.Duration, &r.item.Music, &r.item.Transcript,
		&r.statsJSON, &r.hashtagsJSON, &r.segmentsJSON, &r.framesJSON, &r.analysisJSON,
		&r.errorMessage, &r.item.CreatedAt, &r.item.UpdatedAt,
	}
}
