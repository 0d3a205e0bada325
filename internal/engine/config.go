package engine

import (
	"context"
	"net/http"
	"time"
)

// Completer is the outbound AI-completion collaborator. The engine treats it
// as a black box returning raw text; parsing and validation happen here.
type Completer interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Config holds all engine configuration, injected from main.
type Config struct {
	HTTPClient       *http.Client
	LLMClient        Completer
	AnalysisTokens   int           // max completion tokens for the analysis call
	FetchTimeout     time.Duration // page / caption-track fetches
	OEmbedTimeout    time.Duration // oEmbed endpoints (fast, reliable)
	AggregatorTimeout time.Duration // third-party aggregator API (slow, flaky)
	MaxTranscriptChars int         // transcript cap inside the analysis prompt
	FrameDivisor     int           // frame interval = max(floor, duration/divisor)
	FrameFloor       int
	CacheTTL         time.Duration // 0 disables the provider response cache
	RatePerHost      float64       // outbound requests per second per host
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero fields get workable defaults.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.AnalysisTokens == 0 {
		c.AnalysisTokens = 2000
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.OEmbedTimeout == 0 {
		c.OEmbedTimeout = 10 * time.Second
	}
	if c.AggregatorTimeout == 0 {
		c.AggregatorTimeout = 15 * time.Second
	}
	if c.MaxTranscriptChars == 0 {
		c.MaxTranscriptChars = 8000
	}
	if c.FrameDivisor == 0 {
		c.FrameDivisor = 5
	}
	if c.FrameFloor == 0 {
		c.FrameFloor = 3
	}
	if c.RatePerHost == 0 {
		c.RatePerHost = 4
	}
	cfg = c
	Cfg = &cfg
}
