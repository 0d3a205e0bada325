package engine

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoClip/1.0"
	UserAgentChrome = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	hashtagRe = regexp.MustCompile(`#(\w+)`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// ExtractText walks an HTML fragment and returns its visible text joined with
// single spaces. Used for oEmbed embed snippets, where regex stripping would
// glue words from adjacent elements together.
func ExtractText(fragment string) string {
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return CleanHTML(fragment)
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(parts, " ")
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ExtractHashtags pulls #word tokens out of a title, without the # prefix.
// Local post-processing only, never a network call.
func ExtractHashtags(title string) []string {
	matches := hashtagRe.FindAllStringSubmatch(title, -1)
	if matches == nil {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// GroupDigits formats a non-negative count with comma separators (1234567 →
// "1,234,567") for the analysis prompt.
func GroupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
