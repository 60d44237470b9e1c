package render

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultExcerptLength is the excerpt size used when none is configured.
const DefaultExcerptLength = 200

var (
	youTubeLink = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]+)`)
	youTubeID   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]+)`)
	youTubeLine = regexp.MustCompile(`(?m)^[ \t]*((?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/)[A-Za-z0-9_-]+)\S*[ \t]*$`)
)

// YouTubeID extracts the video id from a watch, short or embed URL.
func YouTubeID(url string) (string, bool) {
	m := youTubeID.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTubeEmbed returns the iframe markup for a video id.
func YouTubeEmbed(id string) string {
	return fmt.Sprintf(`<div class="youtube-embed"><iframe width="560" height="315" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe></div>`, id)
}

// ProcessMedia replaces every YouTube link in content with embed markup.
func ProcessMedia(content string) string {
	return youTubeLink.ReplaceAllStringFunc(content, func(link string) string {
		id, _ := YouTubeID(link)
		return YouTubeEmbed(id)
	})
}

// EmbedStandaloneMedia replaces YouTube links that sit alone on a line,
// leaving links inside prose untouched.
func EmbedStandaloneMedia(content string) string {
	return youTubeLine.ReplaceAllStringFunc(content, func(line string) string {
		id, ok := YouTubeID(line)
		if !ok {
			return line
		}
		return "\n" + YouTubeEmbed(id) + "\n"
	})
}

var (
	excerptHeading = regexp.MustCompile(`#+\s`)
	excerptBold    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	excerptItalic  = regexp.MustCompile(`\*(.*?)\*`)
	excerptLink    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	excerptTag     = regexp.MustCompile(`<[^>]+>`)
	excerptBreaks  = regexp.MustCompile(`\n+`)
)

// ExtractExcerpt strips common markdown and HTML from content and cuts it
// to maxLength characters, marking a cut with "...".
func ExtractExcerpt(content string, maxLength int) string {
	clean := excerptHeading.ReplaceAllString(content, "")
	clean = excerptBold.ReplaceAllString(clean, "$1")
	clean = excerptItalic.ReplaceAllString(clean, "$1")
	clean = excerptLink.ReplaceAllString(clean, "$1")
	clean = excerptTag.ReplaceAllString(clean, "")
	clean = excerptBreaks.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	runes := []rune(clean)
	if len(runes) <= maxLength {
		return clean
	}
	return strings.TrimSpace(string(runes[:maxLength])) + "..."
}
