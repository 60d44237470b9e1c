package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := New(Options{})

	doc, err := r.Render("# Intro\n\nSome **bold** text.\n\n## Setup Steps\n\n- [x] done\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	assert.Contains(t, doc.HTML, `<h1 id="intro">Intro</h1>`)
	assert.Contains(t, doc.HTML, `<h2 id="setup-steps">Setup Steps</h2>`)
	assert.Contains(t, doc.HTML, "<strong>bold</strong>")
	assert.Contains(t, doc.HTML, "<table>")
	assert.Contains(t, doc.HTML, `type="checkbox"`)
	assert.Equal(t, []Heading{
		{Level: 1, Text: "Intro", ID: "intro"},
		{Level: 2, Text: "Setup Steps", ID: "setup-steps"},
	}, doc.Headings)
	assert.Equal(t, "Intro Some bold text. Setup Steps - [x] done | a | b | |---|---| | 1 | 2 |", doc.Excerpt)
}

func TestRenderer_EmbedsStandaloneVideos(t *testing.T) {
	doc, err := New(Options{}).Render("Watch this:\n\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n\nor [the link](https://youtu.be/abc123) inline.")
	require.NoError(t, err)

	assert.Contains(t, doc.HTML, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)
	assert.Contains(t, doc.HTML, `<a href="https://youtu.be/abc123">the link</a>`)
}

func TestRenderer_SafeModeDropsRawHTML(t *testing.T) {
	doc, err := New(Options{SafeMode: true}).Render("<script>alert(1)</script>\n\ntext")
	require.NoError(t, err)
	assert.NotContains(t, doc.HTML, "<script>")
}

func TestYouTubeID(t *testing.T) {
	for _, url := range []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
	} {
		id, ok := YouTubeID(url)
		assert.True(t, ok, url)
		assert.Equal(t, "dQw4w9WgXcQ", id, url)
	}

	_, ok := YouTubeID("https://vimeo.com/123")
	assert.False(t, ok)
}

func TestProcessMedia(t *testing.T) {
	out := ProcessMedia("before youtu.be/xyz789 after")
	assert.Equal(t, "before "+YouTubeEmbed("xyz789")+" after", out)
	assert.Equal(t, "no videos", ProcessMedia("no videos"))
}

func TestExtractExcerpt(t *testing.T) {
	assert.Equal(t, "Title A bold and italic link.", ExtractExcerpt("## Title\n\nA **bold** and *italic* [link](http://x).", 200))
	assert.Equal(t, "tags gone", ExtractExcerpt("<p>tags</p> gone", 200))

	long := strings.Repeat("a", 250)
	got := ExtractExcerpt(long, 200)
	assert.Equal(t, strings.Repeat("a", 200)+"...", got)

	assert.Equal(t, "héllo...", ExtractExcerpt("héllo wörld", 5))
}
