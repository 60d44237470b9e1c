package content

import (
	"context"
	"testing"
	"testing/fstest"

	"folio/internal/frontmatter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"welcome-post.mdx": {Data: []byte("---\ntitle: Welcome\npublishedAt: 2024-01-01\ntags: [intro]\n---\nHello")},
		"2024/go.md":       {Data: []byte("---\ntitle: Go\nslug: go-notes\npublishedAt: 2024-03-01\n---\nA golang post")},
		"draft.mdx":        {Data: []byte("---\ntitle: Draft\npublishedAt: 2024-06-01\ndraft: true\n---\nwip")},
		"broken.mdx":       {Data: []byte("no front matter")},
		"notes.txt":        {Data: []byte("---\ntitle: ignored\n---\nnot content")},
	}
}

func TestLoader_Load(t *testing.T) {
	c, err := NewLoaderFS(testFS(), Options{}).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"draft", "go-notes", "welcome-post"}, slugs(c.All()))
	require.Len(t, c.Skipped(), 1)
	assert.Equal(t, "broken.mdx", c.Skipped()[0].Path)

	var fe *frontmatter.FormatError
	assert.ErrorAs(t, c.Skipped()[0], &fe)

	goNotes, ok := c.BySlug("go-notes")
	require.True(t, ok)
	assert.Contains(t, goNotes.Categories, "Go")
}

func TestLoader_ProductionDropsDrafts(t *testing.T) {
	c, err := NewLoaderFS(testFS(), Options{Production: true}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"go-notes", "welcome-post"}, slugs(c.All()))
}

func TestLoader_CustomGlob(t *testing.T) {
	c, err := NewLoaderFS(testFS(), Options{Glob: "*.mdx"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "welcome-post"}, slugs(c.All()))
}

func TestLoader_YAMLFormat(t *testing.T) {
	fsys := fstest.MapFS{
		"y.md": {Data: []byte("---\ntitle: YAML Post\ntags:\n  - go\nreadingTime: 4\n---\nbody")},
	}
	c, err := NewLoaderFS(fsys, Options{Format: frontmatter.FormatYAML}).Load(context.Background())
	require.NoError(t, err)

	it, ok := c.BySlug("y")
	require.True(t, ok)
	assert.Equal(t, []string{"go"}, it.Tags)
	assert.Equal(t, 4, it.ReadingTime)
}

func TestLoader_MissingDirectoryIsEmpty(t *testing.T) {
	c, err := NewLoader(t.TempDir()+"/does-not-exist", Options{}).Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestLoader_Check(t *testing.T) {
	problems, total, err := NewLoaderFS(testFS(), Options{}).Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, problems, 1)
	assert.Equal(t, "broken.mdx", problems[0].Path)
}
