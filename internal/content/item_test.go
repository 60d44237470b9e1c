package content

import (
	"strings"
	"testing"
	"time"

	"folio/internal/frontmatter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		body := strings.TrimSpace(strings.Repeat("word ", tt.words))
		assert.Equal(t, tt.want, ReadingTime(body), "%d words", tt.words)
	}
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ParseDate("2024-01-15"))
	assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), ParseDate("2024-01-15T10:30:00+02:00"))
	assert.True(t, ParseDate("next tuesday").IsZero())
}

func TestNewItem_Derivations(t *testing.T) {
	doc, err := frontmatter.Parse([]byte(`---
title: Shipping with Docker
publishedAt: 2024-02-01
categories: [Tutorials]
readingTime: 9
---
We use Docker and Postgres to ship the API.`))
	require.NoError(t, err)

	it := NewItem("2024/shipping-with-docker.mdx", doc)

	assert.Equal(t, "shipping-with-docker", it.Slug)
	assert.Equal(t, 9, it.ReadingTime)
	assert.Equal(t, []string{}, it.Tags)
	assert.ElementsMatch(t, []string{"Tutorials", "DevOps", "Databases", "Web Development"}, it.Categories)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), it.PublishedAt)
	assert.Equal(t, "2024/shipping-with-docker.mdx", it.SourcePath)
}

func TestNewItem_ExplicitSlugAndComputedReadingTime(t *testing.T) {
	doc, err := frontmatter.Parse([]byte("---\ntitle: T\nslug: custom\ndate: 2023-05-05\nfeatured_image: /c.png\n---\nshort body"))
	require.NoError(t, err)

	it := NewItem("ignored.md", doc)
	assert.Equal(t, "custom", it.Slug)
	assert.Equal(t, 1, it.ReadingTime)
	assert.Equal(t, "/c.png", it.CoverImage)
	assert.Equal(t, 2023, it.PublishedAt.Year())
}

func TestExtractCategories_WholeWordsOnly(t *testing.T) {
	assert.Equal(t, []string{"Go"}, ExtractCategories("Writing GOLANG services"))
	assert.Empty(t, ExtractCategories("the reactor was sqlite-free"), "substrings must not match")
	assert.Equal(t, []string{"React"}, ExtractCategories("Built with Next.js."))
	assert.Nil(t, ExtractCategories(""))
}

func TestNewItem_CategoriesAreDeduplicated(t *testing.T) {
	doc, err := frontmatter.Parse([]byte("---\ntitle: T\ncategories: [Go, Go]\n---\nA golang post"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, NewItem("t.md", doc).Categories)
}
