package frontmatter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const welcome = `---
title: "Welcome: A First Post"
description: It's a start
publishedAt: 2024-01-15
tags: ["go", 'web', intro]
featured: true
draft: false
url: https://example.com/a:b
no colon here
: empty key
---

Hello **world**.

`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(welcome))
	require.NoError(t, err)

	want := Meta{
		"title":       "Welcome: A First Post",
		"description": "It's a start",
		"publishedAt": "2024-01-15",
		"tags":        []string{"go", "web", "intro"},
		"featured":    true,
		"draft":       false,
		"url":         "https://example.com/a:b",
	}
	if diff := cmp.Diff(want, doc.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Hello **world**.", doc.Body)
	assert.Equal(t, "welcome-a-first-post", doc.Slug)
}

func TestParse_QuotedLiteralsStayStrings(t *testing.T) {
	doc, err := Parse([]byte("---\nflag: \"true\"\nlist: \"[a, b]\"\n---\nbody"))
	require.NoError(t, err)

	assert.Equal(t, "true", doc.Meta["flag"])
	assert.Equal(t, "[a, b]", doc.Meta["list"])
}

func TestParse_EmptyArray(t *testing.T) {
	doc, err := Parse([]byte("---\ntags: []\n---\nbody"))
	require.NoError(t, err)
	assert.Equal(t, []string{}, doc.Meta["tags"])
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse([]byte("---\r\ntitle: Windows\r\n---\r\nbody\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Windows", doc.Meta.String("title"))
	assert.Equal(t, "body", doc.Body)
}

func TestParse_FormatError(t *testing.T) {
	inputs := map[string]string{
		"no block":        "Just a body",
		"unclosed":        "---\ntitle: x\nbody",
		"not first line":  "intro\n---\ntitle: x\n---\nbody",
		"missing newline": "---\ntitle: x\n---",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		meta Meta
		body string
	}{
		{
			name: "typical post",
			meta: Meta{
				"title":       "Hello, World",
				"publishedAt": "2024-03-01T10:00:00Z",
				"tags":        []string{"go", "fiber"},
				"categories":  []string{},
				"draft":       true,
				"featured":    false,
			},
			body: "Some *markdown*.\n\n## Heading",
		},
		{
			name: "tricky strings",
			meta: Meta{
				"title":   `She said "hi"`,
				"literal": "true",
				"bracket": "[not a list]",
				"spaces":  "  padded  ",
				"url":     "https://example.com/a:b",
			},
			body: "body",
		},
		{
			name: "empty meta",
			meta: Meta{},
			body: "only body",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Render(tc.meta, tc.body)
			require.NoError(t, err)
			doc, err := Parse([]byte(out))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.meta, doc.Meta); diff != "" {
				t.Errorf("meta mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.body, doc.Body)
		})
	}
}

func TestRender_KeyOrder(t *testing.T) {
	out, err := Render(Meta{"zeta": "z", "tags": []string{"a"}, "title": "T", "draft": false}, "b")
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"T\"\ndraft: false\ntags: [\"a\"]\nzeta: \"z\"\n---\n\nb\n", out)
}

func TestRender_RejectsUnrepresentableValues(t *testing.T) {
	tests := []struct {
		name string
		meta Meta
	}{
		{"newline in string", Meta{"title": "first\nsecond"}},
		{"carriage return in string", Meta{"description": "a\rb"}},
		{"comma in list item", Meta{"tags": []string{"go", "a,b"}}},
		{"newline in list item", Meta{"tags": []string{"a\nb"}}},
		{"empty list item", Meta{"tags": []string{""}}},
		{"colon in key", Meta{"a:b": "x"}},
		{"padded key", Meta{" title": "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.meta, "body")
			var ve *ValueError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":                  "hello-world",
		"  Go 1.22: What's New! ":      "go-122-whats-new",
		"multiple   spaces\tand\ttabs": "multiple-spaces-and-tabs",
		"--already--hyphenated--":      "already-hyphenated",
		"Ünïcödé":                      "ncd",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestMetaAccessors(t *testing.T) {
	m := Meta{"title": "T", "draft": true, "tags": []string{"a"}, "category": "solo"}
	assert.Equal(t, "T", m.String("title"))
	assert.Equal(t, "", m.String("draft"))
	assert.True(t, m.Bool("draft"))
	assert.False(t, m.Bool("missing"))
	assert.Equal(t, []string{"a"}, m.Strings("tags"))
	assert.Equal(t, []string{"solo"}, m.Strings("category"))
	assert.Nil(t, m.Strings("missing"))
}
