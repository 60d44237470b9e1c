// Package render turns markdown bodies into render-ready documents.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Document is a rendered body.
type Document struct {
	HTML     string    `json:"html"`
	Headings []Heading `json:"headings"`
	Excerpt  string    `json:"excerpt"`
}

// Options configure a Renderer.
type Options struct {
	// SafeMode drops raw HTML from the output, including media embeds.
	SafeMode  bool
	HardWraps bool
	// ExcerptLength is the excerpt size in characters; 0 means 200.
	ExcerptLength int
}

// Renderer converts markdown with GitHub flavoured extensions. It is safe
// for concurrent use.
type Renderer struct {
	md         goldmark.Markdown
	excerptLen int
}

// New builds a renderer.
func New(opts Options) *Renderer {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	excerptLen := opts.ExcerptLength
	if excerptLen <= 0 {
		excerptLen = DefaultExcerptLength
	}

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOptions...),
		),
		excerptLen: excerptLen,
	}
}

// Render converts body. YouTube links on a line of their own become embeds.
func (r *Renderer) Render(body string) (*Document, error) {
	src := []byte(EmbedStandaloneMedia(body))
	root := r.md.Parser().Parse(text.NewReader(src))

	headings := []Heading{}
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var id string
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		headings = append(headings, Heading{Level: h.Level, Text: string(h.Text(src)), ID: id})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, root); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return &Document{
		HTML:     buf.String(),
		Headings: headings,
		Excerpt:  ExtractExcerpt(body, r.excerptLen),
	}, nil
}
