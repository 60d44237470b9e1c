package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// ParseYAML reads a document whose metadata block is YAML.
func ParseYAML(raw []byte) (*Document, error) {
	var values map[string]any
	body, err := frontmatter.MustParse(bytes.NewReader(raw), &values, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, &FormatError{Reason: "document must start with a --- delimited block"}
		}
		return nil, &FormatError{Reason: err.Error()}
	}

	meta := make(Meta, len(values))
	for k, v := range values {
		if n, ok := normalizeYAML(v); ok {
			meta[k] = n
		}
	}
	return &Document{
		Meta: meta,
		Body: strings.TrimSpace(string(body)),
		Slug: Slugify(meta.String("title")),
	}, nil
}

func normalizeYAML(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case string:
		return val, true
	case bool:
		return val, true
	case time.Time:
		return val.Format(time.RFC3339), true
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := normalizeYAML(item); ok {
				items = append(items, fmt.Sprint(s))
			}
		}
		return items, true
	default:
		return fmt.Sprint(val), true
	}
}

// RenderYAML writes meta as a YAML block followed by body.
func RenderYAML(meta Meta, body string) (string, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range meta.Keys() {
		var value yaml.Node
		if err := value.Encode(meta[key]); err != nil {
			return "", fmt.Errorf("encode %s: %w", key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, &value)
	}

	out, err := yaml.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	if len(meta) > 0 {
		b.Write(out)
	}
	b.WriteString("---\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Format selects a metadata syntax.
type Format string

const (
	FormatLines Format = "lines"
	FormatYAML  Format = "yaml"
)

// Parser returns the parse function for f, defaulting to the line format.
func Parser(f Format) func([]byte) (*Document, error) {
	if f == FormatYAML {
		return ParseYAML
	}
	return Parse
}

// Renderer returns the render function for f, defaulting to the line format.
func Renderer(f Format) func(Meta, string) (string, error) {
	if f == FormatYAML {
		return RenderYAML
	}
	return Render
}
