// Package frontmatter reads and writes the metadata block at the top of a
// content document:
//
//	---
//	title: "Hello, World"
//	tags: ["go", "web"]
//	draft: false
//	---
//
//	Body text.
package frontmatter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var documentPattern = regexp.MustCompile(`^---\s*\n([\s\S]*?)\n---\s*\n([\s\S]*)$`)

// FormatError reports a document without a leading delimited metadata block.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid front matter format: " + e.Reason
}

// Document is a parsed content document.
type Document struct {
	Meta Meta
	Body string
	// Slug is derived from the title; empty when there is no title.
	Slug string
}

// Meta holds metadata values. Each value is a string, a bool or a []string.
type Meta map[string]any

// String returns the string value of key, or "".
func (m Meta) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Bool returns the boolean value of key, or false.
func (m Meta) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Strings returns the list value of key. A plain string becomes a
// one-element list.
func (m Meta) Strings(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Keys returns the keys in render order: well-known fields first, then the
// rest alphabetically.
func (m Meta) Keys() []string {
	known := []string{"title", "slug", "description", "date", "publishedAt", "author"}
	seen := make(map[string]bool, len(m))
	keys := make([]string, 0, len(m))
	for _, k := range known {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Parse reads a document in the line-oriented format.
func Parse(raw []byte) (*Document, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	match := documentPattern.FindStringSubmatch(text)
	if match == nil {
		return nil, &FormatError{Reason: "document must start with a --- delimited block"}
	}

	meta := parseLines(match[1])
	return &Document{
		Meta: meta,
		Body: strings.TrimSpace(match[2]),
		Slug: Slugify(meta.String("title")),
	}, nil
}

func parseLines(block string) Meta {
	meta := Meta{}
	for _, line := range strings.Split(block, "\n") {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		if key == "" {
			continue
		}
		meta[key] = parseValue(strings.TrimSpace(line[idx+1:]))
	}
	return meta
}

func parseValue(value string) any {
	if s, ok := unquote(value); ok {
		return s
	}
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		items := []string{}
		for _, item := range strings.Split(value[1:len(value)-1], ",") {
			item = strings.TrimSpace(item)
			if s, ok := unquote(item); ok {
				item = s
			}
			if item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// ValueError reports a metadata entry the line format cannot hold.
type ValueError struct {
	Key    string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("front matter %q: %s", e.Key, e.Reason)
}

// Render writes meta and body in the line-oriented format. Strings are
// double quoted, lists bracketed, booleans bare.
//
// The format has one line per key and splits lists on commas, so keys must
// be non-empty without colons or surrounding space, no value may contain a
// line break, and list items may be neither empty nor contain a comma.
// Such metadata is rejected with a *ValueError instead of being written in
// a form that parses differently.
func Render(meta Meta, body string) (string, error) {
	for _, key := range meta.Keys() {
		if err := checkEntry(key, meta[key]); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	b.WriteString("---\n")
	if len(meta) == 0 {
		// The closing delimiter must follow a newline of its own.
		b.WriteByte('\n')
	}
	for _, key := range meta.Keys() {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(renderValue(meta[key]))
		b.WriteByte('\n')
	}
	b.WriteString("---\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func checkEntry(key string, v any) error {
	switch {
	case key == "" || strings.TrimSpace(key) != key:
		return &ValueError{Key: key, Reason: "key must be non-empty without surrounding space"}
	case strings.ContainsAny(key, ":\r\n"):
		return &ValueError{Key: key, Reason: "key must not contain a colon or line break"}
	}
	switch val := v.(type) {
	case []string:
		for _, item := range val {
			switch {
			case item == "":
				return &ValueError{Key: key, Reason: "list items must not be empty"}
			case strings.ContainsAny(item, ",\r\n"):
				return &ValueError{Key: key, Reason: "list items must not contain commas or line breaks"}
			}
		}
	case bool:
	default:
		if strings.ContainsAny(fmt.Sprint(val), "\r\n") {
			return &ValueError{Key: key, Reason: "value must not contain a line break"}
		}
	}
	return nil
}

func renderValue(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case []string:
		quoted := make([]string, len(val))
		for i, item := range val {
			quoted[i] = `"` + item + `"`
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case string:
		return `"` + val + `"`
	default:
		return `"` + fmt.Sprint(val) + `"`
	}
}

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slugify lower-cases s, drops everything except letters, digits, spaces and
// hyphens, then joins words with single hyphens.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
