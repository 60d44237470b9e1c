// Package content materializes the file-based post collection: it loads
// documents from disk, derives reading time and categories, and answers
// listing, search, pagination and relatedness queries.
package content

import (
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"folio/internal/frontmatter"
)

// WordsPerMinute is the reading speed used for derived reading times.
const WordsPerMinute = 200

// Item is one post in the collection. Items are immutable once loaded.
type Item struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"publishedAt"`
	Tags        []string  `json:"tags"`
	Categories  []string  `json:"categories"`
	Author      string    `json:"author"`
	Featured    bool      `json:"featured"`
	Draft       bool      `json:"draft"`
	CoverImage  string    `json:"coverImage,omitempty"`
	ReadingTime int       `json:"readingTime"`
	Body        string    `json:"content"`

	SourcePath string `json:"-"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps and plain dates. Unparseable input
// yields the zero time.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ReadingTime estimates minutes to read body, never less than one.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NewItem builds an item from a parsed document found at file (a slash
// separated path relative to the content root).
func NewItem(file string, doc *frontmatter.Document) *Item {
	m := doc.Meta

	slug := m.String("slug")
	if slug == "" {
		base := path.Base(file)
		slug = strings.TrimSuffix(base, path.Ext(base))
	}

	published := m.String("publishedAt")
	if published == "" {
		published = m.String("date")
	}

	cover := m.String("coverImage")
	if cover == "" {
		cover = m.String("featured_image")
	}

	readingTime, err := strconv.Atoi(m.String("readingTime"))
	if err != nil || readingTime <= 0 {
		readingTime = ReadingTime(doc.Body)
	}

	tags := m.Strings("tags")
	if tags == nil {
		tags = []string{}
	}

	return &Item{
		Slug:        slug,
		Title:       m.String("title"),
		Description: m.String("description"),
		PublishedAt: ParseDate(published),
		Tags:        tags,
		Categories:  union(m.Strings("categories"), ExtractCategories(doc.Body)),
		Author:      m.String("author"),
		Featured:    m.Bool("featured"),
		Draft:       m.Bool("draft"),
		CoverImage:  cover,
		ReadingTime: readingTime,
		Body:        doc.Body,
		SourcePath:  file,
	}
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, v := range list {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func hasFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
