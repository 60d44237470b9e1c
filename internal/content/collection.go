package content

import (
	"sort"
	"strings"
	"time"
)

// DefaultPageSize is used when a caller asks for a non-positive page size.
const DefaultPageSize = 10

// Collection is an immutable, sorted snapshot of the visible items.
type Collection struct {
	items    []*Item
	bySlug   map[string]*Item
	index    map[string]int
	skipped  []FileError
	loadedAt time.Time
}

// NewCollection sorts items newest first (slug ascending on ties). When
// production is set, drafts are dropped. The first item wins a slug clash.
func NewCollection(items []*Item, production bool) *Collection {
	visible := make([]*Item, 0, len(items))
	for _, it := range items {
		if production && it.Draft {
			continue
		}
		visible = append(visible, it)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i], visible[j]
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.Slug < b.Slug
	})

	c := &Collection{
		items:    visible,
		bySlug:   make(map[string]*Item, len(visible)),
		index:    make(map[string]int, len(visible)),
		loadedAt: time.Now(),
	}
	for i, it := range visible {
		if _, dup := c.bySlug[it.Slug]; dup {
			continue
		}
		c.bySlug[it.Slug] = it
		c.index[it.Slug] = i
	}
	return c
}

// All returns every visible item in listing order.
func (c *Collection) All() []*Item {
	return c.items
}

// Len is the number of visible items.
func (c *Collection) Len() int {
	return len(c.items)
}

// Skipped lists files that failed to parse during the load.
func (c *Collection) Skipped() []FileError {
	return c.skipped
}

// LoadedAt is when the snapshot was built.
func (c *Collection) LoadedAt() time.Time {
	return c.loadedAt
}

// BySlug returns the item whose slug equals slug exactly.
func (c *Collection) BySlug(slug string) (*Item, bool) {
	it, ok := c.bySlug[slug]
	return it, ok
}

// ByCategory returns items carrying category, compared without case.
func (c *Collection) ByCategory(category string) []*Item {
	return c.filter(func(it *Item) bool { return hasFold(it.Categories, category) })
}

// ByTag returns items carrying tag, compared without case.
func (c *Collection) ByTag(tag string) []*Item {
	return c.filter(func(it *Item) bool { return hasFold(it.Tags, tag) })
}

// Featured returns items flagged featured.
func (c *Collection) Featured() []*Item {
	return c.filter(func(it *Item) bool { return it.Featured })
}

// Recent returns the newest limit items.
func (c *Collection) Recent(limit int) []*Item {
	if limit < 0 {
		limit = 0
	}
	if limit > len(c.items) {
		limit = len(c.items)
	}
	return c.items[:limit]
}

// Search matches query as a case-insensitive substring of the title,
// description, body, any tag or any category.
func (c *Collection) Search(query string) []*Item {
	return Search(c.items, query)
}

// Search filters items the same way as Collection.Search.
func Search(items []*Item, query string) []*Item {
	q := strings.ToLower(query)
	out := []*Item{}
	for _, it := range items {
		if matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matches(it *Item, q string) bool {
	if strings.Contains(strings.ToLower(it.Title), q) ||
		strings.Contains(strings.ToLower(it.Description), q) ||
		strings.Contains(strings.ToLower(it.Body), q) {
		return true
	}
	for _, list := range [][]string{it.Tags, it.Categories} {
		for _, v := range list {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
	}
	return false
}

// Query combines the listing filters. Empty fields match everything.
type Query struct {
	Category string
	Tag      string
	Text     string
}

// Find returns the items matching every non-empty field of q, in listing
// order.
func (c *Collection) Find(q Query) []*Item {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	return c.filter(func(it *Item) bool {
		return (q.Category == "" || hasFold(it.Categories, q.Category)) &&
			(q.Tag == "" || hasFold(it.Tags, q.Tag)) &&
			(text == "" || matches(it, text))
	})
}

func (c *Collection) filter(keep func(*Item) bool) []*Item {
	out := []*Item{}
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Categories returns every distinct category, sorted.
func (c *Collection) Categories() []string {
	return c.distinct(func(it *Item) []string { return it.Categories })
}

// Tags returns every distinct tag, sorted.
func (c *Collection) Tags() []string {
	return c.distinct(func(it *Item) []string { return it.Tags })
}

func (c *Collection) distinct(values func(*Item) []string) []string {
	set := map[string]struct{}{}
	for _, it := range c.items {
		for _, v := range values(it) {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Page is one page of a listing.
type Page struct {
	Items       []*Item `json:"posts"`
	Total       int     `json:"totalPosts"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	PageSize    int     `json:"pageSize"`
	HasNext     bool    `json:"hasNext"`
	HasPrev     bool    `json:"hasPrev"`
}

// Paginate returns page (1-based) of the full listing.
func (c *Collection) Paginate(page, size int) Page {
	return Paginate(c.items, page, size)
}

// Paginate slices items into pages of size. Pages below 1 are treated as
// page 1; pages past the end are empty.
func Paginate(items []*Item, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(items)
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}

	// Checked before multiplying so large pages or sizes cannot overflow.
	start, end := total, total
	if page <= totalPages {
		start = (page - 1) * size
		end = total
		if size < total-start {
			end = start + size
		}
	}

	return Page{
		Items:       items[start:end],
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    size,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Adjacent returns the items before and after slug in listing order.
// Either is nil at the ends or when slug is unknown.
func (c *Collection) Adjacent(slug string) (prev, next *Item) {
	i, ok := c.index[slug]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		prev = c.items[i-1]
	}
	if i < len(c.items)-1 {
		next = c.items[i+1]
	}
	return prev, next
}

// Tag and category weights for Related.
const (
	SharedTagWeight      = 2
	SharedCategoryWeight = 3
)

// Related scores every other item against item by shared tags and
// categories, drops zero scores, and returns the best limit items.
func (c *Collection) Related(item *Item, limit int) []*Item {
	type scored struct {
		item  *Item
		score int
	}

	candidates := []scored{}
	for _, other := range c.items {
		if other.Slug == item.Slug {
			continue
		}
		score := SharedTagWeight*shared(other.Tags, item.Tags) +
			SharedCategoryWeight*shared(other.Categories, item.Categories)
		if score > 0 {
			candidates = append(candidates, scored{other, score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit < 0 {
		limit = 0
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*Item, len(candidates))
	for i, s := range candidates {
		out[i] = s.item
	}
	return out
}

func shared(a, b []string) int {
	n := 0
	for _, v := range a {
		for _, w := range b {
			if v == w {
				n++
				break
			}
		}
	}
	return n
}
