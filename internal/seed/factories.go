// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"folio/internal/frontmatter"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/render"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// youtubeIDs is a small curated set of public videos used in generated content.
var youtubeIDs = []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}

var techStacks = [][]string{
	{"go", "postgres", "redis"},
	{"typescript", "react", "vite"},
	{"rust", "wasm"},
	{"python", "fastapi", "sqlite"},
	{"go", "fiber", "websocket"},
}

// Hasher turns visitor details into the stored digests.
type Hasher interface {
	Hash(v string) string
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hasher Hasher
	// seq keeps generated emails and slugs unique within one run
	seq int
}

// NewFactory creates a new Factory bound to db. A zero opts.RandSeed
// seeds from the clock.
func NewFactory(db *gorm.DB, opts Options, hasher Hasher) *Factory {
	return &Factory{db: db, opts: opts, faker: gofakeit.New(opts.RandSeed), hasher: hasher}
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// pastTime spreads created_at values over the last MaxDays days.
func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	end := time.Now()
	return f.faker.DateRange(end.AddDate(0, 0, -maxDays), end)
}

func (f *Factory) title() string {
	return strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
}

func (f *Factory) persist(kind string, v any) error {
	if f.opts.DryRun {
		observability.Logger.Debug("[dry-run] skipped insert", "kind", kind)
		return nil
	}
	return f.db.Create(v).Error
}

// BuildUser constructs a user mirroring an OAuth identity without saving it.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	n := f.next()
	username := strings.ToLower(f.faker.Username())
	user := &models.User{
		ID:         uuid.New(),
		Email:      fmt.Sprintf("%s.%d@example.com", username, n),
		Name:       f.faker.Name(),
		AvatarURL:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Provider:   f.faker.RandomString([]string{"github", "google"}),
		ProviderID: fmt.Sprintf("%d", f.faker.Number(100000, 999999)),
		CreatedAt:  f.pastTime(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.persist("user", user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildBlogPost constructs a blog post by author. Roughly one in five
// posts embeds a video link on its own line.
func (f *Factory) BuildBlogPost(author *models.User, overrides ...func(*models.BlogPost)) *models.BlogPost {
	title := f.title()
	var body strings.Builder
	body.WriteString("## " + f.title() + "\n\n")
	body.WriteString(f.faker.Paragraph(2, 4, 12, "\n\n"))
	if f.faker.Number(1, 5) == 1 {
		id := youtubeIDs[f.faker.Number(0, len(youtubeIDs)-1)]
		body.WriteString("\n\nhttps://www.youtube.com/watch?v=" + id + "\n")
	}
	content := body.String()

	created := f.pastTime()
	post := &models.BlogPost{
		ID:            uuid.New(),
		Title:         title,
		Slug:          fmt.Sprintf("%s-%d", frontmatter.Slugify(title), f.next()),
		Content:       content,
		Excerpt:       render.ExtractExcerpt(content, render.DefaultExcerptLength),
		AuthorID:      author.ID,
		Published:     f.faker.Number(1, 10) > 2,
		Tags:          []string{strings.ToLower(f.faker.HipsterWord()), strings.ToLower(f.faker.BuzzWord())},
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", f.faker.UUID()),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreateBlogPost constructs and persists a sample blog post.
func (f *Factory) CreateBlogPost(author *models.User, overrides ...func(*models.BlogPost)) (*models.BlogPost, error) {
	post := f.BuildBlogPost(author, overrides...)
	if err := f.persist("blog_post", post); err != nil {
		return nil, err
	}
	return post, nil
}

// BuildProject constructs a portfolio project without saving it.
func (f *Factory) BuildProject(overrides ...func(*models.Project)) *models.Project {
	name := f.faker.AppName()
	slug := fmt.Sprintf("%s-%d", frontmatter.Slugify(name), f.next())
	project := &models.Project{
		ID:            uuid.New(),
		Title:         name,
		Slug:          slug,
		Description:   f.faker.Sentence(12),
		Content:       f.faker.Paragraph(2, 3, 10, "\n\n"),
		DemoURL:       "https://" + slug + ".example.com",
		GithubURL:     "https://github.com/example/" + slug,
		TechStack:     techStacks[f.faker.Number(0, len(techStacks)-1)],
		FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		CreatedAt:     f.pastTime(),
	}
	for _, override := range overrides {
		override(project)
	}
	return project
}

// CreateProject constructs and persists a sample project.
func (f *Factory) CreateProject(overrides ...func(*models.Project)) (*models.Project, error) {
	project := f.BuildProject(overrides...)
	if err := f.persist("project", project); err != nil {
		return nil, err
	}
	return project, nil
}

// CreateComment stores a comment by user on slug. parent may be nil; when
// set it must belong to the same slug.
func (f *Factory) CreateComment(user *models.User, slug string, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		ID:        uuid.New(),
		PostSlug:  slug,
		UserID:    user.ID,
		Content:   f.faker.Sentence(f.faker.Number(5, 25)),
		CreatedAt: f.pastTime(),
	}
	if parent != nil {
		if parent.PostSlug != slug {
			return nil, fmt.Errorf("parent comment %s belongs to %q, not %q", parent.ID, parent.PostSlug, slug)
		}
		comment.ParentID = &parent.ID
		if comment.CreatedAt.Before(parent.CreatedAt) {
			comment.CreatedAt = parent.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
		}
	}
	if err := f.persist("comment", comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateReaction stores user's reaction to slug, three likes to every dislike.
func (f *Factory) CreateReaction(user *models.User, slug string) (*models.Reaction, error) {
	reaction := &models.Reaction{
		ID:           uuid.New(),
		PostSlug:     slug,
		UserID:       user.ID,
		ReactionType: models.ReactionLike,
		CreatedAt:    f.pastTime(),
	}
	if f.faker.Number(1, 4) == 1 {
		reaction.ReactionType = models.ReactionDislike
	}
	if err := f.persist("reaction", reaction); err != nil {
		return nil, err
	}
	return reaction, nil
}

// CreatePageView stores a visit to slug with hashed visitor details. An
// empty slug records a site-wide view.
func (f *Factory) CreatePageView(slug string) (*models.PageView, error) {
	if f.hasher == nil {
		return nil, fmt.Errorf("page views need a hasher")
	}
	view := &models.PageView{
		ID:            uuid.New(),
		IPHash:        f.hasher.Hash(f.faker.IPv4Address()),
		UserAgentHash: f.hasher.Hash(f.faker.UserAgent()),
		CreatedAt:     f.pastTime(),
	}
	if slug != "" {
		view.PostSlug = &slug
	}
	if err := f.persist("page_view", view); err != nil {
		return nil, err
	}
	return view, nil
}
