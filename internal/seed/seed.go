package seed

import (
	"fmt"
	"log/slog"

	"folio/internal/models"
	"folio/internal/observability"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	NumBlogPosts     int
	NumProjects      int
	CommentsPerPost  int
	ReactionsPerPost int
	ViewsPerPost     int
	// ExtraSlugs are file-based post slugs that also receive comments,
	// reactions and views.
	ExtraSlugs  []string
	ShouldClean bool
	DryRun      bool
	MaxDays     int
	RandSeed    int64
}

// Result counts what a Seed run created.
type Result struct {
	Users     int
	BlogPosts int
	Projects  int
	Comments  int
	Reactions int
	PageViews int
}

// Seeder fills a database with generated demo data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a seeder. hasher may be nil, in which case no page
// views are generated.
func NewSeeder(db *gorm.DB, opts Options, hasher Hasher) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts, hasher)}
}

// Factory exposes the underlying factory for ad-hoc records.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Seed populates the database with test data
func (s *Seeder) Seed() (*Result, error) {
	opts := s.opts
	observability.Logger.Info("starting database seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("blog_posts", opts.NumBlogPosts),
		slog.Int("projects", opts.NumProjects),
		slog.Bool("dry_run", opts.DryRun),
	)

	if opts.ShouldClean && !opts.DryRun {
		if err := ClearAll(s.db); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	res := &Result{}
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	res.Users = len(users)

	slugs := append([]string(nil), opts.ExtraSlugs...)
	if len(users) > 0 {
		for i := 0; i < opts.NumBlogPosts; i++ {
			post, err := s.factory.CreateBlogPost(users[i%len(users)])
			if err != nil {
				return nil, fmt.Errorf("failed to create blog posts: %w", err)
			}
			res.BlogPosts++
			// Only published posts accept comments and reactions.
			if post.Published {
				slugs = append(slugs, post.Slug)
			}
		}
	}

	for i := 0; i < opts.NumProjects; i++ {
		project, err := s.factory.CreateProject()
		if err != nil {
			return nil, fmt.Errorf("failed to create projects: %w", err)
		}
		res.Projects++
		slugs = append(slugs, project.Slug)
	}

	for _, slug := range slugs {
		if err := s.seedEngagement(slug, users, res); err != nil {
			return nil, err
		}
	}

	observability.Logger.Info("database seeding completed",
		slog.Int("users", res.Users),
		slog.Int("blog_posts", res.BlogPosts),
		slog.Int("projects", res.Projects),
		slog.Int("comments", res.Comments),
		slog.Int("reactions", res.Reactions),
		slog.Int("page_views", res.PageViews),
	)
	return res, nil
}

// seedEngagement adds comments, reactions and views to one slug. Every
// other comment replies to the one before it.
func (s *Seeder) seedEngagement(slug string, users []*models.User, res *Result) error {
	if len(users) > 0 {
		var parent *models.Comment
		for i := 0; i < s.opts.CommentsPerPost; i++ {
			var replyTo *models.Comment
			if i%2 == 1 {
				replyTo = parent
			}
			c, err := s.factory.CreateComment(users[(i*7+len(slug))%len(users)], slug, replyTo)
			if err != nil {
				return fmt.Errorf("failed to create comments on %s: %w", slug, err)
			}
			parent = c
			res.Comments++
		}

		// A user reacts at most once per slug.
		n := min(s.opts.ReactionsPerPost, len(users))
		offset := len(slug) % len(users)
		for i := 0; i < n; i++ {
			if _, err := s.factory.CreateReaction(users[(offset+i)%len(users)], slug); err != nil {
				return fmt.Errorf("failed to create reactions on %s: %w", slug, err)
			}
			res.Reactions++
		}
	}

	if s.factory.hasher != nil {
		for i := 0; i < s.opts.ViewsPerPost; i++ {
			if _, err := s.factory.CreatePageView(slug); err != nil {
				return fmt.Errorf("failed to create page views on %s: %w", slug, err)
			}
			res.PageViews++
		}
	}
	return nil
}

// ClearAll removes every seeded row, children before parents.
func ClearAll(db *gorm.DB) error {
	observability.Logger.Info("clearing existing data")
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.PageView{},
		&models.Reaction{},
		&models.Comment{},
		&models.BlogPost{},
		&models.Project{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
