package main

import (
	"context"
	"fmt"

	"folio/internal/bootstrap"
	"folio/internal/content"
	"folio/internal/seed"
	"folio/internal/service"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var (
		opts        seed.Options
		withContent bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with generated demo data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.IsProduction() && !opts.DryRun {
				return fmt.Errorf("refusing to seed a production database")
			}

			ctx := context.Background()
			rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()

			if withContent {
				loader := content.NewLoader(cfg.ContentDir, content.Options{
					Glob:   cfg.ContentGlob,
					Format: contentFormat(cfg.ContentFormat),
				})
				c, err := loader.Load(ctx)
				if err != nil {
					return fmt.Errorf("load content: %w", err)
				}
				for _, item := range c.All() {
					opts.ExtraSlugs = append(opts.ExtraSlugs, item.Slug)
				}
			}

			hasher := service.NewAnalyticsService(nil, cfg.SessionSecret)
			res, err := seed.NewSeeder(rt.DB, opts, hasher).Seed()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"users=%d blog_posts=%d projects=%d comments=%d reactions=%d page_views=%d\n",
				res.Users, res.BlogPosts, res.Projects, res.Comments, res.Reactions, res.PageViews)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.NumUsers, "users", 20, "Number of users to create")
	f.IntVar(&opts.NumBlogPosts, "blog-posts", 15, "Number of blog posts to create")
	f.IntVar(&opts.NumProjects, "projects", 6, "Number of projects to create")
	f.IntVar(&opts.CommentsPerPost, "comments", 4, "Comments per post")
	f.IntVar(&opts.ReactionsPerPost, "reactions", 8, "Reactions per post")
	f.IntVar(&opts.ViewsPerPost, "views", 25, "Page views per post")
	f.IntVar(&opts.MaxDays, "max-days", 90, "Spread created_at over this many days")
	f.Int64Var(&opts.RandSeed, "rand-seed", 0, "Random seed (0 uses the clock)")
	f.BoolVar(&opts.ShouldClean, "clean", false, "Delete existing rows first")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Generate without writing")
	f.BoolVar(&withContent, "with-content", true, "Also add engagement to file-based posts")
	return cmd
}
