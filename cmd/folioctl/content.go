package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"folio/internal/content"
	"folio/internal/frontmatter"

	"github.com/spf13/cobra"
)

func contentFormat(name string) frontmatter.Format {
	if strings.EqualFold(strings.TrimSpace(name), string(frontmatter.FormatYAML)) {
		return frontmatter.FormatYAML
	}
	return frontmatter.FormatLines
}

func contentCmd() *cobra.Command {
	var dir, format string

	cmd := &cobra.Command{
		Use:   "content",
		Short: "Check and scaffold file-based posts",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "content/posts", "Content directory")
	cmd.PersistentFlags().StringVar(&format, "format", string(frontmatter.FormatLines), "Front matter format (lines or yaml)")

	cmd.AddCommand(contentCheckCmd(&dir, &format), contentNewCmd(&dir, &format))
	return cmd
}

func contentCheckCmd(dir, format *string) *cobra.Command {
	var glob string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse every document and report the ones that fail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := content.NewLoader(*dir, content.Options{Glob: glob, Format: contentFormat(*format)})
			problems, total, err := loader.Check(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintf(out, "FAIL %s\n", p.Error())
			}
			fmt.Fprintf(out, "%d files checked, %d failed\n", total, len(problems))
			if len(problems) > 0 {
				return fmt.Errorf("%d documents failed to parse", len(problems))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&glob, "glob", content.DefaultGlob, "Files to check")
	return cmd
}

func contentNewCmd(dir, format *string) *cobra.Command {
	var (
		description string
		tags        []string
		categories  []string
		date        string
		draft       bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Scaffold a new post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			slug := frontmatter.Slugify(title)
			if slug == "" {
				return errors.New("title must contain letters or digits")
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			} else if content.ParseDate(date).IsZero() {
				return fmt.Errorf("invalid date %q", date)
			}

			meta := frontmatter.Meta{
				"title":       title,
				"description": description,
				"date":        date,
				"tags":        nonNil(tags),
				"draft":       draft,
			}
			if len(categories) > 0 {
				meta["categories"] = categories
			}
			doc, err := frontmatter.Renderer(contentFormat(*format))(meta, "# "+title+"\n\nWrite here.\n")
			if err != nil {
				return err
			}

			if err := os.MkdirAll(*dir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(*dir, slug+".md")
			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("%s already exists; pass --force to overwrite", path)
				}
				return err
			}
			if _, err := f.WriteString(doc); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&description, "description", "", "Short description")
	f.StringSliceVar(&tags, "tags", nil, "Comma separated tags")
	f.StringSliceVar(&categories, "categories", nil, "Comma separated categories")
	f.StringVar(&date, "date", "", "Publish date (YYYY-MM-DD, default today)")
	f.BoolVar(&draft, "draft", true, "Mark the post as a draft")
	f.BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
