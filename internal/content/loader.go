package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"

	"folio/internal/frontmatter"
	"folio/internal/observability"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// DefaultGlob matches markdown and MDX documents at any depth.
const DefaultGlob = "**/*.{md,mdx}"

// FileError records a document that could not be parsed.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Options configure a Loader.
type Options struct {
	Glob       string
	Format     frontmatter.Format
	Production bool
}

// Loader reads every matching document under a root.
type Loader struct {
	fsys   fs.FS
	opts   Options
	parse  func([]byte) (*frontmatter.Document, error)
	logger *slog.Logger
}

// NewLoader loads from the directory dir.
func NewLoader(dir string, opts Options) *Loader {
	return NewLoaderFS(os.DirFS(dir), opts)
}

// NewLoaderFS loads from fsys.
func NewLoaderFS(fsys fs.FS, opts Options) *Loader {
	if opts.Glob == "" {
		opts.Glob = DefaultGlob
	}
	return &Loader{
		fsys:   fsys,
		opts:   opts,
		parse:  frontmatter.Parser(opts.Format),
		logger: observability.Logger.With(slog.String("component", "content")),
	}
}

// Files returns the matching paths, sorted.
func (l *Loader) Files() ([]string, error) {
	matches, err := doublestar.Glob(l.fsys, l.opts.Glob, doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("glob %q: %w", l.opts.Glob, err)
	}
	return matches, nil
}

// Load parses every document concurrently. Files that fail to parse are
// skipped and reported through Collection.Skipped; read failures abort.
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}

	items := make([]*Item, len(files))
	problems := make([]error, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := fs.ReadFile(l.fsys, file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			doc, err := l.parse(raw)
			if err != nil {
				problems[i] = err
				return nil
			}
			items[i] = NewItem(file, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := make([]*Item, 0, len(items))
	var skipped []FileError
	for i, it := range items {
		if problems[i] != nil {
			skipped = append(skipped, FileError{Path: files[i], Err: problems[i]})
			l.logger.WarnContext(ctx, "skipping unparseable document",
				slog.String("path", files[i]),
				slog.String("error", problems[i].Error()),
			)
			continue
		}
		loaded = append(loaded, it)
	}

	c := NewCollection(loaded, l.opts.Production)
	c.skipped = skipped
	return c, nil
}

// Check loads every document and returns the parse failures along with
// the number of files examined.
func (l *Loader) Check(ctx context.Context) ([]FileError, int, error) {
	c, err := l.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	files, err := l.Files()
	if err != nil {
		return nil, 0, err
	}
	return c.Skipped(), len(files), nil
}
