// Package index builds the rule catalog: it walks a rules tree, projects each
// rule into an entry, sorts the entries and writes them as one JSON file.
package index

import (
	"context"
	"log/slog"
	"time"

	ixerrors "github.com/Aman-CERP/sigmaindex/internal/errors"
	"github.com/Aman-CERP/sigmaindex/internal/rules"
	"github.com/Aman-CERP/sigmaindex/internal/scanner"
)

// Result contains the outcome of a build.
type Result struct {
	// Entries is the sorted catalog.
	Entries []rules.Entry

	// Scanned is the number of candidate files visited.
	Scanned int

	// Skipped is the number of candidate files that produced no entry.
	Skipped int

	// Duration is the total build time.
	Duration time.Duration
}

// Builder assembles the rule catalog.
type Builder struct {
	baseURL  string
	patterns []string
	logger   *slog.Logger
	scanner  *scanner.Scanner
}

// Option configures a Builder.
type Option func(*Builder)

// WithBaseURL sets the link prefix for entry URLs.
func WithBaseURL(baseURL string) Option {
	return func(b *Builder) {
		b.baseURL = baseURL
	}
}

// WithPattern sets the file name patterns that mark rule files.
func WithPattern(patterns ...string) Option {
	return func(b *Builder) {
		b.patterns = patterns
	}
}

// WithLogger sets the logger for build diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithScanner sets the file scanner.
func WithScanner(s *scanner.Scanner) Option {
	return func(b *Builder) {
		b.scanner = s
	}
}

// NewBuilder creates a Builder that links entries into the upstream Sigma
// repository and reads *.yml files.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		baseURL:  rules.SigmaRepoWeb,
		patterns: []string{scanner.DefaultPattern},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.scanner == nil {
		b.scanner = scanner.New(b.logger)
	}
	return b
}

// Build walks root and returns the sorted catalog. Files that cannot be read,
// parsed or projected are skipped and logged at debug level.
// The only error returned is ctx's.
func (b *Builder) Build(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	result := &Result{Entries: []rules.Entry{}}

	files := b.scanner.Scan(ctx, scanner.ScanOptions{
		RootDir:         root,
		IncludePatterns: b.patterns,
	})

	for file := range files {
		result.Scanned++

		doc, err := rules.ParseFile(file.AbsPath)
		if err != nil {
			result.Skipped++
			b.logSkip(file.Path, err)
			continue
		}

		entry, ok := rules.Project(doc, file.Path, b.baseURL)
		if !ok {
			result.Skipped++
			b.logSkip(file.Path, ixerrors.RuleError(ixerrors.ErrCodeRuleUntitled, file.AbsPath, nil))
			continue
		}

		result.Entries = append(result.Entries, entry)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rules.Sort(result.Entries)
	result.Duration = time.Since(start)

	b.logger.Info("index_built",
		slog.String("root", root),
		slog.Int("entries", len(result.Entries)),
		slog.Int("scanned", result.Scanned),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// BuildIndex builds the catalog for root and writes it to outputPath,
// replacing any previous content.
func (b *Builder) BuildIndex(ctx context.Context, root, outputPath string) (*Result, error) {
	result, err := b.Build(ctx, root)
	if err != nil {
		return nil, err
	}

	n, err := Write(outputPath, result.Entries)
	if err != nil {
		return nil, err
	}

	b.logger.Info("index_written",
		slog.String("path", outputPath),
		slog.Int("bytes", n))

	return result, nil
}

func (b *Builder) logSkip(path string, err error) {
	b.logger.Debug("rule_skipped",
		slog.String("path", path),
		slog.String("code", ixerrors.GetCode(err)),
		slog.String("error", err.Error()))
}
