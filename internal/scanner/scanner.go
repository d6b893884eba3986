package scanner

import (
	"context"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
)

// Scanner discovers rule files in a directory tree.
type Scanner struct {
	logger *slog.Logger
}

// New creates a new Scanner. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan returns a sequence of files under opts.RootDir whose base name matches
// one of the include patterns. Each call starts a fresh walk in lexical order.
//
// A root that is missing or not a directory yields nothing. Unreadable
// subdirectories are skipped. Iteration stops when ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) iter.Seq[FileInfo] {
	return func(yield func(FileInfo) bool) {
		absRoot, walkRoot, ok := s.resolveRoot(opts.RootDir)
		if !ok {
			return
		}

		patterns := opts.IncludePatterns
		if len(patterns) == 0 {
			patterns = []string{DefaultPattern}
		}

		// Paths are reported relative to the root's parent so they keep the
		// root directory name as their first segment, even when the root is
		// a symlink.
		rootName := filepath.Base(absRoot)

		_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if err != nil {
				return nil // Skip entries we can't access
			}

			if d.IsDir() {
				return nil
			}

			if !matchesAnyPattern(d.Name(), patterns) {
				return nil
			}

			rel, err := filepath.Rel(walkRoot, path)
			if err != nil {
				return nil
			}
			relPath := filepath.Join(rootName, rel)

			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}

			if !yield(FileInfo{
				Path:    filepath.ToSlash(relPath),
				AbsPath: filepath.Join(absRoot, rel),
				Size:    size,
			}) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// resolveRoot returns the absolute, cleaned root and the directory to walk.
// They differ when the root is a symlink: WalkDir does not follow a symlinked
// root, so the walk starts from its target.
func (s *Scanner) resolveRoot(rootDir string) (absRoot, walkRoot string, ok bool) {
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		s.logUnavailable(rootDir, err.Error())
		return "", "", false
	}

	walkRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		s.logUnavailable(absRoot, err.Error())
		return "", "", false
	}

	info, err := os.Stat(walkRoot)
	if err != nil {
		s.logUnavailable(absRoot, err.Error())
		return "", "", false
	}
	if !info.IsDir() {
		s.logUnavailable(absRoot, "not a directory")
		return "", "", false
	}

	return absRoot, walkRoot, true
}

func (s *Scanner) logUnavailable(root, reason string) {
	s.logger.Warn("rules_root_unavailable",
		slog.String("root", root),
		slog.String("error", reason))
}

// matchesAnyPattern checks if a base name matches any of the glob patterns.
func matchesAnyPattern(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
