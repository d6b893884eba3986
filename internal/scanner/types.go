// Package scanner discovers rule files under a directory tree.
// The walk is lazy: files are yielded as they are found and nothing is
// buffered between entries.
package scanner

// DefaultPattern matches Sigma rule files.
const DefaultPattern = "*.yml"

// FileInfo describes a discovered rule file.
type FileInfo struct {
	// Path is relative to the parent of the scanned root, slash-separated,
	// so it starts with the root directory's own name.
	Path string
	// AbsPath is the absolute path on disk.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// RootDir is the directory to scan.
	RootDir string

	// IncludePatterns are matched against base names (empty = DefaultPattern).
	IncludePatterns []string
}
