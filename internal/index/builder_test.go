package index

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/sigmaindex/internal/rules"
	"github.com/Aman-CERP/sigmaindex/internal/scanner"
)

// createRulesTree writes files under <tmp>/rules and returns that root.
func createRulesTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "rules")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
	return root
}

func readIndex(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestBuilder_Build_SkipsInvalidFiles(t *testing.T) {
	// Given: one good rule next to every kind of bad file
	root := createRulesTree(t, map[string]string{
		"windows/good.yml":     "title: Good Rule\nlevel: low\n",
		"windows/untitled.yml": "id: abc\nlevel: high\n",
		"windows/empty.yml":    "title: \"\"\n",
		"broken.yml":           "title: [oops\n",
		"list.yml":             "- title: A\n",
		"scalar.yml":           "hello\n",
		"blank.yml":            "",
		"notes.txt":            "title: Not a rule file\n",
	})

	// When: building
	result, err := NewBuilder().Build(context.Background(), root)

	// Then: only the good rule survives and the run does not abort
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "Good Rule", result.Entries[0].Title)
	assert.Equal(t, 7, result.Scanned)
	assert.Equal(t, 6, result.Skipped)
}

func TestBuilder_Build_SortsCaseInsensitive(t *testing.T) {
	root := createRulesTree(t, map[string]string{
		"a.yml": "title: Zebra\n",
		"b.yml": "title: apple\n",
		"c.yml": "title: Banana\n",
	})

	result, err := NewBuilder().Build(context.Background(), root)

	require.NoError(t, err)
	got := make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		got = append(got, e.Title)
	}
	assert.Equal(t, []string{"apple", "Banana", "Zebra"}, got)
}

func TestBuilder_Build_PathAndURL(t *testing.T) {
	root := createRulesTree(t, map[string]string{
		"windows/process_creation/x.yml": "title: X\n",
	})

	result, err := NewBuilder().Build(context.Background(), root)

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	entry := result.Entries[0]
	assert.Equal(t, "rules/windows/process_creation/x.yml", entry.Path)
	assert.Equal(t, "https://github.com/SigmaHQ/sigma/blob/master/rules/windows/process_creation/x.yml", entry.URL)
}

func TestBuilder_Build_Options(t *testing.T) {
	root := createRulesTree(t, map[string]string{
		"a.yml":  "title: A\n",
		"b.yaml": "title: B\n",
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := NewBuilder(
		WithBaseURL("https://example.test/"),
		WithPattern("*.yaml"),
		WithLogger(logger),
		WithScanner(scanner.New(logger)),
	)
	result, err := b.Build(context.Background(), root)

	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "B", result.Entries[0].Title)
	assert.Equal(t, "https://example.test/rules/b.yaml", result.Entries[0].URL)
	assert.Contains(t, logs.String(), "index_built")
}

func TestBuilder_Build_LogsSkippedFilesAtDebug(t *testing.T) {
	root := createRulesTree(t, map[string]string{
		"broken.yml":   "title: [oops\n",
		"untitled.yml": "id: x\n",
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewBuilder(WithLogger(logger)).Build(context.Background(), root)

	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "rule_skipped")
	assert.Contains(t, out, "ERR_202_RULE_MALFORMED")
	assert.Contains(t, out, "ERR_401_RULE_UNTITLED")
	assert.Contains(t, out, "rules/broken.yml")
}

func TestBuilder_Build_MissingRootIsEmpty(t *testing.T) {
	result, err := NewBuilder().Build(context.Background(), filepath.Join(t.TempDir(), "nope"))

	require.NoError(t, err)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
}

func TestBuilder_Build_CancelledContext(t *testing.T) {
	root := createRulesTree(t, map[string]string{"a.yml": "title: A\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewBuilder().Build(ctx, root)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestBuilder_BuildIndex_EmptyDirectory(t *testing.T) {
	// Given: a rules directory with no qualifying files
	root := createRulesTree(t, map[string]string{"README.md": "# none\n"})
	out := filepath.Join(t.TempDir(), "site", "data", "rules.json")

	// When: building the index
	result, err := NewBuilder().BuildIndex(context.Background(), root, out)

	// Then: an empty JSON array is written, parent directories included
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestBuilder_BuildIndex_NullsAndEmptyTags(t *testing.T) {
	root := createRulesTree(t, map[string]string{"m.yml": "title: Minimal\n"})
	out := filepath.Join(t.TempDir(), "rules.json")

	_, err := NewBuilder().BuildIndex(context.Background(), root, out)

	require.NoError(t, err)
	got := readIndex(t, out)
	require.Len(t, got, 1)
	entry := got[0]
	for _, key := range []string{"id", "status", "level", "logsource_product", "logsource_category", "logsource_service"} {
		value, present := entry[key]
		assert.True(t, present, "key %s must be present", key)
		assert.Nil(t, value, "key %s must be null", key)
	}
	assert.Equal(t, []any{}, entry["tags"])
	assert.Equal(t, "rules/m.yml", entry["path"])
}

func TestBuilder_BuildIndex_ReplacesPreviousOutput(t *testing.T) {
	// Given: a first run over two rules
	root := createRulesTree(t, map[string]string{
		"a.yml": "title: A\n",
		"b.yml": "title: B\n",
	})
	out := filepath.Join(t.TempDir(), "rules.json")
	_, err := NewBuilder().BuildIndex(context.Background(), root, out)
	require.NoError(t, err)
	require.Len(t, readIndex(t, out), 2)

	// When: the input set shrinks and the index is rebuilt
	require.NoError(t, os.Remove(filepath.Join(root, "b.yml")))
	_, err = NewBuilder().BuildIndex(context.Background(), root, out)

	// Then: no stale entry survives
	require.NoError(t, err)
	got := readIndex(t, out)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0]["title"])
}

func TestBuilder_BuildIndex_KeyOrder(t *testing.T) {
	root := createRulesTree(t, map[string]string{"x.yml": "title: X\n"})
	out := filepath.Join(t.TempDir(), "rules.json")

	_, err := NewBuilder().BuildIndex(context.Background(), root, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	keys := []string{`"title"`, `"id"`, `"status"`, `"level"`, `"tags"`,
		`"logsource_product"`, `"logsource_category"`, `"logsource_service"`, `"path"`, `"url"`}
	last := -1
	for _, key := range keys {
		idx := bytes.Index(data, []byte(key))
		require.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
}

func TestBuilder_BuildIndex_OutputUnwritable(t *testing.T) {
	root := createRulesTree(t, map[string]string{"x.yml": "title: X\n"})
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewBuilder().BuildIndex(context.Background(), root, filepath.Join(blocker, "rules.json"))

	require.Error(t, err)
}

func TestBuilder_Build_EntriesMatchRulesProjection(t *testing.T) {
	content := "title: T\ntags: [a, b]\nlogsource:\n  service: sysmon\n"
	root := createRulesTree(t, map[string]string{"t.yml": content})

	result, err := NewBuilder().Build(context.Background(), root)
	require.NoError(t, err)

	doc, err := rules.Parse([]byte(content))
	require.NoError(t, err)
	want, ok := rules.Project(doc, "rules/t.yml", rules.SigmaRepoWeb)
	require.True(t, ok)

	require.Len(t, result.Entries, 1)
	assert.Equal(t, want, result.Entries[0])
}
