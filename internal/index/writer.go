package index

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	ixerrors "github.com/Aman-CERP/sigmaindex/internal/errors"
	"github.com/Aman-CERP/sigmaindex/internal/rules"
)

// Encode serializes entries as an indented JSON array. HTML characters and
// non-ASCII text, including U+2028 and U+2029, are left unescaped and there
// is no trailing newline.
func Encode(entries []rules.Entry) ([]byte, error) {
	if entries == nil {
		entries = []rules.Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, ixerrors.InternalError("failed to encode index", err)
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators rewrites the \u2028 and \u2029 escapes that
// encoding/json always emits back to the raw characters. Escape sequences are
// consumed in pairs so an escaped backslash followed by "u2028" is untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c != '\\' || i+1 >= len(data) {
			out = append(out, c)
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, c, data[i+1])
		i++
	}
	return out
}

// Write encodes entries and replaces the file at path with the result.
// Parent directories are created as needed. The data goes to a temp file
// in the same directory first, then is renamed over path.
// Returns the number of bytes written.
func Write(path string, entries []rules.Entry) (int, error) {
	data, err := Encode(entries)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, ixerrors.OutputError("failed to create output directory", err).
			WithDetail("path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, ixerrors.OutputError("failed to create temp file", err).
			WithDetail("path", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return 0, ixerrors.OutputError("failed to write index", err).
			WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, ixerrors.OutputError("failed to write index", err).
			WithDetail("path", path)
	}

	// CreateTemp uses 0600.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return 0, ixerrors.OutputError("failed to set index permissions", err).
			WithDetail("path", path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, ixerrors.OutputError("failed to replace index", err).
			WithDetail("path", path)
	}

	return len(data), nil
}
