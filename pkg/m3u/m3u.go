// Package m3u parses the subset of the M3U playlist format the engine's
// import_m3u command needs: ordered file paths, resolved relative to the
// playlist's own directory. EXTINF directives, comments, and URL entries
// are ignored.
package m3u

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ParseFile reads playlistPath and returns the ordered list of resolved
// local file paths it references. Entries that fail to resolve (e.g.
// remote URLs) are dropped rather than erroring the whole parse.
func ParseFile(playlistPath string) ([]string, error) {
	f, err := os.Open(playlistPath)
	if err != nil {
		return nil, fmt.Errorf("m3u: open: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(playlistPath)

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if resolved, ok := resolveEntry(dir, line); ok {
			paths = append(paths, resolved)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("m3u: scan: %w", err)
	}
	return paths, nil
}

// resolveEntry classifies a playlist line as a local path entry and
// resolves it against dir. Any entry that parses as a URL with a scheme
// (http://, https://, etc.) is not a path entry and is dropped.
func resolveEntry(dir, entry string) (string, bool) {
	if u, err := url.Parse(entry); err == nil && u.Scheme != "" && u.Scheme != "file" {
		return "", false
	}

	path := entry
	if u, err := url.Parse(entry); err == nil && u.Scheme == "file" {
		path = u.Path
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path), true
	}
	return filepath.Clean(filepath.Join(dir, path)), true
}
