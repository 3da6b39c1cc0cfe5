// Package unload resolves the data manifest written by an UNLOAD
// statement: the ordered list of part-file URIs and the read root derived
// from it.
package unload

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lakeread/lakeread/internal/storage"
)

// ReadManifest returns the part-file URIs listed in the manifest object,
// one per non-blank line, in file order. A missing manifest means the
// query produced no parts: the manifest is empty, not an error.
func ReadManifest(ctx context.Context, store storage.ObjectStore, location string) ([]string, error) {
	if location == "" {
		return nil, nil
	}
	reader, err := store.Get(ctx, location)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data manifest %q: %w", location, err)
	}
	defer func() { _ = reader.Close() }()

	var entries []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read data manifest %q: %w", location, err)
	}
	return entries, nil
}

// Root resolves the directory all part files are read from: the explicit
// override when configured, else the parent directory of the manifest's
// first entry with a trailing separator. All parts are assumed co-located;
// the manifest otherwise only signals emptiness.
func Root(entries []string, override string) string {
	if override != "" {
		if !strings.HasSuffix(override, "/") {
			return override + "/"
		}
		return override
	}
	if len(entries) == 0 {
		return ""
	}
	return storage.ParentDir(entries[0])
}
