package storage

import (
	"fmt"
	"strings"
)

// ParseURI splits an "s3://bucket/key" URI into bucket and key. The key
// may be empty (bucket root); the bucket may not.
func ParseURI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimSpace(uri)
	rest, ok := strings.CutPrefix(trimmed, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in URI: %q", uri)
	}
	return bucket, key, nil
}

// ParentDir returns the directory of an object URI with a trailing slash.
// "s3://bkt/out/part-0000.parquet" becomes "s3://bkt/out/".
func ParentDir(uri string) string {
	idx := strings.LastIndex(uri, "/")
	if idx < 0 {
		return uri
	}
	return uri[:idx+1]
}

// HasSuffixFold reports whether the URI path ends with the suffix,
// case-insensitively.
func HasSuffixFold(uri, suffix string) bool {
	if len(uri) < len(suffix) {
		return false
	}
	return strings.EqualFold(uri[len(uri)-len(suffix):], suffix)
}
