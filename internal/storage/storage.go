package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjectInfo struct {
	URI          string
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ObjectStore reads query output from an object store. Locations are full
// URIs ("s3://bucket/key"); query results may reference more than one
// bucket, so the store is not bucket-scoped.
type ObjectStore interface {
	Get(ctx context.Context, uri string) (io.ReadCloser, error)
	Stat(ctx context.Context, uri string) (ObjectInfo, error)
	// List enumerates objects whose URI starts with the given prefix, in
	// lexical key order.
	List(ctx context.Context, prefixURI string) ([]ObjectInfo, error)
}
