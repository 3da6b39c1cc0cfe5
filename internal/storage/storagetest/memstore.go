// Package storagetest provides an in-memory ObjectStore for tests.
package storagetest

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/lakeread/lakeread/internal/storage"
)

// MemStore is an in-memory object store keyed by full URI.
type MemStore struct {
	Objects map[string][]byte
	// GetErr, when set, fails every Get with the given error.
	GetErr error
	// ListErr, when set, fails every List with the given error.
	ListErr error
	// Gets records the URIs fetched, in order.
	Gets []string
}

func NewMemStore() *MemStore {
	return &MemStore{Objects: map[string][]byte{}}
}

func (m *MemStore) Put(uri string, body []byte) {
	m.Objects[uri] = body
}

func (m *MemStore) Get(_ context.Context, uri string) (io.ReadCloser, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.Gets = append(m.Gets, uri)
	body, ok := m.Objects[uri]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(string(body))), nil
}

func (m *MemStore) Stat(_ context.Context, uri string) (storage.ObjectInfo, error) {
	body, ok := m.Objects[uri]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{URI: uri, Size: int64(len(body)), LastModified: time.Now().UTC()}, nil
}

func (m *MemStore) List(_ context.Context, prefixURI string) ([]storage.ObjectInfo, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var infos []storage.ObjectInfo
	for uri, body := range m.Objects {
		if strings.HasPrefix(uri, prefixURI) {
			infos = append(infos, storage.ObjectInfo{URI: uri, Size: int64(len(body))})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].URI < infos[j].URI })
	return infos, nil
}
