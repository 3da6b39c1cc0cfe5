package s3

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lakeread/lakeread/internal/storage"
)

func TestGetParsesURI(t *testing.T) {
	fake := &fakeClient{objects: map[string]string{"results/q-1.csv": "a,b\n"}}
	store, err := NewWithClient(fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	reader, err := store.Get(context.Background(), "s3://bucket-a/results/q-1.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer func() { _ = reader.Close() }()
	if fake.lastBucket != "bucket-a" || fake.lastKey != "results/q-1.csv" {
		t.Fatalf("bucket/key = %q/%q", fake.lastBucket, fake.lastKey)
	}
	body, _ := io.ReadAll(reader)
	if string(body) != "a,b\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestGetRejectsNonS3URI(t *testing.T) {
	store, err := NewWithClient(&fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "file:///tmp/out.csv"); err == nil {
		t.Fatal("expected error for non-s3 URI")
	}
}

func TestGetMissingObject(t *testing.T) {
	store, err := NewWithClient(&fakeClient{})
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}
	if _, err := store.Get(context.Background(), "s3://bucket-a/missing"); err != storage.ErrObjectNotFound {
		t.Fatalf("Get() error = %v, want ErrObjectNotFound", err)
	}
}

func TestListAssemblesURIs(t *testing.T) {
	fake := &fakeClient{objects: map[string]string{
		"out/part-0000.parquet": "x",
		"out/part-0001.parquet": "y",
		"other/file":            "z",
	}}
	store, err := NewWithClient(fake)
	if err != nil {
		t.Fatalf("NewWithClient() error = %v", err)
	}

	infos, err := store.List(context.Background(), "s3://bucket-a/out/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("List() count = %d", len(infos))
	}
	if infos[0].URI != "s3://bucket-a/out/part-0000.parquet" {
		t.Fatalf("first URI = %q", infos[0].URI)
	}
}

func TestParseEndpoint(t *testing.T) {
	endpoint, secure, err := parseEndpoint("https://minio.example.com", false)
	if err != nil {
		t.Fatalf("parseEndpoint() error = %v", err)
	}
	if endpoint != "minio.example.com" || !secure {
		t.Fatalf("endpoint/secure = %q/%v", endpoint, secure)
	}
}

type fakeClient struct {
	objects    map[string]string
	lastBucket string
	lastKey    string
}

func (f *fakeClient) Get(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	f.lastBucket = bucket
	f.lastKey = key
	body, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *fakeClient) Stat(_ context.Context, bucket, key string) (storage.ObjectInfo, error) {
	f.lastBucket = bucket
	f.lastKey = key
	body, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(body)), LastModified: time.Now().UTC()}, nil
}

func (f *fakeClient) List(_ context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	f.lastBucket = bucket
	var infos []storage.ObjectInfo
	for key, body := range f.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(body))})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
