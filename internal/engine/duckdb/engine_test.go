package duckdb

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/lakeread/lakeread/internal/engine"
	"github.com/lakeread/lakeread/internal/storage/storagetest"
)

type row struct {
	ID    int64  `parquet:"id"`
	Value string `parquet:"value"`
}

func buildParquet(t *testing.T, rows []row) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[row](buf)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("writer.Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close() error = %v", err)
	}
	return buf.Bytes()
}

func newEngine(store *storagetest.MemStore) *Engine {
	return &Engine{Store: store, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func requireDuckDB(t *testing.T) {
	t.Helper()
	if err := probe(); err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
}

func TestReadTableScansAllParts(t *testing.T) {
	requireDuckDB(t)
	store := storagetest.NewMemStore()
	store.Put("s3://bkt/out/part-0000.parquet", buildParquet(t, []row{{ID: 1, Value: "a"}, {ID: 2, Value: "b"}}))
	store.Put("s3://bkt/out/part-0001.parquet", buildParquet(t, []row{{ID: 3, Value: "c"}}))

	tbl, err := newEngine(store).ReadTable(context.Background(), engine.ReadRequest{Root: "s3://bkt/out/"})
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if tbl.RowCount() != 3 {
		t.Fatalf("RowCount() = %d", tbl.RowCount())
	}
	if tbl.Columns[0] != "id" || tbl.Columns[1] != "value" {
		t.Fatalf("columns = %v", tbl.Columns)
	}
	if tbl.Rows[0][0] != int64(1) || tbl.Rows[0][1] != "a" {
		t.Fatalf("first row = %v", tbl.Rows[0])
	}
}

func TestReadTableEmptyRoot(t *testing.T) {
	requireDuckDB(t)
	tbl, err := newEngine(storagetest.NewMemStore()).ReadTable(context.Background(), engine.ReadRequest{Root: "s3://bkt/out/"})
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if !tbl.IsEmpty() {
		t.Fatalf("RowCount() = %d, want empty", tbl.RowCount())
	}
}

func TestReadSchemaFromFirstManifestEntry(t *testing.T) {
	requireDuckDB(t)
	store := storagetest.NewMemStore()
	store.Put("s3://bkt/out/part-0000.parquet", buildParquet(t, []row{{ID: 1, Value: "a"}}))

	columns, err := newEngine(store).ReadSchema(context.Background(), engine.ReadRequest{
		Root:     "s3://bkt/out/",
		Manifest: []string{"s3://bkt/out/part-0000.parquet"},
	})
	if err != nil {
		t.Fatalf("ReadSchema() error = %v", err)
	}
	if len(columns) != 2 {
		t.Fatalf("columns = %v", columns)
	}
	if columns[0].Name != "id" || columns[0].Type != "bigint" {
		t.Fatalf("id column = %+v", columns[0])
	}
	if columns[1].Name != "value" || columns[1].Type != "varchar" {
		t.Fatalf("value column = %+v", columns[1])
	}
}

func TestLogicalTypeName(t *testing.T) {
	cases := map[string]string{
		"VARCHAR":                  "varchar",
		"BIGINT":                   "bigint",
		"DOUBLE":                   "double",
		"DECIMAL(10,2)":            "decimal",
		"TIMESTAMP WITH TIME ZONE": "timestamp with time zone",
		"TIMESTAMP_MS":             "timestamp",
		"BLOB":                     "varbinary",
		"STRUCT(a INTEGER)":        "struct(a integer)",
	}
	for input, want := range cases {
		if got := logicalTypeName(input); got != want {
			t.Fatalf("logicalTypeName(%q) = %q, want %q", input, got, want)
		}
	}
}
