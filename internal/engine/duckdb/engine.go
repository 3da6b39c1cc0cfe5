// Package duckdb reads an UNLOAD parquet fan-out through an in-memory
// duckdb instance: part files are staged in a temp directory and scanned
// with read_parquet. Requires the cgo duckdb bindings; the registry probe
// fails on platforms without them.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/lakeread/lakeread/internal/engine"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/qerr"
	"github.com/lakeread/lakeread/internal/storage"
	"github.com/lakeread/lakeread/internal/table"
)

func init() {
	engine.Register(engine.NameDuckDB, probe,
		func(store storage.ObjectStore, logger *slog.Logger) engine.Engine {
			return &Engine{Store: store, Logger: logger}
		})
}

func probe() error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.Ping()
}

type Engine struct {
	Store  storage.ObjectStore
	Logger *slog.Logger
}

func (e *Engine) Name() string {
	return engine.NameDuckDB
}

func (e *Engine) ReadTable(ctx context.Context, req engine.ReadRequest) (table.Table, error) {
	infos, err := e.Store.List(ctx, req.Root)
	if err != nil {
		return table.Empty(), e.fail(req.Root, err)
	}
	var uris []string
	for _, info := range infos {
		if storage.HasSuffixFold(info.URI, ".parquet") {
			uris = append(uris, info.URI)
		}
	}
	if len(uris) == 0 {
		return table.Empty(), nil
	}

	workDir, err := os.MkdirTemp("", "lakeread-unload-")
	if err != nil {
		return table.Empty(), e.fail(req.Root, fmt.Errorf("create staging dir: %w", err))
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	localPaths := make([]string, 0, len(uris))
	for i, uri := range uris {
		localPath := filepath.Join(workDir, fmt.Sprintf("part_%05d.parquet", i))
		if err := e.stage(ctx, uri, localPath); err != nil {
			return table.Empty(), e.fail(req.Root, err)
		}
		localPaths = append(localPaths, localPath)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return table.Empty(), e.fail(req.Root, fmt.Errorf("open duckdb: %w", err))
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM read_parquet(%s)`, quoteStringArray(localPaths)))
	if err != nil {
		return table.Empty(), e.fail(req.Root, fmt.Errorf("scan parquet: %w", err))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return table.Empty(), e.fail(req.Root, fmt.Errorf("scan columns: %w", err))
	}

	result := table.Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return table.Empty(), e.fail(req.Root, fmt.Errorf("scan row: %w", err))
		}
		result.Rows = append(result.Rows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return table.Empty(), e.fail(req.Root, fmt.Errorf("iterate rows: %w", err))
	}
	return result, nil
}

func (e *Engine) ReadSchema(ctx context.Context, req engine.ReadRequest) ([]exec.ColumnInfo, error) {
	if len(req.Manifest) == 0 {
		return nil, qerr.NewProgrammingError("data manifest is empty")
	}
	first := req.Manifest[0]

	workDir, err := os.MkdirTemp("", "lakeread-schema-")
	if err != nil {
		return nil, e.fail(first, fmt.Errorf("create staging dir: %w", err))
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	localPath := filepath.Join(workDir, "schema.parquet")
	if err := e.stage(ctx, first, localPath); err != nil {
		return nil, e.fail(first, err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, e.fail(first, fmt.Errorf("open duckdb: %w", err))
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`DESCRIBE SELECT * FROM read_parquet(%s)`, quoteString(localPath)))
	if err != nil {
		return nil, e.fail(first, fmt.Errorf("describe parquet: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var columns []exec.ColumnInfo
	for rows.Next() {
		var name, columnType string
		var null, key, defaultValue, extra sql.NullString
		if err := rows.Scan(&name, &columnType, &null, &key, &defaultValue, &extra); err != nil {
			return nil, e.fail(first, fmt.Errorf("scan schema row: %w", err))
		}
		columns = append(columns, exec.ColumnInfo{Name: name, Type: logicalTypeName(columnType)})
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail(first, fmt.Errorf("iterate schema rows: %w", err))
	}
	return columns, nil
}

func (e *Engine) fail(location string, err error) error {
	e.Logger.Error("failed to read parquet fan-out",
		slog.String("location", location), slog.Any("error", err))
	return qerr.NewOperationalError("read parquet", location, err)
}

func (e *Engine) stage(ctx context.Context, uri, localPath string) error {
	reader, err := e.Store.Get(ctx, uri)
	if err != nil {
		return fmt.Errorf("get object %q: %w", uri, err)
	}
	defer func() { _ = reader.Close() }()
	if err := writeFile(localPath, reader); err != nil {
		return fmt.Errorf("stage part %q: %w", uri, err)
	}
	return nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

func quoteStringArray(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, quoteString(value))
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

// logicalTypeName maps a duckdb column type to the query engine's logical
// type vocabulary.
func logicalTypeName(columnType string) string {
	upper := strings.ToUpper(strings.TrimSpace(columnType))
	if strings.HasPrefix(upper, "DECIMAL") {
		return "decimal"
	}
	switch upper {
	case "BOOLEAN":
		return "boolean"
	case "TINYINT":
		return "tinyint"
	case "SMALLINT":
		return "smallint"
	case "INTEGER":
		return "integer"
	case "BIGINT", "HUGEINT":
		return "bigint"
	case "FLOAT", "REAL":
		return "float"
	case "DOUBLE":
		return "double"
	case "VARCHAR":
		return "varchar"
	case "BLOB":
		return "varbinary"
	case "DATE":
		return "date"
	case "TIME":
		return "time"
	case "TIMESTAMP WITH TIME ZONE", "TIMESTAMPTZ":
		return "timestamp with time zone"
	case "TIMESTAMP", "TIMESTAMP_S", "TIMESTAMP_MS", "TIMESTAMP_NS":
		return "timestamp"
	default:
		return strings.ToLower(columnType)
	}
}
