// Package parquetgo reads an UNLOAD parquet fan-out with the pure-Go
// parquet-go library. Part files under the read root are fetched
// concurrently and decoded row by row; nulls materialize as nil, matching
// the duckdb engine's convention.
package parquetgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/format"
	"golang.org/x/sync/errgroup"

	"github.com/lakeread/lakeread/internal/engine"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/qerr"
	"github.com/lakeread/lakeread/internal/storage"
	"github.com/lakeread/lakeread/internal/table"
)

func init() {
	engine.Register(engine.NameParquetGo,
		func() error { return nil },
		func(store storage.ObjectStore, logger *slog.Logger) engine.Engine {
			return &Engine{Store: store, Logger: logger}
		})
}

type Engine struct {
	Store  storage.ObjectStore
	Logger *slog.Logger
}

func (e *Engine) Name() string {
	return engine.NameParquetGo
}

func (e *Engine) ReadTable(ctx context.Context, req engine.ReadRequest) (table.Table, error) {
	uris, err := e.listParts(ctx, req.Root)
	if err != nil {
		return table.Empty(), e.fail(req.Root, err)
	}
	if len(uris) == 0 {
		return table.Empty(), nil
	}

	limit := 1
	if useThreads(req.Options) {
		limit = runtime.GOMAXPROCS(0)
	}

	type filePart struct {
		columns []string
		rows    [][]any
	}
	parts := make([]filePart, len(uris))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, uri := range uris {
		group.Go(func() error {
			columns, rows, err := e.readPart(groupCtx, uri)
			if err != nil {
				return fmt.Errorf("part %q: %w", uri, err)
			}
			parts[i] = filePart{columns: columns, rows: rows}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return table.Empty(), e.fail(req.Root, err)
	}

	result := table.Table{Columns: parts[0].columns}
	for _, part := range parts {
		result.Rows = append(result.Rows, part.rows...)
	}
	return result, nil
}

func (e *Engine) ReadSchema(ctx context.Context, req engine.ReadRequest) ([]exec.ColumnInfo, error) {
	uris, err := e.listParts(ctx, req.Root)
	if err != nil {
		return nil, e.fail(req.Root, err)
	}
	if len(uris) == 0 {
		return nil, e.fail(req.Root, fmt.Errorf("no part files under root"))
	}
	file, err := e.openPart(ctx, uris[0])
	if err != nil {
		return nil, e.fail(uris[0], err)
	}
	fields := file.Schema().Fields()
	columns := make([]exec.ColumnInfo, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, exec.ColumnInfo{Name: field.Name(), Type: logicalTypeName(field)})
	}
	return columns, nil
}

func (e *Engine) fail(location string, err error) error {
	e.Logger.Error("failed to read parquet fan-out",
		slog.String("location", location), slog.Any("error", err))
	return qerr.NewOperationalError("read parquet", location, err)
}

func (e *Engine) listParts(ctx context.Context, root string) ([]string, error) {
	infos, err := e.Store.List(ctx, root)
	if err != nil {
		return nil, err
	}
	var uris []string
	for _, info := range infos {
		if storage.HasSuffixFold(info.URI, ".parquet") {
			uris = append(uris, info.URI)
		}
	}
	return uris, nil
}

func (e *Engine) openPart(ctx context.Context, uri string) (*parquet.File, error) {
	reader, err := e.Store.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	file, err := parquet.OpenFile(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	return file, nil
}

func (e *Engine) readPart(ctx context.Context, uri string) ([]string, [][]any, error) {
	file, err := e.openPart(ctx, uri)
	if err != nil {
		return nil, nil, err
	}

	fields := file.Schema().Fields()
	columns := make([]string, 0, len(fields))
	for _, field := range fields {
		columns = append(columns, field.Name())
	}

	var out [][]any
	for _, rowGroup := range file.RowGroups() {
		rows := rowGroup.Rows()
		buf := make([]parquet.Row, 128)
		for {
			n, readErr := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				values := make([]any, len(fields))
				for _, value := range row {
					idx := value.Column()
					if idx < 0 || idx >= len(fields) {
						continue
					}
					values[idx] = fieldValue(value, fields[idx])
				}
				out = append(out, values)
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				_ = rows.Close()
				return nil, nil, fmt.Errorf("read parquet rows: %w", readErr)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, nil, fmt.Errorf("close parquet rows: %w", err)
		}
	}
	return columns, out, nil
}

func useThreads(options map[string]any) bool {
	value, ok := options["use_threads"]
	if !ok {
		return true
	}
	enabled, ok := value.(bool)
	return !ok || enabled
}

var epochDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

func fieldValue(value parquet.Value, field parquet.Field) any {
	if value.IsNull() {
		return nil
	}
	logical := field.Type().LogicalType()
	switch value.Kind() {
	case parquet.Boolean:
		return value.Boolean()
	case parquet.Int32:
		if logical != nil && logical.Date != nil {
			return epochDate.AddDate(0, 0, int(value.Int32()))
		}
		if logical != nil && logical.Time != nil {
			return timeOfDay(int64(value.Int32()), logical.Time.Unit)
		}
		return int64(value.Int32())
	case parquet.Int64:
		if logical != nil && logical.Timestamp != nil {
			return timestampValue(value.Int64(), logical.Timestamp.Unit)
		}
		if logical != nil && logical.Time != nil {
			return timeOfDay(value.Int64(), logical.Time.Unit)
		}
		return value.Int64()
	case parquet.Float:
		return float64(value.Float())
	case parquet.Double:
		return value.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if logical != nil && (logical.UTF8 != nil || logical.Json != nil || logical.Enum != nil) {
			return string(value.ByteArray())
		}
		raw := value.ByteArray()
		copied := make([]byte, len(raw))
		copy(copied, raw)
		return copied
	default:
		return value.String()
	}
}

func timestampValue(ticks int64, unit format.TimeUnit) time.Time {
	switch {
	case unit.Millis != nil:
		return time.UnixMilli(ticks).UTC()
	case unit.Micros != nil:
		return time.UnixMicro(ticks).UTC()
	default:
		return time.Unix(0, ticks).UTC()
	}
}

// timeOfDay converts a parquet TIME value to a time.Time anchored at the
// zero date, mirroring the truncation convention of the text path.
func timeOfDay(ticks int64, unit format.TimeUnit) time.Time {
	var nanos int64
	switch {
	case unit.Millis != nil:
		nanos = ticks * int64(time.Millisecond)
	case unit.Micros != nil:
		nanos = ticks * int64(time.Microsecond)
	default:
		nanos = ticks
	}
	return time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(nanos))
}

func logicalTypeName(field parquet.Field) string {
	fieldType := field.Type()
	logical := fieldType.LogicalType()
	if logical != nil {
		switch {
		case logical.UTF8 != nil:
			return "varchar"
		case logical.Json != nil:
			return "json"
		case logical.Decimal != nil:
			return "decimal"
		case logical.Date != nil:
			return "date"
		case logical.Time != nil:
			return "time"
		case logical.Timestamp != nil:
			return "timestamp"
		}
	}
	switch fieldType.Kind() {
	case parquet.Boolean:
		return "boolean"
	case parquet.Int32:
		return "integer"
	case parquet.Int64:
		return "bigint"
	case parquet.Float:
		return "float"
	case parquet.Double:
		return "double"
	default:
		return "varbinary"
	}
}
