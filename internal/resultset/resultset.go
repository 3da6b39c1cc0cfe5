// Package resultset materializes the output of one query execution into a
// single in-memory table and exposes both cursor-style and bulk access
// over it. Materialization happens exactly once, eagerly, at construction.
package resultset

import (
	"context"
	"log/slog"
	"time"

	"github.com/lakeread/lakeread/internal/convert"
	"github.com/lakeread/lakeread/internal/engine"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/observability"
	"github.com/lakeread/lakeread/internal/schema"
	"github.com/lakeread/lakeread/internal/storage"
	"github.com/lakeread/lakeread/internal/table"
	"github.com/lakeread/lakeread/internal/text"
	"github.com/lakeread/lakeread/internal/unload"
)

// DefaultArraySize is the fetch batch size used when none is configured.
const DefaultArraySize = 1000

// Config is the caller-facing tuning surface of one result set.
type Config struct {
	ArraySize     int
	KeepDefaultNA bool
	// NAValues are the recognized null markers for the text path; nil
	// means the default of treating only the empty string as null.
	NAValues []string
	Quoting  text.QuoteMode
	// Unload enables columnar materialization for UNLOAD statements.
	Unload bool
	// UnloadLocation overrides the read root derived from the manifest.
	UnloadLocation string
	// Engine is the columnar engine preference: "auto" or a name.
	Engine string
	// Options passes through to the columnar reader verbatim.
	Options map[string]any
}

// DefaultConfig returns the documented defaults: arraysize 1000, empty
// string as the only null marker, quoting mode All, auto engine.
func DefaultConfig() Config {
	return Config{
		ArraySize: DefaultArraySize,
		Quoting:   text.DefaultQuoting,
		Engine:    engine.Auto,
	}
}

// Params carries the collaborators of one result set.
type Params struct {
	Store       storage.ObjectStore
	Converter   convert.Converter
	Execution   exec.QueryExecution
	Description []exec.ColumnInfo
	Config      Config
	// Engines defaults to the registry-backed provider over Store.
	Engines engine.Provider
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// ResultSet is a materialized query result plus a forward-only cursor.
// It is not safe for concurrent use; the cursor index is unsynchronized.
type ResultSet struct {
	execution   exec.QueryExecution
	description []exec.ColumnInfo
	converter   convert.Converter
	cfg         Config
	store       storage.ObjectStore
	engines     engine.Provider
	logger      *slog.Logger

	tbl       table.Table
	manifest  []string
	cursor    int
	rownumber int64
	closed    bool
}

// New inspects the execution and materializes its output. All read and
// decode failures surface here, not from later cursor calls.
func New(ctx context.Context, params Params) (*ResultSet, error) {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg := params.Config
	if cfg.ArraySize <= 0 {
		cfg.ArraySize = DefaultArraySize
	}
	engines := params.Engines
	if engines == nil {
		engines = &engine.DefaultProvider{Store: params.Store, Logger: logger}
	}

	rs := &ResultSet{
		execution:   params.Execution,
		description: params.Description,
		converter:   params.Converter,
		cfg:         cfg,
		store:       params.Store,
		engines:     engines,
		logger:      logger,
		tbl:         table.Empty(),
	}

	shape := exec.Classify(params.Execution, cfg.Unload)
	start := time.Now()
	var err error
	switch shape {
	case exec.ShapeColumnar:
		err = rs.materializeColumnar(ctx)
	case exec.ShapeDelimited:
		err = rs.materializeDelimited(ctx)
	}
	observability.ObserveMaterialization(shape.String(), err, rs.tbl.RowCount(), time.Since(start))
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (rs *ResultSet) materializeDelimited(ctx context.Context) error {
	reader := &text.Reader{
		Store:    rs.store,
		Resolver: rs.resolver(),
		Logger:   rs.logger,
	}
	tbl, err := reader.Read(ctx, text.Options{
		Location:      rs.execution.OutputLocation,
		Quoting:       rs.cfg.Quoting,
		KeepDefaultNA: rs.cfg.KeepDefaultNA,
		NAValues:      rs.cfg.NAValues,
	})
	if err != nil {
		return err
	}
	rs.tbl = tbl
	return nil
}

func (rs *ResultSet) materializeColumnar(ctx context.Context) error {
	name, err := rs.engines.Resolve(rs.cfg.Engine)
	if err != nil {
		return err
	}
	eng, err := rs.engines.New(name)
	if err != nil {
		return err
	}

	manifest, err := unload.ReadManifest(ctx, rs.store, rs.execution.ManifestLocation())
	if err != nil {
		return err
	}
	rs.manifest = manifest
	observability.ObserveManifest(len(manifest))
	if len(manifest) == 0 {
		rs.tbl = table.Empty()
		rs.description = []exec.ColumnInfo{}
		return nil
	}

	req := engine.ReadRequest{
		Root:     unload.Root(manifest, rs.cfg.UnloadLocation),
		Manifest: manifest,
		Options:  rs.cfg.Options,
	}
	tbl, err := eng.ReadTable(ctx, req)
	if err != nil {
		return err
	}
	rs.tbl = tbl

	// The files' own embedded schema replaces the original description,
	// which may be stale relative to UNLOAD's actual output shape.
	if tbl.IsEmpty() {
		rs.description = []exec.ColumnInfo{}
		return nil
	}
	recovered, err := eng.ReadSchema(ctx, req)
	if err != nil {
		return err
	}
	if len(rs.description) > 0 && len(recovered) != len(rs.description) {
		rs.logger.Debug("recovered columnar schema diverges from column description",
			slog.Int("description_columns", len(rs.description)),
			slog.Int("recovered_columns", len(recovered)))
	}
	rs.description = recovered
	return nil
}

func (rs *ResultSet) resolver() *schema.Resolver {
	return &schema.Resolver{Description: rs.description, Converter: rs.converter}
}

// FetchOne returns the next row in description order, or nil when the
// cursor is exhausted. The row number does not advance on exhaustion.
func (rs *ResultSet) FetchOne() []any {
	if rs.cursor >= rs.tbl.RowCount() {
		return nil
	}
	row := rs.tbl.Rows[rs.cursor]
	rs.cursor++
	rs.rownumber++
	out := make([]any, len(row))
	copy(out, row)
	return out
}

// FetchMany returns up to size rows, defaulting to the configured
// arraysize when size is not positive.
func (rs *ResultSet) FetchMany(size int) [][]any {
	if size <= 0 {
		size = rs.cfg.ArraySize
	}
	var rows [][]any
	for range size {
		row := rs.FetchOne()
		if row == nil {
			break
		}
		rows = append(rows, row)
	}
	return rows
}

// FetchAll drains the remaining rows.
func (rs *ResultSet) FetchAll() [][]any {
	var rows [][]any
	for {
		row := rs.FetchOne()
		if row == nil {
			return rows
		}
		rows = append(rows, row)
	}
}

// Table returns the one materialized table, independent of how far the
// cursor has advanced.
func (rs *ResultSet) Table() table.Table {
	return rs.tbl
}

// RowNumber is the count of rows fetched so far.
func (rs *ResultSet) RowNumber() int64 {
	return rs.rownumber
}

// Description is the column description: the caller-supplied one for the
// text path, the schema recovered from the files for the columnar path.
func (rs *ResultSet) Description() []exec.ColumnInfo {
	return rs.description
}

func (rs *ResultSet) Dtypes() map[string]convert.Kind {
	return rs.resolver().Dtypes()
}

func (rs *ResultSet) Converters() map[string]convert.Func {
	return rs.resolver().Converters()
}

func (rs *ResultSet) ParseDates() []string {
	return rs.resolver().ParseDates()
}

// IsUnload reports whether this result came from an UNLOAD statement
// with columnar materialization enabled.
func (rs *ResultSet) IsUnload() bool {
	return rs.cfg.Unload && exec.IsUnloadQuery(rs.execution.Query)
}

// Close releases the table and the cached manifest. Idempotent; cursor
// operations after close return empty results without error.
func (rs *ResultSet) Close() {
	if rs.closed {
		return
	}
	rs.closed = true
	rs.tbl = table.Empty()
	rs.manifest = nil
	rs.cursor = 0
}
