// Package text materializes the row-oriented delimited output of ordinary
// SELECT execution: tab-separated headerless ".txt" files and
// comma-separated headered ".csv" files.
package text

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lakeread/lakeread/internal/convert"
	"github.com/lakeread/lakeread/internal/qerr"
	"github.com/lakeread/lakeread/internal/schema"
	"github.com/lakeread/lakeread/internal/storage"
	"github.com/lakeread/lakeread/internal/table"
)

// QuoteMode is the numeric quoting code of the delimited result writer.
// Only None changes read behavior: quote characters are taken literally.
type QuoteMode int

const (
	QuoteMinimal    QuoteMode = 0
	QuoteAll        QuoteMode = 1
	QuoteNonNumeric QuoteMode = 2
	QuoteNone       QuoteMode = 3
)

// DefaultQuoting matches how the query engine writes csv results: every
// field quoted.
const DefaultQuoting = QuoteAll

// defaultNATokens is the library null-token list applied only when
// KeepDefaultNA is set. An empty string is always covered by the default
// NAValues instead.
var defaultNATokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "<NA>", "N/A", "NA", "NULL", "NaN",
	"None", "n/a", "nan", "null",
}

// Options configures one delimited read.
type Options struct {
	Location      string
	Quoting       QuoteMode
	KeepDefaultNA bool
	// NAValues are the recognized null markers. A nil slice means the
	// default of treating only the empty string as null.
	NAValues []string
}

// Reader materializes a delimited result file into a table.
type Reader struct {
	Store    storage.ObjectStore
	Resolver *schema.Resolver
	Logger   *slog.Logger
}

// Read builds the table for the given output location. A non-csv/txt
// suffix or a zero-length object is an empty table, not an error; an
// unset location is a programming error.
func (r *Reader) Read(ctx context.Context, opts Options) (table.Table, error) {
	if opts.Location == "" {
		return table.Empty(), qerr.NewProgrammingError("output location is unset")
	}
	isTxt := storage.HasSuffixFold(opts.Location, ".txt")
	isCSV := storage.HasSuffixFold(opts.Location, ".csv")
	if !isTxt && !isCSV {
		return table.Empty(), nil
	}

	info, err := r.Store.Stat(ctx, opts.Location)
	if err != nil {
		return table.Empty(), r.fail(opts.Location, "stat query result", err)
	}
	if info.Size == 0 {
		return table.Empty(), nil
	}

	reader, err := r.Store.Get(ctx, opts.Location)
	if err != nil {
		return table.Empty(), r.fail(opts.Location, "read query result", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return table.Empty(), r.fail(opts.Location, "read query result", err)
	}

	sep := ','
	if isTxt {
		sep = '\t'
	}
	records, err := parseRecords(string(data), sep, opts.Quoting)
	if err != nil {
		return table.Empty(), r.fail(opts.Location, "parse query result", err)
	}

	names := make([]string, 0, len(r.Resolver.Description))
	for _, col := range r.Resolver.Description {
		names = append(names, col.Name)
	}
	if isCSV && len(records) > 0 {
		header := records[0]
		records = records[1:]
		if len(names) == 0 {
			names = header
		} else if len(header) != len(names) {
			r.Logger.Debug("csv header width differs from column description",
				slog.String("location", opts.Location),
				slog.Int("header_fields", len(header)),
				slog.Int("description_columns", len(names)))
		}
	}

	tbl, err := r.buildTable(names, records, opts)
	if err != nil {
		return table.Empty(), r.fail(opts.Location, "parse query result", err)
	}
	return schema.TruncateTimes(tbl, r.Resolver.Description), nil
}

func (r *Reader) fail(location, op string, err error) error {
	r.Logger.Error("failed to read delimited query result",
		slog.String("location", location), slog.Any("error", err))
	return qerr.NewOperationalError(op, location, err)
}

func (r *Reader) buildTable(names []string, records [][]string, opts Options) (table.Table, error) {
	naSet := nullMarkers(opts)
	converters := r.Resolver.Converters()
	dtypes := r.Resolver.Dtypes()
	parseDates := make(map[string]struct{})
	for _, name := range r.Resolver.ParseDates() {
		parseDates[name] = struct{}{}
	}

	rows := make([][]any, 0, len(records))
	for _, record := range records {
		row := make([]any, len(names))
		if record == nil {
			// Blank line: a null-valued row, not end of data.
			rows = append(rows, row)
			continue
		}
		for i, name := range names {
			if i >= len(record) {
				continue
			}
			field := record[i]
			if _, isNull := naSet[field]; isNull {
				continue
			}
			value, err := convertField(name, field, converters, dtypes, parseDates)
			if err != nil {
				return table.Empty(), fmt.Errorf("column %q: %w", name, err)
			}
			row[i] = value
		}
		rows = append(rows, row)
	}
	return table.Table{Columns: names, Rows: rows}, nil
}

func convertField(name, field string, converters map[string]convert.Func, dtypes map[string]convert.Kind, parseDates map[string]struct{}) (any, error) {
	if fn, ok := converters[name]; ok {
		return fn(field)
	}
	if _, ok := parseDates[name]; ok {
		ts, err := ParseDateTime(field)
		if err != nil {
			return nil, err
		}
		return ts, nil
	}
	if kind, ok := dtypes[name]; ok {
		return convert.Cast(field, kind)
	}
	return field, nil
}

func nullMarkers(opts Options) map[string]struct{} {
	markers := make(map[string]struct{})
	values := opts.NAValues
	if values == nil {
		values = []string{""}
	}
	for _, v := range values {
		markers[v] = struct{}{}
	}
	if opts.KeepDefaultNA {
		for _, v := range defaultNATokens {
			markers[v] = struct{}{}
		}
	}
	return markers
}

// parseRecords splits the file into records, one per line. Blank lines
// become nil records. A record whose quoted field spans lines is
// continued until its quotes balance, unless quoting is None.
func parseRecords(data string, sep rune, quoting QuoteMode) ([][]string, error) {
	data = strings.TrimSuffix(data, "\n")
	if data == "" {
		return nil, nil
	}
	lines := strings.Split(data, "\n")

	var records [][]string
	pending := ""
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		candidate := line
		if pending != "" {
			candidate = pending + "\n" + line
		}
		if candidate == "" {
			records = append(records, nil)
			continue
		}
		if quoting == QuoteNone {
			records = append(records, strings.Split(candidate, string(sep)))
			continue
		}
		record, err := parseLine(candidate, sep)
		if err != nil {
			if errors.Is(err, csv.ErrQuote) && i < len(lines)-1 {
				pending = candidate
				continue
			}
			return nil, err
		}
		records = append(records, record)
		pending = ""
	}
	if pending != "" {
		return nil, fmt.Errorf("unterminated quoted field")
	}
	return records, nil
}

func parseLine(line string, sep rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	return reader.Read()
}

// datetimeLayouts covers the textual encodings of the recognized
// date/time logical types, most specific first.
var datetimeLayouts = []string{
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05.999999999 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"15:04:05.999999999 MST",
	"15:04:05.999999999",
}

// ParseDateTime parses one date/time/timestamp field. Bare times come
// back anchored at the zero date; the caller's truncation pass relies on
// that.
func ParseDateTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range datetimeLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse datetime %q", value)
}
