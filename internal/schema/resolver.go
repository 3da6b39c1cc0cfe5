// Package schema derives, from the column description and the injected
// converter capability, the per-column materialization rules: target
// physical kinds, parsing functions and date-parsed columns.
package schema

import (
	"time"

	"github.com/lakeread/lakeread/internal/convert"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/table"
)

// parseDateTypes is the fixed set of logical types parsed as timestamps.
var parseDateTypes = map[string]struct{}{
	"date":                     {},
	"time":                     {},
	"time with time zone":      {},
	"timestamp":                {},
	"timestamp with time zone": {},
}

// timeOnlyTypes are the logical types whose parsed timestamps must be
// truncated down to their time-of-day component.
var timeOnlyTypes = map[string]struct{}{
	"time":                {},
	"time with time zone": {},
}

// Resolver computes the three materialization views. Each view is
// recomputed on access; the computation is cheap and side-effect-free.
type Resolver struct {
	Description []exec.ColumnInfo
	Converter   convert.Converter
}

// Dtypes maps column names to target physical kinds, restricted to
// columns whose logical type the converter recognizes.
func (r *Resolver) Dtypes() map[string]convert.Kind {
	types := r.Converter.Types()
	dtypes := make(map[string]convert.Kind)
	for _, col := range r.Description {
		if kind, ok := types[col.Type]; ok {
			dtypes[col.Name] = kind
		}
	}
	return dtypes
}

// Converters maps column names to parsing functions, restricted to
// columns whose logical type has a registered conversion.
func (r *Resolver) Converters() map[string]convert.Func {
	mappings := r.Converter.Mappings()
	converters := make(map[string]convert.Func)
	for _, col := range r.Description {
		if _, ok := mappings[col.Type]; ok {
			converters[col.Name] = r.Converter.Get(col.Type)
		}
	}
	return converters
}

// ParseDates lists, in description order, the columns parsed as
// timestamps.
func (r *Resolver) ParseDates() []string {
	var names []string
	for _, col := range r.Description {
		if _, ok := parseDateTypes[col.Type]; ok {
			names = append(names, col.Name)
		}
	}
	return names
}

// TimeColumns lists the columns whose logical type is time-of-day only.
func (r *Resolver) TimeColumns() []string {
	var names []string
	for _, col := range r.Description {
		if _, ok := timeOnlyTypes[col.Type]; ok {
			names = append(names, col.Name)
		}
	}
	return names
}

// TruncateTimes strips the date component from time-of-day columns.
// Parsing a bare time as a timestamp anchors it to an arbitrary date
// (1900-01-01 in some libraries, year 0 in Go); after this pass the
// values carry only hour/minute/second/fraction, anchored at the zero
// date.
func TruncateTimes(tbl table.Table, description []exec.ColumnInfo) table.Table {
	resolver := Resolver{Description: description}
	times := resolver.TimeColumns()
	if len(times) == 0 {
		return tbl
	}
	indexes := make([]int, 0, len(times))
	for _, name := range times {
		for i, col := range tbl.Columns {
			if col == name {
				indexes = append(indexes, i)
			}
		}
	}
	for _, row := range tbl.Rows {
		for _, idx := range indexes {
			if idx >= len(row) {
				continue
			}
			if ts, ok := row[idx].(time.Time); ok {
				row[idx] = TimeOfDay(ts)
			}
		}
	}
	return tbl
}

// TimeOfDay returns the time-of-day component of a timestamp, anchored at
// the zero date in the timestamp's location.
func TimeOfDay(ts time.Time) time.Time {
	return time.Date(0, time.January, 1, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), ts.Location())
}
