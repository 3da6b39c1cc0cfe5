package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/lakeread/lakeread/internal/convert"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/table"
)

func newResolver() *Resolver {
	return &Resolver{
		Description: []exec.ColumnInfo{
			{Name: "id", Type: "bigint"},
			{Name: "name", Type: "varchar"},
			{Name: "active", Type: "boolean"},
			{Name: "created", Type: "timestamp"},
			{Name: "wakeup", Type: "time"},
			{Name: "unknown", Type: "hyperloglog"},
		},
		Converter: convert.NewDefault(),
	}
}

func TestDtypesRestrictedToRecognizedTypes(t *testing.T) {
	dtypes := newResolver().Dtypes()
	if dtypes["id"] != convert.KindInt64 {
		t.Fatalf("id kind = %v", dtypes["id"])
	}
	if dtypes["name"] != convert.KindString {
		t.Fatalf("name kind = %v", dtypes["name"])
	}
	if _, ok := dtypes["created"]; ok {
		t.Fatal("timestamp column must not appear in dtypes")
	}
	if _, ok := dtypes["unknown"]; ok {
		t.Fatal("unrecognized type must not appear in dtypes")
	}
}

func TestConvertersRestrictedToMappings(t *testing.T) {
	converters := newResolver().Converters()
	if _, ok := converters["active"]; !ok {
		t.Fatal("boolean column must have a converter")
	}
	if _, ok := converters["id"]; ok {
		t.Fatal("bigint column must not have a converter; it is a dtype cast")
	}
}

func TestParseDatesOrder(t *testing.T) {
	got := newResolver().ParseDates()
	want := []string{"created", "wakeup"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseDates() = %v, want %v", got, want)
	}
}

func TestTruncateTimes(t *testing.T) {
	description := []exec.ColumnInfo{
		{Name: "created", Type: "timestamp"},
		{Name: "wakeup", Type: "time"},
	}
	created := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)
	wakeup := time.Date(1900, time.January, 1, 7, 15, 30, 500000000, time.UTC)
	tbl := table.Table{
		Columns: []string{"created", "wakeup"},
		Rows: [][]any{
			{created, wakeup},
			{created, nil},
		},
	}

	tbl = TruncateTimes(tbl, description)

	if got := tbl.Rows[0][0]; !got.(time.Time).Equal(created) {
		t.Fatalf("timestamp column changed: %v", got)
	}
	want := time.Date(0, time.January, 1, 7, 15, 30, 500000000, time.UTC)
	if got := tbl.Rows[0][1]; !got.(time.Time).Equal(want) {
		t.Fatalf("time column = %v, want %v", got, want)
	}
	if tbl.Rows[1][1] != nil {
		t.Fatalf("nil time value changed: %v", tbl.Rows[1][1])
	}
}
