package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/lakeread/lakeread/internal/qerr"
)

func TestResolveAutoPicksFirstUsable(t *testing.T) {
	reg := map[string]registration{
		NameParquetGo: {probe: func() error { return errors.New("no parquet support") }},
		NameDuckDB:    {probe: func() error { return nil }},
	}
	name, err := resolveIn(reg, []string{NameParquetGo, NameDuckDB}, Auto)
	if err != nil {
		t.Fatalf("resolveIn() error = %v", err)
	}
	if name != NameDuckDB {
		t.Fatalf("resolved = %q", name)
	}
}

func TestResolveAutoNoUsableEngine(t *testing.T) {
	reg := map[string]registration{
		NameParquetGo: {probe: func() error { return errors.New("parquet decode unavailable") }},
		NameDuckDB:    {probe: func() error { return errors.New("duckdb bindings missing") }},
	}
	_, err := resolveIn(reg, []string{NameParquetGo, NameDuckDB}, Auto)
	var aerr *qerr.AvailabilityError
	if !errors.As(err, &aerr) {
		t.Fatalf("resolveIn() error = %v, want AvailabilityError", err)
	}
	message := err.Error()
	for _, want := range []string{NameParquetGo, NameDuckDB, "parquet decode unavailable", "duckdb bindings missing"} {
		if !strings.Contains(message, want) {
			t.Fatalf("availability message %q missing %q", message, want)
		}
	}
}

func TestResolveExplicitNameSkipsProbing(t *testing.T) {
	probed := false
	reg := map[string]registration{
		NameDuckDB: {probe: func() error { probed = true; return errors.New("boom") }},
	}
	name, err := resolveIn(reg, []string{NameDuckDB}, NameDuckDB)
	if err != nil {
		t.Fatalf("resolveIn() error = %v", err)
	}
	if name != NameDuckDB {
		t.Fatalf("resolved = %q", name)
	}
	if probed {
		t.Fatal("explicit engine name must not be probed")
	}
}

func TestResolveExplicitUnknownNamePassesThrough(t *testing.T) {
	name, err := resolveIn(map[string]registration{}, nil, "not-an-engine")
	if err != nil {
		t.Fatalf("resolveIn() error = %v", err)
	}
	if name != "not-an-engine" {
		t.Fatalf("resolved = %q", name)
	}
}

func TestNewUnknownEngineIsProgrammingError(t *testing.T) {
	_, err := New("not-an-engine", nil, nil)
	var perr *qerr.ProgrammingError
	if !errors.As(err, &perr) {
		t.Fatalf("New() error = %v, want ProgrammingError", err)
	}
}
