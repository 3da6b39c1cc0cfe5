// Package engine selects and constructs the columnar reading engine used
// for UNLOAD output. Engine implementations register themselves in their
// package init, database/sql driver style; callers resolve a concrete
// engine from a preference of "auto" or an explicit name.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/qerr"
	"github.com/lakeread/lakeread/internal/storage"
	"github.com/lakeread/lakeread/internal/table"
)

const (
	// Auto probes the known engines in order and picks the first usable.
	Auto = "auto"
	// NameParquetGo is the pure-Go parquet reader.
	NameParquetGo = "parquetgo"
	// NameDuckDB is the cgo duckdb read_parquet reader.
	NameDuckDB = "duckdb"
)

// autoOrder is the fixed probing order for Auto resolution.
var autoOrder = []string{NameParquetGo, NameDuckDB}

// ReadRequest describes one columnar read: the directory all part files
// live under (trailing separator), the manifest entries (consulted only by
// schema recovery), and caller options passed through verbatim. Storage
// and auth always come from the injected store, never from Options.
type ReadRequest struct {
	Root     string
	Manifest []string
	Options  map[string]any
}

// Engine reads a columnar fan-out and recovers its embedded schema.
type Engine interface {
	Name() string
	ReadTable(ctx context.Context, req ReadRequest) (table.Table, error)
	ReadSchema(ctx context.Context, req ReadRequest) ([]exec.ColumnInfo, error)
}

// Factory builds an engine bound to a store and logger.
type Factory func(store storage.ObjectStore, logger *slog.Logger) Engine

type registration struct {
	probe   func() error
	factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]registration{}
)

// Register makes an engine available under the given name. The probe
// reports whether the engine is usable in this process; it runs only
// during Auto resolution.
func Register(name string, probe func() error, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = registration{probe: probe, factory: factory}
}

// Resolve turns a caller preference into a concrete engine name. Auto
// probes the known engines in order and fails with an availability error
// enumerating every probe failure when none is usable. Explicit names are
// returned as given without probing; an unknown name surfaces later as a
// programming error when the engine is constructed for an actual read.
func Resolve(preference string) (string, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return resolveIn(registry, autoOrder, preference)
}

func resolveIn(reg map[string]registration, order []string, preference string) (string, error) {
	if preference != "" && preference != Auto {
		return preference, nil
	}
	var probes []qerr.EngineProbe
	for _, name := range order {
		entry, ok := reg[name]
		if !ok {
			probes = append(probes, qerr.EngineProbe{Name: name, Err: errNotRegistered})
			continue
		}
		if err := entry.probe(); err != nil {
			probes = append(probes, qerr.EngineProbe{Name: name, Err: err})
			continue
		}
		return name, nil
	}
	return "", &qerr.AvailabilityError{Probes: probes}
}

var errNotRegistered = &notRegisteredError{}

type notRegisteredError struct{}

func (*notRegisteredError) Error() string { return "engine is not linked into this binary" }

// New constructs the named engine. Unknown names are a programming error.
func New(name string, store storage.ObjectStore, logger *slog.Logger) (Engine, error) {
	registryMu.RLock()
	entry, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, qerr.NewProgrammingError("engine must be one of %s", strings.Join(autoOrder, ", "))
	}
	return entry.factory(store, logger), nil
}

// Provider is the capability the result set uses to resolve and build
// engines; the default is backed by the package registry.
type Provider interface {
	Resolve(preference string) (string, error)
	New(name string) (Engine, error)
}

// DefaultProvider binds the registry to one store and logger.
type DefaultProvider struct {
	Store  storage.ObjectStore
	Logger *slog.Logger
}

func (p *DefaultProvider) Resolve(preference string) (string, error) {
	return Resolve(preference)
}

func (p *DefaultProvider) New(name string) (Engine, error) {
	return New(name, p.Store, p.Logger)
}
