package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lakeread/lakeread/internal/config"
	"github.com/lakeread/lakeread/internal/convert"
	"github.com/lakeread/lakeread/internal/exec"
	"github.com/lakeread/lakeread/internal/observability"
	"github.com/lakeread/lakeread/internal/resultset"
	s3store "github.com/lakeread/lakeread/internal/storage/s3"
	"github.com/lakeread/lakeread/internal/text"

	_ "github.com/lakeread/lakeread/internal/engine/duckdb"
	_ "github.com/lakeread/lakeread/internal/engine/parquetgo"
)

func main() {
	var (
		state          = flag.String("state", string(exec.StateSucceeded), "execution state reported upstream")
		outputLocation = flag.String("output-location", "", "object store URI of the query output")
		query          = flag.String("query", "", "SQL text of the executed query")
		columns        = flag.String("columns", "", "column description as name:type,name:type,...")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv("lakeread")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stderr)
	store, err := s3store.New(s3store.Config{
		Endpoint:        cfg.ObjectStore.Endpoint,
		Region:          cfg.ObjectStore.Region,
		Profile:         cfg.ObjectStore.Profile,
		AccessKeyID:     cfg.ObjectStore.AccessKeyID,
		SecretAccessKey: cfg.ObjectStore.SecretAccessKey,
		UseSSL:          cfg.ObjectStore.UseSSL,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	description, err := parseColumns(*columns)
	if err != nil {
		logger.Error("invalid -columns value", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rs, err := resultset.New(ctx, resultset.Params{
		Store:     store,
		Converter: convert.NewDefault(),
		Execution: exec.QueryExecution{
			Query:          *query,
			State:          exec.State(strings.ToUpper(*state)),
			OutputLocation: *outputLocation,
		},
		Description: description,
		Config: resultset.Config{
			ArraySize:      cfg.Result.ArraySize,
			KeepDefaultNA:  cfg.Result.KeepDefaultNA,
			NAValues:       cfg.Result.NAValues,
			Quoting:        text.QuoteMode(cfg.Result.Quoting),
			Unload:         cfg.Result.Unload,
			UnloadLocation: cfg.Result.UnloadLocation,
			Engine:         cfg.Result.Engine,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to materialize result", slog.Any("error", err))
		os.Exit(1)
	}
	defer rs.Close()

	if err := writeCSV(os.Stdout, rs); err != nil {
		logger.Error("failed to write rows", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("result streamed",
		slog.Int64("rows", rs.RowNumber()),
		slog.Int("columns", len(rs.Description())))
}

func parseColumns(raw string) ([]exec.ColumnInfo, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var description []exec.ColumnInfo
	for _, pair := range strings.Split(raw, ",") {
		name, typ, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || typ == "" {
			return nil, fmt.Errorf("malformed column %q, want name:type", pair)
		}
		description = append(description, exec.ColumnInfo{Name: name, Type: strings.ToLower(typ)})
	}
	return description, nil
}

func writeCSV(out *os.File, rs *resultset.ResultSet) error {
	writer := csv.NewWriter(out)
	header := make([]string, 0, len(rs.Description()))
	for _, column := range rs.Description() {
		header = append(header, column.Name)
	}
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	for {
		row := rs.FetchOne()
		if row == nil {
			break
		}
		record := make([]string, len(row))
		for i, value := range row {
			if value == nil {
				continue
			}
			record[i] = fmt.Sprint(value)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
