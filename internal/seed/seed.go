// Package seed produces the initial snapshot a mock store starts from, from
// embedded fixtures, snapshot files or databases, or generated data.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"mockbase/internal/config"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/infra/persistence/postgres"
	"mockbase/internal/infra/persistence/sqlite"
	"mockbase/pkg/domain"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Source yields a seed snapshot.
type Source interface {
	Load(ctx context.Context) (memory.Snapshot, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (memory.Snapshot, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) (memory.Snapshot, error) { return f(ctx) }

// Embedded returns the fixtures compiled into the binary. Each
// fixtures/<table>.json file holds the table's records in order.
func Embedded() Source {
	return SourceFunc(func(context.Context) (memory.Snapshot, error) {
		return loadFixtures(fixtures, "fixtures")
	})
}

func loadFixtures(fsys fs.FS, dir string) (memory.Snapshot, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("read fixtures: %w", err)
	}
	snap := memory.Snapshot{Tables: make(map[string][]domain.Record, len(entries))}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		table := strings.TrimSuffix(entry.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("read fixture %s: %w", table, err)
		}
		var rows []domain.Record
		if err := json.Unmarshal(data, &rows); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode fixture %s: %w", table, err)
		}
		snap.Tables[table] = rows
	}
	return snap, nil
}

// JSONFile reads a snapshot written by WriteJSON.
func JSONFile(path string) Source {
	return SourceFunc(func(context.Context) (memory.Snapshot, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return memory.Snapshot{}, fmt.Errorf("read seed file: %w", err)
		}
		var snap memory.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode seed file %s: %w", path, err)
		}
		return snap, nil
	})
}

// SQLite reads the snapshot kept in a SQLite database file.
func SQLite(path string) Source {
	return SourceFunc(func(ctx context.Context) (memory.Snapshot, error) {
		if _, err := os.Stat(path); err != nil {
			return memory.Snapshot{}, fmt.Errorf("sqlite seed: %w", err)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return memory.Snapshot{}, err
		}
		defer func() { _ = store.Close() }()
		return store.LoadSnapshot(ctx)
	})
}

// Postgres reads the snapshot kept in the state table of a Postgres database.
func Postgres(dsn string) Source {
	return SourceFunc(func(ctx context.Context) (memory.Snapshot, error) {
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return memory.Snapshot{}, err
		}
		defer func() { _ = store.Close() }()
		return store.LoadSnapshot(ctx)
	})
}

// Generated produces synthetic records with gofakeit.
func Generated(opts GenerateOptions) Source {
	return SourceFunc(func(context.Context) (memory.Snapshot, error) {
		return Generate(opts), nil
	})
}

// FromConfig selects the Source named by cfg.Source.
func FromConfig(cfg config.SeedConfig) (Source, error) {
	switch cfg.Source {
	case "", config.SeedEmbedded:
		return Embedded(), nil
	case config.SeedJSON:
		return JSONFile(cfg.Path), nil
	case config.SeedSQLite:
		return SQLite(cfg.Path), nil
	case config.SeedPostgres:
		return Postgres(cfg.DSN), nil
	case config.SeedGenerated:
		return Generated(GenerateOptions{Count: cfg.Count, RandomSeed: cfg.RandomSeed}), nil
	default:
		return nil, fmt.Errorf("unknown seed source %q", cfg.Source)
	}
}

// Export formats accepted by Export.
const (
	FormatJSON     = "json"
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
)

// WriteJSON writes snap as indented JSON readable by JSONFile.
func WriteJSON(path string, snap memory.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create seed dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// Export writes snap to target (a file path, or a DSN for postgres) so it can
// serve as a seed elsewhere. Messages given as rows of the mensagens_ia table
// are regrouped by conversation first.
func Export(ctx context.Context, snap memory.Snapshot, format, target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("export target required")
	}
	snap = memory.NewStore(snap).ExportState()
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(target, snap)
	case FormatSQLite:
		store, err := sqlite.Open(target)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.SaveSnapshot(ctx, snap)
	case FormatPostgres:
		store, err := postgres.Open(ctx, target)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.SaveSnapshot(ctx, snap)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
