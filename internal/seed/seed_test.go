package seed

import (
	"context"
	"database/sql"
	"mockbase/internal/config"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/infra/persistence/postgres"
	"mockbase/internal/infra/persistence/postgres/testutil"
	"mockbase/pkg/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEmbeddedFixtures(t *testing.T) {
	snap, err := Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, table := range domain.StandardTables {
		if len(snap.Tables[table]) == 0 {
			t.Fatalf("expected fixture rows for %s", table)
		}
	}
	apoiadores := snap.Tables[domain.TableApoiadores]
	var ids, cidades []string
	for _, r := range apoiadores {
		ids = append(ids, r.ID())
		cidades = append(cidades, r["cidade"].(string))
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, ids); diff != "" {
		t.Fatalf("apoiadores ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Campo Grande", "Campo Grande", "Dourados"}, cidades); diff != "" {
		t.Fatalf("apoiadores cidades (-want +got):\n%s", diff)
	}

	store := memory.NewStore(snap)
	if got := store.Messages("cv1"); len(got) != 2 {
		t.Fatalf("expected 2 messages for cv1, got %d", len(got))
	}
}

func TestFixturesDecodeIntoEntities(t *testing.T) {
	snap, err := Embedded().Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a, err := domain.FromRecord[domain.Apoiador](snap.Tables[domain.TableApoiadores][0])
	if err != nil {
		t.Fatalf("decode apoiador: %v", err)
	}
	if a.Lideranca == nil || a.Lideranca.ID != "l1" || a.NivelEngajamento != 4 {
		t.Fatalf("unexpected apoiador %+v", a)
	}
	e, err := domain.FromRecord[domain.Evento](snap.Tables[domain.TableEventos][0])
	if err != nil {
		t.Fatalf("decode evento: %v", err)
	}
	if len(e.Participantes) != 2 {
		t.Fatalf("unexpected participantes %+v", e.Participantes)
	}
}

func TestJSONExportAndLoad(t *testing.T) {
	ctx := context.Background()
	snap := Generate(GenerateOptions{Count: 10, RandomSeed: 7})
	path := filepath.Join(t.TempDir(), "nested", "seed.json")
	if err := Export(ctx, snap, FormatJSON, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	loaded, err := JSONFile(path).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(snap.Tables[domain.TableApoiadores], loaded.Tables[domain.TableApoiadores]); diff != "" {
		t.Fatalf("apoiadores mismatch (-want +got):\n%s", diff)
	}

	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if _, err := JSONFile(path).Load(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := JSONFile(filepath.Join(t.TempDir(), "missing.json")).Load(ctx); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestSQLiteExportAndLoad(t *testing.T) {
	ctx := context.Background()
	snap, err := Embedded().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	path := filepath.Join(t.TempDir(), "seed.db")
	if err := Export(ctx, memory.NewStore(snap).ExportState(), FormatSQLite, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	loaded, err := SQLite(path).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	store := memory.NewStore(loaded)
	rows, ok := store.Scan(domain.TableApoiadores)
	if !ok || len(rows) != 3 {
		t.Fatalf("expected 3 apoiadores, got %d", len(rows))
	}
	if got := store.Messages("cv1"); len(got) != 2 {
		t.Fatalf("expected messages restored, got %d", len(got))
	}
	if _, err := SQLite(filepath.Join(t.TempDir(), "absent.db")).Load(ctx); err == nil {
		t.Fatalf("expected error for absent database")
	}
}

func TestPostgresExportAndLoad(t *testing.T) {
	ctx := context.Background()
	_, conn := testutil.NewStubDB()
	defer postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return conn.OpenDB() })()

	snap := Generate(GenerateOptions{Count: 5, RandomSeed: 3})
	if err := Export(ctx, snap, FormatPostgres, "postgres://stub"); err != nil {
		t.Fatalf("export: %v", err)
	}
	loaded, err := Postgres("postgres://stub").Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Tables[domain.TableApoiadores]) != 5 {
		t.Fatalf("expected 5 apoiadores, got %d", len(loaded.Tables[domain.TableApoiadores]))
	}
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()
	if err := Export(ctx, memory.Snapshot{}, FormatJSON, ""); err == nil {
		t.Fatalf("expected missing target error")
	}
	if err := Export(ctx, memory.Snapshot{}, "xml", "out.xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestFromConfig(t *testing.T) {
	cases := []struct {
		cfg     config.SeedConfig
		wantErr bool
	}{
		{config.SeedConfig{}, false},
		{config.SeedConfig{Source: config.SeedEmbedded}, false},
		{config.SeedConfig{Source: config.SeedJSON, Path: "x.json"}, false},
		{config.SeedConfig{Source: config.SeedSQLite, Path: "x.db"}, false},
		{config.SeedConfig{Source: config.SeedPostgres, DSN: "postgres://x"}, false},
		{config.SeedConfig{Source: config.SeedGenerated, Count: 3}, false},
		{config.SeedConfig{Source: "ftp"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.cfg.Source, func(t *testing.T) {
			src, err := FromConfig(tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil || src == nil {
				t.Fatalf("unexpected result %v %v", src, err)
			}
		})
	}
	src, _ := FromConfig(config.SeedConfig{Source: config.SeedGenerated, Count: 4, RandomSeed: 1})
	snap, err := src.Load(context.Background())
	if err != nil || len(snap.Tables[domain.TableApoiadores]) != 4 {
		t.Fatalf("unexpected generated snapshot: %v", err)
	}
}
