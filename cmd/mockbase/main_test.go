package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type envelope struct {
	Data  []map[string]any `json:"data"`
	Count *int             `json:"count"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestQueryEmbeddedSeed(t *testing.T) {
	t.Chdir(t.TempDir())
	out, stderr, code := runCLI(t, "query", "apoiadores", "--eq", "cidade=Campo Grande", "--order", "id", "--range", "0,0", "--log-level", "error")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var env envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if env.Count == nil || *env.Count != 2 || len(env.Data) != 1 || env.Data[0]["id"] != "1" {
		t.Fatalf("unexpected envelope %s", out)
	}
}

func TestQuerySingleAndNumericText(t *testing.T) {
	t.Chdir(t.TempDir())
	out, stderr, code := runCLI(t, "query", "apoiadores", "--gte", "nivelEngajamento=3", "--single")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var single struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &single); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if single.Data["id"] != "1" {
		t.Fatalf("unexpected single %s", out)
	}
}

func TestQueryErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	out, _, code := runCLI(t, "query", "nope")
	if code == 0 {
		t.Fatalf("expected failure for unknown table")
	}
	if !strings.Contains(out, "42P01") {
		t.Fatalf("expected undefined table code in %s", out)
	}
	if _, _, code := runCLI(t, "query", "apoiadores", "--eq", "nocolumn"); code == 0 {
		t.Fatalf("expected failure for malformed --eq")
	}
	if _, _, code := runCLI(t, "query", "apoiadores", "--range", "x"); code == 0 {
		t.Fatalf("expected failure for malformed --range")
	}
	if _, _, code := runCLI(t, "query"); code == 0 {
		t.Fatalf("expected failure without table")
	}
}

func TestSeedGenerateThenQuery(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	seedPath := filepath.Join(dir, "gen.json")
	out, stderr, code := runCLI(t, "seed", "generate", "--count", "8", "--random-seed", "5", "--out", seedPath)
	if code != 0 {
		t.Fatalf("generate exit %d: %s", code, stderr)
	}
	if !strings.Contains(out, "generated") {
		t.Fatalf("unexpected output %q", out)
	}

	cfg := "seed:\n  source: json\n  path: " + seedPath + "\n"
	if err := os.WriteFile(filepath.Join(dir, "mockbase.yaml"), []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, stderr, code = runCLI(t, "query", "apoiadores", "--head")
	if code != 0 {
		t.Fatalf("query exit %d: %s", code, stderr)
	}
	var env envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Count == nil || *env.Count != 8 || env.Data != nil {
		t.Fatalf("unexpected envelope %s", out)
	}
}

func TestSeedExportSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dbPath := filepath.Join(dir, "seed.db")
	if _, stderr, code := runCLI(t, "seed", "export", "--format", "sqlite", "--out", dbPath); code != 0 {
		t.Fatalf("export exit %d: %s", code, stderr)
	}
	t.Setenv("MOCKBASE_SEED_SOURCE", "sqlite")
	t.Setenv("MOCKBASE_SEED_PATH", dbPath)
	out, stderr, code := runCLI(t, "query", "mensagens_ia", "--eq", "conversacaoId=cv1")
	if code != 0 {
		t.Fatalf("query exit %d: %s", code, stderr)
	}
	var env envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Count == nil || *env.Count != 2 {
		t.Fatalf("unexpected envelope %s", out)
	}
}

func TestEnvFileAndInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MOCKBASE_BLOB_DRIVER=gcs\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("MOCKBASE_BLOB_DRIVER") })
	if _, _, code := runCLI(t, "query", "apoiadores"); code == 0 {
		t.Fatalf("expected invalid blob driver from .env to fail")
	}
}

func TestVersion(t *testing.T) {
	out, _, code := runCLI(t, "version")
	if code != 0 || !strings.HasPrefix(out, "mockbase ") {
		t.Fatalf("unexpected version output %q (%d)", out, code)
	}
}

func TestMainExitCode(t *testing.T) {
	var codes []int
	old := exitFunc
	exitFunc = func(code int) { codes = append(codes, code) }
	defer func() { exitFunc = old }()
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"mockbase", "version"}
	main()
	os.Args = []string{"mockbase", "bogus"}
	main()
	if len(codes) != 2 || codes[0] != 0 || codes[1] == 0 {
		t.Fatalf("unexpected exit codes %v", codes)
	}
}
