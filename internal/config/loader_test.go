// internal/config/loader_test.go
//
// Unit-tests for the layered loader, in particular the SQLTAG_ environment
// overlay: a prefixed variable must land on the koanf key its name spells
// out, overriding the YAML layer.
//
// Each test builds a throwaway root with its own conf/global.yaml and
// points the loader at it via SQLTAG_ROOT.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `http:
  listen_addr: ":8080"

database:
  dsn: "app:secret@tcp(127.0.0.1:3306)/app?parseTime=true"

query_tags:
  enabled: true
  application: "from-yaml"
  components: [application, pid]
  cache: true
`

// writeTestRoot lays out <tmp>/conf/global.yaml and routes the loader to it.
func writeTestRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(testYAML), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("SQLTAG_ROOT", root)
	return root
}

func TestLoad_YAMLOnly(t *testing.T) {
	root := writeTestRoot(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q, want :8080", cfg.HTTP.ListenAddr)
	}
	if cfg.QueryTags.Application != "from-yaml" {
		t.Fatalf("Application = %q, want from-yaml", cfg.QueryTags.Application)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("Paths.Root = %q, want %q", cfg.Paths.Root, root)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	writeTestRoot(t)
	t.Setenv("SQLTAG_HTTP__LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("SQLTAG_QUERY_TAGS__APPLICATION", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("ListenAddr = %q, env overlay not applied", cfg.HTTP.ListenAddr)
	}
	if cfg.QueryTags.Application != "from-env" {
		t.Fatalf("Application = %q, env overlay not applied", cfg.QueryTags.Application)
	}
}

func TestLoad_ValidationRejectsEmptyComponents(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}
	yaml := `http:
  listen_addr: ":8080"
database:
  dsn: "app:secret@tcp(127.0.0.1:3306)/app"
query_tags:
  enabled: true
  application: "app"
  components: []
`
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("SQLTAG_ROOT", root)

	if _, err := Load(); err == nil {
		t.Fatalf("Load accepted enabled tagging with no components")
	}
}
