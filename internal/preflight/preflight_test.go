package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"segprep/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckWritableTarget_Missing(t *testing.T) {
	base := t.TempDir()
	result := CheckWritableTarget("out", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable path, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, base) {
		t.Fatalf("expected detail to name the existing ancestor, got %q", result.Detail)
	}
}

func TestCheckWritableTarget_UnderFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritableTarget("out", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
	if result := CheckWritableTarget("out", ""); result.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Source root" {
		t.Fatalf("expected only the missing source root to fail, got %+v", failed)
	}

	if err := os.MkdirAll(cfg.Paths.SourceRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if failed := Failed(RunAll(cfg)); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}
}
