package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"segprep/internal/fileutil"
)

func TestCopyFilePreservesContentModeAndTimes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	payload := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	if err := os.WriteFile(src, payload, 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("content mismatch: %v", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v, want 0600", info.Mode().Perm())
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), mtime)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must survive the copy: %v", err)
	}
}

func TestCopyFileOverwritesAndRejectsDirectories(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("older and longer"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "new" {
		t.Fatalf("expected truncated overwrite, got %q", got)
	}

	if err := fileutil.CopyFile(dir, filepath.Join(dir, "c")); err == nil {
		t.Fatal("expected error when copying a directory")
	}
	if err := fileutil.CopyFile(filepath.Join(dir, "missing"), dst); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestExistsAndKinds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if ok, err := fileutil.Exists(file); err != nil || !ok {
		t.Fatalf("Exists(file) = %v, %v", ok, err)
	}
	if ok, err := fileutil.Exists(filepath.Join(dir, "nope")); err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if !fileutil.IsDir(dir) || fileutil.IsDir(file) {
		t.Fatal("IsDir mismatch")
	}
	if !fileutil.IsFile(file) || fileutil.IsFile(dir) {
		t.Fatal("IsFile mismatch")
	}
}
