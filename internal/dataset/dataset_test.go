package dataset_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"segprep/internal/dataset"
)

func TestStem(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":        "photo",
		"a.b.png":          "a.b",
		"noext":            "noext",
		"dir/sub/mask.png": "mask",
	}
	for in, want := range cases {
		if got := dataset.Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListFilesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.png", "c.jpeg", "notes.txt", "upper.JPG"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := dataset.ListFiles(dir, dataset.ImageExts)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	want := []string{"a.png", "b.jpg", "c.jpeg"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListFiles mismatch (-want +got):\n%s", diff)
	}

	if _, err := dataset.ListFiles(filepath.Join(dir, "missing"), dataset.ImageExts); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := dataset.Wrap(dataset.ErrConfiguration, "split", "validate ratios", "sum is 0.95", cause)
	if !errors.Is(err, dataset.ErrConfiguration) || !errors.Is(err, cause) {
		t.Fatalf("expected marker and cause in chain: %v", err)
	}
	want := "configuration error: split: validate ratios: sum is 0.95: disk full"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}

	bare := dataset.Wrap(nil, "", "", "", nil)
	if bare.Error() != "dataset failure" {
		t.Fatalf("unexpected bare message %q", bare.Error())
	}
}
