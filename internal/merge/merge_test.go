package merge

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"segprep/internal/testsupport"
)

func TestMaskCandidates(t *testing.T) {
	cases := map[string][]string{
		"a.png":  {"a.png", "a.jpg", "a.jpeg"},
		"a.jpg":  {"a.png", "a.jpeg"},
		"a.jpeg": {"a.png", "a.jpg"},
	}
	for image, want := range cases {
		if diff := cmp.Diff(want, maskCandidates(image)); diff != "" {
			t.Fatalf("%s candidates (-want +got):\n%s", image, diff)
		}
	}
}

func TestMergeScenario(t *testing.T) {
	base := t.TempDir()
	srcA := filepath.Join(base, "A")
	srcB := filepath.Join(base, "B")
	srcC := filepath.Join(base, "C")
	target := filepath.Join(base, "merged_data")

	testsupport.WriteText(t, filepath.Join(srcA, "images", "x.png"), "image-x")
	testsupport.WriteText(t, filepath.Join(srcA, "masks", "x.png"), "mask-x")
	testsupport.WriteText(t, filepath.Join(srcA, "images", "photo.jpg"), "image-photo")
	testsupport.WriteText(t, filepath.Join(srcA, "masks", "photo.jpg"), "not-a-candidate")
	testsupport.WriteText(t, filepath.Join(srcA, "images", "y.jpg"), "image-y")
	testsupport.WriteText(t, filepath.Join(srcA, "masks", "y.jpeg"), "mask-y")
	testsupport.WriteText(t, filepath.Join(srcA, "images", "notes.txt"), "ignored")
	testsupport.WriteText(t, filepath.Join(srcB, "images", "z.png"), "image-z")
	if err := os.MkdirAll(filepath.Join(srcC, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(srcC, "masks"), 0o755); err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(srcA, "images", "x.png"), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	m := &Merger{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	result, err := m.Run(context.Background(), []string{srcA, srcB, srcC}, target)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Images != 3 || result.Pairs != 2 || result.MissingMasks != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Images != result.Pairs+result.MissingMasks {
		t.Fatalf("images %d != pairs %d + missing %d", result.Images, result.Pairs, result.MissingMasks)
	}
	if diff := cmp.Diff([]string{"B"}, result.Skipped); diff != "" {
		t.Fatalf("skipped (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"C"}, result.Empty); diff != "" {
		t.Fatalf("empty (-want +got):\n%s", diff)
	}

	images := testsupport.ListDir(t, filepath.Join(target, "images"))
	if diff := cmp.Diff([]string{"A_photo.jpg", "A_x.png", "A_y.jpg"}, images); diff != "" {
		t.Fatalf("merged images (-want +got):\n%s", diff)
	}
	maskNames := testsupport.ListDir(t, filepath.Join(target, "masks"))
	if diff := cmp.Diff([]string{"A_x.png", "A_y.jpeg"}, maskNames); diff != "" {
		t.Fatalf("merged masks (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(target, "masks", "A_x.png"))
	if err != nil || string(data) != "mask-x" {
		t.Fatalf("mask content not preserved: %q %v", data, err)
	}
	info, err := os.Stat(filepath.Join(target, "images", "A_x.png"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("modification time not preserved: %v", info.ModTime())
	}
	if _, err := os.Stat(filepath.Join(srcA, "images", "x.png")); err != nil {
		t.Fatalf("source must remain: %v", err)
	}
	if !strings.Contains(logs.String(), "photo.jpg") {
		t.Fatalf("expected a missing-mask warning for photo.jpg:\n%s", logs.String())
	}
}

func TestMergeWarnLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: DefaultWarnLimit},
		{name: "explicit", limit: 2, want: 2},
		{name: "disabled", limit: NoWarnings, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := t.TempDir()
			src := filepath.Join(base, "S")
			if err := os.MkdirAll(filepath.Join(src, "masks"), 0o755); err != nil {
				t.Fatal(err)
			}
			for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
				testsupport.WriteText(t, filepath.Join(src, "images", n+".png"), n)
			}

			var logs bytes.Buffer
			m := &Merger{WarnLimit: tc.limit, Logger: slog.New(slog.NewTextHandler(&logs, nil))}
			result, err := m.Run(context.Background(), []string{src}, filepath.Join(base, "out"))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if result.MissingMasks != 6 {
				t.Fatalf("expected 6 missing masks, got %d", result.MissingMasks)
			}
			if got := strings.Count(logs.String(), "mask not found for image"); got != tc.want {
				t.Fatalf("expected %d per-file warnings, got %d", tc.want, got)
			}
			if !strings.Contains(logs.String(), "mask_missing_total") {
				t.Fatalf("expected the summary warning regardless of limit:\n%s", logs.String())
			}
		})
	}
}

func TestMergeKeepsNormalizationVariantsApart(t *testing.T) {
	base := t.TempDir()
	composed := filepath.Join(base, "caf\u00e9")
	decomposed := filepath.Join(base, "cafe\u0301")
	target := filepath.Join(base, "merged_data")

	for _, src := range []string{composed, decomposed} {
		testsupport.WriteText(t, filepath.Join(src, "images", "x.png"), "image-"+filepath.Base(src))
		testsupport.WriteText(t, filepath.Join(src, "masks", "x.png"), "mask-"+filepath.Base(src))
	}
	// Same file name in two normalization forms inside one source.
	testsupport.WriteText(t, filepath.Join(composed, "images", "\u00e9.png"), "nfc")
	testsupport.WriteText(t, filepath.Join(composed, "images", "e\u0301.png"), "nfd")

	var logs bytes.Buffer
	m := &Merger{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	result, err := m.Run(context.Background(), []string{composed, decomposed}, target)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	images := testsupport.ListDir(t, filepath.Join(target, "images"))
	if len(images) != result.Images {
		t.Fatalf("result reports %d images but %d merged files exist: %q", result.Images, len(images), images)
	}
	if result.Images != 4 || result.Pairs != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	maskNames := testsupport.ListDir(t, filepath.Join(target, "masks"))
	if len(maskNames) != result.Pairs {
		t.Fatalf("result reports %d pairs but %d merged masks exist: %q", result.Pairs, len(maskNames), maskNames)
	}
	for _, src := range []string{composed, decomposed} {
		name := filepath.Base(src)
		data, err := os.ReadFile(filepath.Join(target, "images", mergedName(name, "x.png")))
		if err != nil || string(data) != "image-"+name {
			t.Fatalf("%q: merged image content %q, err %v", name, data, err)
		}
	}

	want := [][]string{{"caf\u00e9", "cafe\u0301"}}
	if diff := cmp.Diff(want, result.LookAlike); diff != "" {
		t.Fatalf("look-alike sources (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "source_name_look_alike") {
		t.Fatalf("expected a look-alike warning:\n%s", logs.String())
	}
}

func TestMergedNameKeepsBytes(t *testing.T) {
	if got := mergedName("cafe\u0301", "x.png"); got != "cafe\u0301_x.png" {
		t.Fatalf("merged name rewritten: %q", got)
	}
}

func TestDiscoverSources(t *testing.T) {
	base := t.TempDir()
	for _, d := range []string{"b", "a", "merged_data"} {
		if err := os.MkdirAll(filepath.Join(base, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	testsupport.WriteText(t, filepath.Join(base, "readme.txt"), "x")

	got, err := DiscoverSources(base, "merged_data")
	if err != nil {
		t.Fatalf("DiscoverSources: %v", err)
	}
	want := []string{filepath.Join(base, "a"), filepath.Join(base, "b")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sources (-want +got):\n%s", diff)
	}
	if _, err := DiscoverSources(filepath.Join(base, "missing"), ""); err == nil {
		t.Fatal("expected error for missing base dir")
	}
}
