package split_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"segprep/internal/dataset"
	"segprep/internal/labels"
	"segprep/internal/split"
	"segprep/internal/testsupport"
)

func makeMerged(t *testing.T, n int, withLabels bool) string {
	t.Helper()
	merged := filepath.Join(t.TempDir(), "merged_data")
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("img%02d", i)
		testsupport.WriteText(t, filepath.Join(merged, "images", name+".png"), name)
		if withLabels && i != 0 {
			testsupport.WriteText(t, filepath.Join(merged, "labels", name+".txt"), "0 0.1 0.1 0.2 0.1 0.2 0.2\n")
		}
	}
	if withLabels {
		if err := os.MkdirAll(filepath.Join(merged, "labels"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return merged
}

func TestRatiosValidate(t *testing.T) {
	cases := []struct {
		ratios split.Ratios
		ok     bool
	}{
		{split.DefaultRatios, true},
		{split.Ratios{Train: 0.7, Valid: 0.2, Test: 0.05}, false},
		{split.Ratios{Train: 1, Valid: 0, Test: 0}, true},
		{split.Ratios{Train: 1.2, Valid: -0.2, Test: 0}, false},
		{split.Ratios{Train: 0.1, Valid: 0.2, Test: 0.7}, true},
	}
	for _, tc := range cases {
		err := tc.ratios.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%v: unexpected error %v", tc.ratios, err)
		}
		if !tc.ok && !errors.Is(err, dataset.ErrConfiguration) {
			t.Fatalf("%v: expected ErrConfiguration, got %v", tc.ratios, err)
		}
	}
}

func TestParseRatios(t *testing.T) {
	r, err := split.ParseRatios("0.8, 0.1,0.1")
	if err != nil {
		t.Fatalf("ParseRatios: %v", err)
	}
	if diff := cmp.Diff(split.Ratios{Train: 0.8, Valid: 0.1, Test: 0.1}, r); diff != "" {
		t.Fatalf("ratios (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"0.5,0.5", "a,b,c", "0.5,0.5,0.5"} {
		if _, err := split.ParseRatios(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSplitTenImages(t *testing.T) {
	merged := makeMerged(t, 10, true)
	out := filepath.Join(t.TempDir(), "datasets")

	s := &split.Splitter{Ratios: split.DefaultRatios, Rand: split.NewRand(7)}
	result, err := s.Run(context.Background(), merged, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Train != 7 || result.Valid != 2 || result.Test != 1 || result.Total != 10 {
		t.Fatalf("unexpected sizes: %+v", result)
	}
	if diff := cmp.Diff([]string{"img00.png"}, result.MissingLabels); diff != "" {
		t.Fatalf("missing labels (-want +got):\n%s", diff)
	}

	seen := map[string]string{}
	for _, sub := range []string{split.Train, split.Valid, split.Test} {
		for _, name := range testsupport.ListDir(t, filepath.Join(out, "data", sub, "images")) {
			if prev, ok := seen[name]; ok {
				t.Fatalf("%s in both %s and %s", name, prev, sub)
			}
			seen[name] = sub
			stem := dataset.Stem(name)
			if name == "img00.png" {
				continue
			}
			if _, err := os.Stat(filepath.Join(out, "data", sub, "labels", stem+".txt")); err != nil {
				t.Fatalf("label for %s missing in %s: %v", name, sub, err)
			}
		}
	}
	if len(seen) != 10 {
		t.Fatalf("expected 10 distinct images across subsets, got %d", len(seen))
	}

	m, err := labels.ReadManifest(result.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	abs, _ := filepath.Abs(filepath.Join(out, "data"))
	if m.Path != abs || m.Train != "train/images" || m.Val != "valid/images" || m.Test != "test/images" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if diff := cmp.Diff(labels.DefaultClassNames(6), m.Names); diff != "" {
		t.Fatalf("manifest names (-want +got):\n%s", diff)
	}
}

func TestSplitSeedIsReproducible(t *testing.T) {
	merged := makeMerged(t, 12, true)
	assign := func() map[string]string {
		out := filepath.Join(t.TempDir(), "datasets")
		s := &split.Splitter{Ratios: split.DefaultRatios, Rand: split.NewRand(99)}
		if _, err := s.Run(context.Background(), merged, out); err != nil {
			t.Fatalf("Run: %v", err)
		}
		got := map[string]string{}
		for _, sub := range []string{split.Train, split.Valid, split.Test} {
			for _, name := range testsupport.ListDir(t, filepath.Join(out, "data", sub, "images")) {
				got[name] = sub
			}
		}
		return got
	}
	if diff := cmp.Diff(assign(), assign()); diff != "" {
		t.Fatalf("same seed produced different splits (-first +second):\n%s", diff)
	}
}

func TestSplitBadRatiosWritesNothing(t *testing.T) {
	merged := makeMerged(t, 10, true)
	out := filepath.Join(t.TempDir(), "datasets")

	s := &split.Splitter{Ratios: split.Ratios{Train: 0.7, Valid: 0.2, Test: 0.05}}
	if _, err := s.Run(context.Background(), merged, out); !errors.Is(err, dataset.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, stat err = %v", err)
	}
}

func TestSplitMissingLabelsDirWritesNothing(t *testing.T) {
	merged := makeMerged(t, 4, false)
	out := filepath.Join(t.TempDir(), "datasets")

	s := &split.Splitter{Ratios: split.DefaultRatios}
	if _, err := s.Run(context.Background(), merged, out); !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, stat err = %v", err)
	}
}

func TestSplitCustomClassNames(t *testing.T) {
	merged := makeMerged(t, 3, true)
	out := filepath.Join(t.TempDir(), "datasets")
	s := &split.Splitter{Ratios: split.DefaultRatios, ClassNames: []string{"crack", "spall"}}
	result, err := s.Run(context.Background(), merged, out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Train != 2 || result.Valid != 0 || result.Test != 1 {
		t.Fatalf("unexpected sizes for n=3: %+v", result)
	}
	m, err := labels.ReadManifest(result.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if diff := cmp.Diff([]string{"crack", "spall"}, m.Names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}
