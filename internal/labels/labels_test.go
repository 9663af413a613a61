package labels_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"segprep/internal/dataset"
	"segprep/internal/labels"
	"segprep/internal/testsupport"
)

func TestInstanceFormat(t *testing.T) {
	in := labels.Instance{Class: 2, Points: []labels.Vertex{{0, 0}, {0.5, 1}, {1.0 / 3, 0.1234567}}}
	want := "2 0.0 0.0 0.5 1.0 0.333333 0.123457"
	if got := in.Format(); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}

	parsed, err := labels.ParseLine(want)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if parsed.Class != 2 || len(parsed.Points) != 3 || parsed.Points[2].X != 0.333333 {
		t.Fatalf("unexpected parse: %+v", parsed)
	}
}

func TestParseLineRejectsMalformed(t *testing.T) {
	for _, line := range []string{"", "x 0.1 0.2", "1 0.1", "1 0.1 y"} {
		if _, err := labels.ParseLine(line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestConverterRun(t *testing.T) {
	masksDir := t.TempDir()
	labelsDir := filepath.Join(t.TempDir(), "labels")

	testsupport.WriteGrayPNG(t, filepath.Join(masksDir, "a.png"), testsupport.Gray([][]uint8{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{0, 1, 1, 0},
		{0, 0, 0, 7},
	}))
	testsupport.WriteGrayPNG(t, filepath.Join(masksDir, "blank.png"), testsupport.Gray([][]uint8{
		{0, 0},
		{0, 0},
	}))

	c := &labels.Converter{Classes: 6}
	result, err := c.Run(context.Background(), masksDir, labelsDir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Masks != 2 || result.Instances != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if diff := cmp.Diff([]labels.UnknownValue{{File: "a.png", Value: 7}}, result.Unknown); diff != "" {
		t.Fatalf("unknown values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"blank.png"}, result.Empty); diff != "" {
		t.Fatalf("empty masks (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(labelsDir, "a.txt"))
	if err != nil {
		t.Fatalf("read labels: %v", err)
	}
	want := "0 0.25 0.25 0.25 0.5 0.5 0.5 0.5 0.25\n"
	if string(data) != want {
		t.Fatalf("label file = %q, want %q", data, want)
	}

	blank, err := os.ReadFile(filepath.Join(labelsDir, "blank.txt"))
	if err != nil {
		t.Fatalf("read blank labels: %v", err)
	}
	if len(blank) != 0 {
		t.Fatalf("expected empty label file, got %q", blank)
	}

	instances, err := labels.ParseFile(filepath.Join(labelsDir, "a.txt"))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(instances) != 1 || instances[0].Class != 0 || len(instances[0].Points) != 4 {
		t.Fatalf("unexpected instances: %+v", instances)
	}
}

func TestConverterDropsShortContours(t *testing.T) {
	c := &labels.Converter{Classes: 2}
	instances, unknown := c.Convert(testsupport.Gray([][]uint8{
		{2, 2, 0},
		{0, 0, 0},
		{0, 0, 1},
	}))
	if len(instances) != 0 || len(unknown) != 0 {
		t.Fatalf("expected line and point regions to be dropped, got %+v %v", instances, unknown)
	}
}

func TestConverterRunErrors(t *testing.T) {
	c := &labels.Converter{Classes: 0}
	if _, err := c.Run(context.Background(), t.TempDir(), t.TempDir()); !errors.Is(err, dataset.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	c.Classes = 6
	if _, err := c.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir()); !errors.Is(err, dataset.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := labels.NewManifest(dir, nil)
	if err != nil {
		t.Fatalf("NewManifest: %v", err)
	}
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"path: " + dir,
		"train: train/images",
		"val: valid/images",
		"test: test/images",
		"  0: \"0\"",
		"  5: \"5\"",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("manifest missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "train:") > strings.Index(text, "val:") || strings.Index(text, "val:") > strings.Index(text, "names:") {
		t.Fatalf("manifest keys out of order:\n%s", text)
	}

	path := filepath.Join(dir, labels.ManifestName)
	if err := labels.WriteManifest(path, m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	back, err := labels.ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Fatalf("manifest round trip (-want +got):\n%s", diff)
	}
}

func TestManifestCustomNames(t *testing.T) {
	m, err := labels.NewManifest(t.TempDir(), []string{"crack", "", "spall"})
	if err != nil {
		t.Fatalf("NewManifest: %v", err)
	}
	if diff := cmp.Diff([]string{"crack", "1", "spall"}, m.Names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}
