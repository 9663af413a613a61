package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"segprep/internal/logging"
	"segprep/internal/testsupport"
)

func TestRunMergeWarnLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero disables", limit: 0, want: 0},
		{name: "negative uses default", limit: -1, want: 4},
		{name: "explicit", limit: 1, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := t.TempDir()
			for _, n := range []string{"a", "b", "c", "d", "e"} {
				testsupport.WriteText(t, filepath.Join(base, "src", "images", n+".png"), n)
			}
			testsupport.WriteText(t, filepath.Join(base, "src", "masks", "unrelated.png"), "m")

			var logs bytes.Buffer
			run := &stageRun{
				logger:   slog.New(slog.NewTextHandler(&logs, nil)),
				progress: logging.NopProgress,
			}
			result, err := runMerge(context.Background(), run, mergeParams{
				sources:   []string{filepath.Join(base, "src")},
				target:    filepath.Join(base, "merged"),
				warnLimit: tc.limit,
			})
			if err != nil {
				t.Fatalf("runMerge: %v", err)
			}
			if result.MissingMasks != 5 {
				t.Fatalf("expected 5 missing masks, got %d", result.MissingMasks)
			}
			if got := strings.Count(logs.String(), "mask not found for image"); got != tc.want {
				t.Fatalf("expected %d per-file warnings, got %d", tc.want, got)
			}
		})
	}
}
