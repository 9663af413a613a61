// Package merge consolidates several source datasets into one flat tree.
//
// Each source directory holds images/ and masks/. Every image is copied to
// target/images as <source>_<file>; its mask, when one exists, is copied to
// target/masks under the same prefixed scheme. Names are copied byte for byte,
// so distinct source basenames always give distinct merged names. Sources
// whose names differ only in Unicode normalization are reported, since they
// render identically. Sources are read only; a missing mask is counted and
// reported but never aborts the merge.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/unicode/norm"

	"segprep/internal/dataset"
	"segprep/internal/fileutil"
	"segprep/internal/logging"
)

// DefaultWarnLimit is how many missing-mask warnings are logged per run.
const DefaultWarnLimit = 4

// NoWarnings as a WarnLimit turns off per-file missing-mask warnings. The
// run summary still reports the total.
const NoWarnings = -1

// Merger copies source datasets into a target tree.
type Merger struct {
	// WarnLimit caps per-file missing-mask warnings. Zero means
	// DefaultWarnLimit and a negative value disables them.
	WarnLimit int
	Logger    *slog.Logger
	Progress  logging.ProgressFactory
}

// SourceResult holds the counts for one source directory.
type SourceResult struct {
	Name         string `json:"name"`
	Images       int    `json:"images"`
	Pairs        int    `json:"pairs"`
	MissingMasks int    `json:"missing_masks"`
}

// Result summarizes a merge. Images always equals Pairs + MissingMasks.
type Result struct {
	Images       int            `json:"images"`
	Pairs        int            `json:"pairs"`
	MissingMasks int            `json:"missing_masks"`
	Skipped      []string       `json:"skipped"`
	Empty        []string       `json:"empty"`
	LookAlike    [][]string     `json:"look_alike,omitempty"`
	PerSource    []SourceResult `json:"per_source"`
	ImagesDir    string         `json:"images_dir"`
	MasksDir     string         `json:"masks_dir"`
}

// Run merges sources, in the given order, into target.
func (m *Merger) Run(ctx context.Context, sources []string, target string) (Result, error) {
	logger := m.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := m.Progress
	if progress == nil {
		progress = logging.NopProgress
	}
	limit := m.WarnLimit
	switch {
	case limit == 0:
		limit = DefaultWarnLimit
	case limit < 0:
		limit = 0
	}

	result := Result{
		ImagesDir: filepath.Join(target, dataset.ImagesDir),
		MasksDir:  filepath.Join(target, dataset.MasksDir),
	}
	for _, dir := range []string{result.ImagesDir, result.MasksDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	result.LookAlike = lookAlikeNames(sources)
	for _, group := range result.LookAlike {
		logging.WarnWithContext(logger, "source names differ only in Unicode normalization", "source_name_look_alike",
			logging.Any("sources", group),
			logging.String(logging.FieldImpact, "merged names look identical but stay distinct on disk"),
		)
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := filepath.Base(filepath.Clean(source))
		srcLogger := logger.With(logging.String(logging.FieldSource, name))

		imagesDir := filepath.Join(source, dataset.ImagesDir)
		masksDir := filepath.Join(source, dataset.MasksDir)
		if !fileutil.IsDir(imagesDir) || !fileutil.IsDir(masksDir) {
			logging.WarnWithContext(srcLogger, "source skipped: missing images or masks directory", "source_skipped",
				logging.String(logging.FieldImpact, "source not merged"),
			)
			result.Skipped = append(result.Skipped, name)
			continue
		}

		images, err := dataset.ListFiles(imagesDir, dataset.ImageExts)
		if err != nil {
			return result, err
		}
		if len(images) == 0 {
			logging.WarnWithContext(srcLogger, "source has no images", "source_empty",
				logging.String(logging.FieldImpact, "nothing to merge from this source"),
			)
			result.Empty = append(result.Empty, name)
			continue
		}

		sr := SourceResult{Name: name}
		bar := progress(name, len(images))
		for _, img := range images {
			if err := ctx.Err(); err != nil {
				bar.Finish()
				return result, err
			}
			sr.Images++
			result.Images++
			if err := fileutil.CopyFile(filepath.Join(imagesDir, img), filepath.Join(result.ImagesDir, mergedName(name, img))); err != nil {
				bar.Finish()
				return result, err
			}

			mask, ok := findMask(masksDir, img)
			if !ok {
				sr.MissingMasks++
				result.MissingMasks++
				if result.MissingMasks <= limit {
					logging.WarnWithContext(srcLogger, "mask not found for image", "mask_missing",
						logging.String(logging.FieldFile, img),
						logging.String("expected", dataset.Stem(img)+".png"),
						logging.String(logging.FieldImpact, "image merged without a mask"),
					)
				}
				bar.Add(1)
				continue
			}
			if err := fileutil.CopyFile(filepath.Join(masksDir, mask), filepath.Join(result.MasksDir, mergedName(name, mask))); err != nil {
				bar.Finish()
				return result, err
			}
			sr.Pairs++
			result.Pairs++
			bar.Add(1)
		}
		bar.Finish()
		result.PerSource = append(result.PerSource, sr)
		srcLogger.Info("source merged",
			logging.Int("images", sr.Images),
			logging.Int("pairs", sr.Pairs),
			logging.Int("missing_masks", sr.MissingMasks),
		)
	}

	attrs := []logging.Attr{
		logging.Int("pairs", result.Pairs),
		logging.Int("images", result.Images),
		logging.Int("missing_masks", result.MissingMasks),
		logging.String("images_dir", result.ImagesDir),
		logging.String("masks_dir", result.MasksDir),
	}
	if len(result.Skipped) > 0 {
		attrs = append(attrs, logging.Any("skipped", result.Skipped))
	}
	logger.Info("merge complete", logging.Args(attrs...)...)
	if result.MissingMasks > 0 {
		logging.WarnWithContext(logger, "images without masks", "mask_missing_total",
			logging.Int("missing_masks", result.MissingMasks),
			logging.String(logging.FieldImpact, "these images have no mask in the merged tree"),
		)
	}
	return result, nil
}

// maskCandidates lists the mask names tried for an image: .png first, then
// the other tolerated extensions except the image's own.
func maskCandidates(image string) []string {
	stem := dataset.Stem(image)
	own := filepath.Ext(image)
	candidates := []string{stem + ".png"}
	for _, ext := range dataset.ImageExts {
		if ext == ".png" || ext == own {
			continue
		}
		candidates = append(candidates, stem+ext)
	}
	return candidates
}

func findMask(masksDir, image string) (string, bool) {
	for _, candidate := range maskCandidates(image) {
		if fileutil.IsFile(filepath.Join(masksDir, candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func mergedName(source, file string) string {
	return source + "_" + file
}

// lookAlikeNames groups source basenames that are distinct byte strings but
// share an NFC form. Groups keep source order.
func lookAlikeNames(sources []string) [][]string {
	byForm := make(map[string][]string)
	var forms []string
	for _, source := range sources {
		name := filepath.Base(filepath.Clean(source))
		form := norm.NFC.String(name)
		if _, ok := byForm[form]; !ok {
			forms = append(forms, form)
		}
		if !slices.Contains(byForm[form], name) {
			byForm[form] = append(byForm[form], name)
		}
	}
	var groups [][]string
	for _, form := range forms {
		if len(byForm[form]) > 1 {
			groups = append(groups, byForm[form])
		}
	}
	return groups
}

// DiscoverSources lists the sub-directories of baseDir, sorted, leaving out
// any whose name is exclude.
func DiscoverSources(baseDir, exclude string) ([]string, error) {
	if !fileutil.IsDir(baseDir) {
		return nil, dataset.Wrap(dataset.ErrNotFound, "merge", "discover sources", baseDir, nil)
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", baseDir, err)
	}
	var sources []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == exclude {
			continue
		}
		sources = append(sources, filepath.Join(baseDir, entry.Name()))
	}
	slices.Sort(sources)
	return sources, nil
}
