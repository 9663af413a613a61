// Package split partitions a merged dataset into train, valid and test
// subsets and writes the manifest that describes them.
package split

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"segprep/internal/dataset"
	"segprep/internal/fileutil"
	"segprep/internal/labels"
	"segprep/internal/logging"
)

// Subset names, in output order.
const (
	Train = "train"
	Valid = "valid"
	Test  = "test"
)

// Splitter copies merged images and their labels into subsets.
type Splitter struct {
	Ratios Ratios
	// Rand drives the shuffle; nil uses the non-deterministic global source.
	Rand *rand.Rand
	// ClassNames overrides the manifest class table.
	ClassNames []string
	Logger     *slog.Logger
	Progress   logging.ProgressFactory
}

// Result summarizes a split.
type Result struct {
	Train         int      `json:"train"`
	Valid         int      `json:"valid"`
	Test          int      `json:"test"`
	Total         int      `json:"total"`
	MissingLabels []string `json:"missing_labels"`
	Manifest      string   `json:"manifest"`
	DataDir       string   `json:"data_dir"`
}

// NewRand returns a seeded source for reproducible splits.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Run splits mergedDir/images into outputDir/data/{train,valid,test}. All
// parameter and input checks happen before anything is written.
func (s *Splitter) Run(ctx context.Context, mergedDir, outputDir string) (Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := s.Progress
	if progress == nil {
		progress = logging.NopProgress
	}

	started := time.Now()
	if err := s.Ratios.Validate(); err != nil {
		return Result{}, err
	}
	if err := CheckInputs(mergedDir); err != nil {
		return Result{}, err
	}
	imagesDir := filepath.Join(mergedDir, dataset.ImagesDir)
	labelsDir := filepath.Join(mergedDir, dataset.LabelsDir)

	images, err := dataset.ListFiles(imagesDir, dataset.ImageExts)
	if err != nil {
		return Result{}, err
	}
	if s.Rand != nil {
		s.Rand.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	} else {
		rand.Shuffle(len(images), func(i, j int) { images[i], images[j] = images[j], images[i] })
	}

	nTrain, nValid, _ := s.Ratios.counts(len(images))
	subsets := []struct {
		name  string
		files []string
	}{
		{Train, images[:nTrain]},
		{Valid, images[nTrain : nTrain+nValid]},
		{Test, images[nTrain+nValid:]},
	}

	dataDir := filepath.Join(outputDir, dataset.DataDir)
	for _, sub := range subsets {
		for _, leaf := range []string{dataset.ImagesDir, dataset.LabelsDir} {
			if err := os.MkdirAll(filepath.Join(dataDir, sub.name, leaf), 0o755); err != nil {
				return Result{}, fmt.Errorf("create subset dir: %w", err)
			}
		}
	}

	result := Result{Total: len(images), DataDir: dataDir}
	logger.Info("splitting dataset",
		logging.String("merged", mergedDir),
		logging.String("output", dataDir),
		logging.Int("images", len(images)),
		logging.String("ratios", s.Ratios.String()),
	)

	for _, sub := range subsets {
		subLogger := logger.With(logging.String("subset", sub.name))
		missing, err := s.copySubset(ctx, subLogger, progress, imagesDir, labelsDir, filepath.Join(dataDir, sub.name), sub.files)
		result.MissingLabels = append(result.MissingLabels, missing...)
		if err != nil {
			return result, err
		}
		switch sub.name {
		case Train:
			result.Train = len(sub.files)
		case Valid:
			result.Valid = len(sub.files)
		case Test:
			result.Test = len(sub.files)
		}
		subLogger.Info("subset written", logging.Int("images", len(sub.files)), logging.Int("missing_labels", len(missing)))
	}

	manifest, err := labels.NewManifest(dataDir, s.ClassNames)
	if err != nil {
		return result, err
	}
	result.Manifest = filepath.Join(dataDir, labels.ManifestName)
	if err := labels.WriteManifest(result.Manifest, manifest); err != nil {
		return result, err
	}

	logger.Info("split complete",
		logging.Int("train", result.Train),
		logging.Int("valid", result.Valid),
		logging.Int("test", result.Test),
		logging.Int("total", result.Total),
		logging.String("manifest", result.Manifest),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// CheckInputs verifies that mergedDir holds both images and labels.
func CheckInputs(mergedDir string) error {
	imagesDir := filepath.Join(mergedDir, dataset.ImagesDir)
	if !fileutil.IsDir(imagesDir) {
		return dataset.Wrap(dataset.ErrNotFound, "split", "open images", imagesDir, nil)
	}
	labelsDir := filepath.Join(mergedDir, dataset.LabelsDir)
	if !fileutil.IsDir(labelsDir) {
		return dataset.Wrap(dataset.ErrNotFound, "split", "open labels", labelsDir, nil)
	}
	return nil
}

func (s *Splitter) copySubset(ctx context.Context, logger *slog.Logger, progress logging.ProgressFactory, imagesDir, labelsDir, subsetDir string, files []string) ([]string, error) {
	var missing []string
	bar := progress(filepath.Base(subsetDir), len(files))
	defer bar.Finish()
	for _, img := range files {
		if err := ctx.Err(); err != nil {
			return missing, err
		}
		if err := fileutil.CopyFile(filepath.Join(imagesDir, img), filepath.Join(subsetDir, dataset.ImagesDir, img)); err != nil {
			return missing, err
		}
		label := dataset.Stem(img) + dataset.LabelExt
		src := filepath.Join(labelsDir, label)
		if fileutil.IsFile(src) {
			if err := fileutil.CopyFile(src, filepath.Join(subsetDir, dataset.LabelsDir, label)); err != nil {
				return missing, err
			}
		} else {
			logging.WarnWithContext(logger, "label not found for image", "label_missing",
				logging.String(logging.FieldFile, img),
				logging.String("expected", label),
				logging.String(logging.FieldImpact, "image copied without labels"),
			)
			missing = append(missing, img)
		}
		bar.Add(1)
	}
	return missing, nil
}
