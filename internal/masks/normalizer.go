package masks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"segprep/internal/dataset"
	"segprep/internal/fileutil"
	"segprep/internal/logging"
)

// Registry hands out ids shared by every mask of a dataset. Resolve must
// return an entry for each value it is given, assigning new ids to values it
// has not seen before. source names the mask file the values came from.
type Registry interface {
	Resolve(ctx context.Context, source string, values []uint8) (map[uint8]uint8, error)
}

// Normalizer rewrites mask rasters into a dense id space.
type Normalizer struct {
	Logger *slog.Logger
	// Registry switches from per-file ids to a shared value->id table.
	Registry Registry
	Progress logging.ProgressFactory
}

// FileResult describes one normalized mask.
type FileResult struct {
	Name   string  `json:"name"`
	Values []uint8 `json:"values"`
	IDs    []uint8 `json:"ids"`
}

// Result summarizes a normalization run.
type Result struct {
	Files      []FileResult `json:"files"`
	Background []string     `json:"background"`
}

// Processed returns the number of masks written.
func (r Result) Processed() int { return len(r.Files) }

// Run normalizes every mask raster in inputDir and writes it under the same
// name in outputDir.
func (n *Normalizer) Run(ctx context.Context, inputDir, outputDir string) (Result, error) {
	logger := n.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := n.Progress
	if progress == nil {
		progress = logging.NopProgress
	}

	if !fileutil.IsDir(inputDir) {
		return Result{}, dataset.Wrap(dataset.ErrNotFound, "normalize", "open input", inputDir, nil)
	}
	names, err := dataset.ListFiles(inputDir, dataset.MaskRasterExts)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create %s: %w", outputDir, err)
	}

	mode := "per_file"
	if n.Registry != nil {
		mode = "global"
	}
	logger.Info("normalizing masks",
		logging.String("input", inputDir),
		logging.String("output", outputDir),
		logging.Int("files", len(names)),
		logging.String("id_mode", mode),
	)

	result := Result{Files: make([]FileResult, 0, len(names))}
	bar := progress("normalize", len(names))
	defer bar.Finish()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fr, err := n.normalizeFile(ctx, filepath.Join(inputDir, name), filepath.Join(outputDir, name))
		if err != nil {
			return result, err
		}
		if len(fr.Values) == 0 {
			result.Background = append(result.Background, name)
		}
		result.Files = append(result.Files, fr)
		bar.Add(1)
		logger.Debug("mask normalized",
			logging.String(logging.FieldFile, name),
			logging.Int("distinct_values", len(fr.Values)),
		)
	}

	logger.Info("mask normalization complete",
		logging.Int("processed", result.Processed()),
		logging.Int("background_only", len(result.Background)),
	)
	return result, nil
}

func (n *Normalizer) normalizeFile(ctx context.Context, src, dst string) (FileResult, error) {
	mask, err := Load(src)
	if err != nil {
		return FileResult{}, err
	}

	values := DistinctValues(mask)
	var remap Remap
	if n.Registry != nil && len(values) > 0 {
		shared, err := n.Registry.Resolve(ctx, filepath.Base(src), values)
		if err != nil {
			return FileResult{}, fmt.Errorf("resolve ids for %s: %w", filepath.Base(src), err)
		}
		remap = Remap(shared)
	} else {
		remap = BuildRemap(mask)
	}
	remap.Apply(mask)

	if err := Save(mask, dst); err != nil {
		return FileResult{}, err
	}

	ids := make([]uint8, len(values))
	for i, v := range values {
		ids[i] = remap[v]
	}
	return FileResult{Name: filepath.Base(src), Values: values, IDs: ids}, nil
}
