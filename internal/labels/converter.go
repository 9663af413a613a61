package labels

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"segprep/internal/contour"
	"segprep/internal/dataset"
	"segprep/internal/fileutil"
	"segprep/internal/logging"
	"segprep/internal/masks"
)

// minPolygonPoints is the smallest contour kept as an instance.
const minPolygonPoints = 3

// Converter writes one label file per normalized mask.
type Converter struct {
	// Classes is the number of classes; mask ids 1..Classes are accepted.
	Classes  int
	Logger   *slog.Logger
	Progress logging.ProgressFactory
}

// UnknownValue records a mask id that has no class.
type UnknownValue struct {
	File  string `json:"file"`
	Value uint8  `json:"value"`
}

// Result summarizes a conversion run.
type Result struct {
	Masks     int            `json:"masks"`
	Instances int            `json:"instances"`
	Empty     []string       `json:"empty"`
	Unknown   []UnknownValue `json:"unknown"`
}

// Convert extracts the instances of one mask along with the ids that had no
// class.
func (c *Converter) Convert(m *image.Gray) ([]Instance, []uint8) {
	b := m.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	var (
		instances []Instance
		unknown   []uint8
	)
	for _, v := range masks.DistinctValues(m) {
		if int(v) > c.Classes {
			unknown = append(unknown, v)
			continue
		}
		class := int(v) - 1
		for _, poly := range contour.External(m, v) {
			if len(poly) < minPolygonPoints {
				continue
			}
			in := Instance{Class: class, Points: make([]Vertex, len(poly))}
			for i, p := range poly {
				in.Points[i] = Vertex{X: float64(p.X) / w, Y: float64(p.Y) / h}
			}
			instances = append(instances, in)
		}
	}
	return instances, unknown
}

// Run converts every mask in masksDir into <stem>.txt under labelsDir.
func (c *Converter) Run(ctx context.Context, masksDir, labelsDir string) (Result, error) {
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	progress := c.Progress
	if progress == nil {
		progress = logging.NopProgress
	}
	if c.Classes < 1 {
		return Result{}, dataset.Wrap(dataset.ErrConfiguration, "labels", "validate",
			fmt.Sprintf("class count %d must be positive", c.Classes), nil)
	}
	if !fileutil.IsDir(masksDir) {
		return Result{}, dataset.Wrap(dataset.ErrNotFound, "labels", "open masks", masksDir, nil)
	}
	names, err := dataset.ListFiles(masksDir, dataset.MaskRasterExts)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(labelsDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create %s: %w", labelsDir, err)
	}

	logger.Info("converting masks to labels",
		logging.String("masks", masksDir),
		logging.String("labels", labelsDir),
		logging.Int("files", len(names)),
		logging.Int("classes", c.Classes),
	)

	var result Result
	bar := progress("labels", len(names))
	defer bar.Finish()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		m, err := masks.Load(filepath.Join(masksDir, name))
		if err != nil {
			return result, err
		}
		instances, unknown := c.Convert(m)
		for _, v := range unknown {
			logging.WarnWithContext(logger, "mask value has no class", "unknown_class_value",
				logging.String(logging.FieldFile, name),
				logging.Int("value", int(v)),
				logging.Int("classes", c.Classes),
				logging.String(logging.FieldImpact, "pixels of this value are not labelled"),
			)
			result.Unknown = append(result.Unknown, UnknownValue{File: name, Value: v})
		}
		target := filepath.Join(labelsDir, dataset.Stem(name)+dataset.LabelExt)
		if err := writeLabels(target, instances); err != nil {
			return result, err
		}
		if len(instances) == 0 {
			result.Empty = append(result.Empty, name)
		}
		result.Masks++
		result.Instances += len(instances)
		bar.Add(1)
	}

	logger.Info("label conversion complete",
		logging.Int("masks", result.Masks),
		logging.Int("instances", result.Instances),
		logging.Int("empty", len(result.Empty)),
	)
	return result, nil
}

func writeLabels(path string, instances []Instance) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create labels %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	for _, in := range instances {
		if _, err := w.WriteString(in.Format() + "\n"); err != nil {
			_ = f.Close()
			return fmt.Errorf("write labels %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	return f.Close()
}
