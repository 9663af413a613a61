package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Directory names shared by every stage.
const (
	ImagesDir = "images"
	MasksDir  = "masks"
	LabelsDir = "labels"
	DataDir   = "data"
)

// LabelExt is the extension of label text files.
const LabelExt = ".txt"

// ImageExts lists the extensions accepted for images and paired masks, in
// the order alternates are tried.
var ImageExts = []string{".png", ".jpg", ".jpeg"}

// MaskRasterExts lists the extensions the mask normalizer decodes.
var MaskRasterExts = []string{".png", ".bmp", ".tif", ".tiff"}

// Stem returns the file name without its final extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// HasExt reports whether name ends in one of exts. The comparison is
// case-sensitive, matching the on-disk naming the tools were written for.
func HasExt(name string, exts []string) bool {
	return slices.Contains(exts, filepath.Ext(name))
}

// ListFiles returns the sorted names of regular files in dir whose
// extension is in exts.
func ListFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if HasExt(entry.Name(), exts) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
