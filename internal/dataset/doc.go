// Package dataset holds the naming conventions shared by the merge,
// normalize, labels, and split stages: directory names, accepted
// extensions, stems, and the error kinds stages report.
package dataset
