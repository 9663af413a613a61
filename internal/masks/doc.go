// Package masks rewrites segmentation mask rasters so their non-zero pixel
// values form a dense id space starting at 1.
//
// By default every mask is normalized on its own: the distinct non-zero
// values of that file are sorted and numbered 1..k, so the same original
// value can receive different ids in different files. Setting
// Normalizer.Registry switches to a shared value->id table (see the registry
// sub-package) for datasets that need ids to agree across files.
package masks
