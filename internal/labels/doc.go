// Package labels turns normalized masks into polygon label files and writes
// the dataset manifest the trainer reads.
//
// A label file holds one line per instance: the class index followed by the
// polygon vertices as x y pairs normalized by image width and height. Mask id
// v maps to class v-1; ids above the configured class count are reported and
// skipped.
package labels
