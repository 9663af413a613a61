package masks

import (
	"image"
	"slices"
)

// Remap maps original non-zero mask values to new ids. Background (0) is
// never a key and always stays 0.
type Remap map[uint8]uint8

// DistinctValues returns the sorted non-zero values present in m.
func DistinctValues(m *image.Gray) []uint8 {
	var seen [256]bool
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		for _, v := range row {
			seen[v] = true
		}
	}
	values := make([]uint8, 0, 8)
	for v := 1; v < len(seen); v++ {
		if seen[v] {
			values = append(values, uint8(v))
		}
	}
	return values
}

// BuildRemap assigns ids 1..k to the k distinct non-zero values of m in
// ascending order of original value.
func BuildRemap(m *image.Gray) Remap {
	values := DistinctValues(m)
	remap := make(Remap, len(values))
	for i, v := range values {
		remap[v] = uint8(i + 1)
	}
	return remap
}

// Apply rewrites m in place. Values without an entry are left unchanged.
func (r Remap) Apply(m *image.Gray) {
	if len(r) == 0 {
		return
	}
	var table [256]uint8
	for v := range table {
		table[v] = uint8(v)
	}
	for from, to := range r {
		if from == 0 {
			continue
		}
		table[from] = to
	}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)]
		for i, v := range row {
			row[i] = table[v]
		}
	}
}

// Keys returns the original values in ascending order.
func (r Remap) Keys() []uint8 {
	keys := make([]uint8, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
