package split

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"segprep/internal/dataset"
)

// Ratios are the fractions of images assigned to each subset.
type Ratios struct {
	Train float64 `json:"train"`
	Valid float64 `json:"valid"`
	Test  float64 `json:"test"`
}

// DefaultRatios is the 70/20/10 split.
var DefaultRatios = Ratios{Train: 0.7, Valid: 0.2, Test: 0.1}

// Validate fails unless every ratio lies in [0,1] and their sum, rounded to
// nine decimals, is exactly one.
func (r Ratios) Validate() error {
	for _, v := range []float64{r.Train, r.Valid, r.Test} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return dataset.Wrap(dataset.ErrConfiguration, "split", "validate ratios",
				fmt.Sprintf("ratio %v outside [0,1]", v), nil)
		}
	}
	sum := r.Train + r.Valid + r.Test
	if math.Round(sum*1e9)/1e9 != 1.0 {
		return dataset.Wrap(dataset.ErrConfiguration, "split", "validate ratios",
			fmt.Sprintf("ratios sum to %v, must sum to 1", sum), nil)
	}
	return nil
}

// ParseRatios reads "train,valid,test".
func ParseRatios(s string) (Ratios, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Ratios{}, dataset.Wrap(dataset.ErrConfiguration, "split", "parse ratios",
			fmt.Sprintf("expected three comma-separated values, got %q", s), nil)
	}
	values := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Ratios{}, dataset.Wrap(dataset.ErrConfiguration, "split", "parse ratios", p, err)
		}
		values[i] = v
	}
	r := Ratios{Train: values[0], Valid: values[1], Test: values[2]}
	return r, r.Validate()
}

// String formats the ratios as ParseRatios accepts them.
func (r Ratios) String() string {
	return strings.Join([]string{
		strconv.FormatFloat(r.Train, 'f', -1, 64),
		strconv.FormatFloat(r.Valid, 'f', -1, 64),
		strconv.FormatFloat(r.Test, 'f', -1, 64),
	}, ",")
}

// counts returns the subset sizes for n images: train and valid are floored,
// test takes the remainder.
func (r Ratios) counts(n int) (train, valid, test int) {
	train = int(float64(n) * r.Train)
	valid = int(float64(n) * r.Valid)
	if train+valid > n {
		valid = n - train
	}
	return train, valid, n - train - valid
}
