package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateClasses(); err != nil {
		return err
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	if c.Masks.InputSubdir == c.Masks.OutputSubdir {
		return errors.New("masks.output_subdir must differ from masks.input_subdir")
	}
	return nil
}

func (c *Config) validateSplit() error {
	for key, value := range map[string]float64{
		"split.train": c.Split.Train,
		"split.valid": c.Split.Valid,
		"split.test":  c.Split.Test,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	sum := c.Split.Train + c.Split.Valid + c.Split.Test
	if math.Round(sum*1e9)/1e9 != 1.0 {
		return fmt.Errorf("split ratios must sum to 1 (got %g)", sum)
	}
	return nil
}

func (c *Config) validateClasses() error {
	if c.Classes.Count <= 0 {
		return errors.New("classes.count must be positive")
	}
	if c.Classes.Count > maxClassCount {
		return fmt.Errorf("classes.count must be at most %d", maxClassCount)
	}
	if len(c.Classes.Names) > c.Classes.Count {
		return fmt.Errorf("classes.names has %d entries but classes.count is %d", len(c.Classes.Names), c.Classes.Count)
	}
	return nil
}
