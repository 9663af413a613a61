// Package config loads, normalizes, and validates segprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the dataset
// layout, split ratios, mask settings, and class table so every command
// resolves directories the same way.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
