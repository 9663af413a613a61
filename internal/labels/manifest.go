package labels

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ManifestName is the manifest file written under the split data directory.
const ManifestName = "data.yaml"

// DefaultClassCount is the class table size when no names are configured.
const DefaultClassCount = 6

// Manifest describes a split dataset for the trainer.
type Manifest struct {
	Path  string
	Train string
	Val   string
	Test  string
	// Names is indexed by class id.
	Names []string
}

// NewManifest builds the manifest for dataDir. Empty names fall back to the
// class index.
func NewManifest(dataDir string, names []string) (Manifest, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return Manifest{}, fmt.Errorf("resolve data dir: %w", err)
	}
	if len(names) == 0 {
		names = DefaultClassNames(DefaultClassCount)
	}
	filled := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = strconv.Itoa(i)
		}
		filled[i] = n
	}
	return Manifest{
		Path:  abs,
		Train: "train/images",
		Val:   "valid/images",
		Test:  "test/images",
		Names: filled,
	}, nil
}

// DefaultClassNames returns "0".."n-1".
func DefaultClassNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// Node renders the manifest as an ordered YAML document.
func (m Manifest) Node() *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode, HeadComment: "dataset configuration"}
	addPair(root, "path", m.Path, "dataset root")
	addPair(root, "train", m.Train, "training images, relative to path")
	addPair(root, "val", m.Val, "validation images, relative to path")
	addPair(root, "test", m.Test, "test images, relative to path")

	names := &yaml.Node{Kind: yaml.MappingNode}
	for i, n := range m.Names {
		names.Content = append(names.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(i)},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n, Style: yaml.DoubleQuotedStyle},
		)
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "names", HeadComment: "class names"},
		names,
	)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

func addPair(mapping *yaml.Node, key, value, comment string) {
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, LineComment: comment},
	)
}

// Marshal encodes the manifest with two-space indentation.
func (m Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.Node()); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteManifest writes m to path, creating parent directories.
func WriteManifest(path string, m Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

type manifestFile struct {
	Path  string         `yaml:"path"`
	Train string         `yaml:"train"`
	Val   string         `yaml:"val"`
	Test  string         `yaml:"test"`
	Names map[int]string `yaml:"names"`
}

// ReadManifest loads a manifest. Gaps in the class table are filled with the
// class index.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var raw manifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	ids := make([]int, 0, len(raw.Names))
	for id := range raw.Names {
		if id < 0 {
			return Manifest{}, fmt.Errorf("parse manifest %s: negative class id %d", path, id)
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var names []string
	if len(ids) > 0 {
		names = DefaultClassNames(ids[len(ids)-1] + 1)
		for _, id := range ids {
			names[id] = raw.Names[id]
		}
	}
	return Manifest{Path: raw.Path, Train: raw.Train, Val: raw.Val, Test: raw.Test, Names: names}, nil
}
