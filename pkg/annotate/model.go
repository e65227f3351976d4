package annotate

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/polyglot/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultModel is the built-in model used when no model name is configured.
const DefaultModel = "en_basic"

//go:embed models/*.yaml
var builtinModels embed.FS

// SuffixRule rewrites a word ending into its root-form ending.
type SuffixRule struct {
	Suffix  string `yaml:"suffix"`
	Replace string `yaml:"replace"`
	MinStem int    `yaml:"min_stem"`
}

// Model is the declarative description of an annotation model.
//
// Expected format:
//
//	name: en_basic
//	language: en
//	stopwords: [a, the, of]
//	exceptions:
//	  sat: sit
//	suffixes:
//	  - {suffix: ies, replace: y, min_stem: 2}
type Model struct {
	Name       string            `yaml:"name"`
	Language   string            `yaml:"language"`
	Stopwords  []string          `yaml:"stopwords"`
	Exceptions map[string]string `yaml:"exceptions"`
	Suffixes   []SuffixRule      `yaml:"suffixes"`
}

// ParseModel decodes a YAML model definition.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("failed to parse model: name is required")
	}
	return &m, nil
}

// LoadModel resolves a model by name.
// A name is looked up as <dir>/<name>.yaml, then as a literal path, then among
// the built-in models. An empty name selects DefaultModel.
func LoadModel(name, dir string) (*Model, error) {
	if name == "" {
		name = DefaultModel
	}

	for _, candidate := range modelPaths(name, dir) {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return ParseModel(data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read model %s: %w", candidate, err)
		}
	}

	data, err := builtinModels.ReadFile("models/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	return ParseModel(data)
}

func modelPaths(name, dir string) []string {
	var paths []string
	file := name
	if !strings.HasSuffix(file, ".yaml") && !strings.HasSuffix(file, ".yml") {
		file += ".yaml"
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, file))
	}
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		paths = append(paths, name)
	}
	return paths
}
