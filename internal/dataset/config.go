package dataset

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Category is a numeric attribute cards can be ordered by.
type Category struct {
	ID     string            `yaml:"id"`
	Label  string            `yaml:"label"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Pool is a named subset of categories a session draws from.
type Pool struct {
	ID         string            `yaml:"id"`
	Label      string            `yaml:"label"`
	Labels     map[string]string `yaml:"labels,omitempty"`
	Categories []string          `yaml:"categories"`
}

// CategoryConfig is the on-disk category configuration.
type CategoryConfig struct {
	Categories        []Category `yaml:"categories"`
	EnabledCategories []string   `yaml:"enabled_categories,omitempty"`
	CategorySets      []Pool     `yaml:"category_sets,omitempty"`
}

// DefaultCategoryConfig returns the built-in categories and pools.
func DefaultCategoryConfig() (CategoryConfig, error) {
	return ParseCategoryConfig(defaultCategoriesYAML)
}

// ParseCategoryConfig decodes YAML (JSON is accepted too, being a YAML subset).
func ParseCategoryConfig(b []byte) (CategoryConfig, error) {
	var cfg CategoryConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return CategoryConfig{}, fmt.Errorf("parse category config: %w", err)
	}
	if len(cfg.Categories) == 0 {
		def, err := ParseCategoryConfig(defaultCategoriesYAML)
		if err != nil {
			return CategoryConfig{}, err
		}
		cfg.Categories = def.Categories
		if len(cfg.CategorySets) == 0 {
			cfg.CategorySets = def.CategorySets
		}
	}
	for i, c := range cfg.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return CategoryConfig{}, fmt.Errorf("category #%d has no id", i)
		}
	}
	return cfg, nil
}

// LoadCategoryConfig reads path, or returns the defaults when path is empty.
func LoadCategoryConfig(path string) (CategoryConfig, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCategoryConfig()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return CategoryConfig{}, fmt.Errorf("read category config: %w", err)
	}
	return ParseCategoryConfig(b)
}
