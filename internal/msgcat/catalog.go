package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.*.yaml
var defaultFiles embed.FS

// DefaultLanguage is used when a language has no template for a key.
const DefaultLanguage = "fr"

// Catalog holds per-language string templates loaded from embedded defaults
// and an optional override directory. Templates use text/template syntax and
// fail on missing keys.
type Catalog struct {
	mu   sync.RWMutex
	data map[string]map[string]*template.Template // lang -> flattened key -> template
}

// New loads the embedded messages and then applies overrides from dir if provided.
// Override files are named messages.<lang>.yaml.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{data: make(map[string]map[string]*template.Template)}

	if err := c.loadEmbedded(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) loadEmbedded() error {
	names, err := fs.Glob(defaultFiles, "messages.*.yaml")
	if err != nil {
		return fmt.Errorf("list embedded messages: %w", err)
	}
	for _, name := range names {
		raw, err := fs.ReadFile(defaultFiles, name)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", name, err)
		}
		if err := c.applyYAML(languageOf(name), raw); err != nil {
			return fmt.Errorf("parse embedded %s: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	seen := make(map[string]string) // lang:key -> filename
	for _, name := range files {
		lang := languageOf(name)
		if lang == "" {
			return fmt.Errorf("override %s: expected messages.<lang>.yaml", name)
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		flat, err := parseYAMLToFlat(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for k := range flat {
			id := lang + ":" + k
			if prev, ok := seen[id]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			seen[id] = name
		}
		if err := c.apply(lang, flat); err != nil {
			return fmt.Errorf("compile %s: %w", name, err)
		}
	}
	return nil
}

// languageOf extracts "en" from "messages.en.yaml".
func languageOf(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flattenStrings(m, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func (c *Catalog) applyYAML(lang string, b []byte) error {
	flat, err := parseYAMLToFlat(b)
	if err != nil {
		return err
	}
	return c.apply(lang, flat)
}

func (c *Catalog) apply(lang string, flat map[string]string) error {
	compiled := make(map[string]*template.Template, len(flat))
	for k, v := range flat {
		t, err := template.New(k).Option("missingkey=error").Parse(v)
		if err != nil {
			return err
		}
		compiled[k] = t
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data[lang] == nil {
		c.data[lang] = make(map[string]*template.Template, len(compiled))
	}
	for k, t := range compiled {
		c.data[lang][k] = t
	}
	return nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Languages lists the loaded languages in sorted order.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.data))
	for lang := range c.data {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Render executes the template for key in lang with data.
// Missing keys or missing template fields are errors.
func (c *Catalog) Render(lang, key string, data any) (string, error) {
	key = strings.TrimSpace(key)
	c.mu.RLock()
	tpl, ok := c.data[lang][key]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s/%s", lang, key)
	}
	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Text renders key in lang, falling back to DefaultLanguage and finally to
// the key itself.
func (c *Catalog) Text(lang, key string, params map[string]any) string {
	if s, err := c.Render(lang, key, params); err == nil {
		return s
	}
	if lang != DefaultLanguage {
		if s, err := c.Render(DefaultLanguage, key, params); err == nil {
			return s
		}
	}
	return key
}
