package yamlconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/myshadowbank/exolix-sdk/core"
	"gopkg.in/yaml.v3"
)

const DefaultSection = "exolix"

// FileLoader reads client settings from a YAML file. When Section is set only
// that top-level mapping is returned.
type FileLoader struct {
	Path    string
	Section string
}

func NewFileLoader(path string, section string) *FileLoader {
	return &FileLoader{Path: path, Section: section}
}

func (l *FileLoader) LoadRaw(ctx context.Context) (map[string]any, error) {
	if l == nil || strings.TrimSpace(l.Path) == "" {
		return nil, fmt.Errorf("yamlconfig: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("yamlconfig: read %s: %w", l.Path, err)
	}
	return Parse(data, l.Section)
}

// Parse decodes a YAML document and returns section, or the whole document
// when section is empty. A missing section yields an empty map.
func Parse(data []byte, section string) (map[string]any, error) {
	document := map[string]any{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("yamlconfig: decode: %w", err)
	}
	section = strings.TrimSpace(section)
	if section == "" {
		return document, nil
	}
	raw, ok := document[section]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	values, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("yamlconfig: section %q is not a mapping", section)
	}
	return values, nil
}

var _ core.RawConfigLoader = (*FileLoader)(nil)
