package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// includeResolver 展开 include 链：被包含的文件排在包含者之前，后合并者覆盖先合并者。
type includeResolver struct {
	visiting map[string]bool
	done     map[string]bool
	order    []string
}

func resolveIncludes(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	r := &includeResolver{visiting: map[string]bool{}, done: map[string]bool{}}
	if err := r.visit(abs); err != nil {
		return nil, err
	}
	return r.order, nil
}

func (r *includeResolver) visit(path string) error {
	path = filepath.Clean(path)
	if r.visiting[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if r.done[path] {
		return nil
	}
	r.visiting[path] = true
	includes, err := readIncludeList(path)
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := r.visit(inc); err != nil {
			return err
		}
	}
	delete(r.visiting, path)
	r.done[path] = true
	r.order = append(r.order, path)
	return nil
}

// readIncludeList accepts `include: base.yaml` or a list of paths.
func readIncludeList(path string) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var items []any
	switch val := v.Get("include").(type) {
	case nil:
		return nil, nil
	case string:
		items = []any{val}
	case []any:
		items = val
	default:
		return nil, fmt.Errorf("include must be a path or a list of paths")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings, got %T", item)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
