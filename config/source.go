package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// source is a settings or secrets file flattened into
// case-insensitive "Section:Key" names.
type source struct {
	path   string
	values map[string]string
}

// readSource loads path. A missing file yields an empty source.
func readSource(path string) (source, error) {
	src := source{path: path, values: map[string]string{}}
	if path == "" {
		return src, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return src, nil
	}
	if err != nil {
		return src, fmt.Errorf("failed to read '%s': %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return src, fmt.Errorf("error parsing '%s': %w", path, err)
	}
	if len(root.Content) == 0 {
		return src, nil
	}
	if err := flatten(src.values, "", root.Content[0]); err != nil {
		return src, fmt.Errorf("error parsing '%s': %w", path, err)
	}
	return src, nil
}

func flatten(out map[string]string, prefix string, n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := flatten(out, join(prefix, n.Content[i].Value), n.Content[i+1]); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			if err := flatten(out, join(prefix, strconv.Itoa(i)), item); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if prefix == "" {
			return errors.New("expected a mapping at the top level")
		}
		if n.Tag != "!!null" {
			out[strings.ToLower(prefix)] = n.Value
		}
	case yaml.AliasNode:
		return flatten(out, prefix, n.Alias)
	}
	return nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

func (s source) value(key string) (string, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// list returns the indexed children of key in order.
func (s source) list(key string) []string {
	prefix := strings.ToLower(key) + ":"
	type entry struct {
		idx int
		val string
	}
	var entries []entry
	for k, v := range s.values {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		entries = append(entries, entry{idx: idx, val: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	list := make([]string, 0, len(entries))
	for _, e := range entries {
		list = append(list, e.val)
	}
	return list
}
