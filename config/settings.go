package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SettingsFileError reports a settings file that exists but cannot be
// read or parsed. A malformed file is fatal; there is no fallback to
// defaults once a file is present.
type SettingsFileError struct {
	Path string
	Err  error
}

func (e *SettingsFileError) Error() string {
	return fmt.Sprintf("settings file %s: %v", e.Path, e.Err)
}

func (e *SettingsFileError) Unwrap() error { return e.Err }

// settingsField describes one key of the settings file schema.
type settingsField struct {
	key     string
	comment string
	value   func() interface{}
}

// settingsSchema lists every recognized settings key with its default.
// Certdir defaults are computed lazily because they depend on the home
// directory.
var settingsSchema = []settingsField{
	{"host", "Host address to bind to", func() interface{} { return DefaultHost }},
	{"port", "Port to listen on", func() interface{} { return DefaultPort }},
	{"certdir", "Certificate directory", func() interface{} { return DefaultCertDir() }},
	{"disabled_addons", "Addons to disable, comma-separated or a list (e.g. CSP,COEP)", func() interface{} { return []string{} }},
}

// ensureSettingsFile guarantees that the file at path exists and contains
// every schema key. A missing file is created populated with defaults;
// an existing file has missing keys backfilled and is rewritten through
// the yaml node tree, so human comments and formatting survive.
func ensureSettingsFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return &SettingsFileError{Path: path, Err: err}
	}

	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		doc = emptyDocument()
	case err != nil:
		return &SettingsFileError{Path: path, Err: err}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return &SettingsFileError{Path: path, Err: err}
		}
		if doc.Kind == 0 || len(doc.Content) == 0 {
			// File was empty or comments-only.
			doc = emptyDocument()
		}
	}

	mapping := doc.Content[0]
	if mapping.Kind == yaml.ScalarNode && mapping.Tag == "!!null" {
		// A bare null document counts as an empty mapping.
		doc = emptyDocument()
		mapping = doc.Content[0]
	}
	if mapping.Kind != yaml.MappingNode {
		return &SettingsFileError{Path: path, Err: fmt.Errorf("expected a key/value mapping, got %s", nodeKind(mapping))}
	}

	for _, field := range settingsSchema {
		if hasKey(mapping, field.key) {
			continue
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: field.key, HeadComment: field.comment}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(field.value()); err != nil {
			return &SettingsFileError{Path: path, Err: err}
		}
		mapping.Content = append(mapping.Content, keyNode, valueNode)
	}

	out, err := os.Create(path)
	if err != nil {
		return &SettingsFileError{Path: path, Err: err}
	}
	defer out.Close()

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return &SettingsFileError{Path: path, Err: err}
	}
	return enc.Close()
}

func emptyDocument() yaml.Node {
	return yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode}},
	}
}

func hasKey(mapping *yaml.Node, key string) bool {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return true
		}
	}
	return false
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.SequenceNode:
		return "a list"
	case yaml.MappingNode:
		return "a mapping"
	default:
		return "an unknown node"
	}
}
