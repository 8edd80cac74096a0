package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// AddSource appends a source to the config file at configPath.
// It preserves the existing YAML structure and comments.
// If a source with the same name already exists, it does nothing.
func AddSource(configPath string, src SourceConfig) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	sourcesNode := findMapValue(docNode, "sources")
	if sourcesNode == nil {
		sourcesNode = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "sources"}
		docNode.Content = append(docNode.Content, keyNode, sourcesNode)
	} else if sourcesNode.Kind != yaml.SequenceNode {
		// "sources:" with no value parses as a null scalar
		*sourcesNode = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	}
	// Block style, even if the file had "sources: []"
	sourcesNode.Style = 0

	for _, item := range sourcesNode.Content {
		if name := findMapValue(item, "name"); name != nil && name.Value == src.Name {
			return nil
		}
	}

	var srcNode yaml.Node
	if err := srcNode.Encode(src); err != nil {
		return fmt.Errorf("failed to encode source: %w", err)
	}
	sourcesNode.Content = append(sourcesNode.Content, &srcNode)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
