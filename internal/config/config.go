// Package config provides configuration management for jx.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arnodel/jsonml/naming"
	"github.com/arnodel/jsonml/token"
	"github.com/arnodel/jsonml/transform/xmldata"
)

// Config holds the jx configuration.  Command line flags take precedence
// over it.
type Config struct {
	Pretty            bool   `yaml:"pretty,omitempty"`
	Tab               string `yaml:"tab"`
	NewLine           string `yaml:"newline"`
	JSONIndent        int    `yaml:"json_indent"`
	Strict            bool   `yaml:"strict,omitempty"`
	DeclareNamespaces bool   `yaml:"declare_namespaces,omitempty"`
	KeepWhitespace    bool   `yaml:"keep_whitespace,omitempty"`
	AttributePrefix   string `yaml:"attribute_prefix,omitempty"`
	Color             string `yaml:"color,omitempty"`

	// RootName is the element name of values that have no name, unless
	// Names has one for their shape.
	RootName string `yaml:"root_name,omitempty"`

	// Names maps shapes ("object", "array", "string"...) to element names.
	Names map[string]string `yaml:"names,omitempty"`
}

// Default returns the configuration used when there is no config file.
func Default() *Config {
	return &Config{
		Tab:        "\t",
		NewLine:    "\n",
		JSONIndent: 2,
		Color:      "auto",
	}
}

// Validate checks that all fields have valid values.
func (c *Config) Validate() error {
	if strings.TrimLeft(c.Tab, " \t") != "" {
		return errors.New("tab must only contain spaces and tabs")
	}
	if strings.TrimLeft(c.NewLine, "\r\n") != "" {
		return errors.New("newline must only contain line breaks")
	}
	if c.JSONIndent < -1 {
		return errors.New("json_indent must be at least -1")
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, not %q", c.Color)
	}
	for shape, name := range c.Names {
		if _, ok := token.ParseShape(shape); !ok {
			return fmt.Errorf("unknown shape %q in names", shape)
		}
		if name == "" {
			return fmt.Errorf("empty name for shape %q", shape)
		}
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() error {
	if err := boolFromEnv("JX_PRETTY", &c.Pretty); err != nil {
		return err
	}
	if err := boolFromEnv("JX_STRICT", &c.Strict); err != nil {
		return err
	}
	if err := boolFromEnv("JX_DECLARE_NS", &c.DeclareNamespaces); err != nil {
		return err
	}
	if err := boolFromEnv("JX_KEEP_WHITESPACE", &c.KeepWhitespace); err != nil {
		return err
	}
	if root := os.Getenv("JX_ROOT"); root != "" {
		c.RootName = root
	}
	if prefix := os.Getenv("JX_ATTR_PREFIX"); prefix != "" {
		c.AttributePrefix = prefix
	}
	if color := os.Getenv("JX_COLOR"); color != "" {
		c.Color = color
	}
	if indent := os.Getenv("JX_JSON_INDENT"); indent != "" {
		n, err := strconv.Atoi(indent)
		if err != nil {
			return fmt.Errorf("invalid JX_JSON_INDENT: %w", err)
		}
		c.JSONIndent = n
	}
	return nil
}

func boolFromEnv(name string, dest *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dest = b
	return nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "jx", "config.yml")
	}

	// Fall back to ~/.config/jx/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".jx", "config.yml")
	}

	return filepath.Join(home, ".config", "jx", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MarshalYAML writes tab and newline as double quoted strings.  yaml.v3 would
// otherwise use block scalars for them, which do not read back the same.
func (c Config) MarshalYAML() (any, error) {
	type plain Config
	var node yaml.Node
	if err := node.Encode(plain(c)); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch key, value := node.Content[i], node.Content[i+1]; key.Value {
		case "tab":
			quote(value, c.Tab)
		case "newline":
			quote(value, c.NewLine)
		}
	}
	return &node, nil
}

func quote(node *yaml.Node, s string) {
	*node = yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Style: yaml.DoubleQuotedStyle, Value: s}
}

// Load reads the configuration from the specified path.  Fields missing from
// the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads configuration from file and overrides with environment
// variables.  A missing file is not an error.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolver returns the naming of values that have no name of their own.
func (c *Config) Resolver() *naming.Map {
	m := &naming.Map{}
	if c.RootName != "" {
		m.Fallback = naming.Fixed(token.LocalName(c.RootName))
	}
	for shapeName, name := range c.Names {
		if shape, ok := token.ParseShape(shapeName); ok {
			m.Set(shape, token.LocalName(name))
		}
	}
	return m
}

// Settings returns the xmldata settings for this configuration.
func (c *Config) Settings() *xmldata.Settings {
	return &xmldata.Settings{
		PrettyPrint:       c.Pretty,
		Tab:               c.Tab,
		NewLine:           c.NewLine,
		Resolver:          c.Resolver(),
		DeclareNamespaces: c.DeclareNamespaces,
		Strict:            c.Strict,
	}
}
