package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel         = "gemini-2.5-flash"
	DefaultMaxIterations = 10
	DefaultScheme        = "xmldef"
)

// DefaultSystemPrompt is used by the agent when none is configured.
const DefaultSystemPrompt = `You are an XML Schema expert. Answer questions about XML documents by
resolving element and attribute names to their schema definitions with the
available tools, then explain what the definitions say. Quote the relevant
schema fragment and mention its location.`

// Config defines the schemas, identifier scheme, logging and agent settings.
// Root confines the documents MCP clients may read.
type Config struct {
	Scheme  string   `yaml:"scheme"`
	Schemas []string `yaml:"schemas"`
	Root    string   `yaml:"root"`
	Log     Log      `yaml:"log"`
	Agent   Agent    `yaml:"agent"`
}

// Log configures the commonlog backend.
type Log struct {
	Verbosity int    `yaml:"verbosity"`
	Path      string `yaml:"path"`
}

// Agent configures the explain-symbol agent.
type Agent struct {
	Model         string `yaml:"model"`
	MaxIterations int    `yaml:"max_iterations"`
	SystemPrompt  string `yaml:"system_prompt"`
	APIKey        string `yaml:"-"`
}

// Default returns a configuration with no schemas.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads a configuration from a YAML file. Relative schema paths and
// root are resolved against the file's directory, which is also the
// default root.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	for i, schema := range c.Schemas {
		c.Schemas[i] = resolvePath(baseDir, schema)
	}
	if c.Root == "" {
		c.Root = baseDir
	} else {
		c.Root = resolvePath(baseDir, c.Root)
	}
	c.applyDefaults()
	return &c, nil
}

// FromEnv loads XMLDEF_CONFIG when set, otherwise Default rooted at the
// working directory, and picks up GEMINI_API_KEY.
func FromEnv() (*Config, error) {
	c := Default()
	if path := os.Getenv("XMLDEF_CONFIG"); path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		c.Root = wd
	}
	c.Agent.APIKey = os.Getenv("GEMINI_API_KEY")
	return c, nil
}

// AddSchemas appends locations after the configured ones.
func (c *Config) AddSchemas(locations ...string) {
	c.Schemas = append(c.Schemas, locations...)
}

func (c *Config) applyDefaults() {
	if c.Scheme == "" {
		c.Scheme = DefaultScheme
	}
	if c.Agent.Model == "" {
		c.Agent.Model = DefaultModel
	}
	if c.Agent.MaxIterations <= 0 {
		c.Agent.MaxIterations = DefaultMaxIterations
	}
	if strings.TrimSpace(c.Agent.SystemPrompt) == "" {
		c.Agent.SystemPrompt = DefaultSystemPrompt
	}
}

func resolvePath(baseDir, location string) string {
	if strings.Contains(location, "://") || filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(baseDir, location)
}
