package diag

import (
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config is the host's severity table.
// The zero Config uses the default severity of every kind.
type Config struct {
	severities map[Kind]Severity
}

// DefaultConfig returns a Config with default severities.
func DefaultConfig() *Config { return &Config{} }

// Severity returns the configured severity of k.
// A nil Config returns the default.
func (c *Config) Severity(k Kind) Severity {
	if c != nil {
		if s, ok := c.severities[k]; ok {
			return s
		}
	}
	return defaultSeverities[k]
}

// Set sets the severity of k.
func (c *Config) Set(k Kind, s Severity) {
	if c.severities == nil {
		c.severities = make(map[Kind]Severity)
	}
	c.severities[k] = s
}

// configFile is the YAML form of a Config:
//
//	severities:
//	  MissingDefaultCase: warning
//	  PatternDominatedByEarlierLabel: error
type configFile struct {
	Severities map[string]string `yaml:"severities"`
}

// LoadConfig reads and parses a YAML severity configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses YAML severity configuration content.
// The path is used only in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	names := maps.Keys(f.Severities)
	slices.Sort(names)
	c := DefaultConfig()
	for _, n := range names {
		k, ok := ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("%s: unknown diagnostic kind %q", path, n)
		}
		s, err := ParseSeverity(f.Severities[n])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, n, err)
		}
		c.Set(k, s)
	}
	return c, nil
}
