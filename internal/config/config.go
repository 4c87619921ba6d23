// Package config loads run settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/naka-gawa/osci-stats/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOwner is the organization aggregated when none is given.
	DefaultOwner = "opensearch-project"
	// DefaultSince is the cutoff date used when none is given.
	DefaultSince = "2023-09-19"
	// DefaultContributorsFile is read when no contributor source is configured.
	DefaultContributorsFile = "contributors.txt"
	// DateLayout is the accepted layout of the since date.
	DateLayout = "2006-01-02"
	// TokenEnv names the environment variable holding the GitHub token.
	TokenEnv = "GITHUB_TOKEN"

	FormatText = "text"
	FormatJSON = "json"
)

// Config represents the run configuration. Tokens are deliberately not part
// of it and are only taken from the environment or the command line.
type Config struct {
	Owner              string        `yaml:"owner,omitempty"`
	Since              string        `yaml:"since,omitempty"`
	ContributorsURL    string        `yaml:"contributors_url,omitempty"`
	ContributorsFile   string        `yaml:"contributors_file,omitempty"`
	Strategy           string        `yaml:"strategy,omitempty"`
	Concurrency        int           `yaml:"concurrency,omitempty"`
	RequestsPerSecond  float64       `yaml:"requests_per_second,omitempty"`
	WaitSecondaryLimit bool          `yaml:"wait_secondary_limit,omitempty"`
	Format             string        `yaml:"format,omitempty"`
	APIURL             string        `yaml:"api_url,omitempty"`
	RequestTimeout     time.Duration `yaml:"request_timeout,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Owner:            DefaultOwner,
		Since:            DefaultSince,
		ContributorsFile: DefaultContributorsFile,
		Strategy:         string(domain.StrategyPerRepository),
		Format:           FormatText,
		APIURL:           "https://api.github.com",
	}
}

// LocalConfigPath returns the path of the config file picked up from the
// current directory when no explicit path is given.
func LocalConfigPath() string {
	return ".osci-stats.yaml"
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path falls back to LocalConfigPath, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = LocalConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the run cannot use.
func (c *Config) Validate() error {
	if c.Owner == "" {
		return errors.New("owner must not be empty")
	}
	if c.Since != "" {
		if _, err := time.Parse(DateLayout, c.Since); err != nil {
			return fmt.Errorf("invalid since date %q, please use YYYY-MM-DD: %w", c.Since, err)
		}
	}
	if _, err := domain.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("invalid format %q (must be %s or %s)", c.Format, FormatText, FormatJSON)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}

// Token returns the GitHub token from the environment, or "" when unset.
func Token() string {
	return os.Getenv(TokenEnv)
}

// ToYAML returns the config as a YAML string.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
