package domain

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConnectionConfig holds everything needed to open an authenticated session
// against one Atlassian product. It is built once at startup and treated as
// immutable for the process lifetime.
type ConnectionConfig struct {
	// BaseURL is the root URL of the instance (e.g. "https://example.atlassian.net").
	BaseURL string
	// Username is the account email (cloud) or login name (server).
	Username string
	// APIToken is the API token (cloud) or personal access token (server).
	// It must never appear in tool responses or logs.
	APIToken string
	// IsCloud selects cloud semantics: basic auth and, for Confluence,
	// the /wiki REST prefix. Server/Data Center instances use bearer auth.
	IsCloud bool
}

// ConfigError reports missing or invalid startup configuration.
// It is fatal: servers refuse to start on a ConfigError, it is never
// converted into a per-call failure envelope.
type ConfigError struct {
	Reason string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// FileConfig is the optional YAML configuration file. Values act as defaults;
// environment variables always take precedence.
type FileConfig struct {
	Jira       *FileConnection `yaml:"jira,omitempty"`
	Confluence *FileConnection `yaml:"confluence,omitempty"`
}

// FileConnection mirrors the environment variables for one product.
type FileConnection struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
	Cloud    *bool  `yaml:"cloud,omitempty"`
}

// LoadConfig reads the connection configuration for a product from the
// process environment. The product name selects the variable prefix:
// "JIRA" reads JIRA_URL, JIRA_USERNAME, JIRA_API_TOKEN and JIRA_CLOUD.
//
// URL, username and token are required; a missing or empty value yields a
// ConfigError naming the variable. The cloud flag defaults to true when the
// variable is absent or does not parse as a boolean.
func LoadConfig(product string) (*ConnectionConfig, error) {
	return loadConfig(product, nil)
}

// LoadConfigWithFile behaves like LoadConfig but fills values missing from
// the environment with defaults from a YAML configuration file.
func LoadConfigWithFile(product, path string) (*ConnectionConfig, error) {
	file, err := LoadFileConfig(path)
	if err != nil {
		return nil, err
	}
	return loadConfig(product, file.connection(product))
}

// LoadFileConfig reads and parses the optional YAML configuration file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigError{Reason: fmt.Sprintf("configuration file not found: %s", path)}
		}
		return nil, &ConfigError{Reason: fmt.Sprintf("failed to read configuration file: %v", err)}
	}

	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("invalid YAML in configuration file: %v", err)}
	}

	return &file, nil
}

// connection returns the file section for a product prefix, or nil.
func (f *FileConfig) connection(product string) *FileConnection {
	if f == nil {
		return nil
	}
	switch strings.ToUpper(product) {
	case "JIRA":
		return f.Jira
	case "CONFLUENCE":
		return f.Confluence
	default:
		return nil
	}
}

func loadConfig(product string, file *FileConnection) (*ConnectionConfig, error) {
	prefix := strings.ToUpper(product)

	cfg := &ConnectionConfig{
		BaseURL:  os.Getenv(prefix + "_URL"),
		Username: os.Getenv(prefix + "_USERNAME"),
		APIToken: os.Getenv(prefix + "_API_TOKEN"),
	}

	// File values only fill gaps left by the environment.
	if file != nil {
		if cfg.BaseURL == "" {
			cfg.BaseURL = file.URL
		}
		if cfg.Username == "" {
			cfg.Username = file.Username
		}
		if cfg.APIToken == "" {
			cfg.APIToken = file.APIToken
		}
	}

	if cfg.BaseURL == "" {
		return nil, &ConfigError{Reason: "missing " + prefix + "_URL"}
	}
	if cfg.Username == "" {
		return nil, &ConfigError{Reason: "missing " + prefix + "_USERNAME"}
	}
	if cfg.APIToken == "" {
		return nil, &ConfigError{Reason: "missing " + prefix + "_API_TOKEN"}
	}

	if err := validateBaseURL(prefix, cfg.BaseURL); err != nil {
		return nil, err
	}

	cloudVar, cloudSet := os.LookupEnv(prefix + "_CLOUD")
	switch {
	case cloudSet:
		cfg.IsCloud = ParseCloudFlag(cloudVar)
	case file != nil && file.Cloud != nil:
		cfg.IsCloud = *file.Cloud
	default:
		cfg.IsCloud = true
	}

	return cfg, nil
}

// ParseCloudFlag parses the cloud/server deployment flag. Values that do not
// parse as a boolean fall back to true, the documented permissive default
// for unset or malformed {PRODUCT}_CLOUD variables.
func ParseCloudFlag(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(value)))
	if err != nil {
		return true
	}
	return parsed
}

// validateBaseURL checks that the configured URL is usable for API calls.
func validateBaseURL(prefix, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("%s_URL is invalid: %v", prefix, err)}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ConfigError{Reason: prefix + "_URL must use http or https scheme"}
	}
	if parsed.Host == "" {
		return &ConfigError{Reason: prefix + "_URL must include a host"}
	}
	return nil
}
