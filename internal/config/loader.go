package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Environment variables that override file values.
const (
	EnvSecretKey = "SECRET_KEY"
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
)

// LoadDotEnv loads variables from .env files without overriding ones already
// set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from configPath, applies environment overrides and
// validates the result. An empty configPath uses defaults plus environment.
// When a .checksums manifest sits next to the file it must match.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if configPath != "" {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("config file not found: %s\n"+
				"Hint: Check the path or run with --config flag", absPath)
		}
		if info.IsDir() {
			absPath = filepath.Join(absPath, "config.yaml")
		}

		if err := loadConfigFile(absPath, cfg); err != nil {
			return nil, err
		}
		cfg.Path = absPath

		result, err := VerifyIntegrity(absPath)
		if err != nil {
			return nil, err
		}
		if !result.Passed {
			return nil, fmt.Errorf("config integrity check failed: %s", strings.Join(result.Errors, "; "))
		}
		cfg.Warnings = result.Warnings
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := interpolateEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(EnvSecretKey); ok && v != "" {
		cfg.Server.Secret = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		cfg.Server.Listen = "0.0.0.0:" + v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Service.LogLevel = strings.ToLower(v)
	}
}

// interpolateEnv replaces ${VAR} with its value. Unset variables are left in
// place so validate can name them.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if strings.TrimSpace(cfg.Server.Listen) == "" {
		return fmt.Errorf("server.listen is required")
	}

	if matches := envVarPattern.FindStringSubmatch(cfg.Server.Secret); len(matches) > 1 {
		return fmt.Errorf("server.secret: environment variable ${%s} is not set", matches[1])
	}
	if cfg.Server.Secret == "" {
		return fmt.Errorf("server.secret is required (set %s or server.secret)", EnvSecretKey)
	}

	if _, err := cfg.MaxBodyBytes(); err != nil {
		return fmt.Errorf("server.max_body_size %q: %w", cfg.Server.MaxBodySize, err)
	}

	return nil
}
