package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/placelink/placelink/internal/config"
	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	v *viper.Viper
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.placelink.yaml or ./.placelink.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := config.Bind(v); err != nil {
		return nil, err
	}

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath(".")
	v.SetConfigType("yaml")
	v.SetConfigName(strings.TrimSuffix(constants.DefaultConfigFile, ".yaml"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("viper", "failed to read config file", err)
		}
	}

	return &Config{
		ConfigFile: v.ConfigFileUsed(),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		LogFormat:  getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:  getEnvOrDefault("LOG_OUTPUT", "stderr"),
		v:          v,
	}, nil
}

// ReadConfigFile replaces the searched config file with path.
func (c *Config) ReadConfigFile(path string) error {
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return errors.NewConfigError("viper", "failed to read "+path, err)
	}
	c.ConfigFile = c.v.ConfigFileUsed()
	return nil
}

// Viper returns the viper instance holding credentials and endpoints.
func (c *Config) Viper() *viper.Viper {
	return c.v
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor || os.Getenv("NO_COLOR") != ""
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. Variables already present in the
// environment are never overwritten.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
