package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placelink/placelink/internal/config"
)

func TestLoadConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LOG_FORMAT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.LogFormat)
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.NotNil(t, cfg.Viper())
}

func TestLoadConfig_ConfigFileInWorkingDirectory(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.KeyOSMAPIURL, "")
	require.NoError(t, os.WriteFile(".placelink.yaml", []byte("OSM_API_URL: https://master.apis.dev.openstreetmap.org\n"), 0o644))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Contains(t, cfg.ConfigFile, ".placelink.yaml")
	assert.Equal(t, "https://master.apis.dev.openstreetmap.org", config.FromViper(cfg.Viper()).OSM.APIURL)
}

func TestLoadConfig_EnvFiles(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(config.KeyWikidataUsername, "")
	os.Unsetenv(config.KeyWikidataUsername)
	t.Setenv(config.KeyUserAgent, "from-env")

	require.NoError(t, os.WriteFile(".env", []byte("WIKIDATA_USERNAME=Bot@dotenv\nUSER_AGENT=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv(config.KeyWikidataUsername) })

	cfg, err := LoadConfig()
	require.NoError(t, err)

	creds := config.FromViper(cfg.Viper())
	assert.Equal(t, "Bot@dotenv", creds.Wikidata.Username)
	// the real environment wins over .env
	assert.Equal(t, "from-env", creds.UserAgent)
}

func TestConfig_UpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml", LogLevel: "info"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)

	cfg.UpdateFromFlags(false, true, false, "json", "error")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestConfig_ReadConfigFileMissing(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Error(t, cfg.ReadConfigFile("does-not-exist.yaml"))
}
