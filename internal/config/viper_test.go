package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

func TestFromViperDefaults(t *testing.T) {
	for _, key := range Keys() {
		t.Setenv(key, "")
	}
	v := viper.New()
	require.NoError(t, Bind(v))

	c := FromViper(v)
	assert.Equal(t, constants.DefaultOSMAPIURL, c.OSM.APIURL)
	assert.Equal(t, constants.DefaultWikidataAPIURL, c.Wikidata.APIURL)
	assert.Equal(t, constants.DefaultTokenFile, c.OSM.TokenFile)
	assert.Equal(t, constants.DefaultUserAgent, c.UserAgent)
	assert.False(t, c.OSM.CanWrite())
	assert.False(t, c.Wikidata.CanWrite())

	err := c.RequireOSMWrite()
	require.Error(t, err)
	assert.True(t, errors.IsCredentialsError(err))
	assert.Error(t, c.RequireWikidataWrite())
}

func TestFromViperEnvironment(t *testing.T) {
	t.Setenv(KeyOSMAccessToken, " osm-token ")
	t.Setenv(KeyWikidataUsername, "Bot@placelink")
	t.Setenv(KeyWikidataPassword, "botpass")
	t.Setenv(KeyOSMAPIURL, "https://master.apis.dev.openstreetmap.org")

	v := viper.New()
	require.NoError(t, Bind(v))

	c := FromViper(v)
	assert.Equal(t, "osm-token", c.OSM.AccessToken)
	assert.Equal(t, "https://master.apis.dev.openstreetmap.org", c.OSM.APIURL)
	assert.True(t, c.OSM.CanWrite())
	assert.True(t, c.Wikidata.CanWrite())
	assert.NoError(t, c.RequireOSMWrite())
	assert.NoError(t, c.RequireWikidataWrite())
}

func TestFromViperConfigValues(t *testing.T) {
	t.Setenv(KeyOSMUsername, "")
	v := viper.New()
	v.Set(KeyOSMUsername, "mapper")
	v.Set(KeyOSMPassword, "pw")

	c := FromViper(v)
	assert.Equal(t, "mapper", c.OSM.Username)
	assert.True(t, c.OSM.CanWrite())
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "****", Mask("abc"))
	assert.Equal(t, "****5678", Mask("12345678"))
}

func TestStatusMasksSecrets(t *testing.T) {
	c := Credentials{
		OSM:      OSM{Username: "mapper", Password: "supersecret"},
		Wikidata: Wikidata{AccessToken: "tokentoken"},
	}
	entries := c.Status()
	require.Len(t, entries, len(Keys()))

	byKey := map[string]Entry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "mapper", byKey[KeyOSMUsername].Value)
	assert.Equal(t, "****cret", byKey[KeyOSMPassword].Value)
	assert.Equal(t, "****oken", byKey[KeyWikidataToken].Value)
	assert.False(t, byKey[KeyOSMClientID].Set)
}
