// Package config gathers credentials and endpoints for the write-back
// clients from viper (environment, .env files and the config file).
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// Environment keys.
const (
	KeyOSMUsername      = "OSM_USERNAME"
	KeyOSMPassword      = "OSM_PASSWORD"
	KeyOSMClientID      = "OSM_CLIENT_ID"
	KeyOSMClientSecret  = "OSM_CLIENT_SECRET"
	KeyOSMAccessToken   = "OSM_ACCESS_TOKEN"
	KeyOSMTokenFile     = "OSM_TOKEN_FILE"
	KeyOSMAPIURL        = "OSM_API_URL"
	KeyWikidataUsername = "WIKIDATA_USERNAME"
	KeyWikidataPassword = "WIKIDATA_PASSWORD"
	KeyWikidataToken    = "WIKIDATA_ACCESS_TOKEN"
	KeyWikidataAPIURL   = "WIKIDATA_API_URL"
	KeyUserAgent        = "USER_AGENT"
)

// Keys lists every credential and endpoint key.
func Keys() []string {
	return []string{
		KeyOSMUsername, KeyOSMPassword, KeyOSMClientID, KeyOSMClientSecret,
		KeyOSMAccessToken, KeyOSMTokenFile, KeyOSMAPIURL,
		KeyWikidataUsername, KeyWikidataPassword, KeyWikidataToken, KeyWikidataAPIURL,
		KeyUserAgent,
	}
}

// OSM holds OpenStreetMap credentials and endpoint.
type OSM struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	AccessToken  string
	TokenFile    string
	APIURL       string
}

// Wikidata holds Wikidata credentials and endpoint.
type Wikidata struct {
	Username    string
	Password    string
	AccessToken string
	APIURL      string
}

// Credentials is passed explicitly to every client constructor.
type Credentials struct {
	OSM       OSM
	Wikidata  Wikidata
	UserAgent string
}

// Bind registers the credential keys as environment-backed viper keys.
func Bind(v *viper.Viper) error {
	for _, key := range Keys() {
		if err := v.BindEnv(key); err != nil {
			return errors.NewConfigError("viper", "failed to bind "+key, err)
		}
	}
	return nil
}

// FromViper reads credentials from v, filling in default endpoints.
func FromViper(v *viper.Viper) Credentials {
	get := func(key string) string {
		return strings.TrimSpace(GetString(v, key))
	}

	c := Credentials{
		OSM: OSM{
			Username:     get(KeyOSMUsername),
			Password:     get(KeyOSMPassword),
			ClientID:     get(KeyOSMClientID),
			ClientSecret: get(KeyOSMClientSecret),
			AccessToken:  get(KeyOSMAccessToken),
			TokenFile:    get(KeyOSMTokenFile),
			APIURL:       get(KeyOSMAPIURL),
		},
		Wikidata: Wikidata{
			Username:    get(KeyWikidataUsername),
			Password:    get(KeyWikidataPassword),
			AccessToken: get(KeyWikidataToken),
			APIURL:      get(KeyWikidataAPIURL),
		},
		UserAgent: get(KeyUserAgent),
	}

	if c.OSM.TokenFile == "" {
		c.OSM.TokenFile = constants.DefaultTokenFile
	}
	if c.OSM.APIURL == "" {
		c.OSM.APIURL = constants.DefaultOSMAPIURL
	}
	if c.Wikidata.APIURL == "" {
		c.Wikidata.APIURL = constants.DefaultWikidataAPIURL
	}
	if c.UserAgent == "" {
		c.UserAgent = constants.DefaultUserAgent
	}
	return c
}

// GetString checks both viper and the OS environment, preferring viper.
func GetString(v *viper.Viper, key string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return os.Getenv(key)
}

// CanWrite reports whether some OSM write credential is configured.
func (o OSM) CanWrite() bool {
	return o.AccessToken != "" || (o.Username != "" && o.Password != "")
}

// CanWrite reports whether some Wikidata write credential is configured.
func (w Wikidata) CanWrite() bool {
	return w.AccessToken != "" || (w.Username != "" && w.Password != "")
}

// RequireOSMWrite returns a ConfigError when no OSM write credential is set.
func (c Credentials) RequireOSMWrite() error {
	if c.OSM.CanWrite() {
		return nil
	}
	return errors.NewConfigError("osm",
		"set "+KeyOSMAccessToken+" (or run 'placelink auth osm') or "+KeyOSMUsername+" and "+KeyOSMPassword,
		errors.ErrCredentialsRequired)
}

// RequireWikidataWrite returns a ConfigError when no Wikidata write credential is set.
func (c Credentials) RequireWikidataWrite() error {
	if c.Wikidata.CanWrite() {
		return nil
	}
	return errors.NewConfigError("wikidata",
		"set "+KeyWikidataToken+" or "+KeyWikidataUsername+" and "+KeyWikidataPassword,
		errors.ErrCredentialsRequired)
}

// Entry describes one configured key for status output.
type Entry struct {
	Service string `json:"service" yaml:"service"`
	Key     string `json:"key" yaml:"key"`
	Set     bool   `json:"set" yaml:"set"`
	Value   string `json:"value" yaml:"value"`
}

// Status lists every key with secrets masked.
func (c Credentials) Status() []Entry {
	secret := func(service, key, value string) Entry {
		return Entry{Service: service, Key: key, Set: value != "", Value: Mask(value)}
	}
	plain := func(service, key, value string) Entry {
		return Entry{Service: service, Key: key, Set: value != "", Value: value}
	}
	return []Entry{
		plain("osm", KeyOSMUsername, c.OSM.Username),
		secret("osm", KeyOSMPassword, c.OSM.Password),
		plain("osm", KeyOSMClientID, c.OSM.ClientID),
		secret("osm", KeyOSMClientSecret, c.OSM.ClientSecret),
		secret("osm", KeyOSMAccessToken, c.OSM.AccessToken),
		plain("osm", KeyOSMTokenFile, c.OSM.TokenFile),
		plain("osm", KeyOSMAPIURL, c.OSM.APIURL),
		plain("wikidata", KeyWikidataUsername, c.Wikidata.Username),
		secret("wikidata", KeyWikidataPassword, c.Wikidata.Password),
		secret("wikidata", KeyWikidataToken, c.Wikidata.AccessToken),
		plain("wikidata", KeyWikidataAPIURL, c.Wikidata.APIURL),
		plain("http", KeyUserAgent, c.UserAgent),
	}
}

// Mask hides all but the last four characters of a secret.
func Mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
