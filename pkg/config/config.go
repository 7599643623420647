package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gopherwall/gopherwall/pkg/extract"
	"github.com/gopherwall/gopherwall/pkg/ports"
	"github.com/gopherwall/gopherwall/pkg/signature"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Keys shared by flags, config file, dotenv file and environment
const (
	KeyLogFile    = "logfile"
	KeyGamePorts  = "gameserverports"
	KeyTVPorts    = "tvserverports"
	KeySignatures = "signatures"
	KeyYear       = "year"
	KeyGeoIPDB    = "geoip.db"

	// KeyPrefix is joined with lower case signature name to override its marker
	KeyPrefix = "log_prefix_"

	DefaultLogFile = "/var/log/l4d2-iptables.log"
)

// ErrConfiguration is returned for missing or invalid settings, it aborts a run before parsing
type ErrConfiguration struct {
	Key string
	Err error
}

func (e ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Err)
}

func (e ErrConfiguration) Unwrap() error { return e.Err }

// Config is the resolved runtime configuration of a run
type Config struct {
	LogFile    string
	GamePorts  string
	TVPorts    string
	Ports      ports.Classifier
	Signatures signature.List
	Year       int
	GeoIPDB    string
}

// Extract returns params for log parser
func (c Config) Extract() extract.Config {
	return extract.Config{
		Ports:      c.Ports,
		Signatures: c.Signatures,
		Year:       c.Year,
	}
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyGamePorts, "")
	v.SetDefault(KeyTVPorts, "")
}

/*
LoadEnvFile merges a dotenv style file into v. Values from file take precedence over config file
but not over explicitly set flags.
*/
func LoadEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return ErrConfiguration{Key: "env file", Err: err}
	}
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return ErrConfiguration{Key: "env file", Err: err}
	}
	if err := v.MergeConfigMap(env.AllSettings()); err != nil {
		return ErrConfiguration{Key: "env file", Err: err}
	}
	logrus.
		WithField("path", path).
		WithField("keys", len(env.AllKeys())).
		Debug("env file loaded")
	return nil
}

// FromViper builds and validates Config from v
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		LogFile:   strings.TrimSpace(v.GetString(KeyLogFile)),
		GamePorts: v.GetString(KeyGamePorts),
		TVPorts:   v.GetString(KeyTVPorts),
		Year:      v.GetInt(KeyYear),
		GeoIPDB:   v.GetString(KeyGeoIPDB),
	}
	if c.LogFile == "" {
		return nil, ErrConfiguration{Key: KeyLogFile, Err: errors.New("missing log file path")}
	}

	classifier, err := ports.NewClassifier(c.GamePorts, c.TVPorts)
	if err != nil {
		return nil, ErrConfiguration{Key: "ports", Err: err}
	}
	c.Ports = *classifier

	sigs := signature.Defaults()
	if path := v.GetString(KeySignatures); path != "" {
		if sigs, err = signature.Load(path); err != nil {
			return nil, ErrConfiguration{Key: KeySignatures, Err: err}
		}
	}
	c.Signatures = sigs.Override(func(name string) (string, bool) {
		key := KeyPrefix + strings.ToLower(name)
		if !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	})
	if err := c.Extract().Validate(); err != nil {
		return nil, ErrConfiguration{Key: "parser", Err: err}
	}
	return c, nil
}
