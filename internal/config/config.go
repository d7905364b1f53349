// Package config loads sweep settings from an optional config file,
// OIDSWEEP_* environment variables, and defaults, in that order of
// precedence (lowest first).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the fixed scan parameters.
const (
	DefaultCommunity   = "admin"
	DefaultOID         = "1.3.6.1.4.1.4515.1.3.6.1.1.1.2.0"
	DefaultTimeout     = time.Second
	DefaultRetries     = 1
	DefaultMaxInFlight = 100
)

// Settings holds every parameter of a sweep. All of them are fixed for the
// whole run; nothing is reconfigurable per host.
type Settings struct {
	OID         string        `mapstructure:"oid"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	MaxInFlight int           `mapstructure:"max_in_flight"`

	SNMP struct {
		Mode      string `mapstructure:"mode"` // "exec" or "native"
		Tool      string `mapstructure:"tool"` // exec mode: tool name or explicit path
		Version   string `mapstructure:"version"`
		Community string `mapstructure:"community"`
		User      string `mapstructure:"user"`
		SecLevel  string `mapstructure:"sec_level"`
		AuthProto string `mapstructure:"auth_proto"`
		AuthKey   string `mapstructure:"auth_key"`
		PrivProto string `mapstructure:"priv_proto"`
		PrivKey   string `mapstructure:"priv_key"`
	} `mapstructure:"snmp"`

	Ping struct {
		Enabled bool          `mapstructure:"enabled"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"ping"`

	History struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"history"`
}

// Load reads settings from the given config file (optional; empty path
// means defaults and environment only).
func Load(path string) (Settings, error) {
	v := viper.New()

	v.SetDefault("oid", DefaultOID)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("retries", DefaultRetries)
	v.SetDefault("max_in_flight", DefaultMaxInFlight)
	v.SetDefault("snmp.mode", "exec")
	v.SetDefault("snmp.tool", "snmpget")
	v.SetDefault("snmp.version", "2c")
	v.SetDefault("snmp.community", DefaultCommunity)
	// Empty defaults so AutomaticEnv sees these keys; viper only surfaces
	// env values for keys it already knows about.
	v.SetDefault("snmp.user", "")
	v.SetDefault("snmp.sec_level", "")
	v.SetDefault("snmp.auth_proto", "")
	v.SetDefault("snmp.auth_key", "")
	v.SetDefault("snmp.priv_proto", "")
	v.SetDefault("snmp.priv_key", "")
	v.SetDefault("ping.enabled", false)
	v.SetDefault("ping.timeout", time.Second)
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "oidsweep.db")

	v.SetEnvPrefix("OIDSWEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

// Validate rejects settings that would make the sweep misbehave rather
// than merely find nothing.
func (s Settings) Validate() error {
	if s.OID == "" {
		return fmt.Errorf("oid must not be empty")
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", s.Timeout)
	}
	if s.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", s.Retries)
	}
	if s.MaxInFlight < 1 {
		return fmt.Errorf("max_in_flight must be at least 1, got %d", s.MaxInFlight)
	}
	switch s.SNMP.Mode {
	case "exec", "native":
	default:
		return fmt.Errorf("snmp.mode must be \"exec\" or \"native\", got %q", s.SNMP.Mode)
	}
	return nil
}
