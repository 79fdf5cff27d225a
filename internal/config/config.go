// Package config is used to load the configuration file
package config

import (
	"fmt"
	"net/url"
	"runtime"

	"github.com/spf13/viper"
)

type parse struct {
	Strict      bool `mapstructure:"strict"`
	Concurrency int  `mapstructure:"concurrency"`
}

type remote struct {
	Proxy     string `mapstructure:"proxy"`
	Insecure  bool   `mapstructure:"insecure"`
	UserAgent string `mapstructure:"user-agent"`
}

// Config is the configuration struct
type Config struct {
	Parse  parse  `mapstructure:"parse"`
	Remote remote `mapstructure:"remote"`
}

func (c *Config) verify() error {
	if c.Parse.Concurrency < 0 {
		return fmt.Errorf("config: parse.concurrency must not be negative (got %d)", c.Parse.Concurrency)
	} else if c.Parse.Concurrency == 0 {
		c.Parse.Concurrency = runtime.GOMAXPROCS(0)
	}

	if c.Remote.Proxy != "" {
		u, err := url.Parse(c.Remote.Proxy)
		if err != nil {
			return fmt.Errorf("config: invalid remote.proxy: %v", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: remote.proxy must be an absolute URL (got %q)", c.Remote.Proxy)
		}
	}
	if c.Remote.UserAgent == "" {
		c.Remote.UserAgent = "lazymacho"
	}

	return nil
}

// LoadConfig loads the configuration file
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper())
}

// Load unmarshals and verifies the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c *Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}
	if c == nil {
		c = &Config{}
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return c, nil
}
