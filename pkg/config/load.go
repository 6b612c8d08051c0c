package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/japaniel/fcard/pkg/page"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "FCARD"

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "text")

	v.SetDefault("page.location", "")
	v.SetDefault("page.language", "")
	v.SetDefault("page.fetch_timeout", "30s")
	v.SetDefault("page.max_body_bytes", page.DefaultMaxBodySize)

	v.SetDefault("store.path", "")
	v.SetDefault("store.source_id", 0)

	v.SetDefault("practice.readings", false)
	v.SetDefault("practice.seed", 0)

	v.SetDefault("environment.missing", []string{})
	v.SetDefault("environment.emoji", true)

	v.SetDefault("debug", false)
}

// Load reads configuration. Environment variables such as FCARD_SERVER_ADDR
// take precedence over values from the file at path, which may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
