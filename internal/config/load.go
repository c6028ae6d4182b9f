package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "AKAUN"

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	v.SetDefault("scores.path", "")
	v.SetDefault("scores.remote_url", "")
	v.SetDefault("scores.remote_timeout", "5s")

	v.SetDefault("catalog.paths", []string{})

	v.SetDefault("rules.bounce_delay", "3s")
	v.SetDefault("rules.surplus_delay", "1s")
	v.SetDefault("rules.settle_delay", "500ms")
	v.SetDefault("rules.penalty_copies", 2)

	v.SetDefault("server.addr", "127.0.0.1:8080")
}

// Load builds the configuration from defaults, an optional config file and
// AKAUN_* environment variables, in increasing order of precedence
// (AKAUN_SCORES_REMOTE_URL overrides scores.remote_url).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
