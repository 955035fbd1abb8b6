package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TUBECONV_POLL_INTERVAL.
const EnvPrefix = "TUBECONV"

type Config struct {
	Backend struct {
		// URL of the conversion service without the /api suffix. Empty means
		// derive it from Origin.
		URL    string `mapstructure:"url"`
		Origin string `mapstructure:"origin"`
	} `mapstructure:"backend"`

	Submit struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"submit"`

	Poll struct {
		Timeout    time.Duration `mapstructure:"timeout"`     // per status request
		Interval   time.Duration `mapstructure:"interval"`    // between two successful polls
		RetryDelay time.Duration `mapstructure:"retry_delay"` // after a timed out poll
		MaxRetries int           `mapstructure:"max_retries"`
		MaxElapsed time.Duration `mapstructure:"max_elapsed"`
	} `mapstructure:"poll"`

	Retrieval struct {
		MaxBytes    int64  `mapstructure:"max_bytes"`
		DownloadDir string `mapstructure:"download_dir"`
	} `mapstructure:"retrieval"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.origin", "http://localhost")
	v.SetDefault("submit.timeout", 30*time.Second)
	v.SetDefault("poll.timeout", 10*time.Second)
	v.SetDefault("poll.interval", 3*time.Second)
	v.SetDefault("poll.retry_delay", 5*time.Second)
	v.SetDefault("poll.max_retries", 3)
	v.SetDefault("poll.max_elapsed", 10*time.Minute)
	v.SetDefault("retrieval.max_bytes", int64(100*1024*1024))
	v.SetDefault("retrieval.download_dir", ".")
	v.SetDefault("log.level", "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bound explicitly so the URL can be supplied without a config file.
	_ = v.BindEnv("backend.url", EnvPrefix+"_BACKEND_URL")
	return v
}

// Default returns the built-in configuration with environment overrides applied.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("decode default config: %v", err))
	}
	return cfg
}

// LoadConfig reads config.yaml from cfgFile, or from the working directory
// and $HOME/.tubeconv when cfgFile is empty. A missing file in the search
// path is not an error; a missing explicit file is.
func LoadConfig(cfgFile string) (*Config, error) {
	v := newViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tubeconv")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
