package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MEET"

type Config struct {
	Mode           string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel       string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit" validate:"gt=0"`
	PingPeriod     time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	WriteWait      time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer     int           `mapstructure:"send_buffer" validate:"gt=0"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Backpressure   string        `mapstructure:"backpressure" validate:"oneof=drop disconnect"`

	Moderation Moderation  `mapstructure:"moderation"`
	JoinRate   JoinRate    `mapstructure:"join_rate"`
	ICEServers []ICEServer `mapstructure:"ice_servers" validate:"dive"`
}

type Moderation struct {
	KickCooldown       time.Duration `mapstructure:"kick_cooldown" validate:"gt=0"`
	EnforceTrainerRole bool          `mapstructure:"enforce_trainer_role"`
}

// JoinRate bounds join-room attempts per connection in a sliding window.
type JoinRate struct {
	Limit    int           `mapstructure:"limit" validate:"gt=0"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls" validate:"min=1,dive,required"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

// PongWait is how long the server waits for a pong before dropping the peer.
func (c *Config) PongWait() time.Duration {
	return c.PingPeriod * 10 / 9
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// FlagSet declares the command line flags understood by Load.
func FlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("meet", pflag.ContinueOnError)
	// flag names use "-", config keys use "_"
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
	})
	fs.StringP("config", "c", "", "path to a YAML config file")
	fs.IntP("port", "p", 0, "HTTP listen port")
	fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	fs.String("mode", "", "gin mode (debug, release, test)")
	return fs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("backpressure", "drop")
	v.SetDefault("moderation.kick_cooldown", "2h")
	v.SetDefault("moderation.enforce_trainer_role", true)
	v.SetDefault("join_rate.limit", 5)
	v.SetDefault("join_rate.interval", "10s")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

// Load builds the configuration from defaults, the YAML file, MEET_*
// environment variables and args, in increasing order of precedence.
// The file is config/config.<CONFIG_ENV>.yaml unless --config names one.
func Load(args []string) (*Config, error) {
	fs := FlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	fileName, _ := fs.GetString("config")
	explicit := fileName != ""
	if !explicit {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		if explicit {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Err(err).Str("module", "config").Str("file", fileName).Msg("config file not loaded, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || !f.Changed {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			log.Warn().Err(err).Str("module", "config").Str("flag", f.Name).Msg("bind flag")
		}
	})

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Dur("kick_cooldown", cfg.Moderation.KickCooldown).
		Str("backpressure", cfg.Backpressure).
		Msg("config ready")
	return &cfg, nil
}
