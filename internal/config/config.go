package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode            string          `mapstructure:"mode"`
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	Secret          string          `mapstructure:"secret"`
	ReadLimit       int64           `mapstructure:"read_limit"`
	PingPeriod      time.Duration   `mapstructure:"ping_period"`
	PongWait        time.Duration   `mapstructure:"pong_wait"`
	WriteWait       time.Duration   `mapstructure:"write_wait"`
	SendBuffer      int             `mapstructure:"send_buffer"`
	EventRate       float64         `mapstructure:"event_rate"`
	EventBurst      int             `mapstructure:"event_burst"`
	Backpressure    string          `mapstructure:"backpressure"`
	ICEServers      []ICEServerSpec `mapstructure:"ice_servers"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// Default returns the configuration used when no file or override is present.
func Default() *Config {
	return &Config{
		Mode:            "release",
		Port:            3001,
		LogLevel:        "info",
		AllowedOrigins:  []string{"http://localhost:5173"},
		Secret:          "change-me",
		ReadLimit:       64 * 1024,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		SendBuffer:      256,
		EventRate:       50,
		EventBurst:      100,
		Backpressure:    "drop",
		ICEServers:      []ICEServerSpec{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads config/config.<CONFIG_ENV>.yaml, then RENDEZVOUS_* environment
// variables, then any flags that were set explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("allowed_origins", d.AllowedOrigins)
	v.SetDefault("secret", d.Secret)
	v.SetDefault("read_limit", d.ReadLimit)
	v.SetDefault("ping_period", d.PingPeriod.String())
	v.SetDefault("pong_wait", d.PongWait.String())
	v.SetDefault("write_wait", d.WriteWait.String())
	v.SetDefault("send_buffer", d.SendBuffer)
	v.SetDefault("event_rate", d.EventRate)
	v.SetDefault("event_burst", d.EventBurst)
	v.SetDefault("backpressure", d.Backpressure)
	v.SetDefault("ice_servers", []map[string]any{{"urls": d.ICEServers[0].URLs}})
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout.String())

	v.SetEnvPrefix("RENDEZVOUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("backpressure", cfg.Backpressure).Msg("config ready")
	return &cfg, nil
}

// bindFlags maps flag names like --log-level onto keys like log_level.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		err = v.BindPFlag(key, f)
	})
	return err
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Backpressure {
	case "drop", "kick":
	default:
		errs = append(errs, fmt.Errorf("unknown backpressure policy %q", c.Backpressure))
	}
	for _, o := range c.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("allowed origin %q must be * or an http(s) origin", o))
		}
	}
	if c.SendBuffer < 1 {
		errs = append(errs, fmt.Errorf("send_buffer must be positive"))
	}
	if c.PingPeriod >= c.PongWait {
		errs = append(errs, fmt.Errorf("ping_period %s must be shorter than pong_wait %s", c.PingPeriod, c.PongWait))
	}
	if _, err := c.WebRTCICEServers(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// WebRTCICEServers converts the configured list for clients.
func (c *Config) WebRTCICEServers() ([]webrtc.ICEServer, error) {
	return ToWebRTC(c.ICEServers)
}
