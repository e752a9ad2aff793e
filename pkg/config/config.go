package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edgeflare/fakeuser/pkg/kafka"
	"github.com/edgeflare/fakeuser/pkg/publisher"
	"github.com/edgeflare/fakeuser/pkg/user"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

const EnvPrefix = "PRODUCER"

// Config holds application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Producer ProducerConfig `mapstructure:"producer"`
	Kafka    kafka.Config   `mapstructure:"kafka"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listenAddr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	JobRetention    time.Duration `mapstructure:"jobRetention"`
}

type ProducerConfig struct {
	Topic      string          `mapstructure:"topic"`
	Delay      time.Duration   `mapstructure:"delay"`
	MinAge     int             `mapstructure:"minAge"`
	MaxAge     int             `mapstructure:"maxAge"`
	NameSource user.NameSource `mapstructure:"nameSource"`
	Format     user.Format     `mapstructure:"format"`
	SchemaID   int             `mapstructure:"schemaID"`
	Sink       string          `mapstructure:"sink"` // kafka or debug
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

const (
	SinkKafka = "kafka"
	SinkDebug = "debug"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: 10 * time.Second,
			JobRetention:    time.Hour,
		},
		Producer: ProducerConfig{
			Topic:      publisher.DefaultTopic,
			Delay:      publisher.DefaultDelay,
			MinAge:     user.DefaultMinAge,
			MaxAge:     user.DefaultMaxAge,
			NameSource: user.NameSourceFaker,
			Format:     user.FormatAvro,
			Sink:       SinkKafka,
		},
		Kafka: kafka.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9100",
		},
	}
}

// setDefaults registers every default key so env vars and flags can override it.
func setDefaults(v *viper.Viper) error {
	var m map[string]any
	if err := mapstructure.Decode(Default(), &m); err != nil {
		return err
	}
	for k, val := range flatten("", m) {
		v.SetDefault(k, val)
	}
	return nil
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := map[string]any{}
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// Load reads config from file, environment (PRODUCER_ prefix) and v's bound flags.
// A nil v uses the global viper instance.
func Load(cfgFile string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	if err := setDefaults(v); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("producer")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration the service cannot start with.
func (c *Config) Validate() error {
	if c.Producer.Topic == "" {
		return fmt.Errorf("producer.topic must not be empty")
	}
	if c.Producer.Delay < 0 {
		return fmt.Errorf("producer.delay must not be negative")
	}
	if c.Producer.MinAge < 0 || c.Producer.MaxAge <= c.Producer.MinAge {
		return fmt.Errorf("producer age range [%d, %d) is empty", c.Producer.MinAge, c.Producer.MaxAge)
	}
	if c.Producer.MaxAge > math.MaxInt32 {
		return fmt.Errorf("producer.maxAge %d exceeds %d", c.Producer.MaxAge, math.MaxInt32)
	}
	switch c.Producer.Sink {
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers must not be empty")
		}
	case SinkDebug:
	default:
		return fmt.Errorf("unknown producer.sink %q", c.Producer.Sink)
	}
	return nil
}
