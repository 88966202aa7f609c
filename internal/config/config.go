package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BrokerMQTT = "mqtt"
	BrokerNATS = "nats"
)

// Config holds everything the bridge reads at startup.
type Config struct {
	HTTP           HTTPConfig           `mapstructure:"http"`
	Broker         BrokerConfig         `mapstructure:"broker"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	Path            string        `mapstructure:"path"` // endpoint the voice platform posts to
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BrokerConfig struct {
	Kind           string        `mapstructure:"kind"` // mqtt or nats
	URL            string        `mapstructure:"url"`
	ClientID       string        `mapstructure:"client_id"`
	StatusTopic    string        `mapstructure:"status_topic"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	TLS            TLSConfig     `mapstructure:"tls"`
}

// TLSConfig points at the AWS IoT device credentials.
type TLSConfig struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Debug bool   `mapstructure:"debug"` // development encoder + debug level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.path", "/alexa")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("broker.kind", BrokerMQTT)
	v.SetDefault("broker.url", "tcp://localhost:1883")
	v.SetDefault("broker.client_id", "roku-bridge")
	v.SetDefault("broker.status_topic", "iot/roku/bridge/status")
	v.SetDefault("broker.publish_timeout", 10*time.Second)
	v.SetDefault("broker.connect_timeout", 10*time.Second)

	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.failure_threshold", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.debug", false)
}

// Load reads defaults, the config file, ROKU_BRIDGE_* environment variables
// and command-line flags, in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	configFile := ""
	if fs != nil {
		if f := fs.Lookup(FlagConfigFile); f != nil {
			configFile = f.Value.String()
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/roku-bridge")
	}

	v.SetEnvPrefix("ROKU_BRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AWS IoT deployments commonly provide these without the prefix
	_ = v.BindEnv("broker.url", "ROKU_BRIDGE_BROKER_URL", "MQTT_BROKER_URL")
	_ = v.BindEnv("http.port", "ROKU_BRIDGE_HTTP_PORT", "PORT")
	_ = v.BindEnv("logging.level", "ROKU_BRIDGE_LOGGING_LEVEL", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the bridge cannot start with.
func (c *Config) Validate() error {
	switch c.Broker.Kind {
	case BrokerMQTT, BrokerNATS:
	default:
		return fmt.Errorf("invalid broker.kind %q: must be %q or %q", c.Broker.Kind, BrokerMQTT, BrokerNATS)
	}
	if c.Broker.URL == "" {
		return errors.New("broker.url is required")
	}
	if c.Broker.Kind == BrokerMQTT && c.Broker.ClientID == "" {
		return errors.New("broker.client_id is required for mqtt")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http.port %d", c.HTTP.Port)
	}
	if !strings.HasPrefix(c.HTTP.Path, "/") {
		return fmt.Errorf("http.path %q must start with '/'", c.HTTP.Path)
	}
	return nil
}
