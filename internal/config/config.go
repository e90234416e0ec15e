// Package config loads the framegraph CLI configuration file.
//
// The file is YAML. It is decoded onto the defaults, so a file only needs the
// keys it changes; durations are written as Go duration strings ("15s").
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/framegraph/pkg/adapters/redis"
	"github.com/aretw0/framegraph/pkg/adapters/rosbridge"
	"github.com/aretw0/framegraph/pkg/notify"
	"github.com/aretw0/framegraph/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full CLI configuration.
type Config struct {
	WorldFrame     string        `mapstructure:"world_frame" validate:"required"`
	ExpiryWindow   time.Duration `mapstructure:"expiry_window" validate:"gt=0"`
	CoalesceWindow time.Duration `mapstructure:"coalesce_window" validate:"gt=0"`

	Log   LogConfig   `mapstructure:"log"`
	HTTP  HTTPConfig  `mapstructure:"http"`
	Feeds FeedsConfig `mapstructure:"feeds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Metrics bool   `mapstructure:"metrics"`
}

type FeedsConfig struct {
	Redis     RedisConfig     `mapstructure:"redis"`
	Rosbridge RosbridgeConfig `mapstructure:"rosbridge"`
	File      FileConfig      `mapstructure:"file"`
}

type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Addr           string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db" validate:"gte=0"`
	StaticChannel  string `mapstructure:"static_channel" validate:"required"`
	DynamicChannel string `mapstructure:"dynamic_channel" validate:"required,nefield=StaticChannel"`
	LatchedKey     string `mapstructure:"latched_key" validate:"required"`
}

type RosbridgeConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	URL            string        `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
	StaticTopic    string        `mapstructure:"static_topic" validate:"required"`
	DynamicTopic   string        `mapstructure:"dynamic_topic" validate:"required,nefield=StaticTopic"`
	MessageType    string        `mapstructure:"message_type" validate:"required"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay" validate:"gt=0"`
}

type FileConfig struct {
	Path    string        `mapstructure:"path"`
	Watch   bool          `mapstructure:"watch"`
	Refresh time.Duration `mapstructure:"refresh" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		WorldFrame:     store.DefaultWorldFrame,
		ExpiryWindow:   store.DefaultExpiryWindow,
		CoalesceWindow: notify.DefaultWindow,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Addr:    ":8080",
			Metrics: true,
		},
		Feeds: FeedsConfig{
			Redis: RedisConfig{
				Addr:           "localhost:6379",
				StaticChannel:  redis.DefaultStaticChannel,
				DynamicChannel: redis.DefaultDynamicChannel,
				LatchedKey:     redis.DefaultLatchedKey,
			},
			Rosbridge: RosbridgeConfig{
				StaticTopic:    rosbridge.DefaultStaticTopic,
				DynamicTopic:   rosbridge.DefaultDynamicTopic,
				MessageType:    rosbridge.DefaultMessageType,
				ReconnectDelay: rosbridge.DefaultReconnectDelay,
			},
		},
	}
}

// Load reads path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Decode overlays YAML data onto cfg. Unknown keys are an error.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
