// Package config loads rr-mdns settings from defaults, an optional file and
// MDNS_ environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

const (
	// EnvPrefix namespaces every environment variable.
	EnvPrefix = "MDNS_"
	// FileEnv names the environment variable holding an optional config file path.
	FileEnv = EnvPrefix + "CONFIG_FILE"
)

// AppConfig holds configuration values parsed from defaults, file and environment.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Timeout is the collection window of one query round.
	Timeout time.Duration `koanf:"timeout" validate:"gte=100ms,lte=60s"`

	// Domain is appended to service types, normally "local.".
	Domain string `koanf:"domain" validate:"required,mdns_domain"`

	IPv4 bool `koanf:"ipv4" validate:"required_without=IPv6"`
	IPv6 bool `koanf:"ipv6"`

	// Interfaces limits discovery to these interface names; empty means all multicast-capable ones.
	Interfaces []string `koanf:"interfaces" validate:"dive,required"`

	// Parallel queries interfaces concurrently.
	Parallel bool `koanf:"parallel"`

	// UnicastResponse sets the QU bit so responders answer by unicast.
	UnicastResponse bool `koanf:"unicast_response"`

	// Ignore holds inline ignore patterns ("_sleep-proxy._udp.local", "*._airplay._tcp.local").
	Ignore []string `koanf:"ignore" validate:"dive,required"`

	// IgnoreFiles are plain list files of ignore patterns.
	IgnoreFiles []string `koanf:"ignore_files" validate:"dive,required,file"`

	// IgnoreDB is a bbolt database path for the rule store; empty keeps rules in memory.
	IgnoreDB string `koanf:"ignore_db"`

	// IgnoreCacheSize bounds the decision cache; 0 disables it.
	IgnoreCacheSize int `koanf:"ignore_cache_size" validate:"gte=0"`
}

// DEFAULT_APP_CONFIG defines the default application configuration.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:             "prod",
	LogLevel:        "info",
	Timeout:         3 * time.Second,
	Domain:          "local.",
	IPv4:            true,
	IPv6:            false,
	Interfaces:      []string{},
	Parallel:        false,
	UnicastResponse: false,
	Ignore:          []string{},
	IgnoreFiles:     []string{},
	IgnoreDB:        "",
	IgnoreCacheSize: 1024,
}

// DomainName parses Domain; it is only safe to call on a validated config.
func (c *AppConfig) DomainName() domain.Name {
	return domain.MustParseName(c.Domain)
}

// validMDNSDomain accepts a parseable, non-root presentation name.
func validMDNSDomain(fl validator.FieldLevel) bool {
	n, err := domain.ParseName(fl.Field().String())
	return err == nil && !n.IsRoot()
}

// envLoader loads variables with the MDNS_ prefix, lower-casing keys.
// Space or comma separated values become lists.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			value = strings.TrimSpace(value)

			if key == "config_file" {
				return "", nil
			}
			if value == "" {
				return key, value
			}

			if strings.Contains(value, " ") || strings.Contains(value, ",") {
				parts := strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
				return key, parts
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads a YAML, JSON or TOML file, chosen by extension.
var fileLoader = func(k *koanf.Koanf, path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	return k.Load(file.Provider(path), parser)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// registerValidation registers the "mdns_domain" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("mdns_domain", validMDNSDomain)
}

// Load builds an AppConfig from defaults, the file named by MDNS_CONFIG_FILE
// (when set) and MDNS_ environment variables, then validates it.
func Load() (*AppConfig, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit config file path; "" skips the file layer.
func LoadFile(path string) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if path != "" {
		if err := fileLoader(k, path); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", path, err)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags. The CLI calls it again after
// applying flag overrides.
func Validate(cfg *AppConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return fmt.Errorf("error registering validation: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
