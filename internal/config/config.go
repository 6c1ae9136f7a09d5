// Package config loads zpersona settings from a YAML file and ZPERSONA_*
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/zarlcorp/zpersona/internal/identity"
)

const (
	appName    = "zpersona"
	envPrefix  = "ZPERSONA_"
	configFile = "config.yaml"
)

// Config is the full application configuration.
type Config struct {
	DataDir   string `koanf:"dataDir" validate:"required"`
	ExportDir string `koanf:"exportDir" validate:"required"`

	Defaults struct {
		Country  string `koanf:"country" validate:"omitempty,country"`
		Gender   string `koanf:"gender" validate:"omitempty,oneof=male female other"`
		Advanced bool   `koanf:"advanced"`
	} `koanf:"defaults"`

	History struct {
		Limit int `koanf:"limit" validate:"min=1,max=1000"`
	} `koanf:"history"`

	QRCode struct {
		Size  int    `koanf:"size" validate:"min=64,max=2048"`
		Level string `koanf:"level" validate:"oneof=L M Q H"`
	} `koanf:"qrcode"`

	Log Log `koanf:"log"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// Hints returns the generation hints implied by the defaults section.
func (c *Config) Hints() identity.Hints {
	h := identity.Hints{
		Gender:   identity.ParseGender(c.Defaults.Gender),
		Advanced: c.Defaults.Advanced,
	}
	if country, ok := identity.ParseCountry(c.Defaults.Country); ok {
		h.Country = country
	}
	return h
}

// Default returns the configuration used when no file or env var overrides it.
// ExportDir is left empty and resolved under DataDir by Load.
func Default() *Config {
	cfg := &Config{DataDir: DataDir()}
	cfg.History.Limit = 20
	cfg.QRCode.Size = 200
	cfg.QRCode.Level = "M"
	cfg.Log.Level = "info"
	return cfg
}

// DataDir returns the default data directory for zpersona.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, ".local", "share", appName)
}

// Path returns the default config file location.
func Path() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, appName, configFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFile
	}
	return filepath.Join(home, ".config", appName, configFile)
}

// New loads the config from the default path.
func New() (*Config, error) {
	return Load(Path())
}

// Load reads path if it exists, applies ZPERSONA_* environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "stat config %s", path)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, v string) (string, any) {
			// ZPERSONA_QRCODE_SIZE -> qrcode.size
			key = strings.TrimPrefix(key, envPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables")
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				// env keys arrive lower-cased
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.ExportDir = expandHome(cfg.ExportDir)
	if cfg.ExportDir == "" && cfg.DataDir != "" {
		cfg.ExportDir = filepath.Join(cfg.DataDir, "exports")
	}
	cfg.QRCode.Level = strings.ToUpper(cfg.QRCode.Level)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		_, ok := identity.ParseCountry(fl.Field().String())
		return ok
	}); err != nil {
		return errors.Wrap(err, "register country validation")
	}

	if err := v.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
