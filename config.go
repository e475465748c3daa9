package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const ConfigFileName = "weblamp.toml"

// Flags holds the parsed command line flags that affect configuration.
type Flags struct {
	ConfigPath string
	NoEmbed    bool
}

// PinConfig names one GPIO pin exposed by the server.
type PinConfig struct {
	Pin  int    `toml:"pin"`
	Name string `toml:"name"`
}

type configFile struct {
	Host string      `toml:"host"`
	Port string      `toml:"port"`
	Pins []PinConfig `toml:"pins"`
}

type Config struct {
	host    string
	port    string
	pins    []PinConfig
	noEmbed bool
}

func defaultConfigFile() configFile {
	return configFile{
		Host: "0.0.0.0",
		Port: "8000",
		Pins: []PinConfig{
			{Pin: 24, Name: "coffee maker"},
			{Pin: 25, Name: "lamp"},
		},
	}
}

// NewConfig builds the config from defaults, an optional TOML file, and
// HOST/PORT environment overrides, in that order. The filesystem and env
// lookups are injected so tests can run against a MemMapFs.
func NewConfig(wfs WebLampFS, flags Flags, getenv func(string) string) (*Config, error) {
	cf := defaultConfigFile()

	path, err := resolveConfigPath(wfs, flags)
	if err != nil {
		return nil, err
	}

	if path == "" {
		log.Debug().Msg("No config file found, using defaults")
	} else {
		log.Info().Str("path", path).Msg("Loading config file")

		data, err := afero.ReadFile(wfs, path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if host := getenv("HOST"); host != "" {
		cf.Host = host
	}
	if port := getenv("PORT"); port != "" {
		cf.Port = port
	}

	if err := validatePins(cf.Pins); err != nil {
		return nil, err
	}

	return &Config{
		host:    cf.Host,
		port:    cf.Port,
		pins:    cf.Pins,
		noEmbed: flags.NoEmbed,
	}, nil
}

// resolveConfigPath picks the config file location: the -config flag wins,
// then weblamp.toml in the working directory, then ~/.config/weblamp/.
// Returns "" if no file exists and none was explicitly requested.
func resolveConfigPath(wfs WebLampFS, flags Flags) (string, error) {
	if flags.ConfigPath != "" {
		abs, err := wfs.Abs(flags.ConfigPath)
		if err != nil {
			return "", err
		}
		if _, err := wfs.Stat(abs); err != nil {
			return "", fmt.Errorf("config file %q: %w", flags.ConfigPath, err)
		}
		return abs, nil
	}

	if _, err := wfs.Stat(ConfigFileName); err == nil {
		return ConfigFileName, nil
	}

	home, err := wfs.HomeDir()
	if err != nil {
		return "", nil
	}
	homePath := filepath.Join(home, ".config", "weblamp", ConfigFileName)
	if _, err := wfs.Stat(homePath); err == nil {
		return homePath, nil
	} else if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, afero.ErrFileNotFound) {
		return "", err
	}

	return "", nil
}

func validatePins(pins []PinConfig) error {
	if len(pins) == 0 {
		return errors.New("no pins configured")
	}

	seen := make(map[int]bool, len(pins))
	for _, p := range pins {
		if p.Pin <= 0 {
			return fmt.Errorf("invalid pin number %d", p.Pin)
		}
		if p.Name == "" {
			return fmt.Errorf("pin %d has a blank name", p.Pin)
		}
		if seen[p.Pin] {
			return fmt.Errorf("pin %d configured twice", p.Pin)
		}
		seen[p.Pin] = true
	}

	return nil
}

func (c *Config) Address() string {
	return c.host + ":" + c.port
}

func (c *Config) Pins() []PinConfig {
	return c.pins
}

func (c *Config) NoEmbed() bool {
	return c.noEmbed
}
