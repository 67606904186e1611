package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/plant"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt           = 0.05
	DefaultDuration     = 10.0
	DefaultHoldDuration = 1.0
	DefaultDataDir      = ".hexgait"
	DefaultLogLevel     = "info"

	EnvDataDir  = "HEXGAIT_DATA"
	EnvLogLevel = "HEXGAIT_LOG_LEVEL"
)

type Config struct {
	Name  string       `yaml:"name"`
	Gait  gait.Params  `yaml:"gait"`
	Loop  LoopConfig   `yaml:"loop"`
	Plant plant.Config `yaml:"plant"`
}

// LoopConfig is read once at startup by the control loop.
type LoopConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`

	// Synchronous steps on simulated time; otherwise ticks follow the wall
	// clock and dt is measured.
	Synchronous  bool    `yaml:"synchronous"`
	HoldDuration float64 `yaml:"hold_duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "tripod",
		Gait: gait.DefaultParams(),
		Loop: LoopConfig{
			Dt:           DefaultDt,
			Duration:     DefaultDuration,
			Synchronous:  true,
			HoldDuration: DefaultHoldDuration,
		},
		Plant: plant.DefaultConfig(),
	}
}

func (c *Config) Validate() error {
	if err := c.Gait.Validate(); err != nil {
		return err
	}
	if err := c.Plant.Validate(); err != nil {
		return err
	}
	if c.Loop.Dt <= 0 {
		return dynamo.InvalidConfigf("loop: dt must be positive, got %v", c.Loop.Dt)
	}
	if c.Loop.Duration <= 0 {
		return dynamo.InvalidConfigf("loop: duration must be positive, got %v", c.Loop.Duration)
	}
	if c.Loop.HoldDuration < 0 {
		return dynamo.InvalidConfigf("loop: hold duration must be non-negative, got %v", c.Loop.HoldDuration)
	}
	return nil
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Env holds defaults that may come from the environment or a .env file.
type Env struct {
	DataDir  string
	LogLevel string
}

// LoadEnv reads the given dotenv files, if present, and returns the
// environment defaults. Variables already set in the process win.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Env{}, err
		}
	}

	env := Env{DataDir: DefaultDataDir, LogLevel: DefaultLogLevel}
	if v := os.Getenv(EnvDataDir); v != "" {
		env.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		env.LogLevel = v
	}
	return env, nil
}
