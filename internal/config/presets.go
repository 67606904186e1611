package config

import (
	"sort"

	"github.com/san-kum/hexgait/internal/gait"
)

var Presets = map[string]func() *Config{
	"tripod": DefaultConfig,
	"slow": func() *Config {
		c := DefaultConfig()
		c.Name = "slow"
		c.Gait.Period = 2.4
		return c
	},
	"fast": func() *Config {
		c := DefaultConfig()
		c.Name = "fast"
		c.Gait.Period = 0.9
		c.Loop.Dt = 0.02
		return c
	},
	"long_stance": func() *Config {
		c := DefaultConfig()
		c.Name = "long_stance"
		c.Gait = gait.Params{Period: 1.6, Offset: 1.1, SweepAngle: 1.4, DutyFactor: 0.8}
		return c
	},
	"realtime": func() *Config {
		c := DefaultConfig()
		c.Name = "realtime"
		c.Loop.Synchronous = false
		c.Loop.Duration = 5.0
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
