package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/hexgait/internal/config"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/metrics"
	"github.com/san-kum/hexgait/internal/plant"
	"github.com/san-kum/hexgait/internal/sim"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var logger = log.WithFields(log.Fields{
	"pkg": "automation",
})

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (tripod if empty) and applies any
// overrides, written in the same layout as a config file.
type ScenarioStep struct {
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
	SaveAs    string    `yaml:"save_as"`

	// Params sets gait or servo parameters by name after the overrides.
	Params map[string]float64 `yaml:"params"`
}

// Config resolves the step into a validated run configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "tripod"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	if !s.Overrides.IsZero() {
		if err := s.Overrides.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if err := applyParams(s.Params, &cfg.Gait, &cfg.Plant); err != nil {
		return nil, err
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyParams hands each parameter to the first target that has it, in name
// order.
func applyParams(params map[string]float64, targets ...dynamo.Configurable) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		applied := false
		for _, t := range targets {
			if _, ok := t.GetParams()[name]; ok {
				if err := t.SetParam(name, params[name]); err != nil {
					return err
				}
				applied = true
				break
			}
		}
		if !applied {
			return fmt.Errorf("unknown param: %s", name)
		}
	}
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

type StepResult struct {
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes all steps in order on simulated time. Results of the
// steps that completed are returned with the first error.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.WithFields(log.Fields{
			"step": i + 1,
			"of":   len(scenario.Steps),
			"name": cfg.Name,
		}).Info("running scenario step")

		result, err := runConfig(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, StepResult{Config: cfg, Result: result})
	}

	return results, nil
}

func runConfig(ctx context.Context, cfg *config.Config, opts ...plant.Option) (*sim.Result, error) {
	hex, err := plant.New(cfg.Plant, opts...)
	if err != nil {
		return nil, err
	}
	ctrl, err := gait.New(cfg.Gait)
	if err != nil {
		return nil, err
	}
	loop := sim.New(hex, ctrl, sim.NewSimClock())
	for _, m := range metrics.Default() {
		loop.AddMetric(m)
	}
	return loop.Run(ctx, sim.Config{
		Dt:           cfg.Loop.Dt,
		Duration:     cfg.Loop.Duration,
		HoldDuration: cfg.Loop.HoldDuration,
	})
}
