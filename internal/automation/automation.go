// Package automation runs scripted sequences of scenes from a YAML file.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/experiment"
	"github.com/san-kum/cpsafe/internal/optim"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/sim"
	"github.com/san-kum/cpsafe/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep is one run. Config, when set, is a scene file relative to
// the scenario file and wins over Scene and Preset. Params are applied
// with the optim setters after Dt and Steps.
type ScenarioStep struct {
	Scene   string             `yaml:"scene"`
	Preset  string             `yaml:"preset"`
	Config  string             `yaml:"config"`
	Dt      float64            `yaml:"dt"`
	Steps   int                `yaml:"steps"`
	Params  map[string]float64 `yaml:"params"`
	Metrics []string           `yaml:"metrics"`
	Save    bool               `yaml:"save"`
}

type StepResult struct {
	Config *config.Config
	Result *sim.Result
	// RunID is set when the step was saved.
	RunID string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}
	scenario.dir = filepath.Dir(path)

	return &scenario, nil
}

// stepConfig resolves the config for one step.
func (s *Scenario) stepConfig(step ScenarioStep) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if step.Config != "" {
		path := step.Config
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		cfg, err = config.Load(path)
	} else {
		scene := step.Scene
		if scene == "" {
			scene = config.DefaultScene
		}
		cfg, err = config.Lookup(scene, step.Preset)
	}
	if err != nil {
		return nil, err
	}

	if step.Dt > 0 {
		cfg.Dt = step.Dt
	}
	if step.Steps > 0 {
		cfg.Steps = step.Steps
	}
	for name, v := range step.Params {
		set, ok := optim.Setters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", optim.ErrUnknownParam, name)
		}
		set(cfg, v)
	}
	return cfg, cfg.Validate()
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the steps completed so far. Steps marked save are written to
// store, which may be nil when no step saves.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *slog.Logger, opts ...physics.Option) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := scenario.stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("running step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "scene", cfg.Scene)

		res, err := runStep(ctx, cfg, step.Metrics, opts)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		out := StepResult{Config: cfg, Result: res}
		if step.Save {
			if store == nil {
				return results, fmt.Errorf("step %d: save requested without a store", i+1)
			}
			if out.RunID, err = store.Save(cfg, res); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, out)
	}

	return results, nil
}

func runStep(ctx context.Context, cfg *config.Config, metrics []string, opts []physics.Option) (*sim.Result, error) {
	exp := experiment.New(cfg)
	if err := exp.Setup(metrics, opts...); err != nil {
		return nil, err
	}
	defer exp.Close()
	return exp.Run(ctx)
}
