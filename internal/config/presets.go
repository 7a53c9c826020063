package config

import (
	"fmt"
	"slices"
)

func bouncingBall(startY, elasticity float64, steps int) *Config {
	cfg := DefaultConfig()
	cfg.Steps = steps
	cfg.Floors[0].Elasticity = elasticity
	cfg.Bodies[0].Position = Vec{Y: startY}
	cfg.Bodies[0].Shape.Elasticity = elasticity
	return cfg
}

func ramp(drop float64) *Config {
	return &Config{
		Scene: "ramp",
		Dt:    DefaultDt,
		Steps: 240,
		Space: SpaceConfig{Gravity: Vec{Y: DefaultGravityY}},
		Floors: []FloorConfig{
			{A: Vec{X: -30, Y: drop}, B: Vec{X: 0, Y: 0}, Friction: 1},
			{A: Vec{X: 0, Y: 0}, B: Vec{X: 60, Y: 0}, Friction: 1},
		},
		Bodies: []BodyConfig{
			{
				Name: "wheel", Kind: "dynamic", Mass: 1,
				Position: Vec{X: -25, Y: drop + 5},
				Shape:    ShapeConfig{Type: "circle", Radius: 2, Friction: 0.9},
			},
		},
	}
}

func pile(n int) *Config {
	cfg := &Config{
		Scene:  "pile",
		Dt:     DefaultDt,
		Steps:  300,
		Space:  SpaceConfig{Gravity: Vec{Y: DefaultGravityY}, Iterations: ptr(20)},
		Floors: []FloorConfig{{A: Vec{X: -20}, B: Vec{X: 20}, Friction: 1}},
		Track:  fmt.Sprintf("box%d", n-1),
	}
	for i := range n {
		cfg.Bodies = append(cfg.Bodies, BodyConfig{
			Name: fmt.Sprintf("box%d", i), Kind: "dynamic", Mass: 1,
			Position: Vec{X: float64(i%2) * 0.5, Y: 1.5 + 3.5*float64(i)},
			Shape:    ShapeConfig{Type: "box", Width: 3, Height: 3, Friction: 0.8},
		})
	}
	return cfg
}

func sensorGate() *Config {
	cfg := DefaultConfig()
	cfg.Scene = "sensor"
	cfg.Steps = 120
	cfg.Bodies[0].Position = Vec{Y: 30}
	cfg.Bodies = append(cfg.Bodies, BodyConfig{
		Name: "gate", Kind: "static",
		Shape: ShapeConfig{Type: "segment", A: Vec{X: -10, Y: 15}, B: Vec{X: 10, Y: 15}, Sensor: true},
	})
	return cfg
}

var Presets = map[string]map[string]*Config{
	"bouncing_ball": {
		"default": DefaultConfig(),
		"tall":    bouncingBall(40, 0, 180),
		"elastic": bouncingBall(DefaultStartY, 0.9, 240),
	},
	"ramp": {
		"slope": ramp(10),
		"steep": ramp(25),
	},
	"pile": {
		"boxes": pile(5),
	},
	"sensor": {
		"pass-through": sensorGate(),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// Lookup is GetPreset with an error naming what was missing. An empty
// preset selects the scene's first preset in sorted order.
func Lookup(scene, preset string) (*Config, error) {
	if _, ok := Presets[scene]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, scene)
	}
	if preset == "" {
		preset = ListPresets(scene)[0]
		if _, ok := Presets[scene]["default"]; ok {
			preset = "default"
		}
	}
	cfg := GetPreset(scene, preset)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPreset, scene, preset)
	}
	return cfg, nil
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func ListScenes() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
