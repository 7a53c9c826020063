package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScene     = "bouncing_ball"
	DefaultDt        = 1.0 / 60.0
	DefaultSteps     = 60
	DefaultGravityY  = -100.0
	DefaultFloorHalf = 20.0
	DefaultRadius    = 5.0
	DefaultMass      = 1.0
	DefaultStartY    = 15.0
	DefaultFriction  = 0.7
)

// Config describes one scene and how long to simulate it.
type Config struct {
	Scene  string        `yaml:"scene"`
	Dt     float64       `yaml:"dt"`
	Steps  int           `yaml:"steps"`
	Space  SpaceConfig   `yaml:"space"`
	Floors []FloorConfig `yaml:"floors"`
	Bodies []BodyConfig  `yaml:"bodies"`
	// Track names the body sampled by height-based metrics; empty means the
	// first body.
	Track string `yaml:"track,omitempty"`
}

// SpaceConfig mirrors the Space tunables. Nil fields keep the Engine
// default.
type SpaceConfig struct {
	Gravity              Vec      `yaml:"gravity"`
	Damping              *float64 `yaml:"damping,omitempty"`
	CollisionSlop        *float64 `yaml:"collision_slop,omitempty"`
	CollisionBias        *float64 `yaml:"collision_bias,omitempty"`
	CollisionPersistence *uint    `yaml:"collision_persistence,omitempty"`
	IdleSpeedThreshold   *float64 `yaml:"idle_speed_threshold,omitempty"`
	Iterations           *int     `yaml:"iterations,omitempty"`
	SleepTimeThreshold   *float64 `yaml:"sleep_time_threshold,omitempty"`
}

// FloorConfig is a static segment attached to the scene's shared static body.
type FloorConfig struct {
	A          Vec     `yaml:"a"`
	B          Vec     `yaml:"b"`
	Radius     float64 `yaml:"radius"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

type BodyConfig struct {
	Name            string      `yaml:"name"`
	Kind            string      `yaml:"kind"`
	Mass            float64     `yaml:"mass"`
	Moment          float64     `yaml:"moment"`
	Position        Vec         `yaml:"position"`
	Velocity        Vec         `yaml:"velocity"`
	Angle           float64     `yaml:"angle"`
	AngularVelocity float64     `yaml:"angular_velocity"`
	Shape           ShapeConfig `yaml:"shape"`
}

type ShapeConfig struct {
	Type       string  `yaml:"type"`
	Radius     float64 `yaml:"radius"`
	Offset     Vec     `yaml:"offset"`
	A          Vec     `yaml:"a"`
	B          Vec     `yaml:"b"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Verts      []Vec   `yaml:"verts,omitempty"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
	Density    float64 `yaml:"density,omitempty"`
	Sensor     bool    `yaml:"sensor,omitempty"`
}

// Vec is written as a two-element flow sequence, e.g. [0, -100].
type Vec struct {
	X, Y float64
}

func (v Vec) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range []float64{v.X, v.Y} {
		var item yaml.Node
		if err := item.Encode(f); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &item)
	}
	return n, nil
}

func (v *Vec) UnmarshalYAML(n *yaml.Node) error {
	var xy []float64
	if err := n.Decode(&xy); err != nil {
		return fmt.Errorf("vector: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("vector: expected 2 components, got %d", len(xy))
	}
	v.X, v.Y = xy[0], xy[1]
	return nil
}

func ptr[T any](v T) *T { return &v }

// DefaultConfig is the bouncing ball: a unit mass ball of radius 5 dropped
// from y=15 onto a 40 wide floor under gravity (0, -100).
func DefaultConfig() *Config {
	return &Config{
		Scene: DefaultScene,
		Dt:    DefaultDt,
		Steps: DefaultSteps,
		Space: SpaceConfig{Gravity: Vec{Y: DefaultGravityY}},
		Floors: []FloorConfig{
			{A: Vec{X: -DefaultFloorHalf}, B: Vec{X: DefaultFloorHalf}, Friction: 1},
		},
		Bodies: []BodyConfig{
			{
				Name:     "ball",
				Kind:     "dynamic",
				Mass:     DefaultMass,
				Position: Vec{Y: DefaultStartY},
				Shape:    ShapeConfig{Type: "circle", Radius: DefaultRadius, Friction: DefaultFriction},
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over DefaultConfig, so a file may override only the
// fields it cares about. Lists replace the defaults wholesale.
func Parse(data []byte) (*Config, error) {
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

// Validate checks the host-level settings only; physical values are passed
// to the Engine unchecked.
func (c *Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt %v", ErrInvalid, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps %d", ErrInvalid, c.Steps)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("%w: body %d has no name", ErrInvalid, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: duplicate body %q", ErrInvalid, b.Name)
		}
		seen[b.Name] = true
	}
	if c.Track != "" && !seen[c.Track] {
		return fmt.Errorf("%w: tracked body %q not found", ErrInvalid, c.Track)
	}
	return nil
}

// TrackedIndex returns the index of the tracked body.
func (c *Config) TrackedIndex() int {
	for i, b := range c.Bodies {
		if b.Name == c.Track {
			return i
		}
	}
	return 0
}

// Clone returns a deep copy, so presets can be adjusted safely.
func (c *Config) Clone() *Config {
	data, err := yaml.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("config: clone: %v", err))
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("config: clone: %v", err))
	}
	return out
}
