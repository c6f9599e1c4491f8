// Package config loads application parameters from yaml. Files use a kind/def envelope:
//
//	kind: gridsearch
//	def:
//	  grid: {...}
//	  search: {...}
//
// so that one directory can hold configs for several tools.
package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"gridsearch/grid_world"
)

// Kind is the envelope kind accepted by FromYaml.
const Kind = "gridsearch"

var ErrWrongKind = errors.New("config kind is not " + Kind)

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// AppConfig holds every tunable of the search tools. Command line flags override it.
// Viper lowercases keys, so the yaml tags are lowercase; files may use any case.
type AppConfig struct {
	Grid   GridConfig   `yaml:"grid"`
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Batch  BatchConfig  `yaml:"batch"`
}

// GridConfig selects a grid file or describes a random grid to generate.
type GridConfig struct {
	// File is a text grid; when set the generator params are ignored.
	File                string  `yaml:"file"`
	Width               int     `yaml:"width"`
	Height              int     `yaml:"height"`
	WalkableProbability float64 `yaml:"walkableprobability"`
	MinCost             int     `yaml:"mincost"`
	MaxCost             int     `yaml:"maxcost"`
	// Seed drives generation and random endpoints. Zero means seed from the clock.
	Seed int64 `yaml:"seed"`
}

// GenParams converts the generator section.
func (cfg GridConfig) GenParams() grid_world.GenParams {
	return grid_world.GenParams{
		Width:               cfg.Width,
		Height:              cfg.Height,
		WalkableProbability: cfg.WalkableProbability,
		MinCost:             cfg.MinCost,
		MaxCost:             cfg.MaxCost,
	}
}

type PointConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p *PointConfig) Point() grid_world.Point {
	return grid_world.Point{X: p.X, Y: p.Y}
}

type SearchConfig struct {
	// Start and Goal are random walkable cells when nil.
	Start        *PointConfig `yaml:"start"`
	Goal         *PointConfig `yaml:"goal"`
	ClosedPolicy string       `yaml:"closedpolicy"`
	// Deadline is a duration describing when to abandon a search, e.g. {duration: 5s}.
	Deadline map[string]string `yaml:"deadline"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	// StepDelay paces the live view between progress events.
	StepDelay time.Duration `yaml:"stepdelay"`
}

// Addr is the listen address.
func (cfg ServerConfig) Addr() string {
	return cfg.Host + ":" + cfg.Port
}

type BatchConfig struct {
	Workers  int `yaml:"workers"`
	Searches int `yaml:"searches"`
	// DB is a sqlite file recording each run; empty disables recording.
	DB string `yaml:"db"`
}

// Default returns the configuration used when no file is given: the 25x25 console demo.
func Default() *AppConfig {
	params := grid_world.ConsoleParams
	return &AppConfig{
		Grid: GridConfig{
			Width:               params.Width,
			Height:              params.Height,
			WalkableProbability: params.WalkableProbability,
			MinCost:             params.MinCost,
			MaxCost:             params.MaxCost,
		},
		Search: SearchConfig{
			ClosedPolicy: "final",
		},
		Server: ServerConfig{
			Port:      "8080",
			StepDelay: 50 * time.Millisecond,
		},
		Batch: BatchConfig{
			Workers:  4,
			Searches: 100,
		},
	}
}

// SearchDeadline parses the search deadline; zero means the search is unbounded.
func (cfg *AppConfig) SearchDeadline() (time.Duration, error) {
	val, ok := cfg.Search.Deadline["duration"]
	if !ok {
		return 0, nil
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("search deadline: %w", err)
	}
	return duration, nil
}

// WithSearchDeadline returns a context extended by the search deadline, if one is specified.
func (cfg *AppConfig) WithSearchDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	duration, err := cfg.SearchDeadline()
	if err != nil {
		return nil, nil, err
	}
	if duration > 0 {
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// FromYaml reads the envelope with viper and decodes its def section over Default(),
// so omitted keys keep their default values.
func FromYaml(path string) (*AppConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err := vp.Unmarshal(outerConfig); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if outerConfig.Kind != Kind {
		return nil, fmt.Errorf("%s: %w (got %q)", path, ErrWrongKind, outerConfig.Kind)
	}

	spec, err := yaml.Marshal(outerConfig.Def)
	if err != nil {
		return nil, err
	}

	innerConfig := Default()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return innerConfig, nil
}
