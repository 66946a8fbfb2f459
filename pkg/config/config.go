// Package config loads a simulation description from YAML or JSON.
//
// Files are decoded into a generic map first and then into Config with mapstructure, so
// YAML and JSON share one set of field names and unknown keys are rejected.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cellfate/pkg/domain"
	"github.com/aretw0/cellfate/pkg/environment"
	"github.com/aretw0/cellfate/pkg/population"
)

const component = "config"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config is the complete description of one simulation run.
type Config struct {
	Network      domain.Topology           `json:"network" yaml:"network" mapstructure:"network"`
	Associations []environment.Association `json:"associations" yaml:"associations" mapstructure:"associations"`
	Scheduler    domain.SchedulerConfig    `json:"scheduler" yaml:"scheduler" mapstructure:"scheduler"`
	Simulation   Simulation                `json:"simulation" yaml:"simulation" mapstructure:"simulation"`
	Environment  Environment               `json:"environment" yaml:"environment" mapstructure:"environment"`
	Store        Store                     `json:"store" yaml:"store" mapstructure:"store"`

	// ModelDir loads the nodes from a directory of node documents instead of network.nodes.
	// A relative path is resolved against the configuration file.
	ModelDir string `json:"model_dir" yaml:"model_dir" mapstructure:"model_dir"`
}

// Simulation holds the population and randomness settings.
type Simulation struct {
	Seed       uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`
	Cells      int    `json:"cells" yaml:"cells" mapstructure:"cells"`
	RandomInit bool   `json:"random_init" yaml:"random_init" mapstructure:"random_init"`
	Mode       string `json:"mode" yaml:"mode" mapstructure:"mode"`
	Workers    int    `json:"workers" yaml:"workers" mapstructure:"workers"`

	// FateActions installs the built-in intercellular operation: apoptotic and necrotic
	// cells die, proliferating cells divide up to MaxCells (0 = unbounded).
	FateActions bool `json:"fate_actions" yaml:"fate_actions" mapstructure:"fate_actions"`
	MaxCells    int  `json:"max_cells" yaml:"max_cells" mapstructure:"max_cells"`
}

// Environment is a static concentration field: Shared applies to every cell without an
// entry in Cells.
type Environment struct {
	Shared map[string]float64            `json:"shared" yaml:"shared" mapstructure:"shared"`
	Cells  map[string]map[string]float64 `json:"cells" yaml:"cells" mapstructure:"cells"`
}

// Store selects where snapshots and step summaries are published.
type Store struct {
	Driver string      `json:"driver" yaml:"driver" mapstructure:"driver"`
	Redis  RedisStore  `json:"redis" yaml:"redis" mapstructure:"redis"`
	SQLite SQLiteStore `json:"sqlite" yaml:"sqlite" mapstructure:"sqlite"`
}

// RedisStore configures the Redis snapshot store.
type RedisStore struct {
	Addr     string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string        `json:"password" yaml:"password" mapstructure:"password"`
	DB       int           `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string        `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// SQLiteStore configures the SQLite summary recorder.
type SQLiteStore struct {
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// Default returns the configuration used for every key a file leaves out.
func Default() Config {
	return Config{
		Network: domain.Topology{PropagationSteps: 50},
		Scheduler: domain.SchedulerConfig{
			DiffusionStep:     1,
			IntracellularStep: 1,
			IntercellularStep: 1,
			TotalSteps:        10,
		},
		Simulation: Simulation{
			Cells: 1,
			Mode:  string(population.ModeSerial),
		},
		Store: Store{
			Driver: DriverMemory,
			Redis:  RedisStore{Addr: "localhost:6379", Prefix: "cellfate:"},
			SQLite: SQLiteStore{DSN: ":memory:"},
		},
	}
}

// Load reads a configuration file (YAML or JSON, chosen by extension) over Default and
// validates it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes raw bytes in the given format ("yaml" or "json") over Default.
func Parse(data []byte, format string) (Config, error) {
	raw := map[string]any{}
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse json config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode copies a generic map into cfg. Keys absent from raw keep their current value.
func Decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return &domain.ConfigurationError{Component: component, Reason: "invalid document", Err: err}
	}
	return nil
}

// Validate checks the settings this package owns. Network, association and schedule
// problems are reported by the components that consume them.
func (c Config) Validate() error {
	var errs domain.ConfigurationErrors

	if c.Simulation.Cells < 0 {
		errs.Add(component, "simulation.cells", fmt.Sprintf("must be >= 0, got %d", c.Simulation.Cells), nil)
	}
	if c.Simulation.Workers < 0 {
		errs.Add(component, "simulation.workers", fmt.Sprintf("must be >= 0, got %d", c.Simulation.Workers), nil)
	}
	if c.Simulation.MaxCells < 0 {
		errs.Add(component, "simulation.max_cells", fmt.Sprintf("must be >= 0, got %d", c.Simulation.MaxCells), nil)
	}
	if _, err := population.ParseMode(c.Simulation.Mode); err != nil {
		errs.Add(component, "simulation.mode", "execution mode must be serial or parallel", nil)
	}

	if c.ModelDir != "" && len(c.Network.Nodes) > 0 {
		errs.Add(component, "model_dir", "cannot be combined with network.nodes", nil)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Store.Redis.Addr == "" {
			errs.Add(component, "store.redis.addr", "required for the redis driver", nil)
		}
		if c.Store.Redis.TTL < 0 {
			errs.Add(component, "store.redis.ttl", "must not be negative", nil)
		}
	case DriverSQLite:
		if c.Store.SQLite.DSN == "" {
			errs.Add(component, "store.sqlite.dsn", "required for the sqlite driver", nil)
		}
	default:
		errs.Add(component, "store.driver", fmt.Sprintf("unknown driver %q", c.Store.Driver), nil)
	}
	return errs.Err()
}

// LoadTopology implements ports.TopologyLoader over the network section.
func (c Config) LoadTopology(ctx context.Context) (domain.Topology, error) {
	if err := ctx.Err(); err != nil {
		return domain.Topology{}, err
	}
	return c.Network, nil
}
