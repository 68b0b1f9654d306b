package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/search"
)

// Config is the on-disk plan configuration (verdant.toml). Every field is
// optional; zero values fall through to the search defaults.
type Config struct {
	Garden GardenConfig `toml:"garden"`
	Search SearchConfig `toml:"search"`
	Budget BudgetConfig `toml:"budget"`
}

// GardenConfig sets the plot dimensions and the variety source.
type GardenConfig struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Catalog string  `toml:"catalog"`
	Seed    int64   `toml:"seed"`
	Count   int     `toml:"count"`
}

// SearchConfig sets scoring depth and candidate generation parameters.
type SearchConfig struct {
	Turns            int     `toml:"turns"`
	AdaptiveTurnsMin int     `toml:"adaptive_turns_min"`
	MaxCandidates    int     `toml:"max_candidates"`
	HeuristicTopK    int     `toml:"heuristic_top_k"`
	RefineTopK       int     `toml:"refine_top_k"`
	RefineTurns      int     `toml:"refine_turns"`
	Epsilon          float64 `toml:"epsilon"`
	Parallel         bool    `toml:"parallel"`
	Workers          int     `toml:"workers"`
}

// BudgetConfig sets the time governor limits.
type BudgetConfig struct {
	SoftSeconds   float64 `toml:"soft_seconds"`
	HardSeconds   float64 `toml:"hard_seconds"`
	CheckInterval int     `toml:"check_interval"`
	MinScale      float64 `toml:"min_scale"`
}

// loadConfig reads a TOML config file. A missing path returns an empty
// config so flags alone can drive a run.
func loadConfig(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
	}
	return &cfg, nil
}

// searchOptions converts the config into search options. Zero-valued fields
// are left for ValidateAndSetDefaults to fill in.
func (c *Config) searchOptions() search.Options {
	return search.Options{
		Turns:            c.Search.Turns,
		AdaptiveTurnsMin: c.Search.AdaptiveTurnsMin,
		MaxCandidates:    c.Search.MaxCandidates,
		HeuristicTopK:    c.Search.HeuristicTopK,
		RefineTopK:       c.Search.RefineTopK,
		RefineTurns:      c.Search.RefineTurns,
		Epsilon:          c.Search.Epsilon,
		Parallel:         c.Search.Parallel,
		Workers:          c.Search.Workers,
		SoftBudget:       secondsToDuration(c.Budget.SoftSeconds),
		HardTimeout:      secondsToDuration(c.Budget.HardSeconds),
		CheckInterval:    c.Budget.CheckInterval,
		MinScale:         c.Budget.MinScale,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
