package annrecall

import (
	"errors"
	"fmt"

	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/recall"
	"github.com/hupe1980/annrecall/topk"
)

// Config describes one evaluation run.
type Config struct {
	// Metric selects the distance used for ground truth.
	Metric distance.Metric
	// Selector picks the top-k algorithm used for ground truth.
	Selector topk.Algorithm
	// BaseSeed is the root of per-trial seed derivation.
	BaseSeed uint64
	// NumTrials is the number of independent trials.
	NumTrials int
	// RecallLevels are strictly increasing k values at which recall is measured.
	RecallLevels []int
	// SearchEffort is forwarded to the index as is. Zero means the index default.
	SearchEffort int
}

// DefaultConfig returns a Config with the defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Metric:       distance.MetricEuclidean,
		Selector:     topk.AlgorithmMedian,
		BaseSeed:     42,
		NumTrials:    100,
		RecallLevels: []int{1, 10, 50, 100},
	}
}

// MaxLevel returns the largest recall level, or 0 when none are set.
func (c Config) MaxLevel() int {
	if len(c.RecallLevels) == 0 {
		return 0
	}
	return c.RecallLevels[len(c.RecallLevels)-1]
}

// Validate checks every field. It returns a *ConfigError.
func (c Config) Validate() error {
	if c.NumTrials <= 0 {
		return &ConfigError{Field: "num_trials", cause: fmt.Errorf("must be positive, got %d", c.NumTrials)}
	}
	if err := recall.ValidateLevels(c.RecallLevels); err != nil {
		return &ConfigError{Field: "recall_levels", cause: err}
	}
	if _, err := distance.Provider(c.Metric); err != nil {
		return &ConfigError{Field: "metric", cause: err}
	}
	if _, err := topk.New(c.Selector); err != nil {
		return &ConfigError{Field: "selector", cause: err}
	}
	if c.SearchEffort < 0 {
		return &ConfigError{Field: "search_effort", cause: errors.New("must not be negative")}
	}
	return nil
}
