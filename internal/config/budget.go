// Package config loads runtime settings from the environment and budget
// targets from YAML.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Budget maps a dashboard metric name (for example "savings.balance") to
// its target limit.
type Budget map[string]float64

// Limit returns the limit for metric, or nil when none is configured.
func (b Budget) Limit(metric string) *float64 {
	v, ok := b[metric]
	if !ok {
		return nil
	}
	return &v
}

type budgetFile struct {
	Targets map[string]float64 `yaml:"targets"`
}

// ParseBudget reads budget targets from YAML. Targets may sit under a
// top-level "targets" key or be given as a flat metric: limit map.
func ParseBudget(data []byte) (Budget, error) {
	var file budgetFile
	if err := yaml.Unmarshal(data, &file); err == nil && file.Targets != nil {
		return Budget(file.Targets), nil
	}

	var direct map[string]float64
	if err := yaml.Unmarshal(data, &direct); err != nil {
		return nil, fmt.Errorf("could not parse budget targets: %w", err)
	}
	if direct == nil {
		direct = map[string]float64{}
	}
	return Budget(direct), nil
}

// LoadBudget reads and parses the budget file at path.
func LoadBudget(path string) (Budget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read budget file: %w", err)
	}
	b, err := ParseBudget(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// FileBudget provides budget targets from a YAML file, read once on first
// use.
type FileBudget struct {
	Path string
	// Optional makes a missing file an empty budget instead of an error.
	Optional bool

	once   sync.Once
	budget Budget
	err    error
}

// Budget returns the targets, loading the file on the first call.
func (f *FileBudget) Budget(ctx context.Context) (Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.once.Do(func() {
		if f.Path == "" {
			f.budget = Budget{}
			return
		}
		f.budget, f.err = LoadBudget(f.Path)
		if f.err != nil && f.Optional && errors.Is(f.err, fs.ErrNotExist) {
			f.budget, f.err = Budget{}, nil
		}
	})
	return f.budget, f.err
}
