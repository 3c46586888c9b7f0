// Package config holds the machine configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Machine configures the simulated machine shape.
type Machine struct {
	// MemoryWords is the data memory size in words. Default: 1024.
	MemoryWords int `json:"memory_words"`

	// PredictorResetState is the 2-bit counter value new branch-predictor
	// entries start from, in 0..3. Default: 1 (weakly not taken).
	PredictorResetState uint8 `json:"predictor_reset_state"`

	// MaxRunCycles bounds free-running simulation so non-terminating
	// programs still return. Default: 100000 cycles.
	MaxRunCycles uint64 `json:"max_run_cycles"`
}

// Default returns a Machine with the standard classroom configuration.
func Default() *Machine {
	return &Machine{
		MemoryWords:         1024,
		PredictorResetState: 1,
		MaxRunCycles:        100000,
	}
}

// LoadFile loads a Machine from a JSON file. Missing fields keep their
// default values.
func LoadFile(path string) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse machine config: %w", err)
	}

	return cfg, nil
}

// SaveFile writes the Machine to a JSON file.
func (m *Machine) SaveFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize machine config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write machine config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (m *Machine) Validate() error {
	if m.MemoryWords < 1 {
		return fmt.Errorf("memory_words must be > 0")
	}
	if m.PredictorResetState > 3 {
		return fmt.Errorf("predictor_reset_state must be in 0..3")
	}
	if m.MaxRunCycles == 0 {
		return fmt.Errorf("max_run_cycles must be > 0")
	}
	return nil
}

// Clone returns a copy of the Machine.
func (m *Machine) Clone() *Machine {
	c := *m
	return &c
}
