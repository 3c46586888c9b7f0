package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mipssim/config"
	"github.com/sarchlab/mipssim/timing/core"
	"github.com/sarchlab/mipssim/timing/driver"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		maxCycles  uint64
		setRegs    []string
		setMems    []string
	)

	cmd := &cobra.Command{
		Use:   "run <program.s>",
		Short: "Assemble a program and run it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if maxCycles > 0 {
				cfg.MaxRunCycles = maxCycles
			}

			c := core.New(cfg)
			if err := loadProgramFile(c, args[0]); err != nil {
				return err
			}
			if err := applyInjections(c, setRegs, setMems); err != nil {
				return err
			}

			d := driver.New(c, cfg.MaxRunCycles)
			if err := d.Run(); err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			printReport(cmd, c, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "",
		"path to machine configuration JSON file")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 0,
		"override the run cycle budget")
	cmd.Flags().StringArrayVar(&setRegs, "set", nil,
		"initial register value, e.g. --set '$s1=5' (repeatable)")
	cmd.Flags().StringArrayVar(&setMems, "mem", nil,
		"initial memory word, e.g. --mem '0=42' (repeatable)")

	return cmd
}

// loadConfig reads the machine configuration, falling back to defaults when
// no path is given.
func loadConfig(path string) (*config.Machine, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine config: %w", err)
	}
	return cfg, nil
}

// loadProgramFile assembles a source file into the core and surfaces the
// loader warnings.
func loadProgramFile(c *core.Core, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read program: %w", err)
	}

	result := c.LoadSource(string(source))
	for _, r := range result.Rejected {
		fmt.Fprintf(os.Stderr, "warning: line %d rejected: %s (%s)\n",
			r.Line, r.Text, r.Reason)
	}
	if result.EmptyProgram {
		fmt.Fprintln(os.Stderr, "warning: program contains no valid instructions")
	}
	return nil
}

// applyInjections applies --set and --mem assignments to the core.
func applyInjections(c *core.Core, setRegs, setMems []string) error {
	for _, s := range setRegs {
		name, value, err := splitAssignment(s)
		if err != nil {
			return err
		}
		if err := c.SetRegisterByName(name, value); err != nil {
			return err
		}
	}
	for _, s := range setMems {
		addrText, value, err := splitAssignment(s)
		if err != nil {
			return err
		}
		addr, err := strconv.ParseInt(addrText, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid memory address %q", addrText)
		}
		if !c.SetMemory(addr, value) {
			return fmt.Errorf("memory address %d is unaligned or out of range", addr)
		}
	}
	return nil
}

// splitAssignment parses a "key=value" flag argument.
func splitAssignment(s string) (string, int64, error) {
	key, valText, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("expected key=value, got %q", s)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(valText), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in %q", s)
	}
	return strings.TrimSpace(key), value, nil
}

// printReport writes the end-of-run summary.
func printReport(cmd *cobra.Command, c *core.Core, path string) {
	stats := c.Stats()
	pred := c.PredictorStats()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Program: %s\n", path)
	fmt.Fprintf(out, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(out, "Instructions Retired: %d\n", stats.Instructions)
	fmt.Fprintf(out, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "Pipeline Events:\n")
	fmt.Fprintf(out, "  Stall cycles:       %d\n", stats.Stalls)
	fmt.Fprintf(out, "  Squashes:           %d\n", stats.Squashes)
	fmt.Fprintf(out, "  Forward cycles:     %d\n", stats.Forwards)
	fmt.Fprintf(out, "  Structural hazards: %d\n", stats.StructuralHazards)
	fmt.Fprintf(out, "  Data hazards:       %d\n", stats.DataHazards)
	fmt.Fprintf(out, "  Control hazards:    %d\n", stats.ControlHazards)
	if pred.Predictions > 0 {
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "Branch Prediction:\n")
		fmt.Fprintf(out, "  Outcomes observed:  %d\n", pred.Predictions)
		fmt.Fprintf(out, "  Correct:            %d\n", pred.Correct)
		fmt.Fprintf(out, "  Mispredictions:     %d\n", pred.Mispredictions)
		fmt.Fprintf(out, "  Accuracy:           %.1f%%\n", pred.Accuracy())
	}
}
