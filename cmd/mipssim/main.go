// Package main provides the mipssim command line tool: batch runs,
// interactive stepping and assembly listings for the pipeline simulator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mipssim/log"
)

var (
	logLevel string
	logJSON  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mipssim",
		Short: "5-stage pipeline simulator",
		Long: "mipssim simulates a classic 5-stage instruction pipeline " +
			"(IF/ID/EX/MEM/WB) over a small register/memory machine, with " +
			"hazard detection, operand forwarding and 2-bit branch prediction.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLogLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logType := log.ConsoleLogger
			if logJSON {
				logType = log.JSONLogger
			}
			log.Init(log.Options{LogLevel: level, Type: logType})
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"emit JSON logs instead of console output")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStepCmd())
	rootCmd.AddCommand(newAsmCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
