package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/mipssim/asm"
)

func newAsmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "asm <program.s>",
		Short: "Assemble a program and print the listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read program: %w", err)
			}

			prog := asm.Assemble(string(source))
			out := cmd.OutOrStdout()

			for addr := uint64(0); addr < prog.End(); addr += 4 {
				if inst, ok := prog.At(addr); ok {
					fmt.Fprintf(out, "%4d: %s\n", addr, inst)
				} else {
					fmt.Fprintf(out, "%4d: <rejected>\n", addr)
				}
			}

			for _, r := range prog.Rejected() {
				fmt.Fprintf(out, "line %d rejected: %s (%s)\n", r.Line, r.Text, r.Reason)
			}
			if prog.Empty() {
				fmt.Fprintln(out, "warning: program contains no valid instructions")
			}
			return nil
		},
	}
}
