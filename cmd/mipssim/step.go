package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sarchlab/mipssim/timing/core"
)

const stepHelp = `Commands:
  step [n]        advance n cycles (default 1) and show the pipeline
  run [n]         run until drained, at most n cycles (default 1000)
  pipe            show the current pipeline snapshot
  regs            show nonzero registers
  mem [addr [n]]  show n memory words from byte address addr (default 0, 8)
  pred            show the branch predictor table
  set $sN V       set register N to V
  set mem A V     set the memory word at byte address A to V
  load FILE       load a new program (keeps registers and memory)
  reset           reset the whole machine
  help            show this help
  quit            exit`

func newStepCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "step [program.s]",
		Short: "Step through a program interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			c := core.New(cfg)
			if len(args) == 1 {
				if err := loadProgramFile(c, args[0]); err != nil {
					return err
				}
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:      "mipssim> ",
				HistoryFile: "/tmp/mipssim_history.txt",
			})
			if err != nil {
				return fmt.Errorf("failed to start readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			repl(rl, c)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "",
		"path to machine configuration JSON file")

	return cmd
}

// repl reads and executes interactive commands until EOF or quit.
func repl(rl *readline.Instance, c *core.Core) {
	out := rl.Stdout()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "step", "s":
			n := argOrDefault(fields, 1, 1)
			var last string
			for i := 0; i < n; i++ {
				last = renderSnapshot(c.Step())
			}
			fmt.Fprint(out, last)

		case "run", "r":
			n := argOrDefault(fields, 1, 1000)
			ran := 0
			for ; ran < n && !c.Drained(); ran++ {
				c.Step()
			}
			fmt.Fprintf(out, "ran %d cycles (drained=%t)\n", ran, c.Drained())
			fmt.Fprint(out, renderSnapshot(c.Snapshot()))

		case "pipe", "p":
			fmt.Fprint(out, renderSnapshot(c.Snapshot()))

		case "regs":
			printRegisters(out, c)

		case "mem":
			addr := int64(argOrDefault(fields, 1, 0))
			count := argOrDefault(fields, 2, 8)
			printMemory(out, c, addr, count)

		case "pred":
			printPredictor(out, c)

		case "set":
			doSet(out, c, fields)

		case "load":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: load FILE")
				continue
			}
			if err := loadProgramFile(c, fields[1]); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			fmt.Fprintf(out, "loaded %d instructions\n", c.Program().NumInstructions())

		case "reset":
			c.Reset()
			fmt.Fprintln(out, "machine reset")

		case "help", "?":
			fmt.Fprintln(out, stepHelp)

		case "quit", "q", "exit":
			return

		default:
			fmt.Fprintf(out, "unknown command %q (try help)\n", fields[0])
		}
	}
}

// doSet handles `set $sN V` and `set mem A V`.
func doSet(out io.Writer, c *core.Core, fields []string) {
	switch {
	case len(fields) == 3 && strings.HasPrefix(fields[1], "$"):
		value, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			fmt.Fprintf(out, "invalid value %q\n", fields[2])
			return
		}
		if err := c.SetRegisterByName(fields[1], value); err != nil {
			fmt.Fprintln(out, err)
		}

	case len(fields) == 4 && fields[1] == "mem":
		addr, err1 := strconv.ParseInt(fields[2], 10, 64)
		value, err2 := strconv.ParseInt(fields[3], 10, 64)
		if err1 != nil || err2 != nil {
			fmt.Fprintln(out, "usage: set mem ADDR VALUE")
			return
		}
		if !c.SetMemory(addr, value) {
			fmt.Fprintf(out, "address %d is unaligned or out of range\n", addr)
		}

	default:
		fmt.Fprintln(out, "usage: set $sN VALUE | set mem ADDR VALUE")
	}
}

// argOrDefault parses fields[i] as an int, falling back to def.
func argOrDefault(fields []string, i, def int) int {
	if len(fields) <= i {
		return def
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil || n < 0 {
		fmt.Fprintf(os.Stderr, "ignoring invalid count %q\n", fields[i])
		return def
	}
	return n
}
