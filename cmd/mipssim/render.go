package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/xlab/treeprint"

	"github.com/sarchlab/mipssim/insts"
	"github.com/sarchlab/mipssim/timing/core"
	"github.com/sarchlab/mipssim/timing/pipeline"
)

// renderSnapshot renders the five stage slots as a tree.
func renderSnapshot(snap pipeline.Snapshot) string {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("cycle %d  pc=%d  hazard=%s", snap.Cycle, snap.PC, snap.Hazard))

	addSlot := func(name, content string) {
		tree.AddNode(fmt.Sprintf("%-3s %s", name, content))
	}

	if snap.IF.Valid {
		addSlot("IF", snap.IF.Inst.String())
	} else {
		addSlot("IF", "-")
	}
	if snap.ID.Valid {
		addSlot("ID", fmt.Sprintf("%s  [rs=%d rt=%d]",
			snap.ID.Inst, snap.ID.RsValue, snap.ID.RtValue))
	} else {
		addSlot("ID", "-")
	}
	if snap.EX.Valid {
		content := fmt.Sprintf("%s  [result=%d]", snap.EX.Inst, snap.EX.Result)
		if snap.EX.Inst.Op == insts.OpBeq {
			content = fmt.Sprintf("%s  [equal=%t]", snap.EX.Inst, snap.EX.Equal)
		}
		addSlot("EX", content)
	} else {
		addSlot("EX", "-")
	}
	if snap.MEM.Valid {
		addSlot("MEM", fmt.Sprintf("%s  [result=%d]", snap.MEM.Inst, snap.MEM.Result))
	} else {
		addSlot("MEM", "-")
	}
	if snap.WB.Valid {
		addSlot("WB", fmt.Sprintf("%s  [result=%d]", snap.WB.Inst, snap.WB.Result))
	} else {
		addSlot("WB", "-")
	}

	if snap.Stalled {
		tree.AddNode("fetch stalled")
	}

	return tree.String()
}

// printRegisters writes the nonzero registers, or a note when all are zero.
func printRegisters(w io.Writer, c *core.Core) {
	regs := c.Registers()
	any := false
	for i, v := range regs {
		if v != 0 {
			fmt.Fprintf(w, "  $s%-2d = %d\n", i, v)
			any = true
		}
	}
	if !any {
		fmt.Fprintln(w, "  all registers are 0")
	}
}

// printMemory writes count words starting at the given byte address.
func printMemory(w io.Writer, c *core.Core, addr int64, count int) {
	for i := 0; i < count; i++ {
		a := addr + int64(i)*4
		v, ok := c.Memory(a)
		if !ok {
			fmt.Fprintf(w, "  [%4d] <invalid>\n", a)
			continue
		}
		fmt.Fprintf(w, "  [%4d] %d\n", a, v)
	}
}

// printPredictor writes the predictor table sorted by branch address.
func printPredictor(w io.Writer, c *core.Core) {
	entries := c.PredictorEntries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "  predictor table is empty")
		return
	}

	addrs := make([]uint64, 0, len(entries))
	for addr := range entries {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	names := []string{
		"strongly not taken",
		"weakly not taken",
		"weakly taken",
		"strongly taken",
	}
	for _, addr := range addrs {
		state := entries[addr]
		fmt.Fprintf(w, "  pc=%-4d state=%d (%s)\n", addr, state, names[state])
	}
}
