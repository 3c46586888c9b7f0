package pipeline

// 2-bit saturating counter states.
const (
	// StronglyNotTaken is counter state 0.
	StronglyNotTaken uint8 = iota
	// WeaklyNotTaken is counter state 1, the state new entries start from.
	WeaklyNotTaken
	// WeaklyTaken is counter state 2.
	WeaklyTaken
	// StronglyTaken is counter state 3.
	StronglyTaken
)

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the number of observed branch outcomes.
	Predictions uint64
	// Correct is the number of correctly predicted outcomes.
	Correct uint64
	// Mispredictions is the number of incorrectly predicted outcomes.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// BranchPredictor implements a per-address 2-bit saturating counter
// (bimodal) predictor. Entries are created lazily on first reference and
// are only removed by Reset.
type BranchPredictor struct {
	table      map[uint64]uint8
	resetState uint8
	stats      BranchPredictorStats
}

// NewBranchPredictor creates a predictor whose entries start at resetState.
// Values outside 0..3 fall back to WeaklyNotTaken.
func NewBranchPredictor(resetState uint8) *BranchPredictor {
	if resetState > StronglyTaken {
		resetState = WeaklyNotTaken
	}
	return &BranchPredictor{
		table:      make(map[uint64]uint8),
		resetState: resetState,
	}
}

// state returns the counter for addr, creating it if needed.
func (bp *BranchPredictor) state(addr uint64) uint8 {
	if s, ok := bp.table[addr]; ok {
		return s
	}
	bp.table[addr] = bp.resetState
	return bp.resetState
}

// Predict returns true when the branch at addr is predicted taken.
func (bp *BranchPredictor) Predict(addr uint64) bool {
	return bp.state(addr) >= WeaklyTaken
}

// Update trains the counter for addr with the actual outcome, saturating at
// the range bounds. Correctness is judged against the pre-update state.
func (bp *BranchPredictor) Update(addr uint64, taken bool) {
	s := bp.state(addr)

	bp.stats.Predictions++
	if (s >= WeaklyTaken) == taken {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	if taken {
		if s < StronglyTaken {
			bp.table[addr] = s + 1
		}
	} else {
		if s > StronglyNotTaken {
			bp.table[addr] = s - 1
		}
	}
}

// Entries returns a copy of the predictor table, mapping branch byte
// addresses to counter states.
func (bp *BranchPredictor) Entries() map[uint64]uint8 {
	out := make(map[uint64]uint8, len(bp.table))
	for addr, s := range bp.table {
		out[addr] = s
	}
	return out
}

// Stats returns the predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset removes every table entry and clears the statistics.
func (bp *BranchPredictor) Reset() {
	bp.table = make(map[uint64]uint8)
	bp.stats = BranchPredictorStats{}
}
