package emu

// DefaultMemoryWords is the default data memory size in words.
const DefaultMemoryWords = 1024

// Memory is a fixed-size word-addressable data memory. Addresses are byte
// addresses and must be word-aligned (a multiple of 4); word index is
// address/4. Invalid accesses are ignored rather than faulting, so the
// machine stays steppable on any input.
type Memory struct {
	words []int64
}

// NewMemory creates a memory with the given number of words. Sizes below 1
// fall back to DefaultMemoryWords.
func NewMemory(numWords int) *Memory {
	if numWords < 1 {
		numWords = DefaultMemoryWords
	}
	return &Memory{words: make([]int64, numWords)}
}

// Size returns the memory size in words.
func (m *Memory) Size() int {
	return len(m.words)
}

// ValidAddr reports whether addr is a word-aligned byte address inside the
// memory.
func (m *Memory) ValidAddr(addr int64) bool {
	return addr >= 0 && addr%4 == 0 && addr/4 < int64(len(m.words))
}

// Read returns the word at the given byte address. Unaligned or
// out-of-range addresses read as 0 with ok=false.
func (m *Memory) Read(addr int64) (int64, bool) {
	if !m.ValidAddr(addr) {
		return 0, false
	}
	return m.words[addr/4], true
}

// Write stores a word at the given byte address. Unaligned or out-of-range
// addresses are ignored and reported with ok=false.
func (m *Memory) Write(addr int64, value int64) bool {
	if !m.ValidAddr(addr) {
		return false
	}
	m.words[addr/4] = value
	return true
}

// Words returns a copy of the full memory contents, indexed by word.
func (m *Memory) Words() []int64 {
	out := make([]int64, len(m.words))
	copy(out, m.words)
	return out
}

// Reset clears every word to 0.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}
