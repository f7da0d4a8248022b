package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"
)

// Config holds the construction parameters of one level.
type Config struct {
	// Name identifies the level in logs and traces.
	Name string `json:"name"`

	// Latency is the number of waiting polls before an access completes.
	Latency uint64 `json:"latency"`

	// Ways is the associativity. Terminal levels use 1.
	Ways int `json:"ways"`

	// Size is the capacity in bytes.
	Size int `json:"size"`

	// LineLength is the line size in bytes.
	LineLength int `json:"line_length"`

	// WordSize is the word size in bits.
	WordSize int `json:"word_size"`

	// Terminal marks the backing store, which never misses.
	Terminal bool `json:"terminal"`
}

// Validate checks that the geometry of the level is consistent.
func (c Config) Validate() error {
	if c.Ways <= 0 {
		return fmt.Errorf("%s: ways must be > 0", c.Name)
	}
	if c.Size <= 0 || c.LineLength <= 0 {
		return fmt.Errorf("%s: size and line_length must be > 0", c.Name)
	}
	if c.WordSize <= 0 || c.WordSize%8 != 0 || c.WordSize > 32 {
		return fmt.Errorf("%s: word_size must be a multiple of 8 up to 32 bits", c.Name)
	}
	if c.Size%c.LineLength != 0 {
		return fmt.Errorf("%s: size must be a multiple of line_length", c.Name)
	}
	if (c.LineLength*8)%c.WordSize != 0 {
		return fmt.Errorf("%s: line_length must hold a whole number of words", c.Name)
	}

	g := NewGeometry(c.Ways, c.Size, c.LineLength, c.WordSize)
	if g.Lines == 0 {
		return fmt.Errorf("%s: size must hold at least one line", c.Name)
	}
	if int(g.IndexBits+g.OffsetBits) > c.WordSize {
		return fmt.Errorf("%s: %d index and %d offset bits exceed the word size",
			c.Name, g.IndexBits, g.OffsetBits)
	}
	if c.Terminal {
		return nil
	}
	if bits.OnesCount(uint(g.Sets)) != 1 {
		return fmt.Errorf("%s: set count %d is not a power of two", c.Name, g.Sets)
	}
	if bits.OnesCount(uint(g.WordsPerLine)) != 1 {
		return fmt.Errorf("%s: %d words per line is not a power of two",
			c.Name, g.WordsPerLine)
	}

	return nil
}

// HierarchyConfig lists the levels of a hierarchy from the level closest to
// the processor down to the backing store.
type HierarchyConfig struct {
	Levels []Config `json:"levels"`
}

// DefaultHierarchy returns an 8-way L1 in front of a backing store.
func DefaultHierarchy() *HierarchyConfig {
	return &HierarchyConfig{
		Levels: []Config{
			{Name: "L1", Latency: 5, Ways: 8, Size: 8000, LineLength: 64, WordSize: 32},
			{Name: "RAM", Latency: 1, Ways: 1, Size: 32000, LineLength: 64, WordSize: 32, Terminal: true},
		},
	}
}

// LoadConfig loads a HierarchyConfig from a JSON file.
func LoadConfig(path string) (*HierarchyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy config file: %w", err)
	}

	config := &HierarchyConfig{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a HierarchyConfig to a JSON file.
func (h *HierarchyConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize hierarchy config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write hierarchy config file: %w", err)
	}

	return nil
}

// ErrNoBackingStore is returned when the last level is not terminal.
var ErrNoBackingStore = errors.New("last level must be a terminal backing store")

// Validate checks every level and the shape of the hierarchy.
func (h *HierarchyConfig) Validate() error {
	if len(h.Levels) == 0 {
		return fmt.Errorf("hierarchy must have at least one level")
	}

	wordSize := h.Levels[0].WordSize
	for i, level := range h.Levels {
		if err := level.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
		if level.WordSize != wordSize {
			return fmt.Errorf("level %d: word_size %d differs from %d",
				i, level.WordSize, wordSize)
		}
		last := i == len(h.Levels)-1
		if level.Terminal && !last {
			return fmt.Errorf("level %d: only the last level may be terminal", i)
		}
		if !level.Terminal && last {
			return ErrNoBackingStore
		}
	}

	return nil
}

// Clone returns a deep copy of the HierarchyConfig.
func (h *HierarchyConfig) Clone() *HierarchyConfig {
	levels := make([]Config, len(h.Levels))
	copy(levels, h.Levels)
	return &HierarchyConfig{Levels: levels}
}

// Build constructs the levels deepest first and chains them. The returned
// slice is ordered like Levels; element 0 is the top of the hierarchy.
func (h *HierarchyConfig) Build(opts ...Option) []*Level {
	levels := make([]*Level, len(h.Levels))
	for i := len(h.Levels) - 1; i >= 0; i-- {
		levels[i] = New(h.Levels[i], opts...)
		if i+1 < len(levels) {
			levels[i].AttachMemory(levels[i+1])
		}
	}
	return levels
}
