package shape

// DefaultMaxDepth bounds the nesting depth accepted by Generalize and Match.
const DefaultMaxDepth = 512

// Config controls generalization and matching.
type Config struct {
	// MaxDepth rejects inputs nested deeper than this with ErrTooDeep.
	// Zero or negative disables the check.
	MaxDepth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth}
}
