// Package battery implements the battery health trajectory analyzer:
// charging-event and stale-data detection over a device's cached reading
// history, plus a depletion forecast fitted to the longest uninterrupted
// drainage run. All functions are pure; the package keeps no state between
// calls and never mutates its input.
package battery

import "time"

// Default tunables.
const (
	// DefaultChargeJumpThreshold is the percentage jump between consecutive
	// readings above which the pair is treated as a charging event. The
	// comparison is strict: a delta of exactly this value is not a jump.
	DefaultChargeJumpThreshold = 50.0

	// DefaultStaleAfter is the retention horizon. A history whose oldest
	// reading is strictly older than this is considered stale.
	DefaultStaleAfter = 183 * 24 * time.Hour

	// DefaultMaxHorizon caps how far into the future a depletion forecast
	// may land. Near-zero slopes project absurdly distant depletion times;
	// those are noise, not signal.
	DefaultMaxHorizon = 5 * 365 * 24 * time.Hour
)

// Config holds the analyzer tunables.
type Config struct {
	ChargeJumpThreshold float64
	StaleAfter          time.Duration
	MaxHorizon          time.Duration
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		ChargeJumpThreshold: DefaultChargeJumpThreshold,
		StaleAfter:          DefaultStaleAfter,
		MaxHorizon:          DefaultMaxHorizon,
	}
}

// Analyzer evaluates battery reading histories. It is stateless and safe
// for concurrent use.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given configuration. Zero-valued
// tunables fall back to their defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.ChargeJumpThreshold == 0 {
		cfg.ChargeJumpThreshold = def.ChargeJumpThreshold
	}
	if cfg.StaleAfter == 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	if cfg.MaxHorizon == 0 {
		cfg.MaxHorizon = def.MaxHorizon
	}
	return &Analyzer{cfg: cfg}
}

// Config returns the analyzer's effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}
