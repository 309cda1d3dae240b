package domain

// SpinResult is the deterministic outcome of one wager: the reel symbols and
// the evaluated win in minor units (zero when no rule matched).
type SpinResult struct {
	Symbols  []string
	WinCents int64
}

// ReelCount is fixed by the outcome derivation: the first 3 ×8 hex characters
// of the digest are consumed, one 32-bit chunk per reel.
const ReelCount = 3
