package service

import "slot-wager-service/internal/core/ports"

// Win rules implement ports.WinRule. They are evaluated in strict priority
// order and the first match wins, so JackpotRule must precede ThreeOfAKindRule
// or a jackpot line would be shadowed by the generic rule.

const (
	jackpotMultiplier      = 100
	threeOfAKindMultiplier = 10
)

// JackpotRule matches when every reel shows the designated jackpot symbol.
type JackpotRule struct {
	jackpotSymbol string
}

// NewJackpotRule creates the highest-priority rule.
func NewJackpotRule(jackpotSymbol string) *JackpotRule {
	return &JackpotRule{jackpotSymbol: jackpotSymbol}
}

func (r *JackpotRule) Matches(symbols []string) bool {
	if len(symbols) != 3 {
		return false
	}
	for _, s := range symbols {
		if s != r.jackpotSymbol {
			return false
		}
	}
	return true
}

func (r *JackpotRule) Payout(betCents int64) int64 {
	return betCents * jackpotMultiplier
}

// ThreeOfAKindRule matches three identical symbols that are not the jackpot
// symbol; the jackpot case belongs to JackpotRule.
type ThreeOfAKindRule struct {
	jackpotSymbol string
}

// NewThreeOfAKindRule creates the generic three-of-a-kind rule.
func NewThreeOfAKindRule(jackpotSymbol string) *ThreeOfAKindRule {
	return &ThreeOfAKindRule{jackpotSymbol: jackpotSymbol}
}

func (r *ThreeOfAKindRule) Matches(symbols []string) bool {
	if len(symbols) != 3 {
		return false
	}
	first := symbols[0]
	if first == r.jackpotSymbol {
		return false
	}
	for _, s := range symbols[1:] {
		if s != first {
			return false
		}
	}
	return true
}

func (r *ThreeOfAKindRule) Payout(betCents int64) int64 {
	return betCents * threeOfAKindMultiplier
}

// DefaultWinRules returns the reference rule set in priority order. New rules
// are appended here without touching existing ones.
func DefaultWinRules(jackpotSymbol string) []ports.WinRule {
	return []ports.WinRule{
		NewJackpotRule(jackpotSymbol),
		NewThreeOfAKindRule(jackpotSymbol),
	}
}

// EvaluateWin applies the ordered rule set; the first matching rule's payout
// is returned, zero when none match.
func EvaluateWin(rules []ports.WinRule, symbols []string, betCents int64) int64 {
	for _, rule := range rules {
		if rule.Matches(symbols) {
			return rule.Payout(betCents)
		}
	}
	return 0
}
