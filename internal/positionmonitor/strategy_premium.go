package positionmonitor

import "fmt"

// PremiumBasedExit exits the whole position based on combined LTP versus
// levels derived from entry premium and configured decay/expansion
// percentages. Only meaningful once an entry premium has been set.
type PremiumBasedExit struct {
	enabled bool
}

func newPremiumBasedExit(enabled bool) *PremiumBasedExit {
	return &PremiumBasedExit{enabled: enabled}
}

func (s *PremiumBasedExit) Priority() int { return PriorityPremiumBasedExit }

func (s *PremiumBasedExit) IsEnabled(ctx *EvalContext) bool {
	return s.enabled && ctx.EntryPremium > 0
}

func (s *PremiumBasedExit) Evaluate(ctx *EvalContext) ExitAction {
	var combinedLTP float64
	for _, leg := range ctx.Legs {
		combinedLTP += leg.CurrentPrice()
	}

	decayHit := false
	expansionHit := false
	if ctx.Direction == DirectionShort {
		decayHit = combinedLTP <= ctx.TargetPremium
		expansionHit = combinedLTP >= ctx.StopLossPremium
	} else {
		decayHit = combinedLTP >= ctx.TargetPremium
		expansionHit = combinedLTP <= ctx.StopLossPremium
	}

	// Decay-target wins the tie-break when both would fire simultaneously.
	if decayHit {
		return ExitAll(fmt.Sprintf("%s (Combined LTP=%.2f, Entry=%.2f, Target=%.2f)",
			ReasonPremiumDecayTarget, combinedLTP, ctx.EntryPremium, ctx.TargetPremium))
	}
	if expansionHit {
		return ExitAll(fmt.Sprintf("%s (Combined LTP=%.2f, Entry=%.2f, StopLoss=%.2f)",
			ReasonPremiumExpansionSL, combinedLTP, ctx.EntryPremium, ctx.StopLossPremium))
	}
	return NoExit
}
