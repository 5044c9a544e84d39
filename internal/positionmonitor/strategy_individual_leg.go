package positionmonitor

import "fmt"

// IndividualLegStopLoss exits or replaces a single losing leg once its own
// P&L falls to or below the configured per-leg stop. Only meaningful for
// SHORT positions; at most one leg is acted on per tick, the first one found
// breaching the threshold in leg order.
type IndividualLegStopLoss struct {
	enabled bool
}

func newIndividualLegStopLoss(enabled bool) *IndividualLegStopLoss {
	return &IndividualLegStopLoss{enabled: enabled}
}

func (s *IndividualLegStopLoss) Priority() int { return PriorityIndividualLegStopLoss }

func (s *IndividualLegStopLoss) IsEnabled(ctx *EvalContext) bool {
	return s.enabled && ctx.Direction == DirectionShort
}

func (s *IndividualLegStopLoss) Evaluate(ctx *EvalContext) ExitAction {
	for _, leg := range ctx.Legs {
		legPnL := (leg.CurrentPrice() - leg.EntryPrice) * ctx.DirectionMult
		if legPnL <= -ctx.IndividualLegStop {
			reason := fmt.Sprintf("%s (Leg=%s, P&L=%.2f, Threshold=%.2f)",
				ReasonIndividualLegStop, leg.Symbol, legPnL, ctx.IndividualLegStop)

			// When premium-based mode also drives replacement, the losing leg
			// is not simply dropped: it is swapped for a fresh leg on the
			// opposite side targeting the surviving leg's premium (§4.2.6,
			// the replacement form). Needs a second leg to anchor the
			// replacement target against; falls back to a plain exit
			// otherwise.
			if ctx.SLMode == SLTargetModePremium {
				if otherLeg, ok := otherLegFor(ctx.Legs, leg.Symbol); ok {
					return AdjustLegAction(leg.Symbol, reason, leg.TypeTag.Opposite(), otherLeg.CurrentPrice(), otherLeg.Symbol)
				}
			}
			return ExitLegAction(leg.Symbol, reason)
		}
	}
	return NoExit
}

// otherLegFor returns the first leg in legs whose symbol differs from
// exclude, used to anchor a replacement leg's target premium against the
// unchanged side of a two-leg position.
func otherLegFor(legs []*Leg, exclude string) (*Leg, bool) {
	for _, leg := range legs {
		if leg.Symbol != exclude {
			return leg, true
		}
	}
	return nil, false
}
