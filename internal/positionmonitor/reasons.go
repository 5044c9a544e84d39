package positionmonitor

// Canonical exit-reason prefixes. Callers (audit log, alerting) depend on
// these prefixes for classification — e.g. "STOP" in the reason implies a
// loss — so they must never change independently of this list.
const (
	ReasonTimeBasedForcedExit   = "TIME_BASED_FORCED_EXIT"
	ReasonPremiumDecayTarget    = "PREMIUM_DECAY_TARGET_HIT"
	ReasonPremiumExpansionSL    = "PREMIUM_EXPANSION_SL_HIT"
	ReasonCumulativeTargetHit   = "CUMULATIVE_TARGET_HIT"
	ReasonCumulativeStopLoss    = "CUMULATIVE_STOPLOSS_HIT"
	ReasonTrailingStopLossHit   = "TRAILING_STOPLOSS_HIT"
	ReasonIndividualLegStop     = "INDIVIDUAL_LEG_STOP"
	ReasonAllLegsClosedIndividually = "ALL_LEGS_CLOSED_INDIVIDUALLY"
)
