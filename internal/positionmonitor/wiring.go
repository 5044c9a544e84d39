package positionmonitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marvelquant/position-monitor/internal/auth"
)

// buildBoundExitCallback composes the production exit_callback: restore the
// owning user's id into a fresh context (Design Note "callback closures with
// per-user context"), place exit orders, then fan the event out via the
// audit publisher and push it to the user's websocket connections. Only the
// leg snapshot is taken on the tick goroutine; order placement, the audit
// publish and the websocket push run on a separate goroutine.
func buildBoundExitCallback(executionID, userID string, gateway OrderGateway, monitor *PositionMonitor, publisher *Publisher, hub exitBroadcaster, logger Logger) ExitCallback {
	if logger == nil {
		logger = noopLogger{}
	}
	return func(reason string) {
		legs := monitor.Legs()
		occurredAt := time.Now()
		go func() {
			ctx := auth.SetUserIDInContext(context.Background(), userID)
			if gateway != nil {
				if err := gateway.PlaceExitOrders(ctx, executionID, legs, reason); err != nil {
					logger.Error("exit order placement failed", "executionID", executionID, "error", err.Error())
				}
			}

			event := ExitEvent{ExecutionID: executionID, Kind: KindExitAll, Reason: reason, OccurredAt: occurredAt}
			if publisher != nil {
				publisher.PublishExit(ctx, event)
			}
			broadcastExitEvent(hub, userID, event)
		}()
	}
}

// buildBoundLegExitCallback composes the per-leg exit callback the same way
// as buildBoundExitCallback, without placing whole-position exit orders —
// the monitor itself removes the leg from the LegBook.
func buildBoundLegExitCallback(executionID, userID string, publisher *Publisher, hub exitBroadcaster) IndividualLegExitCallback {
	return func(symbol, reason string) {
		event := ExitEvent{ExecutionID: executionID, Kind: KindExitLeg, Symbol: symbol, Reason: reason, OccurredAt: time.Now()}
		go func() {
			ctx := auth.SetUserIDInContext(context.Background(), userID)
			if publisher != nil {
				publisher.PublishExit(ctx, event)
			}
			broadcastExitEvent(hub, userID, event)
		}()
	}
}

// BuildLegReplacementCallback adapts an OrderGateway's replacement order
// placement into the LegReplacementCallback shape the monitor expects.
func BuildLegReplacementCallback(gateway OrderGateway) LegReplacementCallback {
	return func(exitedSymbol string, replacementSide LegTypeTag, replacementTargetPremium float64, lossMakingSymbol string) (ReplacementFill, error) {
		ctx := context.Background()
		return gateway.PlaceReplacementOrder(ctx, replacementSide, replacementTargetPremium)
	}
}

func broadcastExitEvent(hub exitBroadcaster, userID string, event ExitEvent) {
	if hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	hub.BroadcastToUser(userID, payload)
}
