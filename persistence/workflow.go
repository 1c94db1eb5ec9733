package persistence

import (
	"context"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RecordQuerySignal is the Temporal signal name the orchestrator fires after
// each DONE/FAILED terminal event.
const RecordQuerySignal = "record-query"

// maxRecordsBeforeContinue bounds how many signals one workflow run absorbs
// before it continues-as-new, keeping the Temporal event history bounded for
// long-lived sessions.
const maxRecordsBeforeContinue = 500

// idleTimeout is how long RecordQueryWorkflow waits for another signal before
// it completes and lets the per-session workflow id be reused fresh.
const idleTimeout = 30 * time.Minute

// Activities bundles the dependencies RecordQueryWorkflow's activities close
// over. It is registered on the worker once, per worker.Worker.RegisterActivity(a)
// convention the teacher's own activity wiring used.
type Activities struct {
	Store RecordStore
}

// SaveRecord persists one QueryRecord. It is invoked as a Temporal activity
// from RecordQueryWorkflow, so it runs outside the workflow's deterministic
// sandbox and may call out to a real database or queue.
func (a *Activities) SaveRecord(ctx context.Context, rec QueryRecord) error {
	return a.Store.Save(ctx, rec)
}

// RecordQueryWorkflow is a long-lived, per-session workflow that receives
// RecordQuerySignal signals and persists each one via the SaveRecord
// activity. The orchestrator never waits on this workflow: it starts (or
// signals into) it fire-and-forget after streaming is already complete.
func RecordQueryWorkflow(ctx workflow.Context, first QueryRecord) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var a *Activities
	pending := first
	count := 0

	for {
		if err := workflow.ExecuteActivity(ctx, a.SaveRecord, pending).Get(ctx, nil); err != nil {
			workflow.GetLogger(ctx).Error("persistence: failed to save query record", "session_id", pending.SessionID, "error", err)
		}
		count++

		if count >= maxRecordsBeforeContinue {
			return workflow.NewContinueAsNewError(ctx, RecordQueryWorkflow, pending)
		}

		sel := workflow.NewSelector(ctx)
		signalCh := workflow.GetSignalChannel(ctx, RecordQuerySignal)
		var next QueryRecord
		gotSignal := false
		sel.AddReceive(signalCh, func(c workflow.ReceiveChannel, more bool) {
			c.Receive(ctx, &next)
			gotSignal = true
		})

		timerFired := false
		timer := workflow.NewTimer(ctx, idleTimeout)
		sel.AddFuture(timer, func(f workflow.Future) {
			timerFired = true
		})

		sel.Select(ctx)
		if timerFired && !gotSignal {
			return nil
		}
		pending = next
	}
}
