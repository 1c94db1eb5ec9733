package persistence

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/lookatitude/beluga-ai/ragcore"
)

const defaultTaskQueue = "ragadvisor-persistence"

// Recorder hands query records off to a per-session RecordQueryWorkflow,
// starting it on first use and signaling it on every subsequent call. It is
// the orchestrator's only dependency on Temporal: Record is fire-and-forget
// from the orchestrator's point of view, its error is logged by the caller
// and never propagated into the response already streamed to the user.
type Recorder struct {
	client    client.Client
	taskQueue string
}

// Config configures a Recorder.
type Config struct {
	Client    client.Client
	TaskQueue string
}

// NewRecorder builds a Recorder from Config. A nil Client is rejected since
// every operation needs one.
func NewRecorder(cfg Config) (*Recorder, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("persistence: client is required")
	}
	taskQueue := cfg.TaskQueue
	if taskQueue == "" {
		taskQueue = defaultTaskQueue
	}
	return &Recorder{client: cfg.Client, taskQueue: taskQueue}, nil
}

// Record starts-or-signals the session's RecordQueryWorkflow with rec. The
// workflow id is derived from sessionID so every turn of one conversation
// lands in the same workflow run (until it continues-as-new or idles out).
func (r *Recorder) Record(ctx context.Context, rec QueryRecord) error {
	options := client.StartWorkflowOptions{
		ID:        workflowIDForSession(rec.SessionID),
		TaskQueue: r.taskQueue,
	}
	_, err := r.client.SignalWithStartWorkflow(ctx, options.ID, RecordQuerySignal, rec, options, RecordQueryWorkflow, rec)
	if err != nil {
		return fmt.Errorf("persistence/record: %w", err)
	}
	return nil
}

// RecordAnswer is a convenience wrapper that assembles a QueryRecord from an
// orchestrator-produced ragcore.Answer and fires it off.
func (r *Recorder) RecordAnswer(ctx context.Context, sessionID, query string, answer ragcore.Answer, recordedAtUnix int64) error {
	return r.Record(ctx, QueryRecord{
		SessionID:      sessionID,
		Query:          query,
		Answer:         answer.Text,
		Evaluation:     answer.Evaluation,
		RecordedAtUnix: recordedAtUnix,
	})
}

func workflowIDForSession(sessionID string) string {
	if sessionID == "" {
		sessionID = "anonymous"
	}
	return "query-record-" + sessionID
}
