// Package orchestrator is the supervising state machine: it owns the
// turn graph, enforces the termination guards, and is the only component
// allowed to mutate a ConversationState.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	metricsx "github.com/medflow-ai/appointment-agent/pkg/metrics"
)

type Orchestrator struct {
	models  contractx.Registry
	metrics *metricsx.ConversationMetrics

	graphRunner compose.Runnable[*statex.ConversationState, *statex.ConversationState]

	now func() time.Time
}

// New builds an orchestrator over a handler registry. Metrics may be
// nil. Each instance owns its compiled graph, so independent
// orchestrators never share state.
func New(models contractx.Registry, metrics *metricsx.ConversationMetrics) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("handler registry is required")
	}

	o := &Orchestrator{
		models:  models,
		metrics: metrics,
		now:     time.Now,
	}

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// ProcessTurn runs one classify-dispatch-finalize pass over st, mutating
// it in place. The guards run first, in priority order; when one fires
// the turn terminates immediately with no handler invoked. A completed
// state must not be resumed: doing so is rejected with ErrStateComplete.
func (o *Orchestrator) ProcessTurn(ctx context.Context, st *statex.ConversationState) error {
	if st == nil {
		return &statex.MalformedStateError{Reason: "state is nil"}
	}
	if st.IsComplete {
		return fmt.Errorf("%w: completed state must not re-enter the orchestrator", contractx.ErrStateComplete)
	}
	if err := st.Validate(); err != nil {
		return err
	}

	if reason := checkGuards(st); reason != ReasonNone {
		log.Warn().
			Str("reason", string(reason)).
			Int64("patient_id", st.PatientID).
			Int("step_count", st.StepCount).
			Msg("guard terminated conversation before dispatch")
		o.metrics.ObserveTermination(string(reason))
		st.IsComplete = true
		return nil
	}

	start := o.now()
	retriesBefore := st.RetryCount

	out, err := o.graphRunner.Invoke(ctx, st)
	if err != nil {
		return err
	}

	if out.RetryCount > retriesBefore {
		o.metrics.ObserveHandlerError(string(out.ActiveAgent))
	}
	o.metrics.ObserveTurn(string(out.CurrentIntent), string(out.ActiveAgent), o.now().Sub(start).Seconds())

	log.Info().
		Int64("patient_id", out.PatientID).
		Str("intent", string(out.CurrentIntent)).
		Str("agent", string(out.ActiveAgent)).
		Int("step_count", out.StepCount).
		Msg("turn completed")

	return nil
}
