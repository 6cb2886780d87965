package pipeline

import (
	"context"

	"opentrade/internal/agents"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

// runTrader synthesizes the analyst reports and debate transcript into a
// provisional decision. An exhausted call degrades to a neutral
// zero-confidence output; the pipeline still proceeds to the risk gate.
func (e *Engine) runTrader(ctx context.Context, state *models.TradingState, tolerance models.RiskTolerance, emit models.StepFunc) error {
	const stage = "Trader Decision"

	if len(state.AnalystReports) < len(models.AnalystRoles) {
		return apperrors.NewInvariantError(stage, "analyst reports")
	}
	if state.DebateOutcome == "" {
		return apperrors.NewInvariantError(stage, "debate outcome")
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	prompt := agents.BuildTraderPrompt(state, tolerance)
	response, err := e.generate(ctx, models.RoleTrader, prompt)
	if err != nil {
		e.log.Warn().Err(err).Msg("trader call exhausted retries, degrading")
		state.TraderOutput = models.DegradedResult(models.RoleTrader, state.Ticker, err)
		emit(models.StepEvent{Stage: stage, Status: models.StepError, Err: err.Error()})
	} else {
		state.TraderOutput = agents.ParseAnalysis(models.RoleTrader, state.Ticker, response)
		emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
			"signal":     string(state.TraderOutput.Signal),
			"confidence": formatConfidence(state.TraderOutput.Confidence),
		}})
	}

	state.FinalSignal = state.TraderOutput.Signal
	state.FinalConfidence = state.TraderOutput.Confidence
	return nil
}
