package pipeline

import (
	"context"
	"strconv"

	"opentrade/internal/agents"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

// verificationFloor is the lowest confidence the verifier can reduce a
// decision to.
const verificationFloor = 0.1

// runVerification performs the final consistency check. It may only reduce
// confidence, never change the signal, and a failed verifier call passes the
// prior output through with a skip note.
func (e *Engine) runVerification(ctx context.Context, state *models.TradingState, emit models.StepFunc) error {
	const stage = "Verification"

	if state.RiskOutput == nil {
		return apperrors.NewInvariantError(stage, "risk output")
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	response, err := e.generate(ctx, models.RoleVerifier, agents.BuildVerifierPrompt(state))
	if err != nil {
		e.log.Warn().Err(err).Msg("verifier call exhausted retries, passing decision through")
		state.VerificationNote = "verification skipped: " + err.Error()
		state.VerificationOutput = models.DegradedResult(models.RoleVerifier, state.Ticker, err)
		emit(models.StepEvent{Stage: stage, Status: models.StepError, Err: err.Error()})
		return nil
	}

	verification := agents.ParseVerification(response)

	adjustment := verification.ConfidenceAdjustment
	if deterministicContradiction(state) && adjustment == 0 {
		// Consensus fallback: a directional decision against a majority of
		// disagreeing analysts always costs confidence.
		adjustment = -0.1
	}

	if adjustment < 0 {
		reduced := state.FinalConfidence + adjustment
		if reduced < verificationFloor {
			reduced = verificationFloor
		}
		if reduced < state.FinalConfidence {
			state.FinalConfidence = reduced
		}
	}

	state.VerificationNote = verification.Summary
	state.VerificationOutput = &models.AnalysisResult{
		Role:       models.RoleVerifier,
		Ticker:     state.Ticker,
		Signal:     state.FinalSignal,
		Confidence: state.FinalConfidence,
		Rationale:  verification.Summary,
		Citations:  verification.Issues,
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
		"verdict":    verification.Verdict,
		"issues":     strconv.Itoa(len(verification.Issues)),
		"adjustment": formatConfidence(adjustment),
		"confidence": formatConfidence(state.FinalConfidence),
	}})
	return nil
}

// deterministicContradiction reports whether the final directional signal is
// opposed by a strict majority of the analyst reports.
func deterministicContradiction(state *models.TradingState) bool {
	if state.FinalSignal == models.Neutral {
		return false
	}
	bullish, bearish, _ := state.AnalystConsensus()
	half := len(state.AnalystReports) / 2
	switch state.FinalSignal {
	case models.Bullish:
		return bearish > half
	case models.Bearish:
		return bullish > half
	}
	return false
}
