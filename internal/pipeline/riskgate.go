package pipeline

import (
	"context"
	"fmt"

	"opentrade/internal/agents"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

// highVolatilityATRShare marks a series as high-volatility when the ATR
// exceeds this share of the current price.
const highVolatilityATRShare = 0.03

// riskPolicy is the deterministic per-tolerance gate parameterization.
type riskPolicy struct {
	floor        float64 // trader confidence below this rejects the trade
	modifyFactor float64 // confidence multiplier on a modify transition
}

var riskPolicies = map[models.RiskTolerance]riskPolicy{
	models.Conservative: {floor: 0.75, modifyFactor: 0.6},
	models.Moderate:     {floor: 0.45, modifyFactor: 0.75},
	models.Aggressive:   {floor: 0.25, modifyFactor: 0.9},
}

// runRiskGate applies the deterministic risk policy to the trader's output,
// then lets the risk-manager narrative tighten (never loosen) the verdict.
// Exactly one transition per run; confidence never increases.
func (e *Engine) runRiskGate(ctx context.Context, state *models.TradingState, tolerance models.RiskTolerance, emit models.StepFunc) error {
	const stage = "Risk Review"

	if state.TraderOutput == nil {
		return apperrors.NewInvariantError(stage, "trader output")
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	policy := riskPolicies[tolerance]
	verdict, policyReason := policyVerdict(state, tolerance, policy)

	narrative := policyReason
	response, err := e.generate(ctx, models.RoleRiskManager, agents.BuildRiskPrompt(state, tolerance))
	if err != nil {
		e.log.Warn().Err(err).Msg("risk manager call exhausted retries, applying policy verdict only")
		narrative = fmt.Sprintf("%s Risk review unavailable: %v.", policyReason, err)
	} else {
		if llmVerdict := agents.ParseRiskVerdict(response); llmVerdict.Stricter(verdict) {
			verdict = llmVerdict
		}
		narrative = policyReason + "\n\n" + response
	}

	switch verdict {
	case models.RiskReject:
		state.FinalSignal = models.Neutral
		state.FinalConfidence *= 0.5
	case models.RiskModify:
		state.FinalConfidence *= policy.modifyFactor
	}

	state.RiskVerdict = verdict
	state.RiskOutput = &models.AnalysisResult{
		Role:       models.RoleRiskManager,
		Ticker:     state.Ticker,
		Signal:     state.FinalSignal,
		Confidence: state.FinalConfidence,
		Rationale:  narrative,
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
		"verdict":    string(verdict),
		"signal":     string(state.FinalSignal),
		"confidence": formatConfidence(state.FinalConfidence),
	}})
	return nil
}

// policyVerdict is the deterministic half of the gate: the confidence floor
// and the volatility check, combined by taking the strictest outcome.
func policyVerdict(state *models.TradingState, tolerance models.RiskTolerance, policy riskPolicy) (models.RiskVerdict, string) {
	verdict := models.RiskApprove
	reason := fmt.Sprintf("Policy (%s): trader confidence %.2f meets the %.2f floor.",
		tolerance, state.TraderOutput.Confidence, policy.floor)

	if state.TraderOutput.Confidence < policy.floor {
		verdict = models.RiskReject
		reason = fmt.Sprintf("Policy (%s): trader confidence %.2f is below the %.2f floor.",
			tolerance, state.TraderOutput.Confidence, policy.floor)
	}

	if state.TraderOutput.Signal != models.Neutral && isHighVolatility(state.Indicators) {
		volVerdict := models.RiskModify
		if tolerance == models.Conservative {
			volVerdict = models.RiskReject
		}
		if volVerdict.Stricter(verdict) {
			verdict = volVerdict
			reason = fmt.Sprintf(
				"Policy (%s): directional %s signal against high volatility (ATR above %.0f%% of price).",
				tolerance, state.TraderOutput.Signal, highVolatilityATRShare*100)
		}
	}

	return verdict, reason
}

func isHighVolatility(snapshot map[string]float64) bool {
	atr, hasATR := snapshot["atr"]
	price, hasPrice := snapshot["current_price"]
	if !hasATR || !hasPrice || price <= 0 {
		return false
	}
	return atr > price*highVolatilityATRShare
}
