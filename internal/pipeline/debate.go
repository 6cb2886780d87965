package pipeline

import (
	"context"
	"math"
	"strconv"

	"opentrade/internal/agents"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
)

// convergenceEpsilon is the stability band for early debate termination:
// when both sides' confidences move less than this between consecutive
// rounds, another round is unlikely to surface new information.
const convergenceEpsilon = 0.05

// runDebate drives the bull/bear exchange through at most maxRounds rounds.
// Round n gives Bull the analyst reports plus the bear argument of round
// n-1, and Bear the same plus Bull's round-n argument. The loop stops early
// once a full round leaves both confidences inside the stability band, and
// records which cause terminated it. A failed side degrades to a neutral
// zero-confidence placeholder argument; the debate continues.
func (e *Engine) runDebate(ctx context.Context, state *models.TradingState, maxRounds int, emit models.StepFunc) error {
	const stage = "Research Debate"

	if len(state.AnalystReports) < len(models.AnalystRoles) {
		return apperrors.NewInvariantError(stage, "analyst reports")
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	var prevBull, prevBear models.Argument
	for round := 1; round <= maxRounds; round++ {
		var lastBear string
		if round > 1 {
			lastBear = prevBear.Text
		}

		bull := e.debateTurn(ctx, models.RoleBullResearcher, state,
			agents.BuildBullPrompt(state, lastBear))
		bear := e.debateTurn(ctx, models.RoleBearResearcher, state,
			agents.BuildBearPrompt(state, bull.Text))

		state.DebateRounds = append(state.DebateRounds, models.DebateRound{
			RoundNumber: round,
			Bull:        bull,
			Bear:        bear,
		})

		if round > 1 &&
			math.Abs(bull.Confidence-prevBull.Confidence) <= convergenceEpsilon &&
			math.Abs(bear.Confidence-prevBear.Confidence) <= convergenceEpsilon {
			state.DebateOutcome = models.DebateConverged
			break
		}
		prevBull, prevBear = bull, bear
	}

	if state.DebateOutcome == "" {
		state.DebateOutcome = models.DebateExhausted
	}

	emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
		"rounds":  strconv.Itoa(len(state.DebateRounds)),
		"outcome": string(state.DebateOutcome),
	}})
	return nil
}

func (e *Engine) debateTurn(ctx context.Context, role models.AgentRole, state *models.TradingState, prompt string) models.Argument {
	response, err := e.generate(ctx, role, prompt)
	if err != nil {
		e.log.Warn().Err(err).Str("agent", string(role)).Msg("debate turn exhausted retries, degrading")
		return models.Argument{Text: "Argument unavailable: " + err.Error(), Confidence: 0}
	}
	result := agents.ParseAnalysis(role, state.Ticker, response)
	return models.Argument{Text: result.Rationale, Confidence: result.Confidence}
}
