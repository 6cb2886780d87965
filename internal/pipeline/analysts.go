package pipeline

import (
	"context"
	"sync"

	"opentrade/internal/agents"
	"opentrade/internal/models"
)

// stageNames maps analyst roles to their progress-event stage labels.
var stageNames = map[models.AgentRole]string{
	models.RoleFundamental: "Fundamental Analysis",
	models.RoleSentiment:   "Sentiment Analysis",
	models.RoleNews:        "News Analysis",
	models.RoleTechnical:   "Technical Analysis",
}

// runAnalysts fans the four analysts out under a bounded worker budget and
// joins before returning. Each worker writes only its own report slot, so
// the join barrier is the only synchronization the slice of results needs;
// the step emitter is shared and takes a lock. An exhausted analyst call
// inserts a degraded report rather than failing the stage: all four roles
// are populated on return.
func (e *Engine) runAnalysts(ctx context.Context, state *models.TradingState, maxParallel int, emit models.StepFunc) {
	if maxParallel < 1 {
		maxParallel = 1
	}

	var emitMu sync.Mutex
	lockedEmit := func(event models.StepEvent) {
		emitMu.Lock()
		defer emitMu.Unlock()
		emit(event)
	}

	reports := make([]*models.AnalysisResult, len(models.AnalystRoles))
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for i, role := range models.AnalystRoles {
		wg.Add(1)
		go func(slot int, role models.AgentRole) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			reports[slot] = e.runOneAnalyst(ctx, role, state, lockedEmit)
		}(i, role)
	}
	wg.Wait()

	for i, role := range models.AnalystRoles {
		state.AnalystReports[role] = reports[i]
	}
}

func (e *Engine) runOneAnalyst(ctx context.Context, role models.AgentRole, state *models.TradingState, emit models.StepFunc) *models.AnalysisResult {
	stage := stageNames[role]
	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	prompt := agents.BuildAnalystPrompt(role, state)
	response, err := e.generate(ctx, role, prompt)
	if err != nil {
		e.log.Warn().Err(err).Str("agent", string(role)).Msg("analyst call exhausted retries, degrading")
		emit(models.StepEvent{Stage: stage, Status: models.StepError, Err: err.Error()})
		return models.DegradedResult(role, state.Ticker, err)
	}

	result := agents.ParseAnalysis(role, state.Ticker, response)
	emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
		"signal":     string(result.Signal),
		"confidence": formatConfidence(result.Confidence),
	}})
	return result
}
