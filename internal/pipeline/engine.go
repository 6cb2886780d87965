// Package pipeline orchestrates the multi-agent analysis run: data fetch,
// parallel analysts, bull/bear debate, trader synthesis, risk gate, and
// verification. The engine owns the TradingState; stages receive it in
// sequence and never reach backward.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"opentrade/internal/agents"
	"opentrade/internal/analysis/indicators"
	"opentrade/internal/dataflows"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/llm"
	"opentrade/internal/models"
	"opentrade/internal/resilience"
)

// DataProvider supplies the market inputs for one run. Satisfied by
// *dataflows.Provider; tests substitute fixtures.
type DataProvider interface {
	Gather(ctx context.Context, state *models.TradingState, periodDays int) error
}

// Engine runs the analysis pipeline end to end.
type Engine struct {
	llm        llm.Client
	data       DataProvider
	log        zerolog.Logger
	retry      resilience.RetryConfig
	periodDays int
	onStep     models.StepFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithStepFunc registers an observational progress callback. The callback
// receives events by value and is invoked synchronously.
func WithStepFunc(fn models.StepFunc) Option {
	return func(e *Engine) { e.onStep = fn }
}

// WithRetryConfig overrides the remote-call retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(e *Engine) { e.retry = cfg }
}

// WithAnalysisPeriod sets the trailing price-history window in days.
func WithAnalysisPeriod(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.periodDays = days
		}
	}
}

// NewEngine creates a pipeline engine.
func NewEngine(client llm.Client, data DataProvider, log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		llm:        client,
		data:       data,
		log:        log.With().Str("component", "pipeline").Logger(),
		retry:      resilience.DefaultRetryConfig(),
		periodDays: 90,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunRequest are the per-run parameters.
type RunRequest struct {
	Ticker            string
	Date              time.Time
	RiskTolerance     models.RiskTolerance
	MaxDebateRounds   int
	MaxParallelAgents int
}

func (r *RunRequest) normalize() error {
	if r.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", apperrors.ErrConfigInvalid)
	}
	if r.RiskTolerance == "" {
		r.RiskTolerance = models.Moderate
	}
	if !r.RiskTolerance.Valid() {
		return fmt.Errorf("%w: unknown risk tolerance %q", apperrors.ErrConfigInvalid, r.RiskTolerance)
	}
	if r.MaxDebateRounds == 0 {
		r.MaxDebateRounds = 2
	}
	if r.MaxDebateRounds < 1 || r.MaxDebateRounds > 5 {
		return fmt.Errorf("%w: max debate rounds must be in [1,5]", apperrors.ErrConfigInvalid)
	}
	if r.MaxParallelAgents == 0 {
		r.MaxParallelAgents = 2
	}
	if r.MaxParallelAgents < 1 || r.MaxParallelAgents > 4 {
		return fmt.Errorf("%w: max parallel agents must be in [1,4]", apperrors.ErrConfigInvalid)
	}
	return nil
}

// Run executes one complete pipeline pass. Remote failures degrade at the
// call site; the only fatal classes are an unusable price series, a violated
// stage invariant, and an invalid request. Every successful run yields
// exactly one TradingDecision.
func (e *Engine) Run(ctx context.Context, req RunRequest) (*models.TradingDecision, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	log := e.log.With().Str("ticker", req.Ticker).Logger()
	log.Info().
		Str("risk_tolerance", string(req.RiskTolerance)).
		Int("max_debate_rounds", req.MaxDebateRounds).
		Int("max_parallel_agents", req.MaxParallelAgents).
		Msg("pipeline run starting")

	state := models.NewTradingState(req.Ticker, req.Date)
	var steps []models.StepEvent
	emit := func(event models.StepEvent) {
		steps = append(steps, event)
		if e.onStep != nil {
			e.onStep(event)
		}
	}

	if err := e.fetchData(ctx, state, emit); err != nil {
		return nil, err
	}
	e.runAnalysts(ctx, state, req.MaxParallelAgents, emit)
	if err := e.runDebate(ctx, state, req.MaxDebateRounds, emit); err != nil {
		return nil, err
	}
	if err := e.runTrader(ctx, state, req.RiskTolerance, emit); err != nil {
		return nil, err
	}
	if err := e.runRiskGate(ctx, state, req.RiskTolerance, emit); err != nil {
		return nil, err
	}
	if err := e.runVerification(ctx, state, emit); err != nil {
		return nil, err
	}

	decision := &models.TradingDecision{
		Ticker:           state.Ticker,
		Date:             state.Date,
		Signal:           state.FinalSignal,
		Confidence:       state.FinalConfidence,
		TraderSummary:    rationaleOf(state.TraderOutput),
		RiskNote:         rationaleOf(state.RiskOutput),
		RiskVerdict:      state.RiskVerdict,
		VerificationNote: state.VerificationNote,
		AnalystReports:   state.AnalystReports,
		DebateRounds:     state.DebateRounds,
		DebateOutcome:    state.DebateOutcome,
		Steps:            steps,
	}

	log.Info().
		Str("signal", string(decision.Signal)).
		Float64("confidence", decision.Confidence).
		Str("risk_verdict", string(decision.RiskVerdict)).
		Msg("pipeline run completed")
	return decision, nil
}

// fetchData populates the state inputs. Price history is mandatory; the
// indicator snapshot and signal summary are derived locally from it.
func (e *Engine) fetchData(ctx context.Context, state *models.TradingState, emit models.StepFunc) error {
	const stage = "Fetching Market Data"
	emit(models.StepEvent{Stage: stage, Status: models.StepPending})

	if err := e.data.Gather(ctx, state, e.periodDays); err != nil {
		emit(models.StepEvent{Stage: stage, Status: models.StepError, Err: err.Error()})
		return err
	}

	state.Indicators = indicators.Compute(state.PriceSeries)
	state.Signals = indicators.SignalSummary(state.Indicators)

	emit(models.StepEvent{Stage: stage, Status: models.StepCompleted, Detail: map[string]string{
		"candles":    strconv.Itoa(len(state.PriceSeries)),
		"news_items": strconv.Itoa(len(state.NewsItems)),
		"filings":    strconv.Itoa(len(state.Filings)),
		"indicators": strconv.Itoa(len(state.Indicators)),
	}})
	return nil
}

// generate is the retrying LLM call every agent goes through.
func (e *Engine) generate(ctx context.Context, role models.AgentRole, prompt string) (string, error) {
	return resilience.Do(ctx, e.retry, func() (string, error) {
		return e.llm.Generate(ctx, prompt, agents.SystemPrompt(role))
	})
}

func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func rationaleOf(result *models.AnalysisResult) string {
	if result == nil {
		return ""
	}
	return result.Rationale
}

var _ DataProvider = (*dataflows.Provider)(nil)
