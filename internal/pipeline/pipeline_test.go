package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"opentrade/internal/agents"
	apperrors "opentrade/internal/errors"
	"opentrade/internal/models"
	"opentrade/internal/resilience"
)

// stubLLM routes generation calls to per-role handlers. The engine
// identifies agents by system prompt, so the stub reverses that mapping.
type stubLLM struct {
	mu      sync.Mutex
	handler func(role models.AgentRole, prompt string) (string, error)
	calls   map[models.AgentRole]int

	inFlight    int
	maxInFlight int
}

func newStubLLM(handler func(role models.AgentRole, prompt string) (string, error)) *stubLLM {
	return &stubLLM{handler: handler, calls: make(map[models.AgentRole]int)}
}

func (s *stubLLM) Generate(_ context.Context, prompt, systemPrompt string) (string, error) {
	role := roleForSystemPrompt(systemPrompt)

	s.mu.Lock()
	s.calls[role]++
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	// Let concurrent workers overlap so the in-flight peak is observable.
	time.Sleep(2 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	return s.handler(role, prompt)
}

func (s *stubLLM) Available(context.Context) bool { return true }

func (s *stubLLM) callCount(role models.AgentRole) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[role]
}

var allRoles = []models.AgentRole{
	models.RoleFundamental, models.RoleSentiment, models.RoleNews,
	models.RoleTechnical, models.RoleBullResearcher, models.RoleBearResearcher,
	models.RoleTrader, models.RoleRiskManager, models.RoleVerifier,
}

func roleForSystemPrompt(systemPrompt string) models.AgentRole {
	for _, role := range allRoles {
		if agents.SystemPrompt(role) == systemPrompt {
			return role
		}
	}
	return ""
}

// stubData fills the state with a synthetic but complete input set.
type stubData struct {
	candleRange float64 // high-low width; controls ATR
	err         error
}

func (d *stubData) Gather(_ context.Context, state *models.TradingState, _ int) error {
	if d.err != nil {
		return d.err
	}
	width := d.candleRange
	if width == 0 {
		width = 1 // ~1% of price, low volatility
	}
	for i := 0; i < 60; i++ {
		state.PriceSeries = append(state.PriceSeries, models.Candle{
			Date:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   100,
			High:   100 + width/2,
			Low:    100 - width/2,
			Close:  100,
			Volume: 50000,
		})
	}
	price := 100.0
	state.Fundamentals = &models.StockInfo{Ticker: state.Ticker, Name: "Test Corp", CurrentPrice: &price}
	state.NewsItems = []models.NewsItem{{Title: "Test Corp ships new product", Publisher: "Wire"}}
	return nil
}

func analystJSON(signal string, confidence int) string {
	return fmt.Sprintf(`{"signal": %q, "confidence": %d, "summary": "stub analysis"}`, signal, confidence)
}

// defaultHandler gives every role a sane scripted answer.
func defaultHandler(overrides map[models.AgentRole]func(prompt string) (string, error)) func(models.AgentRole, string) (string, error) {
	return func(role models.AgentRole, prompt string) (string, error) {
		if fn, ok := overrides[role]; ok {
			return fn(prompt)
		}
		switch role {
		case models.RoleRiskManager:
			return "Decision: APPROVE\nRisk acceptable.", nil
		case models.RoleVerifier:
			return `{"verdict": "APPROVED", "confidence_adjustment": 0, "issues": [], "summary": "Consistent."}`, nil
		case models.RoleTrader:
			return analystJSON("BUY", 80), nil
		default:
			return analystJSON("BUY", 70), nil
		}
	}
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}
}

func newTestEngine(llmStub *stubLLM, data *stubData) *Engine {
	return NewEngine(llmStub, data, zerolog.Nop(), WithRetryConfig(fastRetry()))
}

func moderateRequest() RunRequest {
	return RunRequest{
		Ticker:            "TEST",
		RiskTolerance:     models.Moderate,
		MaxDebateRounds:   2,
		MaxParallelAgents: 2,
	}
}

func TestRunProducesCompleteDecision(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.Signal != models.Bullish {
		t.Errorf("signal = %q, want bullish", decision.Signal)
	}
	if len(decision.AnalystReports) != 4 {
		t.Errorf("got %d analyst reports, want 4", len(decision.AnalystReports))
	}
	for _, role := range models.AnalystRoles {
		report, ok := decision.AnalystReports[role]
		if !ok {
			t.Fatalf("missing report for %s", role)
		}
		if err := report.Validate(); err != nil {
			t.Errorf("report %s invalid: %v", role, err)
		}
	}
	if decision.RiskVerdict != models.RiskApprove {
		t.Errorf("risk verdict = %q, want approve", decision.RiskVerdict)
	}
	// Approve leaves the trader confidence unchanged.
	if decision.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", decision.Confidence)
	}
	if decision.DebateOutcome == "" {
		t.Error("debate outcome not recorded")
	}
	if len(decision.Steps) == 0 {
		t.Error("no step events recorded")
	}
}

func TestRunDataFetchFailureAborts(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{err: errors.New("feed down")})

	if _, err := engine.Run(context.Background(), moderateRequest()); err == nil {
		t.Fatal("expected error when price data is unavailable")
	}
}

func TestAnalystFailureDegradesNotAborts(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleFundamental: func(string) (string, error) {
			return "", apperrors.NewTransient("llm.generate", errors.New("model offline"))
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	report := decision.AnalystReports[models.RoleFundamental]
	if !report.Degraded {
		t.Error("fundamental report should be degraded")
	}
	if report.Signal != models.Neutral || report.Confidence != 0 {
		t.Errorf("degraded report = %q/%v, want neutral/0", report.Signal, report.Confidence)
	}
	// Transient failures get the full retry budget.
	if got := llmStub.callCount(models.RoleFundamental); got != 2 {
		t.Errorf("fundamental called %d times, want 2 (retry budget)", got)
	}
}

func TestPermanentFailureShortCircuits(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleNews: func(string) (string, error) {
			return "", apperrors.NewPermanent("llm.generate", errors.New("bad api key"))
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	if _, err := engine.Run(context.Background(), moderateRequest()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := llmStub.callCount(models.RoleNews); got != 1 {
		t.Errorf("news analyst called %d times, want 1 (permanent short-circuit)", got)
	}
}

func TestAnalystParallelismBounded(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.MaxParallelAgents = 2
	if _, err := engine.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	llmStub.mu.Lock()
	peak := llmStub.maxInFlight
	llmStub.mu.Unlock()
	if peak > 2 {
		t.Errorf("in-flight peak = %d, want <= 2", peak)
	}
}

func TestDebateSingleRoundExhausted(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.MaxDebateRounds = 1
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(decision.DebateRounds) != 1 {
		t.Errorf("got %d rounds, want 1", len(decision.DebateRounds))
	}
	if decision.DebateOutcome != models.DebateExhausted {
		t.Errorf("outcome = %q, want exhausted", decision.DebateOutcome)
	}
	if decision.DebateRounds[0].RoundNumber != 1 {
		t.Errorf("round number = %d, want 1", decision.DebateRounds[0].RoundNumber)
	}
}

func TestDebateConvergesOnStableConfidence(t *testing.T) {
	// Both sides return identical confidence every round, so round 2 closes
	// the debate regardless of the remaining budget.
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleBullResearcher: func(string) (string, error) { return analystJSON("BUY", 70), nil },
		models.RoleBearResearcher: func(string) (string, error) { return analystJSON("SELL", 65), nil },
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.MaxDebateRounds = 5
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.DebateOutcome != models.DebateConverged {
		t.Errorf("outcome = %q, want converged", decision.DebateOutcome)
	}
	if len(decision.DebateRounds) != 2 {
		t.Errorf("got %d rounds, want 2", len(decision.DebateRounds))
	}
}

func TestDebateDivergingConfidenceExhaustsBudget(t *testing.T) {
	var bullCalls int
	var mu sync.Mutex
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleBullResearcher: func(string) (string, error) {
			mu.Lock()
			bullCalls++
			n := bullCalls
			mu.Unlock()
			return analystJSON("BUY", 50+n*10), nil
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.MaxDebateRounds = 3
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.DebateOutcome != models.DebateExhausted {
		t.Errorf("outcome = %q, want exhausted", decision.DebateOutcome)
	}
	if len(decision.DebateRounds) != 3 {
		t.Errorf("got %d rounds, want 3", len(decision.DebateRounds))
	}
}

func TestDebateSideFailureDegradesArgument(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleBullResearcher: func(string) (string, error) {
			return "", apperrors.NewPermanent("llm.generate", errors.New("model gone"))
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.MaxDebateRounds = 1
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	bull := decision.DebateRounds[0].Bull
	if bull.Confidence != 0 {
		t.Errorf("degraded bull confidence = %v, want 0", bull.Confidence)
	}
	if !strings.Contains(bull.Text, "unavailable") {
		t.Errorf("degraded bull text = %q", bull.Text)
	}
	// Bear still argued.
	if decision.DebateRounds[0].Bear.Text == "" {
		t.Error("bear argument missing")
	}
}

func TestRiskGateConservativeFloorRejects(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader: func(string) (string, error) { return analystJSON("BUY", 70), nil },
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.RiskTolerance = models.Conservative
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.RiskVerdict != models.RiskReject {
		t.Errorf("verdict = %q, want reject (0.70 below conservative 0.75 floor)", decision.RiskVerdict)
	}
	if decision.Signal != models.Neutral {
		t.Errorf("signal = %q, reject must force neutral", decision.Signal)
	}
	if decision.Confidence != 0.35 {
		t.Errorf("confidence = %v, want 0.35 (0.70 x 0.5)", decision.Confidence)
	}
}

func TestRiskGateAggressiveApprovesUnchanged(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader: func(string) (string, error) { return analystJSON("BUY", 65), nil },
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.RiskTolerance = models.Aggressive
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.RiskVerdict != models.RiskApprove {
		t.Errorf("verdict = %q, want approve", decision.RiskVerdict)
	}
	if decision.Signal != models.Bullish || decision.Confidence != 0.65 {
		t.Errorf("decision = %q/%v, want bullish/0.65 unchanged", decision.Signal, decision.Confidence)
	}
}

func TestRiskGateVolatilityMismatchModifies(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader: func(string) (string, error) { return analystJSON("BUY", 80), nil },
	}))
	// ~8% daily range makes ATR far exceed 3% of price.
	engine := newTestEngine(llmStub, &stubData{candleRange: 8})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.RiskVerdict != models.RiskModify {
		t.Errorf("verdict = %q, want modify (high volatility, moderate tolerance)", decision.RiskVerdict)
	}
	if decision.Signal != models.Bullish {
		t.Errorf("signal = %q, modify must keep the signal", decision.Signal)
	}
	if decision.Confidence != 0.8*0.75 {
		t.Errorf("confidence = %v, want %v", decision.Confidence, 0.8*0.75)
	}
}

func TestRiskGateVolatilityMismatchConservativeRejects(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader: func(string) (string, error) { return analystJSON("BUY", 90), nil },
	}))
	engine := newTestEngine(llmStub, &stubData{candleRange: 8})

	req := moderateRequest()
	req.RiskTolerance = models.Conservative
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if decision.RiskVerdict != models.RiskReject {
		t.Errorf("verdict = %q, want reject", decision.RiskVerdict)
	}
	if decision.Signal != models.Neutral || decision.Confidence != 0.45 {
		t.Errorf("decision = %q/%v, want neutral/0.45", decision.Signal, decision.Confidence)
	}
}

func TestRiskGateLLMVerdictOnlyTightens(t *testing.T) {
	// Policy approves (moderate, 0.8 >= 0.45, low volatility) but the
	// narrative rejects; the stricter verdict wins.
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleRiskManager: func(string) (string, error) {
			return "Decision: REJECT\nConcentration risk.", nil
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if decision.RiskVerdict != models.RiskReject {
		t.Errorf("verdict = %q, want reject (LLM tightened)", decision.RiskVerdict)
	}
}

func TestRiskGateLLMCannotLoosenPolicyVerdict(t *testing.T) {
	// Conservative floor rejects at 0.70; an approving narrative must not
	// loosen that.
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader:      func(string) (string, error) { return analystJSON("BUY", 70), nil },
		models.RoleRiskManager: func(string) (string, error) { return "Decision: APPROVE", nil },
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.RiskTolerance = models.Conservative
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if decision.RiskVerdict != models.RiskReject {
		t.Errorf("verdict = %q, want reject (policy floor binds)", decision.RiskVerdict)
	}
}

func TestRiskGateFailureKeepsPolicyVerdict(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleRiskManager: func(string) (string, error) {
			return "", apperrors.NewPermanent("llm.generate", errors.New("offline"))
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if decision.RiskVerdict != models.RiskApprove {
		t.Errorf("verdict = %q, want approve (policy only)", decision.RiskVerdict)
	}
	if !strings.Contains(decision.RiskNote, "Risk review unavailable") {
		t.Errorf("risk note missing degradation marker: %q", decision.RiskNote)
	}
}

func TestVerificationReducesConfidenceOnly(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleVerifier: func(string) (string, error) {
			return `{"verdict": "FLAGGED", "confidence_adjustment": -15, "issues": ["gap"], "summary": "One gap."}`, nil
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := 0.8 - 0.15
	if diff := decision.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %v, want %v", decision.Confidence, want)
	}
	if decision.Signal != models.Bullish {
		t.Errorf("signal = %q, verification must not change it", decision.Signal)
	}
	if decision.VerificationNote != "One gap." {
		t.Errorf("note = %q", decision.VerificationNote)
	}
}

func TestVerificationFloorsAtMinimum(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleTrader: func(string) (string, error) { return analystJSON("BUY", 30), nil },
		models.RoleVerifier: func(string) (string, error) {
			return `{"verdict": "REJECTED", "confidence_adjustment": -30, "issues": [], "summary": "Bad."}`, nil
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	req := moderateRequest()
	req.RiskTolerance = models.Aggressive // 0.30 passes the 0.25 floor
	decision, err := engine.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if decision.Confidence != 0.1 {
		t.Errorf("confidence = %v, want floor 0.1", decision.Confidence)
	}
}

func TestVerifierFailurePassesThrough(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleVerifier: func(string) (string, error) {
			return "", apperrors.NewPermanent("llm.generate", errors.New("offline"))
		},
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if decision.Signal != models.Bullish || decision.Confidence != 0.8 {
		t.Errorf("decision = %q/%v, want pass-through bullish/0.8", decision.Signal, decision.Confidence)
	}
	if !strings.Contains(decision.VerificationNote, "verification skipped") {
		t.Errorf("note = %q, want skip marker", decision.VerificationNote)
	}
}

func TestVerificationConsensusContradictionFallback(t *testing.T) {
	// Three bearish analysts against a bullish final decision trigger the
	// deterministic reduction even when the verifier reports no adjustment.
	llmStub := newStubLLM(defaultHandler(map[models.AgentRole]func(string) (string, error){
		models.RoleFundamental: func(string) (string, error) { return analystJSON("SELL", 70), nil },
		models.RoleSentiment:   func(string) (string, error) { return analystJSON("SELL", 70), nil },
		models.RoleNews:        func(string) (string, error) { return analystJSON("SELL", 70), nil },
	}))
	engine := newTestEngine(llmStub, &stubData{})

	decision, err := engine.Run(context.Background(), moderateRequest())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := 0.8 - 0.1
	if diff := decision.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %v, want %v (consensus contradiction)", decision.Confidence, want)
	}
}

func TestStageInvariantsAbort(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{})
	state := models.NewTradingState("TEST", time.Time{})
	noop := func(models.StepEvent) {}

	if err := engine.runTrader(context.Background(), state, models.Moderate, noop); !apperrors.IsInvariant(err) {
		t.Errorf("runTrader without reports: %v, want invariant error", err)
	}
	if err := engine.runRiskGate(context.Background(), state, models.Moderate, noop); !apperrors.IsInvariant(err) {
		t.Errorf("runRiskGate without trader output: %v, want invariant error", err)
	}
	if err := engine.runVerification(context.Background(), state, noop); !apperrors.IsInvariant(err) {
		t.Errorf("runVerification without risk output: %v, want invariant error", err)
	}
}

func TestRunRequestValidation(t *testing.T) {
	llmStub := newStubLLM(defaultHandler(nil))
	engine := newTestEngine(llmStub, &stubData{})
	ctx := context.Background()

	if _, err := engine.Run(ctx, RunRequest{}); err == nil {
		t.Error("empty ticker should fail")
	}
	if _, err := engine.Run(ctx, RunRequest{Ticker: "T", RiskTolerance: "yolo"}); err == nil {
		t.Error("unknown tolerance should fail")
	}
	if _, err := engine.Run(ctx, RunRequest{Ticker: "T", MaxDebateRounds: 9}); err == nil {
		t.Error("out-of-range debate rounds should fail")
	}
	if _, err := engine.Run(ctx, RunRequest{Ticker: "T", MaxParallelAgents: 7}); err == nil {
		t.Error("out-of-range parallelism should fail")
	}
}

func TestStepEventsObserveEveryStage(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	llmStub := newStubLLM(defaultHandler(nil))
	engine := NewEngine(llmStub, &stubData{}, zerolog.Nop(),
		WithRetryConfig(fastRetry()),
		WithStepFunc(func(event models.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			if event.Status == models.StepCompleted {
				seen = append(seen, event.Stage)
			}
		}))

	if _, err := engine.Run(context.Background(), moderateRequest()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantStages := []string{
		"Fetching Market Data", "Fundamental Analysis", "Sentiment Analysis",
		"News Analysis", "Technical Analysis", "Research Debate",
		"Trader Decision", "Risk Review", "Verification",
	}
	mu.Lock()
	defer mu.Unlock()
	for _, stage := range wantStages {
		found := false
		for _, s := range seen {
			if s == stage {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("stage %q never completed", stage)
		}
	}
}
