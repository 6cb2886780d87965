// Package models defines the shared data records threaded through the
// analysis pipeline.
package models

import (
	"fmt"
	"time"
)

// Signal represents a directional trading signal.
type Signal string

const (
	Bullish Signal = "bullish"
	Bearish Signal = "bearish"
	Neutral Signal = "neutral"
)

// AgentRole identifies one of the nine reasoning agents. The set is closed:
// the orchestrator dispatches by role, never by runtime polymorphism.
type AgentRole string

const (
	RoleFundamental    AgentRole = "fundamental_analyst"
	RoleSentiment      AgentRole = "sentiment_analyst"
	RoleNews           AgentRole = "news_analyst"
	RoleTechnical      AgentRole = "technical_analyst"
	RoleBullResearcher AgentRole = "bull_researcher"
	RoleBearResearcher AgentRole = "bear_researcher"
	RoleTrader         AgentRole = "trader"
	RoleRiskManager    AgentRole = "risk_manager"
	RoleVerifier       AgentRole = "verifier"
)

// AnalystRoles lists the four independent, parallel-eligible analyst roles.
var AnalystRoles = []AgentRole{RoleFundamental, RoleSentiment, RoleNews, RoleTechnical}

// AnalysisResult is the output of a single agent call.
type AnalysisResult struct {
	Role       AgentRole `json:"agent_role"`
	Ticker     string    `json:"ticker"`
	Signal     Signal    `json:"signal"`
	Confidence float64   `json:"confidence"` // always in [0,1]
	Rationale  string    `json:"rationale"`
	Citations  []string  `json:"citations,omitempty"`
	Degraded   bool      `json:"degraded,omitempty"`
}

// Validate checks the result invariants.
func (r *AnalysisResult) Validate() error {
	if r.Role == "" {
		return fmt.Errorf("agent role is required")
	}
	if r.Signal != Bullish && r.Signal != Bearish && r.Signal != Neutral {
		return fmt.Errorf("invalid signal %q", r.Signal)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence must be in [0,1], got %f", r.Confidence)
	}
	return nil
}

// DegradedResult builds the sentinel result substituted when an agent's
// remote call exhausts its retries. Not an error: the pipeline proceeds.
func DegradedResult(role AgentRole, ticker string, err error) *AnalysisResult {
	return &AnalysisResult{
		Role:       role,
		Ticker:     ticker,
		Signal:     Neutral,
		Confidence: 0,
		Rationale:  fmt.Sprintf("Analysis failed: %v", err),
		Degraded:   true,
	}
}

// Argument is one side's contribution to a debate round.
type Argument struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DebateRound is one Bull/Bear exchange. Created by the debate controller,
// appended to TradingState.DebateRounds, never mutated afterward.
type DebateRound struct {
	RoundNumber int      `json:"round_number"` // 1-based
	Bull        Argument `json:"bull"`
	Bear        Argument `json:"bear"`
}

// DebateOutcome records what terminated the debate loop.
type DebateOutcome string

const (
	DebateConverged DebateOutcome = "converged"
	DebateExhausted DebateOutcome = "exhausted"
)

// RiskVerdict is the transition taken by the risk gate.
type RiskVerdict string

const (
	RiskApprove RiskVerdict = "approve"
	RiskModify  RiskVerdict = "modify"
	RiskReject  RiskVerdict = "reject"
)

// Stricter reports whether v is a tighter verdict than other
// (approve < modify < reject).
func (v RiskVerdict) Stricter(other RiskVerdict) bool {
	return v.rank() > other.rank()
}

func (v RiskVerdict) rank() int {
	switch v {
	case RiskReject:
		return 2
	case RiskModify:
		return 1
	default:
		return 0
	}
}

// RiskTolerance is the configured portfolio risk appetite.
type RiskTolerance string

const (
	Conservative RiskTolerance = "conservative"
	Moderate     RiskTolerance = "moderate"
	Aggressive   RiskTolerance = "aggressive"
)

// Valid reports whether the tolerance is one of the known levels.
func (t RiskTolerance) Valid() bool {
	switch t {
	case Conservative, Moderate, Aggressive:
		return true
	}
	return false
}

// TradingDecision is the terminal, immutable output of one pipeline run.
type TradingDecision struct {
	Ticker           string                        `json:"ticker"`
	Date             time.Time                     `json:"date"`
	Signal           Signal                        `json:"final_signal"`
	Confidence       float64                       `json:"final_confidence"`
	TraderSummary    string                        `json:"trader_summary"`
	RiskNote         string                        `json:"risk_note"`
	RiskVerdict      RiskVerdict                   `json:"risk_verdict"`
	VerificationNote string                        `json:"verification_note"`
	AnalystReports   map[AgentRole]*AnalysisResult `json:"analyst_reports"`
	DebateRounds     []DebateRound                 `json:"debate_rounds"`
	DebateOutcome    DebateOutcome                 `json:"debate_outcome"`
	Steps            []StepEvent                   `json:"steps"`
}

// StepStatus is the lifecycle state of a pipeline stage, reported through
// progress callbacks.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// StepEvent is an observational progress notification. Callbacks receive it
// by value and cannot mutate pipeline state through it.
type StepEvent struct {
	Stage  string            `json:"stage"`
	Status StepStatus        `json:"status"`
	Detail map[string]string `json:"detail,omitempty"`
	Err    string            `json:"error,omitempty"`
}

// StepFunc observes pipeline progress. Implementations must not block for
// long; the pipeline invokes them synchronously.
type StepFunc func(StepEvent)
