package models

import "time"

// TradingState is the single context threaded through the pipeline. It is
// owned exclusively by the orchestrator: stages receive it per-call and
// return patches, they never mutate it concurrently with another stage. The
// only post-write mutation allowed is the risk gate's confidence-modify
// transition on FinalConfidence.
type TradingState struct {
	Ticker string    `json:"ticker"`
	Date   time.Time `json:"date"`

	// Inputs, filled by the data-fetch stage before any agent runs. A
	// disabled or failed source leaves its field empty; consumers degrade.
	PriceSeries  []Candle           `json:"price_series,omitempty"`
	Fundamentals *StockInfo         `json:"fundamentals,omitempty"`
	NewsItems    []NewsItem         `json:"news_items,omitempty"`
	Filings      []Filing           `json:"filings,omitempty"`
	Trends       *TrendData         `json:"trends,omitempty"`
	Indicators   map[string]float64 `json:"indicators,omitempty"`
	Signals      map[string]string  `json:"signals,omitempty"`

	// Accumulated stage outputs. AnalystReports holds exactly one entry per
	// analyst role once the analyst pool joins; DebateRounds is append-only.
	AnalystReports map[AgentRole]*AnalysisResult `json:"analyst_reports"`
	DebateRounds   []DebateRound                 `json:"debate_rounds"`
	DebateOutcome  DebateOutcome                 `json:"debate_outcome,omitempty"`

	// Each set at most once, by exactly one stage.
	TraderOutput       *AnalysisResult `json:"trader_output,omitempty"`
	RiskOutput         *AnalysisResult `json:"risk_output,omitempty"`
	VerificationOutput *AnalysisResult `json:"verification_output,omitempty"`

	RiskVerdict      RiskVerdict `json:"risk_verdict,omitempty"`
	VerificationNote string      `json:"verification_note,omitempty"`

	// Set only by the terminal steps.
	FinalSignal     Signal  `json:"final_signal,omitempty"`
	FinalConfidence float64 `json:"final_confidence"`
}

// NewTradingState creates the initial state for one run. A zero date
// defaults to the current date.
func NewTradingState(ticker string, date time.Time) *TradingState {
	if date.IsZero() {
		date = time.Now()
	}
	return &TradingState{
		Ticker:         ticker,
		Date:           date,
		AnalystReports: make(map[AgentRole]*AnalysisResult),
	}
}

// AnalystConsensus tallies the directional lean of the four analyst reports.
// Degraded reports count toward the neutral bucket.
func (s *TradingState) AnalystConsensus() (bullish, bearish, neutral int) {
	for _, r := range s.AnalystReports {
		switch r.Signal {
		case Bullish:
			bullish++
		case Bearish:
			bearish++
		default:
			neutral++
		}
	}
	return bullish, bearish, neutral
}
