package agents

import (
	"strings"
	"testing"
	"time"

	"opentrade/internal/models"
)

func TestParseAnalysisBareJSON(t *testing.T) {
	response := `{"signal": "BUY", "confidence": 78, "summary": "Undervalued vs peers."}`
	result := ParseAnalysis(models.RoleFundamental, "AAPL", response)

	if result.Signal != models.Bullish {
		t.Errorf("signal = %q, want bullish", result.Signal)
	}
	if result.Confidence != 0.78 {
		t.Errorf("confidence = %v, want 0.78", result.Confidence)
	}
	if result.Rationale != "Undervalued vs peers." {
		t.Errorf("rationale = %q", result.Rationale)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	response := "Here is my analysis:\n```json\n{\"signal\": \"STRONG SELL\", \"confidence\": 85, \"summary\": \"Margins collapsing.\"}\n```\nDone."
	result := ParseAnalysis(models.RoleNews, "TSLA", response)

	if result.Signal != models.Bearish {
		t.Errorf("signal = %q, want bearish", result.Signal)
	}
	if result.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85", result.Confidence)
	}
}

func TestParseAnalysisSignalVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Signal
	}{
		{"STRONG BUY", models.Bullish},
		{"buy", models.Bullish},
		{"bullish", models.Bullish},
		{"STRONG SELL", models.Bearish},
		{"sell", models.Bearish},
		{"bearish", models.Bearish},
		{"HOLD", models.Neutral},
		{"neutral", models.Neutral},
	}
	for _, tt := range tests {
		response := `{"signal": "` + tt.raw + `", "confidence": 60, "summary": "x"}`
		result := ParseAnalysis(models.RoleTechnical, "AAPL", response)
		if result.Signal != tt.want {
			t.Errorf("signal %q → %q, want %q", tt.raw, result.Signal, tt.want)
		}
	}
}

func TestParseAnalysisConfidenceForms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"fraction kept as-is", `0.7`, 0.7},
		{"percent scale divided", `70`, 0.7},
		{"string with percent sign", `"75%"`, 0.75},
		{"over hundred clamps", `150`, 1.0},
		{"garbage defaults", `"very high"`, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := `{"signal": "BUY", "confidence": ` + tt.raw + `, "summary": "x"}`
			result := ParseAnalysis(models.RoleSentiment, "AAPL", response)
			if result.Confidence != tt.want {
				t.Errorf("confidence = %v, want %v", result.Confidence, tt.want)
			}
		})
	}
}

func TestParseAnalysisTextFallback(t *testing.T) {
	result := ParseAnalysis(models.RoleSentiment, "AAPL",
		"The outlook is a strong buy given cloud momentum.")
	if result.Signal != models.Bullish || result.Confidence != 0.85 {
		t.Errorf("got %q/%v, want bullish/0.85", result.Signal, result.Confidence)
	}

	result = ParseAnalysis(models.RoleSentiment, "AAPL", "I would hold here.")
	if result.Signal != models.Neutral || result.Confidence != 0.60 {
		t.Errorf("got %q/%v, want neutral/0.60", result.Signal, result.Confidence)
	}

	result = ParseAnalysis(models.RoleSentiment, "AAPL", "Nothing actionable.")
	if result.Signal != models.Neutral || result.Confidence != 0.50 {
		t.Errorf("got %q/%v, want neutral/0.50", result.Signal, result.Confidence)
	}
}

func TestParseAnalysisJSONWithBadSignalUsesWording(t *testing.T) {
	response := `{"signal": "unsure", "confidence": 90, "summary": "This looks bearish given the guidance cut."}`
	result := ParseAnalysis(models.RoleFundamental, "AAPL", response)
	if result.Signal != models.Bearish {
		t.Errorf("signal = %q, want bearish from wording", result.Signal)
	}
}

func TestExtractJSONObjectEmbedded(t *testing.T) {
	got := extractJSONObject(`Sure! {"signal": "BUY"} hope that helps`)
	if got != `{"signal": "BUY"}` {
		t.Errorf("got %q", got)
	}
	if extractJSONObject("no json here") != "" {
		t.Error("expected empty for plain text")
	}
}

func TestParseRiskVerdict(t *testing.T) {
	tests := []struct {
		response string
		want     models.RiskVerdict
	}{
		{"Decision: REJECT\nRisk too high.", models.RiskReject},
		{"Decision: MODIFY\nReduce position to 2%.", models.RiskModify},
		{"Decision: APPROVE\nRisk acceptable.", models.RiskApprove},
		{"Needs further review.", models.RiskApprove},
		{"I would approve, though one could argue to modify or reject.", models.RiskReject},
	}
	for _, tt := range tests {
		if got := ParseRiskVerdict(tt.response); got != tt.want {
			t.Errorf("ParseRiskVerdict(%q) = %q, want %q", tt.response, got, tt.want)
		}
	}
}

func TestParseVerificationJSON(t *testing.T) {
	response := `{"verdict": "FLAGGED", "confidence_adjustment": -15, "issues": ["overconfident"], "summary": "Two gaps found."}`
	v := ParseVerification(response)

	if v.Verdict != "flagged" {
		t.Errorf("verdict = %q", v.Verdict)
	}
	if v.ConfidenceAdjustment != -0.15 {
		t.Errorf("adjustment = %v, want -0.15", v.ConfidenceAdjustment)
	}
	if len(v.Issues) != 1 || v.Issues[0] != "overconfident" {
		t.Errorf("issues = %v", v.Issues)
	}
}

func TestParseVerificationClampsAdjustment(t *testing.T) {
	v := ParseVerification(`{"verdict": "REJECTED", "confidence_adjustment": -80, "issues": [], "summary": "x"}`)
	if v.ConfidenceAdjustment != -0.3 {
		t.Errorf("adjustment = %v, want floor -0.3", v.ConfidenceAdjustment)
	}

	v = ParseVerification(`{"verdict": "APPROVED", "confidence_adjustment": 10, "issues": [], "summary": "x"}`)
	if v.ConfidenceAdjustment != 0 {
		t.Errorf("adjustment = %v, positive values must clamp to 0", v.ConfidenceAdjustment)
	}
}

func TestParseVerificationTextFallback(t *testing.T) {
	v := ParseVerification("The pipeline output is approved, no issues found.")
	if v.Verdict != "approved" {
		t.Errorf("verdict = %q, want approved", v.Verdict)
	}
	if v.ConfidenceAdjustment != 0 {
		t.Errorf("adjustment = %v, want 0", v.ConfidenceAdjustment)
	}

	v = ParseVerification("Unintelligible response")
	if v.Verdict != "flagged" {
		t.Errorf("verdict = %q, want flagged default", v.Verdict)
	}
}

func TestBuildPromptsContainKeySections(t *testing.T) {
	price := 185.0
	state := models.NewTradingState("AAPL", time.Time{})
	state.Fundamentals = &models.StockInfo{
		Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology",
		CurrentPrice: &price,
	}
	state.NewsItems = []models.NewsItem{{Title: "Apple beats earnings", Publisher: "Reuters"}}
	state.Indicators = map[string]float64{"rsi": 58.2, "current_price": 185.0}
	state.Signals = map[string]string{"rsi": "neutral"}
	state.AnalystReports[models.RoleFundamental] = &models.AnalysisResult{
		Role: models.RoleFundamental, Ticker: "AAPL",
		Signal: models.Bullish, Confidence: 0.78, Rationale: "Cheap vs peers.",
	}

	fundamental := BuildAnalystPrompt(models.RoleFundamental, state)
	if !strings.Contains(fundamental, "Apple Inc.") || !strings.Contains(fundamental, "Current Price: $185.00") {
		t.Errorf("fundamental prompt missing metrics:\n%s", fundamental)
	}

	sentiment := BuildAnalystPrompt(models.RoleSentiment, state)
	if !strings.Contains(sentiment, "[Reuters] Apple beats earnings") {
		t.Errorf("sentiment prompt missing headline:\n%s", sentiment)
	}

	technical := BuildAnalystPrompt(models.RoleTechnical, state)
	if !strings.Contains(technical, "RSI (14): 58.20") {
		t.Errorf("technical prompt missing rsi:\n%s", technical)
	}

	bull := BuildBullPrompt(state, "")
	if !strings.Contains(bull, "BULL CASE") || !strings.Contains(bull, "Cheap vs peers.") {
		t.Errorf("bull prompt missing reports:\n%s", bull)
	}

	rebuttal := BuildBearPrompt(state, "Growth is unstoppable.")
	if !strings.Contains(rebuttal, "Growth is unstoppable.") {
		t.Errorf("bear rebuttal missing bull argument:\n%s", rebuttal)
	}

	state.TraderOutput = &models.AnalysisResult{
		Role: models.RoleTrader, Signal: models.Bullish, Confidence: 0.7, Rationale: "3% position.",
	}
	trader := BuildTraderPrompt(state, models.Moderate)
	if !strings.Contains(trader, "Risk Tolerance: moderate") {
		t.Errorf("trader prompt missing tolerance:\n%s", trader)
	}

	risk := BuildRiskPrompt(state, models.Conservative)
	if !strings.Contains(risk, "TRADER PROPOSAL") || !strings.Contains(risk, "conservative") {
		t.Errorf("risk prompt missing sections:\n%s", risk)
	}

	verifier := BuildVerifierPrompt(state)
	if !strings.Contains(verifier, "ANALYST REPORTS") || !strings.Contains(verifier, "3% position.") {
		t.Errorf("verifier prompt missing sections:\n%s", verifier)
	}
}

func TestSystemPromptsCoverAllRoles(t *testing.T) {
	roles := []models.AgentRole{
		models.RoleFundamental, models.RoleSentiment, models.RoleNews,
		models.RoleTechnical, models.RoleBullResearcher, models.RoleBearResearcher,
		models.RoleTrader, models.RoleRiskManager, models.RoleVerifier,
	}
	for _, role := range roles {
		if SystemPrompt(role) == "" {
			t.Errorf("no system prompt for %s", role)
		}
	}
}
