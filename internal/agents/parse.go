package agents

import (
	"encoding/json"
	"strconv"
	"strings"

	"opentrade/internal/models"
)

// agentResponse is the JSON shape the directional agents are instructed to
// return. Confidence arrives as a number or a string and on either a 0-1 or
// 0-100 scale; normalization handles all of it.
type agentResponse struct {
	Signal     string          `json:"signal"`
	Confidence json.RawMessage `json:"confidence"`
	Summary    string          `json:"summary"`
	Rationale  string          `json:"rationale"`
}

// ParseAnalysis converts raw model output into a typed result. A parseable
// JSON object is preferred; otherwise the whole response is kept as the
// rationale and the signal is inferred from its wording. The result always
// satisfies Validate.
func ParseAnalysis(role models.AgentRole, ticker, response string) *models.AnalysisResult {
	result := &models.AnalysisResult{
		Role:   role,
		Ticker: ticker,
	}

	raw := extractJSONObject(response)
	var parsed agentResponse
	if raw != "" && json.Unmarshal([]byte(raw), &parsed) == nil {
		summary := parsed.Summary
		if summary == "" {
			summary = parsed.Rationale
		}
		if summary == "" {
			summary = response
		}
		result.Rationale = summary
		result.Signal, result.Confidence = normalizeSignal(parsed.Signal, parsed.Confidence)
		if result.Signal == models.Neutral && !mentionsNeutral(parsed.Signal) {
			// The model ignored the signal contract; fall back to wording.
			result.Signal, result.Confidence = heuristicSignal(summary)
		}
		return result
	}

	result.Rationale = response
	result.Signal, result.Confidence = heuristicSignal(response)
	return result
}

// extractJSONObject returns the JSON object embedded in the response: the
// whole response when it is a bare object, the contents of a ```json fence,
// or the outermost brace-delimited span as a last resort.
func extractJSONObject(response string) string {
	text := strings.TrimSpace(response)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}
	if idx := strings.Index(text, "```json"); idx >= 0 {
		block := text[idx+len("```json"):]
		if end := strings.Index(block, "```"); end >= 0 {
			return strings.TrimSpace(block[:end])
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return ""
}

// normalizeSignal maps the five-level BUY/SELL scale onto the three-way internal
// signal and squashes confidence into [0,1].
func normalizeSignal(rawSignal string, rawConfidence json.RawMessage) (models.Signal, float64) {
	lower := strings.ToLower(strings.TrimSpace(rawSignal))
	confidence := normalizeConfidence(rawConfidence)

	switch {
	case strings.Contains(lower, "strong") && strings.Contains(lower, "buy"),
		strings.Contains(lower, "strongly bullish"):
		return models.Bullish, confidence
	case strings.Contains(lower, "strong") && strings.Contains(lower, "sell"),
		strings.Contains(lower, "strongly bearish"):
		return models.Bearish, confidence
	case lower == "buy", strings.Contains(lower, "bull"):
		return models.Bullish, confidence
	case lower == "sell", strings.Contains(lower, "bear"):
		return models.Bearish, confidence
	default:
		return models.Neutral, confidence
	}
}

func mentionsNeutral(rawSignal string) bool {
	lower := strings.ToLower(rawSignal)
	return strings.Contains(lower, "hold") || strings.Contains(lower, "neutral")
}

// normalizeConfidence accepts a bare number, a quoted number, or a string
// like "75%" and returns a value in [0,1]. Values above 1 are assumed to be
// on the 0-100 scale. Unparseable input falls back to 0.5.
func normalizeConfidence(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0.5
	}

	text := strings.TrimSpace(string(raw))
	text = strings.Trim(text, `"`)
	text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
	text = strings.TrimSpace(strings.TrimPrefix(text, "confidence:"))

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0.5
	}
	if value > 1 {
		value /= 100
	}
	return clamp01(value)
}

// heuristicSignal infers direction from free-form wording when the model
// did not honor the JSON contract.
func heuristicSignal(response string) (models.Signal, float64) {
	lower := strings.ToLower(response)

	switch {
	case strings.Contains(lower, "strong buy"), strings.Contains(lower, "strongly bullish"):
		return models.Bullish, 0.85
	case strings.Contains(lower, "buy"), strings.Contains(lower, "bullish"):
		return models.Bullish, 0.70
	case strings.Contains(lower, "strong sell"), strings.Contains(lower, "strongly bearish"):
		return models.Bearish, 0.85
	case strings.Contains(lower, "sell"), strings.Contains(lower, "bearish"):
		return models.Bearish, 0.70
	case strings.Contains(lower, "hold"):
		return models.Neutral, 0.60
	default:
		return models.Neutral, 0.50
	}
}

// ParseRiskVerdict extracts the risk manager's decision from free-form
// output. Precedence matters: a response discussing all three options takes
// the strictest one it committed to. Unrecognized output cannot tighten the
// deterministic policy verdict, so it maps to approve.
func ParseRiskVerdict(response string) models.RiskVerdict {
	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, "reject"):
		return models.RiskReject
	case strings.Contains(lower, "modify"):
		return models.RiskModify
	case strings.Contains(lower, "approve"):
		return models.RiskApprove
	default:
		return models.RiskApprove
	}
}

// Verification is the typed verdict of the final consistency check.
type Verification struct {
	Verdict              string   `json:"verdict"` // approved, flagged, rejected
	ConfidenceAdjustment float64  `json:"confidence_adjustment"` // in [-0.3, 0]
	Issues               []string `json:"issues"`
	Summary              string   `json:"summary"`
}

type verifierResponse struct {
	Verdict              string          `json:"verdict"`
	ConfidenceAdjustment json.RawMessage `json:"confidence_adjustment"`
	Issues               []string        `json:"issues"`
	Summary              string          `json:"summary"`
}

// ParseVerification converts verifier output into a typed verdict. The
// adjustment is instructed on the -30..0 point scale and normalized to
// [-0.3, 0]; positive adjustments are clamped away since verification can
// only reduce confidence.
func ParseVerification(response string) Verification {
	raw := extractJSONObject(response)
	var parsed verifierResponse
	if raw == "" || json.Unmarshal([]byte(raw), &parsed) != nil {
		return Verification{
			Verdict: verdictFromText(response),
			Summary: response,
		}
	}

	verification := Verification{
		Verdict: verdictFromText(parsed.Verdict),
		Issues:  parsed.Issues,
		Summary: parsed.Summary,
	}
	if verification.Summary == "" {
		verification.Summary = response
	}

	if len(parsed.ConfidenceAdjustment) > 0 {
		text := strings.Trim(strings.TrimSpace(string(parsed.ConfidenceAdjustment)), `"`)
		if value, err := strconv.ParseFloat(text, 64); err == nil {
			if value < -1 {
				value /= 100
			}
			if value < -0.3 {
				value = -0.3
			}
			if value > 0 {
				value = 0
			}
			verification.ConfidenceAdjustment = value
		}
	}
	return verification
}

func verdictFromText(response string) string {
	lower := strings.ToLower(response)
	switch {
	case strings.Contains(lower, "reject"):
		return "rejected"
	case strings.Contains(lower, "approve"):
		return "approved"
	default:
		return "flagged"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
