package agents

import (
	"fmt"
	"strings"

	"opentrade/internal/models"
)

// BuildAnalystPrompt projects state into the prompt for one of the four
// parallel analyst roles.
func BuildAnalystPrompt(role models.AgentRole, state *models.TradingState) string {
	switch role {
	case models.RoleFundamental:
		return buildFundamentalPrompt(state)
	case models.RoleSentiment:
		return buildSentimentPrompt(state)
	case models.RoleNews:
		return buildNewsPrompt(state)
	case models.RoleTechnical:
		return buildTechnicalPrompt(state)
	}
	return ""
}

func buildFundamentalPrompt(state *models.TradingState) string {
	info := state.Fundamentals
	name := state.Ticker
	if info != nil && info.Name != "" {
		name = info.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Perform a comprehensive fundamental analysis of %s (%s).\n", state.Ticker, name)
	if info != nil {
		fmt.Fprintf(&b, "\nSector: %s\n", orNA(info.Sector))
		fmt.Fprintf(&b, "Industry: %s\n", orNA(info.Industry))
		b.WriteString("\n--- VALUATION & FINANCIAL METRICS ---\n")
		if info.MarketCap > 0 {
			fmt.Fprintf(&b, "Market Cap: $%.0f\n", info.MarketCap)
		}
		writeMetric(&b, "P/E Ratio (Trailing)", info.PERatio, "%.2f")
		writeMetric(&b, "Forward P/E", info.ForwardPE, "%.2f")
		writePercent(&b, "Revenue Growth (YoY)", info.RevenueGrowth)
		writePercent(&b, "Profit Margins", info.ProfitMargins)
		writeMetric(&b, "Debt/Equity", info.DebtToEquity, "%.2f")
		writePercent(&b, "ROE", info.ReturnOnEquity)
		writePercent(&b, "Dividend Yield", info.DividendYield)
		writeMetric(&b, "Beta", info.Beta, "%.2f")
		writeMetric(&b, "Current Price", info.CurrentPrice, "$%.2f")
		if info.High52Week != nil && info.Low52Week != nil {
			fmt.Fprintf(&b, "52-Week Range: $%.2f - $%.2f\n", *info.Low52Week, *info.High52Week)
		}
	} else {
		b.WriteString("\nNo fundamental metrics available.\n")
	}

	writeFilings(&b, state.Filings)

	b.WriteString("\n--- INSTRUCTIONS ---\n" +
		"Evaluate across all five dimensions: valuation, profitability, growth, " +
		"balance sheet, competitive position. Cite specific numbers. If SEC " +
		"filings are provided, incorporate findings.\n" +
		respondWithJSON)
	return b.String()
}

func buildSentimentPrompt(state *models.TradingState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perform a comprehensive sentiment analysis for %s.\n", state.Ticker)
	if state.Fundamentals != nil {
		fmt.Fprintf(&b, "Sector: %s\n", orNA(state.Fundamentals.Sector))
	}

	b.WriteString("\n--- NEWS HEADLINES ---\n")
	if len(state.NewsItems) == 0 {
		b.WriteString("- No news available\n")
	}
	for i, item := range state.NewsItems {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", orUnknown(item.Publisher), item.Title)
	}

	if state.Trends != nil && state.Trends.Trend != models.TrendNoData {
		b.WriteString("\n--- GOOGLE TRENDS (search interest) ---\n")
		fmt.Fprintf(&b, "Keyword: %s\n", state.Trends.Keyword)
		fmt.Fprintf(&b, "Average Interest: %.0f/100\n", state.Trends.AverageInterest)
		fmt.Fprintf(&b, "Current Interest: %.0f/100\n", state.Trends.CurrentInterest)
		fmt.Fprintf(&b, "Trend Direction: %s\n", state.Trends.Trend)
	}

	b.WriteString("\n--- INSTRUCTIONS ---\n" +
		"Synthesize all sentiment signals above. Classify the overall sentiment, " +
		"assess narrative momentum, check for contrarian signals, and identify " +
		"upcoming catalysts.\n" +
		respondWithJSON)
	return b.String()
}

func buildNewsPrompt(state *models.TradingState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze all news and filings for %s.\n", state.Ticker)
	if state.Fundamentals != nil {
		fmt.Fprintf(&b, "Sector: %s\n", orNA(state.Fundamentals.Sector))
		fmt.Fprintf(&b, "Industry: %s\n", orNA(state.Fundamentals.Industry))
	}

	b.WriteString("\n--- NEWS ---\n")
	if len(state.NewsItems) == 0 {
		b.WriteString("- No news available\n")
	}
	for i, item := range state.NewsItems {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", orUnknown(item.Publisher), item.Title)
		if item.Summary != "" {
			fmt.Fprintf(&b, "  Summary: %s\n", truncate(item.Summary, 200))
		}
	}

	writeFilings(&b, state.Filings)

	b.WriteString("\n--- INSTRUCTIONS ---\n" +
		"Rate each news item by materiality (HIGH/MEDIUM/LOW). Identify " +
		"catalysts, assess temporal impact, and cross-verify across sources. " +
		"If SEC filings are provided, check for material disclosures.\n" +
		respondWithJSON)
	return b.String()
}

func buildTechnicalPrompt(state *models.TradingState) string {
	indicators := state.Indicators

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the technical indicators for %s.\n\nKey Indicators:\n", state.Ticker)

	writeIndicator(&b, indicators, "current_price", "Current Price: $%.2f\n")
	writeIndicator(&b, indicators, "price_change_pct", "Period Change: %.2f%%\n")
	writeIndicator(&b, indicators, "rsi", "RSI (14): %.2f\n")
	writeIndicator(&b, indicators, "macd", "MACD: %.4f\n")
	writeIndicator(&b, indicators, "macd_signal", "MACD Signal: %.4f\n")
	writeIndicator(&b, indicators, "sma_20", "SMA 20: $%.2f\n")
	writeIndicator(&b, indicators, "sma_50", "SMA 50: $%.2f\n")
	if lower, ok := indicators["bb_lower"]; ok {
		if upper, ok := indicators["bb_upper"]; ok {
			fmt.Fprintf(&b, "Bollinger Bands: $%.2f - $%.2f\n", lower, upper)
		}
	}
	writeIndicator(&b, indicators, "atr", "ATR (14): %.4f\n")
	writeIndicator(&b, indicators, "volume_trend", "Volume Trend: %.2fx average\n")

	if len(state.Signals) > 0 {
		b.WriteString("\nSignal Summary:\n")
		for _, key := range []string{"rsi", "macd", "sma_20", "sma_50", "bollinger", "volume"} {
			if value, ok := state.Signals[key]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", key, value)
			}
		}
	}

	b.WriteString("\nBased on these technical indicators, " + respondWithJSON)
	return b.String()
}

// BuildBullPrompt builds the opening bull case, or the rebuttal when a bear
// argument from the previous exchange is available.
func BuildBullPrompt(state *models.TradingState, bearArgument string) string {
	var b strings.Builder
	if bearArgument == "" {
		fmt.Fprintf(&b, "Build the strongest BULL CASE for %s.\n", state.Ticker)
		b.WriteString("\nAnalyst reports available:\n")
		b.WriteString(formatAnalystReports(state))
		b.WriteString("\nPresent your bullish thesis. What are the key reasons to BUY this stock? " +
			"Include growth catalysts, valuation arguments, and positive trends.\n")
	} else {
		fmt.Fprintf(&b, "The bear researcher argues against %s:\n\n%s\n\n", state.Ticker, bearArgument)
		b.WriteString("Counter these bearish arguments with your strongest bull case. " +
			"Use data from the analyst reports to support your position.\n")
		b.WriteString("\nAnalyst Reports:\n")
		b.WriteString(formatAnalystReports(state))
	}
	b.WriteString("\n" + respondWithJSON)
	return b.String()
}

// BuildBearPrompt builds the opening bear case, or the rebuttal against the
// bull argument from the current round.
func BuildBearPrompt(state *models.TradingState, bullArgument string) string {
	var b strings.Builder
	if bullArgument == "" {
		fmt.Fprintf(&b, "Build the strongest BEAR CASE against %s.\n", state.Ticker)
		b.WriteString("\nAnalyst reports available:\n")
		b.WriteString(formatAnalystReports(state))
		b.WriteString("\nPresent your bearish thesis. What are the key risks and reasons to SELL? " +
			"Include overvaluation concerns, competitive threats, and negative trends.\n")
	} else {
		fmt.Fprintf(&b, "The bull researcher argues for %s:\n\n%s\n\n", state.Ticker, bullArgument)
		b.WriteString("Counter these bullish arguments with your strongest bear case. " +
			"Use data from the analyst reports to support your position.\n")
		b.WriteString("\nAnalyst Reports:\n")
		b.WriteString(formatAnalystReports(state))
	}
	b.WriteString("\n" + respondWithJSON)
	return b.String()
}

// BuildTraderPrompt assembles the synthesis prompt from analyst reports and
// the debate transcript.
func BuildTraderPrompt(state *models.TradingState, tolerance models.RiskTolerance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Make a trading decision for %s.\n\n--- ANALYST REPORTS ---\n", state.Ticker)

	for _, role := range models.AnalystRoles {
		report, ok := state.AnalystReports[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Signal: %s | Confidence: %.0f%%\n",
			role, report.Signal, report.Confidence*100)
		fmt.Fprintf(&b, "Summary: %s\n", truncate(report.Rationale, 400))
	}

	if len(state.DebateRounds) > 0 {
		b.WriteString("\n--- RESEARCH DEBATE ---\n")
		for _, round := range state.DebateRounds {
			fmt.Fprintf(&b, "\nRound %d:\n", round.RoundNumber)
			fmt.Fprintf(&b, "Bull: %s\n", truncate(round.Bull.Text, 300))
			fmt.Fprintf(&b, "Bear: %s\n", truncate(round.Bear.Text, 300))
		}
	}

	fmt.Fprintf(&b, "\nRisk Tolerance: %s\n", tolerance)
	b.WriteString("\nBased on all the above, respond with JSON: " +
		`{"signal": "STRONG BUY|BUY|HOLD|SELL|STRONG SELL", "confidence": <0-100>, ` +
		`"summary": "<decision with position size, time horizon, and top 3 factors>"}`)
	return b.String()
}

// BuildRiskPrompt assembles the review prompt for the risk manager.
func BuildRiskPrompt(state *models.TradingState, tolerance models.RiskTolerance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review the trading proposal for %s.\n\n--- TRADER PROPOSAL ---\n", state.Ticker)

	if trader := state.TraderOutput; trader != nil {
		fmt.Fprintf(&b, "Signal: %s\n", trader.Signal)
		fmt.Fprintf(&b, "Confidence: %.0f%%\n", trader.Confidence*100)
		fmt.Fprintf(&b, "Summary: %s\n", truncate(trader.Rationale, 500))
	}

	b.WriteString("\n--- RISK METRICS ---\n")
	writeIndicator(&b, state.Indicators, "atr", "ATR (Volatility): %.4f\n")
	writeIndicator(&b, state.Indicators, "rsi", "RSI: %.2f\n")
	writeIndicator(&b, state.Indicators, "volume_trend", "Volume Trend: %.2fx\n")

	if info := state.Fundamentals; info != nil {
		writeMetric(&b, "Beta", info.Beta, "%.2f")
		writeMetric(&b, "Debt/Equity", info.DebtToEquity, "%.2f")
	}

	fmt.Fprintf(&b, "\nPortfolio Risk Tolerance: %s\n", tolerance)
	b.WriteString("\nProvide your risk assessment:\n" +
		"1. Decision: APPROVE / MODIFY / REJECT\n" +
		"2. Risk level: LOW / MEDIUM / HIGH\n" +
		"3. If MODIFY: suggested adjustments\n" +
		"4. Key risk factors\n" +
		"5. Recommended stop-loss level if applicable")
	return b.String()
}

// BuildVerifierPrompt assembles the final consistency-check prompt.
func BuildVerifierPrompt(state *models.TradingState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Verify the analysis pipeline output for %s.\n\n--- ANALYST REPORTS ---\n", state.Ticker)

	if len(state.AnalystReports) == 0 {
		b.WriteString("No analyst reports provided.\n")
	}
	for _, role := range models.AnalystRoles {
		report, ok := state.AnalystReports[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Signal: %s | Confidence: %.0f%%\n",
			role, report.Signal, report.Confidence*100)
		fmt.Fprintf(&b, "Summary: %s\n", truncate(report.Rationale, 400))
	}

	b.WriteString("\n--- TRADER DECISION ---\n")
	if state.TraderOutput != nil {
		b.WriteString(truncate(state.TraderOutput.Rationale, 500) + "\n")
	} else {
		b.WriteString("No trader summary.\n")
	}

	b.WriteString("\n--- RISK ASSESSMENT ---\n")
	if state.RiskOutput != nil {
		b.WriteString(truncate(state.RiskOutput.Rationale, 500) + "\n")
	} else {
		b.WriteString("No risk assessment.\n")
	}

	b.WriteString("\nReview for consistency, contradictions, unsupported claims, " +
		"missing risks, and bias. Respond with JSON: " +
		`{"verdict": "APPROVED|FLAGGED|REJECTED", "confidence_adjustment": <int -30 to 0>, ` +
		`"issues": [<list>], "summary": "<assessment>"}`)
	return b.String()
}

const respondWithJSON = `Respond with JSON: {"signal": "STRONG BUY|BUY|HOLD|SELL|STRONG SELL", "confidence": <0-100>, "summary": "<your detailed analysis>"}`

func formatAnalystReports(state *models.TradingState) string {
	if len(state.AnalystReports) == 0 {
		return "No analyst reports available.\n"
	}
	var b strings.Builder
	for _, role := range models.AnalystRoles {
		report, ok := state.AnalystReports[role]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Signal: %s\n", role, report.Signal)
		fmt.Fprintf(&b, "Summary: %s\n", truncate(report.Rationale, 500))
	}
	return b.String()
}

func writeFilings(b *strings.Builder, filings []models.Filing) {
	if len(filings) == 0 {
		return
	}
	b.WriteString("\n--- RECENT SEC FILINGS ---\n")
	for i, filing := range filings {
		if i >= 5 {
			break
		}
		fmt.Fprintf(b, "- %s filed %s: %s\n", filing.Form, filing.FilingDate, filing.Description)
	}
}

func writeMetric(b *strings.Builder, label string, value *float64, format string) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "%s: "+format+"\n", label, *value)
}

func writePercent(b *strings.Builder, label string, value *float64) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "%s: %.2f%%\n", label, *value*100)
}

func writeIndicator(b *strings.Builder, indicators map[string]float64, key, format string) {
	if value, ok := indicators[key]; ok {
		fmt.Fprintf(b, format, value)
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
