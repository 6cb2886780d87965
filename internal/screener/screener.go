// Package screener ranks a watchlist of tickers by trading opportunity
// using one model call over the gathered market data of every ticker.
package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"opentrade/internal/analysis/indicators"
	"opentrade/internal/llm"
	"opentrade/internal/models"
	"opentrade/internal/resilience"
)

const screenerSystemPrompt = "You are a senior portfolio strategist at a top trading firm. " +
	"Given market data for multiple stocks, rank them by trading opportunity. " +
	"For each stock, provide a signal, confidence, rationale, suggested position size, " +
	"time horizon, and key risks.\n\n" +
	"You MUST respond with a JSON object in this exact format:\n" +
	"{\"picks\": [\n" +
	"  {\"ticker\": \"AAPL\", \"signal\": \"BUY|SELL|HOLD|STRONG BUY|STRONG SELL\", " +
	"\"confidence\": 75, \"rationale\": \"...\", \"position_size_pct\": 3.0, " +
	"\"time_horizon\": \"day|swing|medium|long\", \"key_risks\": [\"risk1\", \"risk2\"]}\n" +
	"]}\n" +
	"Rank by confidence descending. Be concise but specific in rationale."

var watchlistSeparators = regexp.MustCompile(`[,\n\s]+`)

// ParseWatchlistInput splits free-form watchlist text (commas, spaces,
// newlines) into upper-cased tickers, deduplicated in input order.
func ParseWatchlistInput(raw string) []string {
	tokens := watchlistSeparators.Split(strings.TrimSpace(raw), -1)
	seen := make(map[string]bool)
	var result []string
	for _, token := range tokens {
		token = strings.ToUpper(strings.TrimSpace(token))
		if token != "" && !seen[token] {
			seen[token] = true
			result = append(result, token)
		}
	}
	return result
}

// Pick is one ranked screener entry.
type Pick struct {
	Rank            int           `json:"rank"`
	Ticker          string        `json:"ticker"`
	Signal          models.Signal `json:"signal"`
	Confidence      float64       `json:"confidence"` // in [0,1]
	Rationale       string        `json:"rationale"`
	PositionSizePct float64       `json:"position_size_pct"`
	TimeHorizon     string        `json:"time_horizon"`
	KeyRisks        []string      `json:"key_risks,omitempty"`
}

// Result is the outcome of one screener run. Per-ticker fetch failures are
// collected in Errors rather than failing the run.
type Result struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Watchlist []string  `json:"watchlist"`
	Picks     []Pick    `json:"picks"`
	Errors    []string  `json:"errors,omitempty"`
}

// TopN returns the first n picks.
func (r *Result) TopN(n int) []Pick {
	if n > len(r.Picks) {
		n = len(r.Picks)
	}
	return r.Picks[:n]
}

// DataProvider supplies market inputs for one ticker.
type DataProvider interface {
	Gather(ctx context.Context, state *models.TradingState, periodDays int) error
}

// Screener gathers data for a watchlist and ranks it with one model call.
type Screener struct {
	llm        llm.Client
	data       DataProvider
	log        zerolog.Logger
	retry      resilience.RetryConfig
	periodDays int
	onProgress func(string)
}

// Option configures a Screener.
type Option func(*Screener)

// WithProgressFunc registers a progress message callback.
func WithProgressFunc(fn func(string)) Option {
	return func(s *Screener) { s.onProgress = fn }
}

// WithRetryConfig overrides the model-call retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(s *Screener) { s.retry = cfg }
}

// WithAnalysisPeriod sets the trailing price-history window in days.
func WithAnalysisPeriod(days int) Option {
	return func(s *Screener) {
		if days > 0 {
			s.periodDays = days
		}
	}
}

// New creates a Screener.
func New(client llm.Client, data DataProvider, log zerolog.Logger, opts ...Option) *Screener {
	s := &Screener{
		llm:        client,
		data:       data,
		log:        log.With().Str("component", "screener").Logger(),
		retry:      resilience.DefaultRetryConfig(),
		periodDays: 90,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tickerData is the gathered input bundle for one watchlist entry.
type tickerData struct {
	ticker     string
	info       *models.StockInfo
	news       []models.NewsItem
	indicators map[string]float64
	signals    map[string]string
}

// Screen gathers data for every ticker, ranks the watchlist with a single
// model call, and returns at most topN picks ordered by confidence.
func (s *Screener) Screen(ctx context.Context, tickers []string, tolerance models.RiskTolerance, topN int) (*Result, error) {
	if topN <= 0 {
		topN = 10
	}
	result := &Result{
		RunID:     uuid.NewString()[:12],
		Timestamp: time.Now(),
		Watchlist: tickers,
	}

	var gathered []tickerData
	for i, ticker := range tickers {
		s.progress(fmt.Sprintf("Gathering data for %s (%d/%d)...", ticker, i+1, len(tickers)))

		data, err := s.gatherTicker(ctx, ticker)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("skipping ticker, data unavailable")
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to fetch data for %s", ticker))
			continue
		}
		gathered = append(gathered, data)
	}

	if len(gathered) == 0 {
		result.Errors = append(result.Errors, "No valid ticker data available")
		return result, nil
	}

	prompt := buildScreenerPrompt(gathered, tolerance)
	response, err := resilience.Do(ctx, s.retry, func() (string, error) {
		return s.llm.Generate(ctx, prompt, screenerSystemPrompt)
	})
	if err != nil {
		return nil, fmt.Errorf("screener ranking call failed: %w", err)
	}

	picks := parseScreenerResponse(response, gathered)
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Confidence > picks[j].Confidence })
	for i := range picks {
		picks[i].Rank = i + 1
	}
	if len(picks) > topN {
		picks = picks[:topN]
	}

	result.Picks = picks
	return result, nil
}

func (s *Screener) progress(msg string) {
	if s.onProgress != nil {
		s.onProgress(msg)
	}
}

func (s *Screener) gatherTicker(ctx context.Context, ticker string) (tickerData, error) {
	state := models.NewTradingState(ticker, time.Time{})
	if err := s.data.Gather(ctx, state, s.periodDays); err != nil {
		return tickerData{}, err
	}
	snapshot := indicators.Compute(state.PriceSeries)
	return tickerData{
		ticker:     ticker,
		info:       state.Fundamentals,
		news:       state.NewsItems,
		indicators: snapshot,
		signals:    indicators.SignalSummary(snapshot),
	}, nil
}

func buildScreenerPrompt(gathered []tickerData, tolerance models.RiskTolerance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze and rank the following %d stocks by trading opportunity.\n", len(gathered))
	fmt.Fprintf(&b, "Risk tolerance: %s\n\n", tolerance)

	for _, data := range gathered {
		name := data.ticker
		sector := "N/A"
		if data.info != nil {
			if data.info.Name != "" {
				name = data.info.Name
			}
			if data.info.Sector != "" {
				sector = data.info.Sector
			}
		}
		fmt.Fprintf(&b, "--- %s (%s) ---\n", data.ticker, name)
		fmt.Fprintf(&b, "Sector: %s\n", sector)

		if data.info != nil {
			if data.info.CurrentPrice != nil {
				fmt.Fprintf(&b, "Price: $%.2f\n", *data.info.CurrentPrice)
			}
			if data.info.MarketCap > 0 {
				fmt.Fprintf(&b, "Market Cap: $%.0f\n", data.info.MarketCap)
			}
			if data.info.PERatio != nil {
				fmt.Fprintf(&b, "P/E: %.2f\n", *data.info.PERatio)
			}
		}
		if rsi, ok := data.indicators["rsi"]; ok {
			fmt.Fprintf(&b, "RSI: %.1f\n", rsi)
		}
		if macd, ok := data.indicators["macd"]; ok {
			fmt.Fprintf(&b, "MACD: %.4f\n", macd)
		}
		if change, ok := data.indicators["price_change_pct"]; ok {
			fmt.Fprintf(&b, "Period Change: %.2f%%\n", change)
		}

		overall := data.signals["overall"]
		if overall == "" {
			overall = "N/A"
		}
		fmt.Fprintf(&b, "Technical Signal: %s\n", overall)

		if len(data.news) > 0 {
			var titles []string
			for i, item := range data.news {
				if i == 3 {
					break
				}
				title := item.Title
				if len(title) > 60 {
					title = title[:60]
				}
				titles = append(titles, title)
			}
			fmt.Fprintf(&b, "Recent Headlines: %s\n", strings.Join(titles, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Rank all %d stocks. Respond with JSON: "+
		`{"picks": [{"ticker": "...", "signal": "...", "confidence": N, `+
		`"rationale": "...", "position_size_pct": N, `+
		`"time_horizon": "...", "key_risks": [...]}]}`, len(gathered))
	return b.String()
}

type pickPayload struct {
	Ticker          string          `json:"ticker"`
	Signal          string          `json:"signal"`
	Confidence      float64         `json:"confidence"`
	Rationale       string          `json:"rationale"`
	PositionSizePct float64         `json:"position_size_pct"`
	TimeHorizon     string          `json:"time_horizon"`
	KeyRisks        json.RawMessage `json:"key_risks"`
}

type screenerPayload struct {
	Picks []pickPayload `json:"picks"`
}

// parseScreenerResponse prefers the JSON picks contract and falls back to
// free-text heuristics covering every gathered ticker.
func parseScreenerResponse(response string, gathered []tickerData) []Pick {
	if payload, ok := extractPicks(response); ok {
		var picks []Pick
		for _, item := range payload.Picks {
			ticker := strings.ToUpper(strings.TrimSpace(item.Ticker))
			if ticker == "" {
				continue
			}
			picks = append(picks, Pick{
				Ticker:          ticker,
				Signal:          normalizeSignal(item.Signal),
				Confidence:      normalizeConfidence(item.Confidence),
				Rationale:       item.Rationale,
				PositionSizePct: item.PositionSizePct,
				TimeHorizon:     item.TimeHorizon,
				KeyRisks:        decodeRisks(item.KeyRisks),
			})
		}
		if len(picks) > 0 {
			return picks
		}
	}
	return picksFromFreetext(response, gathered)
}

func extractPicks(response string) (*screenerPayload, bool) {
	text := strings.TrimSpace(response)
	if fenced := extractFence(text); fenced != "" {
		text = fenced
	}
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}
	var payload screenerPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

func extractFence(text string) string {
	_, after, found := strings.Cut(text, "```json")
	if !found {
		return ""
	}
	block, _, _ := strings.Cut(after, "```")
	return strings.TrimSpace(block)
}

func decodeRisks(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

func picksFromFreetext(response string, gathered []tickerData) []Pick {
	lower := strings.ToLower(response)
	rationale := response
	if len(rationale) > 300 {
		rationale = rationale[:300]
	}

	var picks []Pick
	for _, data := range gathered {
		signal := models.Neutral
		confidence := 0.5
		if strings.Contains(lower, strings.ToLower(data.ticker)) {
			switch {
			case strings.Contains(lower, "strong buy"):
				signal, confidence = models.Bullish, 0.85
			case strings.Contains(lower, "buy"):
				signal, confidence = models.Bullish, 0.70
			case strings.Contains(lower, "strong sell"):
				signal, confidence = models.Bearish, 0.85
			case strings.Contains(lower, "sell"):
				signal, confidence = models.Bearish, 0.70
			case strings.Contains(lower, "hold"):
				signal, confidence = models.Neutral, 0.60
			}
		}
		picks = append(picks, Pick{
			Ticker:     data.ticker,
			Signal:     signal,
			Confidence: confidence,
			Rationale:  rationale,
		})
	}
	return picks
}

func normalizeSignal(raw string) models.Signal {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "buy"), strings.Contains(lower, "bullish"):
		return models.Bullish
	case strings.Contains(lower, "sell"), strings.Contains(lower, "bearish"):
		return models.Bearish
	default:
		return models.Neutral
	}
}

func normalizeConfidence(value float64) float64 {
	if value > 1 {
		value /= 100
	}
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
