// Package report exports trading decisions and screener runs as JSON and
// standalone HTML documents.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"opentrade/internal/models"
	"opentrade/internal/screener"
)

// Exporter writes report files into an output directory, creating it on
// first use.
type Exporter struct {
	outputDir string
}

// NewExporter creates an Exporter rooted at outputDir.
func NewExporter(outputDir string) *Exporter {
	if outputDir == "" {
		outputDir = "reports"
	}
	return &Exporter{outputDir: outputDir}
}

// decisionDocument is the serialized report envelope around one decision.
type decisionDocument struct {
	RunID     string                  `json:"run_id"`
	Timestamp time.Time               `json:"timestamp"`
	Decision  *models.TradingDecision `json:"decision"`
}

// SaveJSON writes the decision as an indented JSON report and returns the
// file path.
func (e *Exporter) SaveJSON(decision *models.TradingDecision) (string, error) {
	doc := decisionDocument{RunID: newRunID(), Timestamp: time.Now(), Decision: decision}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	return e.write(fmt.Sprintf("%s_%s.json", decision.Ticker, doc.RunID), data)
}

// SaveHTML renders the decision as a standalone HTML report and returns the
// file path.
func (e *Exporter) SaveHTML(decision *models.TradingDecision) (string, error) {
	doc := decisionDocument{RunID: newRunID(), Timestamp: time.Now(), Decision: decision}
	var b strings.Builder
	if err := decisionTemplate.Execute(&b, doc); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return e.write(fmt.Sprintf("%s_%s.html", decision.Ticker, doc.RunID), []byte(b.String()))
}

// SaveScreenerJSON writes a screener run as an indented JSON report.
func (e *Exporter) SaveScreenerJSON(result *screener.Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode screener report: %w", err)
	}
	return e.write(fmt.Sprintf("screener_%s.json", result.RunID), data)
}

// SaveScreenerHTML renders a screener run as a standalone HTML report.
func (e *Exporter) SaveScreenerHTML(result *screener.Result) (string, error) {
	var b strings.Builder
	if err := screenerTemplate.Execute(&b, result); err != nil {
		return "", fmt.Errorf("failed to render screener report: %w", err)
	}
	return e.write(fmt.Sprintf("screener_%s.html", result.RunID), []byte(b.String()))
}

func (e *Exporter) write(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(e.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func newRunID() string {
	return uuid.NewString()[:12]
}

// signalColor maps a signal to its report accent color.
func signalColor(signal models.Signal) string {
	switch signal {
	case models.Bullish:
		return "#4CAF50"
	case models.Bearish:
		return "#FF5722"
	case models.Neutral:
		return "#FFC107"
	}
	return "#9E9E9E"
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func upper(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "_", " "))
}

func truncateText(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

var templateFuncs = template.FuncMap{
	"color":    signalColor,
	"percent":  percent,
	"upper":    upper,
	"truncate": truncateText,
}

var decisionTemplate = template.Must(template.New("decision").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Trading Report - {{.Decision.Ticker}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
       max-width: 900px; margin: 0 auto; padding: 20px; background: #1a1a2e; color: #eee; }
.header { text-align: center; padding: 30px; border-radius: 12px;
          background: linear-gradient(135deg, {{color .Decision.Signal}}22, {{color .Decision.Signal}}44);
          border: 2px solid {{color .Decision.Signal}}; }
.header h1 { color: {{color .Decision.Signal}}; margin: 0; font-size: 2.5em; }
.header .confidence { color: #ccc; font-size: 1.2em; }
.card { background: #16213e; padding: 16px; border-radius: 8px; margin: 10px 0; }
.badge { display: inline-block; padding: 4px 12px; border-radius: 4px; color: white;
         font-weight: bold; font-size: 0.85em; }
.debate-round { background: #16213e; padding: 16px; border-radius: 8px; margin: 10px 0; }
.bull { border-left: 4px solid #4CAF50; padding-left: 12px; margin: 8px 0; }
.bear { border-left: 4px solid #EF5350; padding-left: 12px; margin: 8px 0; }
h2 { color: #64b5f6; border-bottom: 2px solid #64b5f6; padding-bottom: 8px; }
.meta { color: #888; font-size: 0.85em; text-align: center; margin-top: 20px; }
</style>
</head>
<body>
<div class="header">
  <h1>{{upper (printf "%s" .Decision.Signal)}}</h1>
  <div class="confidence">Confidence: {{percent .Decision.Confidence}}</div>
  <p>{{.Decision.Ticker}}</p>
</div>

<h2>Analyst Reports</h2>
{{range $role, $report := .Decision.AnalystReports}}
<div class="card">
  <h3>{{upper (printf "%s" $role)}}</h3>
  <span class="badge" style="background:{{color $report.Signal}}">{{upper (printf "%s" $report.Signal)}}</span>
  <span>Confidence: {{percent $report.Confidence}}</span>
  <p>{{truncate $report.Rationale 500}}</p>
</div>
{{end}}

<h2>Trader Summary</h2>
<div class="card"><p>{{truncate .Decision.TraderSummary 800}}</p></div>

<h2>Bull vs Bear Debate</h2>
{{if .Decision.DebateRounds}}
{{range .Decision.DebateRounds}}
<div class="debate-round">
  <h3>Round {{.RoundNumber}}</h3>
  <div class="bull"><strong>Bull:</strong> {{truncate .Bull.Text 400}}</div>
  <div class="bear"><strong>Bear:</strong> {{truncate .Bear.Text 400}}</div>
</div>
{{end}}
{{else}}<p>No debate history.</p>{{end}}

<h2>Risk Assessment ({{upper (printf "%s" .Decision.RiskVerdict)}})</h2>
<div class="card"><p>{{truncate .Decision.RiskNote 800}}</p></div>

{{if .Decision.VerificationNote}}
<h2>Verification</h2>
<div class="card"><p>{{truncate .Decision.VerificationNote 800}}</p></div>
{{end}}

<div class="meta">
  Generated: {{.Timestamp.Format "2006-01-02 15:04:05"}} | Run ID: {{.RunID}} |
  opentrade (not financial advice)
</div>
</body></html>
`))

var screenerTemplate = template.Must(template.New("screener").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Screener Report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
       max-width: 1100px; margin: 0 auto; padding: 20px; background: #1a1a2e; color: #eee; }
h1 { color: #64b5f6; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th { background: #16213e; padding: 12px 8px; text-align: left; color: #64b5f6; }
td { padding: 10px 8px; border-bottom: 1px solid #333; }
.badge { display: inline-block; padding: 4px 10px; border-radius: 4px; color: white;
         font-weight: bold; font-size: 0.8em; }
.meta { color: #888; font-size: 0.85em; text-align: center; margin-top: 20px; }
</style>
</head>
<body>
<h1>Stock Screener Report</h1>
<p style="text-align:center; color:#aaa;">
  Watchlist: {{range $i, $t := .Watchlist}}{{if $i}}, {{end}}{{$t}}{{end}} |
  {{len .Picks}} picks ranked
</p>
<table>
<tr><th>#</th><th>Ticker</th><th>Signal</th><th>Confidence</th>
<th>Rationale</th><th>Position</th><th>Horizon</th><th>Risks</th></tr>
{{range .Picks}}
<tr>
  <td>{{.Rank}}</td>
  <td><strong>{{.Ticker}}</strong></td>
  <td><span class="badge" style="background:{{color .Signal}}">{{upper (printf "%s" .Signal)}}</span></td>
  <td>{{percent .Confidence}}</td>
  <td>{{truncate .Rationale 200}}</td>
  <td>{{printf "%.1f" .PositionSizePct}}%</td>
  <td>{{.TimeHorizon}}</td>
  <td>{{range $i, $r := .KeyRisks}}{{if $i}}, {{end}}{{$r}}{{end}}</td>
</tr>
{{end}}
</table>
<div class="meta">
  Generated: {{.Timestamp.Format "2006-01-02 15:04:05"}} | Run ID: {{.RunID}} |
  opentrade (not financial advice)
</div>
</body></html>
`))
