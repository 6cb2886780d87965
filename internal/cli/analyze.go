package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"opentrade/internal/models"
	"opentrade/internal/pipeline"
	"opentrade/internal/report"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var (
		dateFlag    string
		riskFlag    string
		roundsFlag  int
		workersFlag int
		exportFlag  bool
		noSaveFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <ticker>",
		Short: "Run the multi-agent analysis pipeline for one ticker",
		Long: `Run the full pipeline for a ticker: market data fetch, four parallel
analysts, bull/bear debate, trader synthesis, risk gate, and verification.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.LLM == nil {
				return fmt.Errorf("no LLM provider configured")
			}

			ticker := args[0]
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}

			risk := app.Config.Trading.RiskTolerance
			if riskFlag != "" {
				risk = riskFlag
			}
			rounds := app.Config.Trading.MaxDebateRounds
			if roundsFlag > 0 {
				rounds = roundsFlag
			}
			workers := app.Config.Trading.MaxParallelAgents
			if workersFlag > 0 {
				workers = workersFlag
			}

			if !output.IsJSON() {
				output.Bold("Analyzing %s...", ticker)
				output.Dim("Provider: %s | Model: %s | Risk: %s",
					app.Config.LLM.Provider, app.Config.LLM.Model, risk)
				output.Println()
			}

			opts := []pipeline.Option{
				pipeline.WithAnalysisPeriod(app.Config.Trading.AnalysisPeriodDays),
			}
			if !output.IsJSON() {
				opts = append(opts, pipeline.WithStepFunc(stepPrinter(output)))
			}

			engine := pipeline.NewEngine(app.LLM, app.Data, app.Logger, opts...)
			decision, err := engine.Run(cmd.Context(), pipeline.RunRequest{
				Ticker:            ticker,
				Date:              date,
				RiskTolerance:     models.RiskTolerance(risk),
				MaxDebateRounds:   rounds,
				MaxParallelAgents: workers,
			})
			if err != nil {
				return err
			}

			if app.Store != nil && !noSaveFlag {
				if id, err := app.Store.SaveDecision(cmd.Context(), decision); err != nil {
					app.Logger.Warn().Err(err).Msg("failed to save decision")
				} else if !output.IsJSON() {
					output.Dim("Saved decision %s", id)
				}
			}

			if output.IsJSON() {
				return output.JSON(decision)
			}
			printDecision(output, decision)

			if exportFlag {
				exporter := report.NewExporter("reports")
				jsonPath, err := exporter.SaveJSON(decision)
				if err != nil {
					return err
				}
				htmlPath, err := exporter.SaveHTML(decision)
				if err != nil {
					return err
				}
				output.Success("Report exported:")
				output.Printf("  JSON: %s\n", jsonPath)
				output.Printf("  HTML: %s\n", htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "analysis date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVarP(&riskFlag, "risk", "r", "", "risk tolerance (conservative/moderate/aggressive)")
	cmd.Flags().IntVar(&roundsFlag, "rounds", 0, "max debate rounds (1-5)")
	cmd.Flags().IntVar(&workersFlag, "parallel", 0, "max parallel analysts (1-4)")
	cmd.Flags().BoolVarP(&exportFlag, "export", "e", false, "export JSON + HTML report to reports/")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "skip writing the decision to history")

	return cmd
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return date, nil
}

// stepPrinter renders pipeline progress events as they arrive.
func stepPrinter(output *Output) models.StepFunc {
	return func(event models.StepEvent) {
		switch event.Status {
		case models.StepPending:
			output.Printf("  %s...\n", event.Stage)
		case models.StepCompleted:
			if signal, ok := event.Detail["signal"]; ok {
				output.Success("  %s - done (%s, confidence %s)", event.Stage, signal, event.Detail["confidence"])
			} else {
				output.Success("  %s - done", event.Stage)
			}
		case models.StepError:
			output.Warning("  %s - degraded: %s", event.Stage, event.Err)
		}
	}
}

func printDecision(output *Output, decision *models.TradingDecision) {
	output.Println()
	output.Bold("============================================================")
	output.Printf("Final Decision for %s: %s\n", decision.Ticker, output.Signal(decision.Signal))
	output.Printf("Confidence: %s | Risk Verdict: %s\n",
		FormatConfidence(decision.Confidence), output.Verdict(decision.RiskVerdict))
	output.Bold("============================================================")
	output.Println()

	table := NewTable(output, "Agent", "Signal", "Confidence")
	for _, role := range models.AnalystRoles {
		if r, ok := decision.AnalystReports[role]; ok {
			table.AddRow(string(role), output.Signal(r.Signal), FormatConfidence(r.Confidence))
		}
	}
	table.Render()
	output.Println()

	output.Printf("Debate: %d round(s), %s\n", len(decision.DebateRounds), decision.DebateOutcome)
	output.Println()

	if decision.TraderSummary != "" {
		output.Bold("Trader Analysis")
		output.Println(truncate(decision.TraderSummary, 800))
		output.Println()
	}
	if decision.RiskNote != "" {
		output.Bold("Risk Assessment")
		output.Println(truncate(decision.RiskNote, 800))
		output.Println()
	}
	if decision.VerificationNote != "" {
		output.Bold("Verification")
		output.Println(truncate(decision.VerificationNote, 800))
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
