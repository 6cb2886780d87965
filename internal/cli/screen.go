package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opentrade/internal/models"
	"opentrade/internal/report"
	"opentrade/internal/screener"
)

func newScreenCmd(app *App) *cobra.Command {
	var (
		topFlag    int
		riskFlag   string
		exportFlag bool
	)

	cmd := &cobra.Command{
		Use:   "screen [tickers...]",
		Short: "Rank a watchlist of tickers by trading opportunity",
		Long: `Gather market data and indicators for every watchlist ticker, then rank
them with a single model call. Tickers may be passed as arguments or
comma/space separated; with no arguments the configured watchlist is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.LLM == nil {
				return fmt.Errorf("no LLM provider configured")
			}

			raw := strings.Join(args, " ")
			if raw == "" {
				raw = strings.Join(app.Config.Trading.Tickers, " ")
			}
			tickers := screener.ParseWatchlistInput(raw)
			if len(tickers) == 0 {
				return fmt.Errorf("no valid tickers provided")
			}

			risk := app.Config.Trading.RiskTolerance
			if riskFlag != "" {
				risk = riskFlag
			}

			opts := []screener.Option{
				screener.WithAnalysisPeriod(app.Config.Trading.AnalysisPeriodDays),
			}
			if !output.IsJSON() {
				opts = append(opts, screener.WithProgressFunc(func(msg string) {
					output.Dim("  %s", msg)
				}))
			}

			s := screener.New(app.LLM, app.Data, app.Logger, opts...)
			result, err := s.Screen(cmd.Context(), tickers, models.RiskTolerance(risk), topFlag)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printScreenerResult(output, result)

			if exportFlag {
				exporter := report.NewExporter("reports")
				jsonPath, err := exporter.SaveScreenerJSON(result)
				if err != nil {
					return err
				}
				htmlPath, err := exporter.SaveScreenerHTML(result)
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

	cmd.Flags().IntVar(&topFlag, "top", 10, "number of top picks to keep")
	cmd.Flags().StringVarP(&riskFlag, "risk", "r", "", "risk tolerance (conservative/moderate/aggressive)")
	cmd.Flags().BoolVarP(&exportFlag, "export", "e", false, "export JSON + HTML report to reports/")

	return cmd
}

func printScreenerResult(output *Output, result *screener.Result) {
	for _, msg := range result.Errors {
		output.Warning("Warning: %s", msg)
	}
	if len(result.Picks) == 0 {
		output.Error("No picks available.")
		return
	}

	output.Println()
	output.Bold("Screener Results - Top Picks")
	table := NewTable(output, "#", "Ticker", "Signal", "Confidence", "Rationale", "Position", "Horizon", "Risks")
	for _, pick := range result.Picks {
		risks := "N/A"
		if len(pick.KeyRisks) > 0 {
			keep := pick.KeyRisks
			if len(keep) > 3 {
				keep = keep[:3]
			}
			risks = strings.Join(keep, ", ")
		}
		horizon := pick.TimeHorizon
		if horizon == "" {
			horizon = "N/A"
		}
		table.AddRow(
			fmt.Sprintf("%d", pick.Rank),
			pick.Ticker,
			output.Signal(pick.Signal),
			FormatConfidence(pick.Confidence),
			truncate(pick.Rationale, 80),
			fmt.Sprintf("%.1f%%", pick.PositionSizePct),
			horizon,
			risks,
		)
	}
	table.Render()
}
