package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"opentrade/internal/models"
	"opentrade/internal/store"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		tickerFlag string
		signalFlag string
		limitFlag  int
	)

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Browse saved trading decisions",
		Long:  "List saved decisions, or show one decision in full by its ID.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("decision store unavailable")
			}

			if len(args) == 1 {
				record, err := app.Store.GetDecision(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output.IsJSON() {
					return output.JSON(record)
				}
				output.Dim("Decision %s, saved %s", record.ID, record.CreatedAt.Format("2006-01-02 15:04"))
				printDecision(output, record.Decision)
				return nil
			}

			records, err := app.Store.ListDecisions(cmd.Context(), store.DecisionFilter{
				Ticker: strings.ToUpper(tickerFlag),
				Signal: models.Signal(strings.ToLower(signalFlag)),
				Limit:  limitFlag,
			})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Println("No saved decisions.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Ticker", "Signal", "Confidence", "Verdict")
			for _, record := range records {
				d := record.Decision
				table.AddRow(
					record.ID,
					d.Date.Format("2006-01-02"),
					d.Ticker,
					output.Signal(d.Signal),
					FormatConfidence(d.Confidence),
					output.Verdict(d.RiskVerdict),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&tickerFlag, "ticker", "t", "", "filter by ticker")
	cmd.Flags().StringVarP(&signalFlag, "signal", "s", "", "filter by signal (bullish/bearish/neutral)")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "maximum records to list")

	return cmd
}
