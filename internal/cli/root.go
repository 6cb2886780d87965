// Package cli provides the command-line interface for the analysis engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"opentrade/internal/config"
	"opentrade/internal/dataflows"
	"opentrade/internal/llm"
	"opentrade/internal/logging"
	"opentrade/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-07-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	LLM    llm.Client
	Data   *dataflows.Provider
	Store  store.DecisionStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		logger.Warn().Err(err).Msg("LLM client unavailable, analysis commands will fail")
	} else {
		app.LLM = client
		logger.Debug().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.Model).Msg("LLM client initialized")
	}

	app.Data = dataflows.NewProvider(cfg.DataSources, logger)

	decisionStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, decision history unavailable")
	} else {
		app.Store = decisionStore
		logger.Debug().Str("path", cfg.Store.Path).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "opentrade",
		Short: "opentrade - multi-agent trading research CLI",
		Long: `opentrade runs a multi-agent analysis pipeline over market data:
four parallel analysts, a bull/bear research debate, trader synthesis,
a risk gate, and a verification pass produce one trading decision.

Use 'opentrade help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/opentrade)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newScreenCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("opentrade v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("LLM")
	output.Printf("  Provider:    %s\n", cfg.LLM.Provider)
	output.Printf("  Model:       %s\n", cfg.LLM.Model)
	output.Printf("  Temperature: %.2f\n", cfg.LLM.Temperature)
	output.Println()

	output.Bold("Trading")
	output.Printf("  Risk Tolerance:      %s\n", cfg.Trading.RiskTolerance)
	output.Printf("  Max Debate Rounds:   %d\n", cfg.Trading.MaxDebateRounds)
	output.Printf("  Max Parallel Agents: %d\n", cfg.Trading.MaxParallelAgents)
	output.Printf("  Analysis Period:     %d days\n", cfg.Trading.AnalysisPeriodDays)
	output.Println()

	output.Bold("Data Sources")
	output.Printf("  Google News:   %v\n", cfg.DataSources.EnableGoogleNews)
	output.Printf("  SEC EDGAR:     %v\n", cfg.DataSources.EnableSECEdgar)
	output.Printf("  Google Trends: %v\n", cfg.DataSources.EnableGoogleTrends)
	output.Println()

	output.Bold("Store")
	output.Printf("  Path: %s\n", cfg.Store.Path)
}
