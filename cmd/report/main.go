package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"swingTraderBot/config"
	"swingTraderBot/internal/adapters/logger"
	"swingTraderBot/internal/adapters/sqlite"
	"swingTraderBot/internal/report"
)

var periodFlag string

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize realized profit from the transaction log",
	Long: `Reads the transaction log from the bot's database and prints the
closed trades and total realized profit for the requested period.

Periods: day, week, month, year, month_start, year_start, all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := report.ParsePeriod(periodFlag)
		if err != nil {
			return err
		}

		// Reporting must work without broker credentials; only the
		// database location is needed.
		cfg, err := config.LoadStorageConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger := logger.NewStdLogger(cfg.LogLevel)

		repo, err := sqlite.NewRepository(sqlite.Config{
			DBPath: cfg.DBPath,
			Logger: appLogger,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer repo.Close()

		gen, err := report.NewGenerator(repo, appLogger)
		if err != nil {
			return err
		}
		rep, err := gen.Generate(context.Background(), period, time.Now())
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if len(rep.Records) == 0 {
			fmt.Printf("No closed trades for period %q.\n", rep.Period)
			return nil
		}

		fmt.Printf("Closed trades (%s):\n", rep.Period)
		for _, rec := range rep.Records {
			fmt.Printf("  %s  %-8s  %4d lots at %10.2f  %+7.2f%%\n",
				rec.Timestamp.Format("2006-01-02 15:04"), rec.Symbol, rec.Quantity, rec.Price, rec.ProfitPct)
		}
		fmt.Printf("\nTotal realized profit: %+.2f%%\n", rep.TotalProfitPct)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&periodFlag, "period", "p", string(report.PeriodDay), "report period (day|week|month|year|month_start|year_start|all)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
