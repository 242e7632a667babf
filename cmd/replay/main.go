// Package main provides a CLI for replaying trade history under hypothetical
// position sizing.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/database"
	"github.com/yourusername/dca-analytics/internal/replay"
	"github.com/yourusername/dca-analytics/internal/repository"
)

var (
	configFile  string
	equity      float64
	tradePct    float64
	compounding bool
	days        int
	fromDate    string
	toDate      string
	showTrades  bool

	cfg   *config.Config
	db    *database.DB
	repos *repository.Repositories
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Flags().Float64Var(&equity, "equity", 0, "Starting equity (defaults from config)")
	rootCmd.Flags().Float64Var(&tradePct, "trade-pct", 0, "Percent of equity per trade (defaults from config)")
	rootCmd.Flags().BoolVar(&compounding, "compounding", true, "Compound equity between trades")
	rootCmd.Flags().IntVar(&days, "days", 0, "Only replay trades closed in the last N days")
	rootCmd.Flags().StringVar(&fromDate, "from", "", "Only replay trades closed on or after this date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&toDate, "to", "", "Only replay trades closed on or before this date (YYYY-MM-DD)")
	rootCmd.Flags().BoolVar(&showTrades, "trades", false, "Print the per-trade breakdown")
}

var rootCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay the closed trade history under hypothetical settings",
	Long:  `Replays every closed trade chronologically with a different starting equity and position size, reporting final equity, total return and maximum drawdown.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer db.Close()
		return runReplay()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runReplay() error {
	settings := replay.Settings{
		Equity:      cfg.Replay.DefaultEquity,
		TradePct:    cfg.Replay.DefaultTradePct,
		Compounding: compounding,
	}
	if equity > 0 {
		settings.Equity = equity
	}
	if tradePct > 0 {
		settings.TradePct = tradePct
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	filter := repository.TradeFilter{Days: days}
	if t, err := parseDate(fromDate); err != nil {
		return err
	} else if t != nil {
		filter.From = t
	}
	if t, err := parseDate(toDate); err != nil {
		return err
	} else if t != nil {
		filter.To = t
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trades, err := repos.Trade.ListClosed(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}

	sim := replay.NewSimulator(cfg.Replay.FallbackTradePct)
	summary := sim.Run(trades, settings)

	fmt.Printf("Replayed %d trades\n\n", len(summary.Results))
	fmt.Printf("  Starting equity:  %12.2f\n", settings.Equity)
	fmt.Printf("  Final equity:     %12.2f\n", summary.FinalEquity)
	fmt.Printf("  Total PnL:        %12.2f\n", summary.TotalPnL)
	fmt.Printf("  Total return:     %11.2f%%\n", summary.TotalReturnPct)
	fmt.Printf("  Max drawdown:     %12.2f (%.2f%%)\n", summary.MaxDrawdown, summary.MaxDrawdownPct)

	if showTrades {
		fmt.Println()
		for _, result := range summary.Results {
			fmt.Printf("  %-24s pnl=%10.2f (%6.2f%%) equity=%12.2f\n",
				result.TradeID, result.PnL, result.PnLPct, result.Equity)
		}
	}

	return nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}
