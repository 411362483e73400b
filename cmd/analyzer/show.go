package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/core"
	"github.com/ever-flow/BTC-ETH-ma-dashboard/internal/logger"
)

var showHistory int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest persisted analysis snapshot",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().IntVar(&showHistory, "history", 0, "also list the N most recent runs")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("creating snapshot store: %w", err)
	}
	defer closeStore()

	snap, err := store.Latest(ctx)
	if err != nil {
		return fmt.Errorf("loading latest snapshot: %w", err)
	}

	fmt.Printf("Run %s  generated %s  (engine %s, config %s)\n",
		snap.RunID,
		snap.Generated.Format("2006-01-02 15:04:05 MST"),
		snap.Version,
		snap.ConfigHash)
	fmt.Printf("Data: %s .. %s  BTC %d closes, ETH %d closes\n\n",
		snap.StartDate.Format("2006-01-02"),
		snap.EndDate.Format("2006-01-02"),
		snap.DataPoints[core.AssetBTC],
		snap.DataPoints[core.AssetETH])

	printStrategyTable(os.Stdout, snap)

	if showHistory > 0 {
		snaps, err := store.History(ctx, showHistory)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		fmt.Println("\nRecent runs:")
		for _, s := range snaps {
			fmt.Printf("  %s  %s\n", s.Generated.Format("2006-01-02 15:04:05"), s.RunID)
		}
	}
	return nil
}

func printStrategyTable(w io.Writer, snap *core.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STRATEGY\tWINDOW\tCAGR\tMDD\tSHARPE\tSORTINO\tSCORE\tSIGNAL\tSTRENGTH\tHELD")
	for _, r := range snap.Strategies {
		if r.Unavailable {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\tunavailable: %s\t-\t-\n",
				r.Strategy, r.UnavailReason)
			continue
		}
		signal := string(r.Signal.Position)
		if r.Signal.IsNew {
			signal += " (new)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\t%.1f%%\t%.2f\t%.2f\t%.3f\t%s\t%.2f\t%dd\n",
			r.Strategy,
			windowLabel(r),
			r.Metrics.CAGR*100,
			r.Metrics.MaxDrawdown*100,
			r.Metrics.Sharpe,
			r.Metrics.Sortino,
			r.Score,
			signal,
			r.Signal.Strength,
			r.Signal.Duration)
	}
	tw.Flush()
}

func windowLabel(r core.StrategyResult) string {
	if len(r.LegWindows) > 0 {
		return fmt.Sprintf("%d/%d", r.LegWindows[core.AssetBTC], r.LegWindows[core.AssetETH])
	}
	return fmt.Sprintf("%d", r.Window)
}
