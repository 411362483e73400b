package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Moving average window optimizer for BTC/ETH portfolios",
	Long: `analyzer backtests moving average crossover strategies on BTC and ETH,
picks the best-scoring window per asset, and emits portfolio-level buy/sell
signals for four strategies: BTC only, ETH only, 50:50 and 60:40 rebalanced.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
