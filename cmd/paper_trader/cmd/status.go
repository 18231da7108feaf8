package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the latest persisted snapshot",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.cleanup()

	if err := a.engine.Restore(context.Background()); err != nil {
		return err
	}

	pf := a.engine.Portfolio()
	if pf.TradeCount() == 0 && pf.Ledger().Len() == 0 {
		fmt.Println("No snapshot found; nothing traded yet.")
		return nil
	}

	fmt.Printf("Portfolio (cash $%s):\n", pf.Cash.StringFixed(2))
	for _, symbol := range pf.Ledger().Symbols() {
		pos, _ := pf.Ledger().Get(symbol)
		fmt.Printf("  %-6s %5d @ $%s (last $%s, pnl $%s)\n",
			symbol, pos.Quantity, pos.EntryPrice.StringFixed(2),
			pos.CurrentPrice.StringFixed(2), pos.UnrealizedPnL.StringFixed(2))
	}

	trades := pf.RecentTrades(10)
	if len(trades) > 0 {
		fmt.Println("Recent trades (newest first):")
		for _, t := range trades {
			line := fmt.Sprintf("  %s  %-4s %5d %-6s @ $%s",
				t.Timestamp.Format("2006-01-02 15:04:05"), t.Action, t.Quantity, t.Symbol, t.Price.StringFixed(2))
			if t.Profit != nil {
				line += fmt.Sprintf("  profit $%s", t.Profit.StringFixed(2))
			}
			fmt.Println(line)
		}
	}
	return nil
}
