package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cycleResume bool

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single trading cycle and exit",
	Long: `Run one full pass over the tracked symbols: fetch predictions, execute
trades, value the portfolio and persist a snapshot. With --resume the
portfolio is restored from the latest snapshot first; otherwise the run
starts from fresh capital.`,
	RunE: runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
	cycleCmd.Flags().BoolVar(&cycleResume, "resume", true, "restore portfolio from the latest snapshot before running")
}

func runCycle(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.cleanup()

	ctx := context.Background()
	if cycleResume {
		if err := a.engine.Restore(ctx); err != nil {
			return err
		}
	}

	if err := a.engine.RunCycle(ctx); err != nil {
		return err
	}

	fmt.Println("Trading cycle completed.")
	printSummary(a)
	return nil
}
