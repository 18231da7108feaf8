package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run trading cycles on a schedule until interrupted",
	Long: `Run a cycle immediately, then repeat on the configured poll interval
(TRADER_POLL_INTERVAL_MINS). SIGINT/SIGTERM stop the loop after the
in-flight cycle finishes; a cycle is never interrupted mid-trade.`,
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runLoop(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("Shutdown signal received, stopping after current cycle")
		cancel()
	}()

	if err := a.engine.Restore(ctx); err != nil {
		return err
	}

	interval := time.Duration(a.cfg.PollIntervalMins) * time.Minute
	log.Printf("Polling every %s over %d symbols", interval, len(a.profile.Symbols))

	if err := a.engine.RunCycle(ctx); err != nil {
		log.Printf("WARNING: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Run loop stopped")
			return nil
		case <-ticker.C:
			if err := a.engine.RunCycle(ctx); err != nil {
				// Snapshot persistence failed; state is intact in memory,
				// so keep cycling and let the next persist catch up.
				log.Printf("WARNING: %v", err)
			}
		}
	}
}
