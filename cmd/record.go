/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/internal/tui/components"
	"github.com/allbin/go-lever/internal/tui/models"
	"github.com/allbin/go-lever/record"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record <output>",
	Short: "Record lever telemetry to a file",
	Long: `Open every configured lever and write one sample per lever per control tick
to <output> until --duration elapses or Ctrl+C is pressed. Connection and pull
events are printed while recording.

Samples are CBOR encoded and carry a session id; use 'leverctl replay' to
read them back.

Examples:
  leverctl record session.cbor --duration 30s
  leverctl --simulate record sim.cbor`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		duration, _ := cmd.Flags().GetDuration("duration")
		quiet, _ := cmd.Flags().GetBool("quiet")

		if err := runRecord(args[0], duration, quiet); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().DurationP("duration", "d", 0, "Stop after this long (0 records until interrupted)")
	recordCmd.Flags().BoolP("quiet", "q", false, "Do not print events while recording")
}

func runRecord(output string, duration time.Duration, quiet bool) error {
	cfg, log, done := setup(os.Stderr)
	defer done()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	w := record.NewWriter(f)
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	rig, err := startRig(cfg, log, cfg.Ports())
	if err != nil {
		return err
	}
	defer rig.stop()

	lm, err := models.NewLeverModel(rig.sys, rig.handles, cfg.Levers, cfg.Pull, device.MaxForce)
	if err != nil {
		return err
	}
	lm.SetRecorder(w)
	lm.Start()

	log.Info("recording", slog.String("output", output), slog.String("session", w.Session().String()))
	fmt.Printf("Recording %d lever(s) to %s (Ctrl+C to stop)\n", lm.Len(), output)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nRecorded %d samples, session %s\n", w.Count(), w.Session())
			for _, row := range lm.Rows() {
				fmt.Printf("  %-20s %d pull(s)\n", row.Port, row.Pulls)
			}
			return nil
		case now := <-ticker.C:
			events, err := lm.Tick(now)
			if err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
			if quiet {
				continue
			}
			for _, e := range events {
				fmt.Println(components.FormatEvent(e))
			}
		}
	}
}
