/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	lever "github.com/allbin/go-lever"
	"github.com/allbin/go-lever/device"
)

var (
	errOpenFailed       = errors.New("could not open lever")
	errForceUnconfirmed = errors.New("force not confirmed")
)

// forceCmd represents the force command
var forceCmd = &cobra.Command{
	Use:   "force <port> <grams>",
	Short: "Command a force on a single lever",
	Long: fmt.Sprintf(`Open the lever on <port>, command <grams> of force and wait until the
lever confirms it. Forces range from 0 to %d grams.

With --hold the lever stays connected and its readings are printed every
--interval until interrupted with Ctrl+C.

Examples:
  leverctl force /dev/ttyUSB0 250
  leverctl force /dev/ttyUSB0 400 --hold --interval 500ms
  leverctl --simulate force sim0 300`, device.MaxForce),
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		grams, err := strconv.Atoi(args[1])
		if err != nil || grams < 0 || grams > device.MaxForce {
			fmt.Fprintf(os.Stderr, "Error: force must be a whole number of grams between 0 and %d\n", device.MaxForce)
			os.Exit(1)
		}
		wait, _ := cmd.Flags().GetDuration("wait")
		hold, _ := cmd.Flags().GetBool("hold")
		interval, _ := cmd.Flags().GetDuration("interval")

		if err := runForce(args[0], grams, wait, hold, interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(forceCmd)

	forceCmd.Flags().DurationP("wait", "w", 3*time.Second, "How long to wait for the lever to confirm the force")
	forceCmd.Flags().Bool("hold", false, "Keep the lever connected and print readings until interrupted")
	forceCmd.Flags().Duration("interval", time.Second, "How often readings are printed with --hold")
}

func runForce(port string, grams int, wait time.Duration, hold bool, interval time.Duration) error {
	cfg, log, done := setup(os.Stderr)
	defer done()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rig, err := startRig(cfg, log, []string{port})
	if err != nil {
		return err
	}
	defer rig.stop()

	h := rig.handles[0]
	rig.sys.SetForce(h, grams)
	rig.sys.OpenConnection(h, port)

	if err := awaitForce(ctx, rig.sys, h, grams, cfg.PollInterval, wait); err != nil {
		return err
	}
	printReading(rig.sys, h, port)

	if !hold {
		return nil
	}

	log.Info("holding force", slog.String("port", port), slog.Int("grams", grams))
	control := time.NewTicker(cfg.PollInterval)
	defer control.Stop()
	report := time.NewTicker(interval)
	defer report.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-control.C:
			rig.sys.Update()
			if !rig.sys.IsOpen(h) && !rig.sys.IsPendingOpen(h) {
				return fmt.Errorf("%s: connection lost", port)
			}
		case <-report.C:
			printReading(rig.sys, h, port)
		}
	}
}

// awaitForce ticks the system until the lever confirms grams, the open
// fails or wait elapses.
func awaitForce(ctx context.Context, sys *lever.System, h lever.Handle, grams int, poll, wait time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	timeout := time.After(wait)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			if !sys.IsOpen(h) {
				return fmt.Errorf("%w within %v", errOpenFailed, wait)
			}
			return fmt.Errorf("%w within %v", errForceUnconfirmed, wait)
		case <-ticker.C:
			sys.Update()
			if !sys.IsPendingOpen(h) && !sys.IsOpen(h) {
				return errOpenFailed
			}
			if f, ok := sys.CanonicalForce(h); ok && f == grams {
				return nil
			}
		}
	}
}

func printReading(sys *lever.System, h lever.Handle, port string) {
	force, _ := sys.CanonicalForce(h)
	state, ok := sys.State(h)
	if !ok {
		fmt.Printf("%s: force %d g\n", port, force)
		return
	}
	fmt.Printf("%s: force %d g  potentiometer %.0f  strain %.1f\n",
		port, force, state.PotentiometerReading, state.StrainGaugeReading)
}
