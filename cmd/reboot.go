/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/device"
	"github.com/allbin/go-lever/serialport"
)

// rebootCmd represents the reboot command
var rebootCmd = &cobra.Command{
	Use:   "reboot <port>",
	Short: "Restart a lever's controller by pulsing DTR",
	Long: `Drop the DTR (Data Terminal Ready) signal for --pulse and raise it again.
Lever controllers with auto-reset wiring restart on the falling edge.

After --boot the lever is probed with a state request to confirm that it is
answering again. Unlike 'leverctl reset' this needs no USB permissions and
keeps the port path.

Examples:
  leverctl reboot /dev/ttyUSB0
  leverctl reboot /dev/ttyACM0 --pulse 250ms --boot 3s`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		pulse, _ := cmd.Flags().GetDuration("pulse")
		boot, _ := cmd.Flags().GetDuration("boot")

		port, err := serialport.Open(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Pulsing DTR on %s for %v\n", portPath, pulse)
		if err := pulseDTR(port, pulse); err != nil {
			port.Close()
			fmt.Fprintf(os.Stderr, "Error setting DTR: %v\n", err)
			os.Exit(1)
		}
		port.Close()

		if boot <= 0 {
			return
		}
		time.Sleep(boot)

		cfg, _, done := setup(os.Stderr)
		defer done()
		conn, err := device.NewTransport(0, 0).OpenConn(portPath, cfg.Serial.BaudRate, cfg.Serial.Timeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reopening port: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		state, err := conn.ReadState()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Lever did not answer after reboot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Lever answering: potentiometer %.0f strain %.1f\n",
			state.PotentiometerReading, state.StrainGaugeReading)
	},
}

func init() {
	rootCmd.AddCommand(rebootCmd)

	rebootCmd.Flags().Duration("pulse", 100*time.Millisecond, "How long DTR is held low")
	rebootCmd.Flags().Duration("boot", 2*time.Second, "How long to wait before probing the lever (0 skips the probe)")
}

// pulseDTR holds DTR low for d and raises it again.
func pulseDTR(port serialport.Port, d time.Duration) error {
	if err := port.SetDTR(false); err != nil {
		return err
	}
	time.Sleep(d)
	return port.SetDTR(true)
}
