/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/internal/tui/components"
	"github.com/allbin/go-lever/record"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <input>",
	Short: "Print a recorded session",
	Long: `Read a file written by 'leverctl record' and print its samples, followed by
a per-port summary.

Examples:
  leverctl replay session.cbor
  leverctl replay session.cbor --pulls          # only samples with a pull
  leverctl replay session.cbor --port /dev/ttyUSB1 --summary`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pullsOnly, _ := cmd.Flags().GetBool("pulls")
		port, _ := cmd.Flags().GetString("port")
		summaryOnly, _ := cmd.Flags().GetBool("summary")

		if err := runReplay(args[0], port, pullsOnly, summaryOnly); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Bool("pulls", false, "Only print samples where a pull was detected")
	replayCmd.Flags().StringP("port", "p", "", "Only print samples from this port")
	replayCmd.Flags().BoolP("summary", "s", false, "Only print the per-port summary")
}

type portSummary struct {
	samples int
	pulls   int
	open    int
	maxPos  float64
}

func runReplay(input, port string, pullsOnly, summaryOnly bool) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	r := record.NewReader(f)
	summaries := make(map[string]*portSummary)
	var order []string
	var session uuid.UUID

	for {
		s, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		if port != "" && s.Port != port {
			continue
		}

		sum, ok := summaries[s.Port]
		if !ok {
			sum = &portSummary{}
			summaries[s.Port] = sum
			order = append(order, s.Port)
		}
		if !summaryOnly && s.Session != session {
			session = s.Session
			fmt.Printf("Session %s\n", session)
		}
		sum.samples++
		if s.Pulled {
			sum.pulls++
		}
		if s.IsOpen {
			sum.open++
		}
		if s.HasState && s.Position > sum.maxPos {
			sum.maxPos = s.Position
		}

		if summaryOnly || (pullsOnly && !s.Pulled) {
			continue
		}
		fmt.Println(formatSample(s))
	}

	if len(order) == 0 {
		fmt.Println("No samples found")
		return nil
	}

	fmt.Println("\nSummary:")
	for _, p := range order {
		sum := summaries[p]
		fmt.Printf("  %-20s %6d samples  %5.1f%% open  %3d pull(s)  max position %.2f\n",
			p, sum.samples, 100*float64(sum.open)/float64(sum.samples), sum.pulls, sum.maxPos)
	}
	return nil
}

func formatSample(s record.Sample) string {
	status := "closed"
	if s.IsOpen {
		status = "open"
	}
	line := fmt.Sprintf("%s %-8s %-16s %-6s force %-6s pot %-7s strain %-7s pos %s",
		s.Time.Format("15:04:05.000"),
		s.Handle,
		s.Port,
		status,
		components.FormatForce(s.Force, s.HasForce),
		components.FormatReading(s.State.PotentiometerReading, s.HasState),
		components.FormatReading(s.State.StrainGaugeReading, s.HasState),
		components.FormatPosition(s.Position, s.HasState, 10))
	if s.Pulled {
		line += "  PULL"
	}
	return line
}
