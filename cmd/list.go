/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/ports"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports levers can be attached to",
	Long: `List the serial ports present on the system.

Levers usually show up as USB serial adapters (ttyUSB*) or USB CDC/ACM
devices (ttyACM*). Standard (ttyS*) and ARM board ports (ttyAMA* and
friends) are listed too. Virtual terminals and pseudo-terminals are not.`,
	Run: func(cmd *cobra.Command, args []string) {
		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		kind, err := ports.ParseKind(filterType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		infos, err := ports.List()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		infos = ports.Filter(infos, kind)
		if len(infos) == 0 {
			if kind != ports.KindAll {
				fmt.Printf("No serial ports found matching filter: %s\n", kind)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderTable(infos)
		} else {
			renderSimple(infos)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// renderTable renders the port list in a styled static table format
func renderTable(infos []ports.Info) {
	fmt.Printf("Found %d serial port(s):\n\n", len(infos))

	portWidth := 15
	descWidth := 22
	idWidth := 11

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240")).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	header := fmt.Sprintf("%-*s %-*s %-*s %s",
		portWidth, "Port",
		descWidth, "Type",
		idWidth, "VID:PID",
		"Serial")
	fmt.Println(headerStyle.Render(header))

	for _, info := range infos {
		id := "-"
		if info.IsUSB {
			id = info.VendorID + ":" + info.ProductID
		}
		serialNumber := info.SerialNumber
		if serialNumber == "" {
			serialNumber = "-"
		}
		row := fmt.Sprintf("%-*s %-*s %-*s %s",
			portWidth, info.Name,
			descWidth, info.Description,
			idWidth, id,
			serialNumber)
		fmt.Println(cellStyle.Render(row))
	}
}

// renderSimple renders the port list in simple text format
func renderSimple(infos []ports.Info) {
	for _, info := range infos {
		fmt.Println(info.Path)
	}
}
