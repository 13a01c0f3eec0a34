/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/allbin/go-lever/ports"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata.

Examples:
  leverctl info /dev/ttyUSB0
  leverctl info /dev/ttyACM0

For USB devices this shows vendor and product IDs, the serial number and the
bus address used by 'leverctl reset'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := ports.Lookup(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		fmt.Printf("  Name:        %s\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)

		if !info.IsUSB {
			return
		}

		fmt.Println("\nUSB Device Information:")
		printField("Vendor ID", info.VendorID)
		printField("Product ID", info.ProductID)
		printField("Serial", info.SerialNumber)
		printField("Product", info.Product)
		printField("Bus", info.BusNumber)
		printField("Device", info.DeviceNumber)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printField(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("  %-13s %s\n", label+":", value)
}
