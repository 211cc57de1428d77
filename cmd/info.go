/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <device>",
	Short: "Display detailed information about a device",
	Long: `Display detailed information about a connected device: chip identity,
USB vendor/product IDs, the active session configuration and current
queue levels.

The device argument is an enumeration index or a serial number.

Examples:
  ftdx info 0
  ftdx info FT1234XY`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			exitErr("Error: %v", err)
		}

		if err := openTarget(session, args[0]); err != nil {
			exitErr("Error opening device: %v", err)
		}
		defer session.Close()

		fmt.Printf("Device Information: %s\n\n", args[0])

		if chip, err := session.ChipInfo(); err == nil {
			fmt.Printf("  Chip:       %s\n", orUnknown(chip.Type))
			if chip.VendorID != 0 || chip.ProductID != 0 {
				fmt.Printf("  Vendor ID:  %04x\n", chip.VendorID)
				fmt.Printf("  Product ID: %04x\n", chip.ProductID)
			}
		} else {
			fmt.Printf("  Chip:       unavailable (%v)\n", err)
		}

		config := session.Config()
		fmt.Println("\nSession Configuration:")
		fmt.Printf("  Baud rate:  %d\n", config.BaudRate)
		fmt.Printf("  Framing:    %d%s%d\n", config.DataBits, strings.ToUpper(config.Parity.String()[:1]), config.StopBits)

		if rx, tx, err := session.QueueStatus(); err == nil {
			fmt.Println("\nQueue Status:")
			fmt.Printf("  RX pending: %d bytes\n", rx)
			fmt.Printf("  TX pending: %d bytes\n", tx)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
