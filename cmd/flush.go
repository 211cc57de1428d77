/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// flushCmd represents the flush command
var flushCmd = &cobra.Command{
	Use:   "flush <device>",
	Short: "Discard buffered device data",
	Long: `Discard data buffered for a device. By default both the receive and
transmit buffers are flushed; use --rx or --tx to flush only one side.

Examples:
  ftdx flush 0
  ftdx flush FT1234XY --rx`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rx, _ := cmd.Flags().GetBool("rx")
		tx, _ := cmd.Flags().GetBool("tx")
		if !rx && !tx {
			rx, tx = true, true
		}

		session, err := newSession()
		if err != nil {
			exitErr("Error: %v", err)
		}

		if err := openTarget(session, args[0]); err != nil {
			exitErr("Error opening device: %v", err)
		}
		defer session.Close()

		if rx {
			if err := session.FlushInput(); err != nil {
				exitErr("Error flushing receive buffer: %v", err)
			}
			fmt.Println("Receive buffer flushed")
		}
		if tx {
			if err := session.FlushOutput(); err != nil {
				exitErr("Error flushing transmit buffer: %v", err)
			}
			fmt.Println("Transmit buffer flushed")
		}
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)

	flushCmd.Flags().Bool("rx", false, "Flush only the receive buffer")
	flushCmd.Flags().Bool("tx", false, "Flush only the transmit buffer")
}
