/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/allbin/go-ftdx"
)

// readCmd represents the read command
var readCmd = &cobra.Command{
	Use:   "read <device>",
	Short: "Read an exact number of bytes from a device",
	Long: `Read exactly --count bytes from a device and write them to stdout
(or --output). The read accumulates data until the requested count is
reached; if the timeout expires first the command fails and nothing is
written.

A timeout of 0 takes a single look at whatever is already buffered and
fails if the full count isn't there. A negative timeout waits forever
(interrupt with Ctrl-C).

Examples:
  ftdx read 0 --count 64
  ftdx read FT1234XY -c 16 --timeout 500ms --hex
  ftdx read 0 -c 1024 --timeout -1s --output dump.bin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		count, _ := cmd.Flags().GetInt("count")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		hexOut, _ := cmd.Flags().GetBool("hex")
		output, _ := cmd.Flags().GetString("output")

		if count <= 0 {
			exitErr("Error: --count must be positive")
		}

		session, err := newSession(ftdx.WithReadTimeout(timeout))
		if err != nil {
			exitErr("Error: %v", err)
		}

		if err := openTarget(session, args[0]); err != nil {
			exitErr("Error opening device: %v", err)
		}
		defer session.Close()

		// Ctrl-C cancels an infinite or long read cleanly
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		buf := make([]byte, count)
		n, err := session.ReadContext(ctx, buf)
		if err != nil {
			if errors.Is(err, ftdx.ErrReadTimeout) {
				exitErr("Error: timed out with %d of %d bytes", n, count)
			}
			exitErr("Error reading: %v", err)
		}

		data := buf[:n]
		if hexOut {
			data = []byte(hex.EncodeToString(data) + "\n")
		}

		if output != "" {
			if err := os.WriteFile(output, data, 0o644); err != nil {
				exitErr("Error writing %s: %v", output, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", n, output)
			return
		}

		os.Stdout.Write(data)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().IntP("count", "c", 1, "Exact number of bytes to read")
	readCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Read timeout (0 = probe once, negative = wait forever)")
	readCmd.Flags().BoolP("hex", "x", false, "Print data as hexadecimal instead of raw bytes")
	readCmd.Flags().StringP("output", "o", "", "Write data to file instead of stdout")
}
