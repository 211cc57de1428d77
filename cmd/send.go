/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <device>",
	Short: "Send data to a device",
	Long: `Send data to a device. Data can be provided as:
- Command line argument: ftdx send "Hello World" 0
- From stdin (pipe): echo "test data" | ftdx send 0
- Interactive mode: ftdx send 0 (prompts for input)

The device argument is an enumeration index or a serial number.

The write is handed to the device exactly once. If the device accepts
fewer bytes than requested, the accepted count is reported and nothing
is retried.

Example usage:
  ftdx send "AT+GMR" 0 --newline
  ftdx send "48656c6c6f" FT1234XY --hex
  echo "test" | ftdx send 0`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var target string

		// Parse arguments: either "send data device" or "send device"
		if len(args) == 1 {
			target = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					exitErr("Error reading from stdin: %v", err)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			target = args[1]
		}

		hexMode, _ := cmd.Flags().GetBool("hex")
		addNewline, _ := cmd.Flags().GetBool("newline")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		payload := []byte(data)
		if hexMode {
			decoded, err := decodeHexString(data)
			if err != nil {
				exitErr("Invalid hex data: %v", err)
			}
			payload = decoded
		}
		if addNewline && !hexMode {
			payload = append(payload, '\n')
		}

		if err := sendData(target, payload, timeout); err != nil {
			exitErr("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for sending data")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// decodeHexString decodes hex input, tolerating 0x prefixes and spaces.
func decodeHexString(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	return hex.DecodeString(s)
}

func sendData(target string, payload []byte, timeout time.Duration) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)

	session, err := newSession()
	if err != nil {
		return err
	}

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), target)
	if err := openTarget(session, target); err != nil {
		return err
	}
	defer session.Close()

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(payload))

	n, err := session.WriteContext(ctx, payload)
	if err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}

	if n < len(payload) {
		fmt.Printf("%s Device accepted %d of %d bytes\n", warnStyle.Render("!"), n, len(payload))
	} else {
		fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)
	}

	// Show data preview (first 50 chars)
	preview := string(payload)
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	preview = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, preview)

	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), preview)

	return nil
}
