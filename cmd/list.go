/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strconv"

	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/allbin/go-ftdx"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected USB serial devices",
	Long: `List all connected USB serial devices with their enumeration index,
serial number and description.

The index shown here is what the other commands accept as a device argument.
Indices are only stable while no device is plugged or unplugged, so prefer
serial numbers in scripts:

  ftdx list
  ftdx list --table
  ftdx info $(ftdx list | head -n1 | cut -f2)`,
	Run: func(cmd *cobra.Command, args []string) {
		session, err := newSession()
		if err != nil {
			exitErr("Error: %v", err)
		}

		devices, err := session.ListDevices()
		if err != nil {
			exitErr("Error listing devices: %v", err)
		}

		if len(devices) == 0 {
			fmt.Println("No devices found")
			return
		}

		tableFormat, _ := cmd.Flags().GetBool("table")
		if tableFormat {
			renderTable(devices)
		} else {
			renderSimple(devices)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

const (
	columnIndex       = "index"
	columnSerial      = "serial"
	columnDescription = "description"
)

// renderTable renders the device list in a styled static table format
func renderTable(devices []ftdx.DeviceInfo) {
	fmt.Printf("Found %d device(s):\n\n", len(devices))

	columns := []table.Column{
		table.NewColumn(columnIndex, "Index", 7),
		table.NewColumn(columnSerial, "Serial", 16),
		table.NewColumn(columnDescription, "Description", 32),
	}

	rows := make([]table.Row, len(devices))
	for i, dev := range devices {
		rows[i] = table.NewRow(table.RowData{
			columnIndex:       strconv.Itoa(dev.Index),
			columnSerial:      orUnknown(dev.SerialNumber),
			columnDescription: orUnknown(dev.Description),
		})
	}

	t := table.New(columns).WithRows(rows)
	fmt.Println(t.View())
}

// renderSimple renders the device list as tab-separated lines
func renderSimple(devices []ftdx.DeviceInfo) {
	for _, dev := range devices {
		fmt.Printf("%d\t%s\t%s\n", dev.Index, orUnknown(dev.SerialNumber), orUnknown(dev.Description))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
