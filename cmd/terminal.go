/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/allbin/go-ftdx"
	"github.com/allbin/go-ftdx/internal/tui/components"
	"github.com/allbin/go-ftdx/internal/tui/keys"
	"github.com/allbin/go-ftdx/internal/tui/models"
)

// terminalCmd represents the terminal command
var terminalCmd = &cobra.Command{
	Use:   "terminal <device>",
	Short: "Open an interactive terminal to a device",
	Long: `Open an interactive terminal with real-time bidirectional communication.

Received data streams into a scrolling view with timestamps; an input
field sends data in ASCII or hex mode. Navigation is vim-like: normal
mode for display toggles, 'i' for insert mode.

The device argument is an enumeration index or a serial number.

Example usage:
  ftdx terminal 0
  ftdx terminal FT1234XY --baud 9600`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTerminalTUI(args[0]); err != nil {
			exitErr("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(terminalCmd)
}

// terminalModel represents the Bubble Tea model for the terminal command
type terminalModel struct {
	*models.SessionModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.TerminalKeys
}

func runTerminalTUI(target string) error {
	session, err := newSession(ftdx.WithReadTimeout(time.Second))
	if err != nil {
		return err
	}

	config := session.Config()
	connInfo := &components.ConnectionInfo{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		StopBits: config.StopBits,
		Parity:   config.Parity,
	}

	m := terminalModel{
		SessionModel: models.NewSessionModel(target),
		terminal:     components.NewTerminal(0, 0), // Sized by the first WindowSizeMsg
		statusBar:    components.NewStatusBar("ftdx terminal", target),
		input:        components.NewInput("Type message and press Enter to send..."),
		help:         help.New(),
		keys:         keys.NewTerminalKeys(),
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetConnectionInfo(connInfo)

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open the device in the background so the UI comes up immediately
	go func() {
		if err := openTarget(session, target); err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}

		m.SetSession(session)
		p.Send(models.ConnectionStatusMsg{Connected: true, Error: nil})

		go func() {
			defer session.Close()
			readLoop(m.GetContext(), session, p)
		}()
	}()

	_, err = p.Run()

	m.Cancel()
	return err
}

// readLoop polls the receive queue and reads exactly what is buffered, so
// each message in the view corresponds to a burst of device data.
func readLoop(ctx context.Context, session *ftdx.Session, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		avail, err := session.BytesAvailable()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if avail == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if avail > 1024 {
			avail = 1024
		}

		buf := make([]byte, avail)
		n, err := session.ReadContext(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if n > 0 {
			p.Send(components.DataMsg{
				Timestamp: time.Now(),
				Data:      buf[:n],
			})
		}
	}
}

func (m *terminalModel) Init() tea.Cmd {
	return nil
}

func (m *terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		statusBarHeight := 1
		m.terminal.SetSize(msg.Width, msg.Height-inputHeight-statusBarHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else {
			m.statusBar.SetConnected()
			m.input.Focus()
		}

	case components.DataMsg:
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				cmds = append(cmds, m.sendInput()...)
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.Refresh(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleASCII):
				m.terminal.ToggleASCII()
				m.terminal.Refresh(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
			}
		}
	}

	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sendInput parses the input per sending mode and hands it to the session
// in a background write so the UI never blocks on a slow device.
func (m *terminalModel) sendInput() []tea.Cmd {
	session := m.GetSession()
	inputStr := m.input.Value()
	if inputStr == "" || session == nil {
		return nil
	}

	var dataToSend []byte
	var displayData []byte

	switch m.input.GetSendingMode() {
	case components.SendingModeASCII:
		dataToSend = []byte(inputStr + "\n")
		displayData = []byte(inputStr)
	case components.SendingModeHex:
		decoded, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(inputStr), " ", ""))
		if err != nil {
			m.terminal.AddMessage(components.DataMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("Invalid hex input: %v", err)),
			})
			return nil
		}
		dataToSend = decoded
		displayData = decoded
	}

	writeStatusCh := make(chan string, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := session.WriteContext(ctx, dataToSend)
		switch {
		case err != nil:
			writeStatusCh <- "ERROR"
		case n < len(dataToSend):
			writeStatusCh <- "SHORT"
		default:
			writeStatusCh <- "WRITTEN"
		}
	}()

	cmd := func() tea.Msg {
		return components.DataMsg{
			Timestamp: time.Now(),
			Data:      displayData,
			IsTX:      true,
			Status:    <-writeStatusCh,
		}
	}

	txData := components.DataMsg{
		Timestamp: time.Now(),
		Data:      displayData,
		IsTX:      true,
		Status:    "PENDING",
	}
	m.AddRawData(txData)
	m.terminal.AddMessage(txData)

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return []tea.Cmd{cmd}
}

func (m *terminalModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	input := m.input.ViewWithMode(m.IsInInsertMode())

	statusBar := m.statusBar.View(
		m.GetInputMode().String(),
		m.input.GetSendingMode().String(),
		m.IsConnected(),
		time.Now().Format("15:04:05"),
	)

	return content + "\n" + input + "\n" + statusBar
}
