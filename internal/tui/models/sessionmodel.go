package models

import (
	"context"
	"sync"

	"github.com/allbin/go-ftdx"
	"github.com/allbin/go-ftdx/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeNormal:
		return "NORMAL"
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// SessionModel holds the shared state behind the terminal TUI: the device
// session, the raw traffic log and the input mode. The session pointer is
// written by the connect goroutine and read from Update, hence the lock.
type SessionModel struct {
	session *ftdx.Session
	target  string

	connected bool
	rawData   []components.DataMsg
	err       error
	ready     bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewSessionModel(target string) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		target:    target,
		rawData:   make([]components.DataMsg, 0),
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *SessionModel) GetSession() *ftdx.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

func (m *SessionModel) SetSession(session *ftdx.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
}

func (m *SessionModel) GetTarget() string {
	return m.target
}

func (m *SessionModel) IsConnected() bool {
	return m.connected
}

func (m *SessionModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *SessionModel) SetError(err error) {
	m.err = err
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetRawData() []components.DataMsg {
	return m.rawData
}

func (m *SessionModel) AddRawData(msg components.DataMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *SessionModel) ClearData() {
	m.rawData = make([]components.DataMsg, 0)
}

func (m *SessionModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *SessionModel) GetContext() context.Context {
	return m.ctx
}

func (m *SessionModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Cleanup stops the reader goroutines and closes the session.
func (m *SessionModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.Lock()
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	m.mu.Unlock()
}
