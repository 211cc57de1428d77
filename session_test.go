package ftdx

import (
	"errors"
	"testing"
)

func twoDevices() *mockDriver {
	return newMockDriver(
		DeviceInfo{SerialNumber: "FT0001", Description: "FT232R USB UART"},
		DeviceInfo{SerialNumber: "FT0002", Description: "FT232H Breakout"},
	)
}

func TestOpenAppliesConfigInOrder(t *testing.T) {
	drv := twoDevices()
	session, err := New(drv)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	expected := []string{"open", "baud", "data", "timeouts", "flow", "latency", "bitmode"}
	calls := drv.callLog()
	if len(calls) != len(expected) {
		t.Fatalf("Expected %d driver calls, got %v", len(expected), calls)
	}
	for i, name := range expected {
		if calls[i] != name {
			t.Errorf("Call %d = %s, expected %s", i, calls[i], name)
		}
	}

	if !session.IsOpen() {
		t.Error("Expected IsOpen true after successful open")
	}
}

func TestOpenWhileOpen(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)

	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err := session.Open(1)
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("Expected ErrAlreadyOpen, got %v", err)
	}
	if !session.IsOpen() {
		t.Error("Failed reopen must leave the existing session open")
	}
	if drv.openedIndex != 0 {
		t.Errorf("Reopen attempt touched the driver, opened index %d", drv.openedIndex)
	}
}

func TestOpenUnknownIndex(t *testing.T) {
	session, _ := New(twoDevices())

	err := session.Open(7)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if session.IsOpen() {
		t.Error("Session must stay closed after failed open")
	}
}

func TestOpenConfigFailureForcesClose(t *testing.T) {
	drv := twoDevices()
	drv.stepStatus["timeouts"] = StatusIOError
	session, _ := New(drv)

	err := session.Open(0)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Expected ErrConfiguration, got %v", err)
	}
	if session.IsOpen() {
		t.Error("Session must be closed after failed configuration")
	}

	calls := drv.callLog()
	if calls[len(calls)-1] != "close" {
		t.Errorf("Expected trailing close of the half-opened handle, calls: %v", calls)
	}
	for _, name := range calls {
		if name == "flow" || name == "latency" || name == "bitmode" {
			t.Errorf("Configuration continued past the failing step: %v", calls)
		}
	}

	// No residual state blocks a retry.
	drv.stepStatus = map[string]Status{}
	if err := session.Open(0); err != nil {
		t.Errorf("Open after failed open should succeed, got %v", err)
	}
}

func TestCloseNotOpen(t *testing.T) {
	session, _ := New(twoDevices())
	if err := session.Close(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Expected ErrNotOpen, got %v", err)
	}
}

func TestCloseReportsDriverFailureButInvalidatesHandle(t *testing.T) {
	drv := twoDevices()
	drv.closeStatus = StatusIOError
	session, _ := New(drv)

	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err := session.Close()
	if !errors.Is(err, ErrCommunication) {
		t.Errorf("Expected ErrCommunication, got %v", err)
	}
	if session.IsOpen() {
		t.Error("Handle must be considered invalid even when the driver close fails")
	}
	if err := session.Close(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Second close: expected ErrNotOpen, got %v", err)
	}
}

func TestDataOpsRequireOpen(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)

	buf := make([]byte, 4)
	if _, err := session.Read(buf); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Read: expected ErrNotOpen, got %v", err)
	}
	if _, err := session.Write([]byte("x")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write: expected ErrNotOpen, got %v", err)
	}
	if err := session.FlushInput(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("FlushInput: expected ErrNotOpen, got %v", err)
	}
	if err := session.FlushOutput(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("FlushOutput: expected ErrNotOpen, got %v", err)
	}
	if _, _, err := session.QueueStatus(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("QueueStatus: expected ErrNotOpen, got %v", err)
	}
	if _, err := session.ChipInfo(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("ChipInfo: expected ErrNotOpen, got %v", err)
	}

	if len(drv.callLog()) != 0 {
		t.Errorf("Closed-session operations must not touch the driver: %v", drv.callLog())
	}
}

func TestOpenBySerialNumber(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)

	if err := session.OpenBySerialNumber("FT0002"); err != nil {
		t.Fatalf("OpenBySerialNumber failed: %v", err)
	}
	if drv.openedIndex != 1 {
		t.Errorf("Opened index %d, expected 1", drv.openedIndex)
	}
}

func TestOpenBySerialNumberLastMatchWins(t *testing.T) {
	drv := newMockDriver(
		DeviceInfo{SerialNumber: "DUP", Description: "first"},
		DeviceInfo{SerialNumber: "FT0001", Description: "middle"},
		DeviceInfo{SerialNumber: "DUP", Description: "last"},
	)
	session, _ := New(drv)

	if err := session.OpenBySerialNumber("DUP"); err != nil {
		t.Fatalf("OpenBySerialNumber failed: %v", err)
	}
	if drv.openedIndex != 2 {
		t.Errorf("Opened index %d, expected the last enumerated match 2", drv.openedIndex)
	}
}

func TestOpenBySerialNumberNotFound(t *testing.T) {
	session, _ := New(twoDevices())

	err := session.OpenBySerialNumber("MISSING")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if session.IsOpen() {
		t.Error("Session must stay closed after failed match")
	}
}

func TestOpenByDescription(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)

	if err := session.OpenByDescription("FT232H Breakout"); err != nil {
		t.Fatalf("OpenByDescription failed: %v", err)
	}
	if drv.openedIndex != 1 {
		t.Errorf("Opened index %d, expected 1", drv.openedIndex)
	}
}

func TestListDevices(t *testing.T) {
	session, _ := New(twoDevices())

	devices, err := session.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}
	if devices[0].Index != 0 || devices[1].Index != 1 {
		t.Errorf("Indices not assigned in enumeration order: %+v", devices)
	}
	if devices[1].SerialNumber != "FT0002" {
		t.Errorf("SerialNumber = %s, expected FT0002", devices[1].SerialNumber)
	}
}

func TestSettersCacheWhileClosed(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)

	if err := session.SetBaudRate(115200); err != nil {
		t.Fatalf("SetBaudRate failed: %v", err)
	}
	if err := session.SetDataBits(7); err != nil {
		t.Fatalf("SetDataBits failed: %v", err)
	}
	if err := session.SetParity(ParityEven); err != nil {
		t.Fatalf("SetParity failed: %v", err)
	}
	if len(drv.callLog()) != 0 {
		t.Errorf("Setters on a closed session must not touch the driver: %v", drv.callLog())
	}

	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if drv.lastBaud != 115200 {
		t.Errorf("Driver saw baud %d, expected 115200", drv.lastBaud)
	}
	if drv.lastBits != 7 || drv.lastParity != ParityEven {
		t.Errorf("Driver saw %d bits parity %v, expected 7 bits even", drv.lastBits, drv.lastParity)
	}
}

func TestSetterAppliesWhileOpen(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)
	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := session.SetStopBits(2); err != nil {
		t.Fatalf("SetStopBits failed: %v", err)
	}
	if drv.lastStop != 2 {
		t.Errorf("Driver saw %d stop bits, expected 2", drv.lastStop)
	}
}

func TestSetterRejectedWhileOpenKeepsConfig(t *testing.T) {
	drv := twoDevices()
	session, _ := New(drv)
	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	drv.stepStatus["baud"] = StatusInvalidParameter
	err := session.SetBaudRate(300)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
	if got := session.Config().BaudRate; got != 9600 {
		t.Errorf("Rejected setter changed cached baud to %d", got)
	}
	if session.IsOpen() != true {
		t.Error("Rejected setter must not close the session")
	}
}

func TestSetterValidation(t *testing.T) {
	session, _ := New(twoDevices())

	if err := session.SetBaudRate(0); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("SetBaudRate(0): expected ErrInvalidBaudRate, got %v", err)
	}
	if err := session.SetDataBits(9); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetDataBits(9): expected ErrInvalidConfig, got %v", err)
	}
	if err := session.SetStopBits(3); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetStopBits(3): expected ErrInvalidConfig, got %v", err)
	}
}

func TestChipInfo(t *testing.T) {
	drv := twoDevices()
	drv.chip = ChipInfo{Type: "FT232R", VendorID: 0x0403, ProductID: 0x6001}
	session, _ := New(drv)

	if err := session.Open(0); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	info, err := session.ChipInfo()
	if err != nil {
		t.Fatalf("ChipInfo failed: %v", err)
	}
	if info.Type != "FT232R" || info.VendorID != 0x0403 {
		t.Errorf("Unexpected chip info: %+v", info)
	}
}
