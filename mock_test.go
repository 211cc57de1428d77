package ftdx

import (
	"sync"
	"time"
)

// readStep scripts one driver read result.
type readStep struct {
	data []byte
	st   Status
}

// mockDriver is a scripted Driver for exercising the session without
// hardware. Field access from the test goroutine is guarded because the
// concurrency tests inspect it while session operations run.
type mockDriver struct {
	mu sync.Mutex

	devices []DeviceInfo

	openStatus  Status
	closeStatus Status
	writeStatus Status
	purgeStatus Status
	stepStatus  map[string]Status // per config step name, zero value is ok

	readScript  []readStep
	defaultRead readStep // used when the script is exhausted
	readDelay   time.Duration
	writeAccept int // cap on accepted bytes per write, 0 means all

	rxQueue int
	txQueue int
	chip    ChipInfo

	calls       []string
	readCalls   int
	openedIndex int
	lastBaud    int
	lastBits    int
	lastStop    int
	lastParity  Parity
	lastPurge   PurgeMask
	writes      [][]byte
	nextHandle  Handle
}

func newMockDriver(devices ...DeviceInfo) *mockDriver {
	return &mockDriver{
		devices:     devices,
		stepStatus:  map[string]Status{},
		openedIndex: -1,
		nextHandle:  1,
	}
}

func (m *mockDriver) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

func (m *mockDriver) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockDriver) step(name string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stepStatus[name]
}

func (m *mockDriver) DeviceCount() (int, Status) {
	m.record("count")
	return len(m.devices), StatusOK
}

func (m *mockDriver) DeviceList(max int) ([]DeviceInfo, Status) {
	m.record("list")
	list := make([]DeviceInfo, 0, max)
	for i, d := range m.devices {
		if i >= max {
			break
		}
		d.Index = i
		list = append(list, d)
	}
	return list, StatusOK
}

func (m *mockDriver) Open(index int) (Handle, Status) {
	m.record("open")
	if m.openStatus != StatusOK {
		return 0, m.openStatus
	}
	if index >= len(m.devices) {
		return 0, StatusNotFound
	}
	m.mu.Lock()
	m.openedIndex = index
	h := m.nextHandle
	m.nextHandle++
	m.mu.Unlock()
	return h, StatusOK
}

func (m *mockDriver) Close(h Handle) Status {
	m.record("close")
	return m.closeStatus
}

func (m *mockDriver) Read(h Handle, buf []byte) (int, Status) {
	m.record("read")
	if m.readDelay > 0 {
		time.Sleep(m.readDelay)
	}
	m.mu.Lock()
	step := m.defaultRead
	if m.readCalls < len(m.readScript) {
		step = m.readScript[m.readCalls]
	}
	m.readCalls++
	m.mu.Unlock()
	if step.st != StatusOK {
		return 0, step.st
	}
	return copy(buf, step.data), StatusOK
}

func (m *mockDriver) Write(h Handle, data []byte) (int, Status) {
	m.record("write")
	m.mu.Lock()
	m.writes = append(m.writes, append([]byte(nil), data...))
	m.mu.Unlock()
	if m.writeStatus != StatusOK {
		return 0, m.writeStatus
	}
	n := len(data)
	if m.writeAccept > 0 && m.writeAccept < n {
		n = m.writeAccept
	}
	return n, StatusOK
}

func (m *mockDriver) Purge(h Handle, mask PurgeMask) Status {
	m.record("purge")
	m.mu.Lock()
	m.lastPurge = mask
	m.mu.Unlock()
	return m.purgeStatus
}

func (m *mockDriver) SetBaudRate(h Handle, rate int) Status {
	m.record("baud")
	if st := m.step("baud"); st != StatusOK {
		return st
	}
	m.mu.Lock()
	m.lastBaud = rate
	m.mu.Unlock()
	return StatusOK
}

func (m *mockDriver) SetDataCharacteristics(h Handle, dataBits, stopBits int, parity Parity) Status {
	m.record("data")
	if st := m.step("data"); st != StatusOK {
		return st
	}
	m.mu.Lock()
	m.lastBits = dataBits
	m.lastStop = stopBits
	m.lastParity = parity
	m.mu.Unlock()
	return StatusOK
}

func (m *mockDriver) SetFlowControl(h Handle, mode FlowControl, xon, xoff byte) Status {
	m.record("flow")
	return m.step("flow")
}

func (m *mockDriver) SetTimeouts(h Handle, read, write time.Duration) Status {
	m.record("timeouts")
	return m.step("timeouts")
}

func (m *mockDriver) SetLatencyTimer(h Handle, d time.Duration) Status {
	m.record("latency")
	return m.step("latency")
}

func (m *mockDriver) SetBitMode(h Handle, mask, mode byte) Status {
	m.record("bitmode")
	return m.step("bitmode")
}

func (m *mockDriver) QueueStatus(h Handle) (int, int, Status) {
	m.record("queue")
	if st := m.step("queue"); st != StatusOK {
		return 0, 0, st
	}
	return m.rxQueue, m.txQueue, StatusOK
}

func (m *mockDriver) ChipInfo(h Handle) (ChipInfo, Status) {
	m.record("chip")
	if st := m.step("chip"); st != StatusOK {
		return ChipInfo{}, st
	}
	return m.chip, StatusOK
}

// Ensure mockDriver implements Driver at compile time
var _ Driver = (*mockDriver)(nil)
