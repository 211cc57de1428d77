package tty

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/allbin/go-ftdx"
)

func TestBaudBits(t *testing.T) {
	for _, rate := range []int{300, 9600, 115200, 3000000} {
		if _, ok := baudBits[rate]; !ok {
			t.Errorf("expected %d baud in table", rate)
		}
	}
	if _, ok := baudBits[123456]; ok {
		t.Error("non-standard rate should not be in table")
	}
}

func TestStatusFromErr(t *testing.T) {
	tests := []struct {
		err  error
		want ftdx.Status
	}{
		{nil, ftdx.StatusOK},
		{unix.ENOENT, ftdx.StatusNotFound},
		{unix.ENODEV, ftdx.StatusNotFound},
		{unix.EBADF, ftdx.StatusNotOpen},
		{unix.EINVAL, ftdx.StatusInvalidParameter},
		{unix.EMFILE, ftdx.StatusInsufficientResources},
		{unix.EIO, ftdx.StatusIOError},
		{unix.EPERM, ftdx.StatusOther},
	}
	for _, tt := range tests {
		if got := statusFromErr(tt.err); got != tt.want {
			t.Errorf("statusFromErr(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func fakeSysfs(t *testing.T, ttys ...string) *Driver {
	t.Helper()
	dir := t.TempDir()
	for _, name := range ttys {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	d := New()
	d.sysDir = dir
	return d
}

func TestScanFiltersAndSorts(t *testing.T) {
	d := fakeSysfs(t, "ttyUSB1", "ttyS0", "ttyACM0", "tty7", "ttyUSB0")

	names, err := d.scan()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ttyACM0", "ttyUSB0", "ttyUSB1"}
	if len(names) != len(want) {
		t.Fatalf("scan returned %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("scan returned %v, want %v", names, want)
		}
	}
}

func TestDeviceCountAndList(t *testing.T) {
	d := fakeSysfs(t, "ttyUSB0", "ttyUSB1")

	n, st := d.DeviceCount()
	if st != ftdx.StatusOK || n != 2 {
		t.Fatalf("DeviceCount = %d, %v", n, st)
	}

	devices, st := d.DeviceList(n)
	if st != ftdx.StatusOK {
		t.Fatalf("DeviceList status %v", st)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	for i, dev := range devices {
		if dev.Index != i {
			t.Errorf("device %d has index %d", i, dev.Index)
		}
	}
}

func TestDeviceListTrimsToMax(t *testing.T) {
	d := fakeSysfs(t, "ttyUSB0", "ttyUSB1", "ttyUSB2")

	devices, st := d.DeviceList(2)
	if st != ftdx.StatusOK || len(devices) != 2 {
		t.Fatalf("DeviceList(2) = %d devices, %v", len(devices), st)
	}
}

func TestOpenOutOfRange(t *testing.T) {
	d := fakeSysfs(t)

	if _, st := d.Open(0); st != ftdx.StatusNotFound {
		t.Errorf("Open on empty bus = %v, want StatusNotFound", st)
	}
	if _, st := d.Open(-1); st != ftdx.StatusNotFound {
		t.Errorf("Open(-1) = %v, want StatusNotFound", st)
	}
}

func TestSetBitModeOnlyReset(t *testing.T) {
	d := New()

	if st := d.SetBitMode(0, 0, ftdx.BitModeReset); st != ftdx.StatusOK {
		t.Errorf("reset mode = %v, want StatusOK", st)
	}
	if st := d.SetBitMode(0, 0xff, 0x01); st != ftdx.StatusInvalidParameter {
		t.Errorf("bit-bang mode = %v, want StatusInvalidParameter", st)
	}
}

func TestSetLatencyTimerUnknownHandle(t *testing.T) {
	d := New()

	if st := d.SetLatencyTimer(42, 2*time.Millisecond); st != ftdx.StatusNotOpen {
		t.Errorf("SetLatencyTimer on unknown handle = %v, want StatusNotOpen", st)
	}
}
