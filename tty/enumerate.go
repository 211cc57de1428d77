package tty

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/allbin/go-ftdx"
)

var usbTTYPattern = regexp.MustCompile(`^tty(USB|ACM)\d+$`)

// scan lists USB serial tty names in lexical order. Lexical order keeps
// indices stable between the count and list calls as long as no device is
// plugged or pulled in between.
func (d *Driver) scan() ([]string, error) {
	entries, err := os.ReadDir(d.sysDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if usbTTYPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// findUSBDevice walks up from a tty's device link to the USB device
// directory carrying the descriptor attributes. The tty node sits a couple
// of levels below the device (interface and port directories in between),
// so climb until idVendor appears.
func (d *Driver) findUSBDevice(name string) string {
	path, err := filepath.EvalSymlinks(filepath.Join(d.sysDir, name, "device"))
	if err != nil {
		return ""
	}
	for i := 0; i < 4; i++ {
		if _, err := os.Stat(filepath.Join(path, "idVendor")); err == nil {
			return path
		}
		path = filepath.Dir(path)
	}
	return ""
}

func readSysAttr(dir, attr string) string {
	if dir == "" {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (d *Driver) DeviceCount() (int, ftdx.Status) {
	names, err := d.scan()
	if err != nil {
		return 0, statusFromErr(err)
	}
	return len(names), ftdx.StatusOK
}

func (d *Driver) DeviceList(max int) ([]ftdx.DeviceInfo, ftdx.Status) {
	names, err := d.scan()
	if err != nil {
		return nil, statusFromErr(err)
	}
	if max < 0 {
		max = 0
	}
	if len(names) > max {
		// A device appeared after the count call; report what fits.
		names = names[:max]
	}

	devices := make([]ftdx.DeviceInfo, len(names))
	for i, name := range names {
		usb := d.findUSBDevice(name)
		devices[i] = ftdx.DeviceInfo{
			Index:        i,
			SerialNumber: readSysAttr(usb, "serial"),
			Description:  readSysAttr(usb, "product"),
		}
	}
	return devices, ftdx.StatusOK
}
