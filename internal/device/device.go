// Package device enumerates and inspects block devices through the
// standard Linux tooling (lsblk, blockdev, smartctl, /proc/mounts).
// Parsing is split from process execution so the parsers can be
// exercised directly in tests.
package device

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/opensolutionsgroup/ddi/internal/format"
)

// Device is one enumerated block device.
type Device struct {
	Name  string // /dev path
	Bytes int64
	Size  string // human-readable, derived from Bytes
	Model string
}

// String renders the menu label for a device.
func (d Device) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Size, d.Model)
}

// List enumerates whole-disk block devices via lsblk, skipping loop
// devices.
func List() ([]Device, error) {
	out, err := exec.Command("lsblk", "-d", "-b", "-n", "-o", "NAME,SIZE,MODEL").Output()
	if err != nil {
		return nil, fmt.Errorf("running lsblk: %w", err)
	}
	return ParseLsblk(string(out)), nil
}

// ParseLsblk parses "lsblk -d -b -n -o NAME,SIZE,MODEL" output.
// Lines without a numeric size and loop devices are dropped.
func ParseLsblk(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := "/dev/" + fields[0]
		if strings.HasPrefix(name, "/dev/loop") {
			continue
		}
		size, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		model := "N/A"
		if len(fields) > 2 {
			model = strings.Join(fields[2:], " ")
		}
		devices = append(devices, Device{
			Name:  name,
			Bytes: size,
			Size:  format.Bytes(size),
			Model: model,
		})
	}
	return devices
}

// SizeBytes reads a device's size via "blockdev --getsize64".
func SizeBytes(device string) (int64, error) {
	out, err := exec.Command("blockdev", "--getsize64", device).Output()
	if err != nil {
		return 0, fmt.Errorf("blockdev --getsize64 %s: %w", device, err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing blockdev output %q: %w", out, err)
	}
	return n, nil
}

// ImageFiles lists regular files in dir whose name ends in one of the
// given extensions, sorted by name. An empty extension list matches
// everything.
func ImageFiles(dir string, extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(extensions) == 0 {
			files = append(files, name)
			continue
		}
		for _, ext := range extensions {
			if strings.HasSuffix(name, ext) {
				files = append(files, name)
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileSize returns the on-disk size of a file, 0 when unreadable.
func FileSize(path string) int64 {
	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return 0
	}
	return info.Size()
}
