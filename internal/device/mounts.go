package device

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Mount is one /proc/mounts entry matching a device.
type Mount struct {
	Device     string
	MountPoint string
}

// MountsOf extracts the entries for a device or any of its partitions
// from /proc/mounts content. Matching is by prefix on the device
// field, so /dev/sda picks up /dev/sda1 and /dev/sda2.
func MountsOf(procMounts, device string) []Mount {
	var mounts []Mount
	for _, line := range strings.Split(procMounts, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[0] == device || strings.HasPrefix(fields[0], device) {
			mounts = append(mounts, Mount{Device: fields[0], MountPoint: fields[1]})
		}
	}
	return mounts
}

// IsMounted reports whether the device or one of its partitions is
// mounted and, if so, the first mount point found.
func IsMounted(device string) (bool, string, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return false, "", fmt.Errorf("reading /proc/mounts: %w", err)
	}
	mounts := MountsOf(string(data), device)
	if len(mounts) == 0 {
		return false, "", nil
	}
	return true, mounts[0].MountPoint, nil
}

// UnmountAll unmounts every mounted partition of a device. It returns
// a human-readable summary; the error is non-nil when any partition
// refused to unmount or when the device vanished afterwards (some
// systems auto-eject removable media on unmount).
func UnmountAll(device string) (string, error) {
	data, err := os.ReadFile("/proc/mounts")
	if err != nil {
		return "", fmt.Errorf("reading /proc/mounts: %w", err)
	}
	mounts := MountsOf(string(data), device)
	if len(mounts) == 0 {
		return "No partitions were mounted", nil
	}

	var failed []string
	for _, m := range mounts {
		if err := exec.Command("umount", m.Device).Run(); err != nil {
			failed = append(failed, m.Device)
		}
	}
	if len(failed) > 0 {
		return "", fmt.Errorf("failed to unmount: %s", strings.Join(failed, ", "))
	}

	// Give the system a moment to settle, then confirm the device is
	// still there.
	time.Sleep(time.Second)
	if _, err := SizeBytes(device); err != nil {
		return "", fmt.Errorf("unmounted %d partition(s), but the device appears to be ejected; re-insert it without mounting", len(mounts))
	}
	return fmt.Sprintf("Unmounted %d partition(s)", len(mounts)), nil
}
