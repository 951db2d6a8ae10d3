package device

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// BlockSizeInfo carries the detected sector geometry of a device and
// the block size recommended for copying it.
type BlockSizeInfo struct {
	Logical     int64
	Physical    int64
	Optimal     int64
	Recommended int64
}

// RecommendedString renders the recommended size in dd notation
// (1M, 64K, 512).
func (b BlockSizeInfo) RecommendedString() string {
	return FormatBlockSize(b.Recommended)
}

// FormatBlockSize renders a byte count in dd block-size notation.
func FormatBlockSize(n int64) string {
	switch {
	case n >= 1048576:
		return fmt.Sprintf("%dM", n/1048576)
	case n >= 1024:
		return fmt.Sprintf("%dK", n/1024)
	default:
		return strconv.FormatInt(n, 10)
	}
}

var fdiskOptimalRe = regexp.MustCompile(`(\d+)`)

// ParseFdiskOptimal extracts the optimal I/O size from "fdisk -l"
// output, from a line shaped like
// "I/O size (minimum/optimal): 512 bytes / 33553920 bytes".
// Returns 0 when absent.
func ParseFdiskOptimal(out string) int64 {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "I/O size") || !strings.Contains(line, "optimal") {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue
		}
		parts := strings.Split(line[colon+1:], "/")
		if len(parts) < 2 {
			continue
		}
		m := fdiskOptimalRe.FindString(parts[1])
		if m == "" {
			continue
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		return n
	}
	return 0
}

// RecommendBlockSize applies the recommendation ladder: a sane
// reported optimal I/O size wins, capped at 1M; otherwise a 4K-native
// drive gets at least 64K; otherwise 64K.
func RecommendBlockSize(logical, physical, optimal int64) int64 {
	switch {
	case optimal > 0 && optimal <= 1048576:
		return optimal
	case physical >= 4096:
		if physical > 65536 {
			return physical
		}
		return 65536
	default:
		return 65536
	}
}

// DetectBlockSize probes a device's sector geometry with blockdev,
// falling back to fdisk for the optimal I/O size, and recommends a
// copy block size. Probe failures leave the corresponding field zero.
func DetectBlockSize(device string) BlockSizeInfo {
	info := BlockSizeInfo{
		Physical: blockdevValue("--getpbsz", device),
		Logical:  blockdevValue("--getss", device),
		Optimal:  blockdevValue("--getioopt", device),
	}
	if info.Optimal == 0 {
		if out, err := exec.Command("fdisk", "-l", device).Output(); err == nil {
			info.Optimal = ParseFdiskOptimal(string(out))
		}
	}
	info.Recommended = RecommendBlockSize(info.Logical, info.Physical, info.Optimal)
	return info
}

func blockdevValue(flag, device string) int64 {
	out, err := exec.Command("blockdev", flag, device).Output()
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
