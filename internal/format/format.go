// Package format provides human-readable formatting for byte counts
// and durations shown throughout the UI and logs.
package format

import "fmt"

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}

// Bytes formats a byte count with binary units and two decimals.
// Negative counts format as "N/A".
func Bytes(b int64) string {
	if b < 0 {
		return "N/A"
	}
	if b == 0 {
		return "0.0 B"
	}
	value := float64(b)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", value, byteUnits[unit])
}

// Rate formats a bytes-per-second rate.
func Rate(bps float64) string {
	if bps < 0 {
		return "N/A"
	}
	return Bytes(int64(bps)) + "/s"
}

// Clock formats a duration in seconds as HH:MM:SS. Negative durations
// (the ETA-unknown sentinel) format as "??:??:??".
func Clock(seconds float64) string {
	if seconds < 0 {
		return "??:??:??"
	}
	total := int64(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Truncate clamps a string to at most width characters.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
