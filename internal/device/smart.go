package device

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// SMARTStatus is the overall verdict of a health check.
type SMARTStatus string

const (
	SMARTPassed      SMARTStatus = "passed"
	SMARTWarning     SMARTStatus = "warning"
	SMARTFailed      SMARTStatus = "failed"
	SMARTUnavailable SMARTStatus = "unavailable"
)

// SMARTReport summarizes a device's self-monitoring data.
type SMARTReport struct {
	Status         SMARTStatus
	Message        string
	HealthPassed   bool
	Details        []string
	CriticalIssues []string
	Warnings       []string
}

// smartAttrs holds the raw values of the attributes the check cares
// about.
type smartAttrs struct {
	reallocated   int64
	pending       int64
	uncorrectable int64
	temperature   int64
	powerOnHours  int64
	spinRetries   int64
}

// parseSMARTAttributes reads "smartctl -A" output. Attribute lines
// have ten whitespace-separated columns ending in the raw value.
func parseSMARTAttributes(out string) (smartAttrs, []string) {
	var attrs smartAttrs
	var details []string

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 10 {
			continue
		}
		id, name, raw := fields[0], fields[1], fields[9]
		value, err := strconv.ParseInt(strings.Fields(raw)[0], 10, 64)
		if err != nil {
			continue
		}

		switch {
		case id == "5" || strings.Contains(name, "Reallocated"):
			attrs.reallocated = value
			details = append(details, fmt.Sprintf("Reallocated Sectors: %d", value))
		case id == "197" || strings.Contains(name, "Current_Pending"):
			attrs.pending = value
			details = append(details, fmt.Sprintf("Pending Sectors: %d", value))
		case id == "198" || strings.Contains(name, "Offline_Uncorrectable"):
			attrs.uncorrectable = value
			details = append(details, fmt.Sprintf("Uncorrectable Sectors: %d", value))
		case id == "190" || id == "194" || strings.Contains(name, "Temperature"):
			if attrs.temperature == 0 {
				attrs.temperature = value
				details = append(details, fmt.Sprintf("Temperature: %d°C", value))
			}
		case id == "9" || strings.Contains(name, "Power_On_Hours"):
			attrs.powerOnHours = value
			details = append(details, fmt.Sprintf("Power On Hours: %d", value))
		case id == "10" || strings.Contains(name, "Spin_Retry"):
			attrs.spinRetries = value
			if value > 0 {
				details = append(details, fmt.Sprintf("Spin Retry Count: %d", value))
			}
		}
	}
	return attrs, details
}

// EvaluateSMART derives a report from the health and attribute output
// of smartctl. Reallocated, pending or uncorrectable sectors and a
// failed health self-assessment are critical; spin retries are a
// warning.
func EvaluateSMART(healthOut, attrOut string) SMARTReport {
	healthPassed := strings.Contains(healthOut, "PASSED")
	attrs, details := parseSMARTAttributes(attrOut)

	var critical, warnings []string
	if !healthPassed {
		critical = append(critical, "SMART Health Test: FAILED")
	}
	if attrs.reallocated > 0 {
		critical = append(critical, fmt.Sprintf("Reallocated sectors detected: %d", attrs.reallocated))
	}
	if attrs.pending > 0 {
		critical = append(critical, fmt.Sprintf("Pending sectors detected: %d", attrs.pending))
	}
	if attrs.uncorrectable > 0 {
		critical = append(critical, fmt.Sprintf("Uncorrectable sectors detected: %d", attrs.uncorrectable))
	}
	if attrs.spinRetries > 0 {
		warnings = append(warnings, fmt.Sprintf("Spin retry events: %d", attrs.spinRetries))
	}

	report := SMARTReport{
		HealthPassed:   healthPassed,
		Details:        details,
		CriticalIssues: critical,
		Warnings:       warnings,
	}
	switch {
	case len(critical) > 0:
		report.Status = SMARTFailed
		report.Message = "CRITICAL: Drive has problems"
	case len(warnings) > 0:
		report.Status = SMARTWarning
		report.Message = "WARNING: Drive shows minor issues"
	default:
		report.Status = SMARTPassed
		report.Message = "PASSED: Drive appears healthy"
	}
	return report
}

// CheckSMART runs the smartctl probe sequence against a device. A
// missing smartctl binary or a device without SMART support yields an
// unavailable report, not an error.
func CheckSMART(device string) SMARTReport {
	infoOut, err := exec.Command("smartctl", "-i", device).CombinedOutput()
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return SMARTReport{
				Status:  SMARTUnavailable,
				Message: "smartctl utility not installed",
				Details: []string{"Install smartmontools package"},
			}
		}
		if strings.Contains(string(infoOut), "SMART support is: Unavailable") {
			return SMARTReport{
				Status:  SMARTUnavailable,
				Message: "SMART not supported on this device",
			}
		}
	}

	healthOut, _ := exec.Command("smartctl", "-H", device).CombinedOutput()
	attrOut, _ := exec.Command("smartctl", "-A", device).CombinedOutput()
	return EvaluateSMART(string(healthOut), string(attrOut))
}

// SmartctlOutput runs smartctl with a display flag (-a or -x) and
// returns its raw output for the scrollable viewer. smartctl exits
// non-zero on unhealthy drives while still printing a full report, so
// output is returned whenever there is any.
func SmartctlOutput(device, flag string) (string, error) {
	out, err := exec.Command("smartctl", flag, device).CombinedOutput()
	if len(out) > 0 {
		return string(out), nil
	}
	if err != nil {
		return "", fmt.Errorf("smartctl %s %s: %w", flag, device, err)
	}
	return "", nil
}
