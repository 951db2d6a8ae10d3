package device

import (
	"strings"
	"testing"
)

func TestParseLsblk(t *testing.T) {
	out := `sda   500107862016 Samsung SSD 860
sdb    31914983424 Cruzer Glide
loop0    719323136
nvme0n1 1024209543168 WD_BLACK SN770 1TB
garbage
`
	devices := ParseLsblk(out)
	if len(devices) != 3 {
		t.Fatalf("got %d devices, want 3 (loop and garbage skipped)", len(devices))
	}

	if devices[0].Name != "/dev/sda" || devices[0].Bytes != 500107862016 {
		t.Errorf("first device = %+v", devices[0])
	}
	if devices[0].Model != "Samsung SSD 860" {
		t.Errorf("model = %q, want multi-word model preserved", devices[0].Model)
	}
	if devices[1].Size != "29.72 GiB" {
		t.Errorf("size = %q, want %q", devices[1].Size, "29.72 GiB")
	}
	if devices[2].Name != "/dev/nvme0n1" {
		t.Errorf("nvme device = %q", devices[2].Name)
	}
}

func TestParseLsblkMissingModel(t *testing.T) {
	devices := ParseLsblk("sdb 31914983424\n")
	if len(devices) != 1 {
		t.Fatalf("got %d devices, want 1", len(devices))
	}
	if devices[0].Model != "N/A" {
		t.Errorf("model = %q, want N/A", devices[0].Model)
	}
}

func TestMountsOf(t *testing.T) {
	procMounts := `/dev/sda1 /boot ext4 rw 0 0
/dev/sda2 / ext4 rw 0 0
/dev/sdb1 /mnt/usb vfat rw 0 0
tmpfs /tmp tmpfs rw 0 0
`
	tests := []struct {
		device string
		want   int
	}{
		{"/dev/sda", 2},
		{"/dev/sdb", 1},
		{"/dev/sdb1", 1},
		{"/dev/sdc", 0},
	}
	for _, tt := range tests {
		if got := MountsOf(procMounts, tt.device); len(got) != tt.want {
			t.Errorf("MountsOf(%q) = %d entries, want %d", tt.device, len(got), tt.want)
		}
	}

	mounts := MountsOf(procMounts, "/dev/sda")
	if mounts[0].MountPoint != "/boot" || mounts[1].MountPoint != "/" {
		t.Errorf("mount points = %v", mounts)
	}
}

func TestParseFdiskOptimal(t *testing.T) {
	out := `Disk /dev/sdb: 29.72 GiB, 31914983424 bytes, 62333952 sectors
Units: sectors of 1 * 512 = 512 bytes
Sector size (logical/physical): 512 bytes / 512 bytes
I/O size (minimum/optimal): 512 bytes / 33553920 bytes
`
	if got := ParseFdiskOptimal(out); got != 33553920 {
		t.Errorf("ParseFdiskOptimal = %d, want 33553920", got)
	}
	if got := ParseFdiskOptimal("no such line here"); got != 0 {
		t.Errorf("ParseFdiskOptimal(no match) = %d, want 0", got)
	}
}

func TestRecommendBlockSize(t *testing.T) {
	tests := []struct {
		name                       string
		logical, physical, optimal int64
		want                       int64
	}{
		{"sane optimal wins", 512, 4096, 524288, 524288},
		{"huge optimal ignored", 512, 4096, 33553920, 65536},
		{"4k physical floors at 64K", 512, 4096, 0, 65536},
		{"large physical kept", 512, 131072, 0, 131072},
		{"legacy drive default", 512, 512, 0, 65536},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendBlockSize(tt.logical, tt.physical, tt.optimal); got != tt.want {
				t.Errorf("RecommendBlockSize(%d,%d,%d) = %d, want %d",
					tt.logical, tt.physical, tt.optimal, got, tt.want)
			}
		})
	}
}

func TestFormatBlockSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512"},
		{4096, "4K"},
		{65536, "64K"},
		{1048576, "1M"},
		{4194304, "4M"},
	}
	for _, tt := range tests {
		if got := FormatBlockSize(tt.n); got != tt.want {
			t.Errorf("FormatBlockSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestEvaluateSMARTHealthy(t *testing.T) {
	health := "SMART overall-health self-assessment test result: PASSED\n"
	attrs := `ID# ATTRIBUTE_NAME          FLAG     VALUE WORST THRESH TYPE      UPDATED  WHEN_FAILED RAW_VALUE
  5 Reallocated_Sector_Ct   0x0033   100   100   010    Pre-fail  Always       -       0
  9 Power_On_Hours          0x0032   099   099   000    Old_age   Always       -       1742
194 Temperature_Celsius     0x0022   064   052   000    Old_age   Always       -       36
197 Current_Pending_Sector  0x0012   100   100   000    Old_age   Always       -       0
`
	report := EvaluateSMART(health, attrs)
	if report.Status != SMARTPassed {
		t.Fatalf("status = %s, want passed; critical = %v", report.Status, report.CriticalIssues)
	}
	if !report.HealthPassed {
		t.Error("HealthPassed = false")
	}
	joined := strings.Join(report.Details, "\n")
	if !strings.Contains(joined, "Power On Hours: 1742") {
		t.Errorf("details missing power-on hours: %v", report.Details)
	}
	if !strings.Contains(joined, "Temperature: 36") {
		t.Errorf("details missing temperature: %v", report.Details)
	}
}

func TestEvaluateSMARTFailing(t *testing.T) {
	health := "SMART overall-health self-assessment test result: FAILED!\n"
	attrs := `  5 Reallocated_Sector_Ct   0x0033   097   097   010    Pre-fail  Always       -       24
197 Current_Pending_Sector  0x0012   100   100   000    Old_age   Always       -       8
 10 Spin_Retry_Count        0x0013   100   100   097    Pre-fail  Always       -       2
`
	report := EvaluateSMART(health, attrs)
	if report.Status != SMARTFailed {
		t.Fatalf("status = %s, want failed", report.Status)
	}
	if len(report.CriticalIssues) != 3 {
		t.Errorf("critical issues = %v, want health + reallocated + pending", report.CriticalIssues)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("warnings = %v, want spin retries", report.Warnings)
	}
}

func TestEvaluateSMARTWarningOnly(t *testing.T) {
	health := "SMART overall-health self-assessment test result: PASSED\n"
	attrs := " 10 Spin_Retry_Count        0x0013   100   100   097    Pre-fail  Always       -       1\n"
	report := EvaluateSMART(health, attrs)
	if report.Status != SMARTWarning {
		t.Errorf("status = %s, want warning", report.Status)
	}
}

func TestIsBlockNode(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/dev/sdb", true},
		{"/dev/sdb1", true},
		{"/dev/nvme0n1", true},
		{"/dev/mmcblk0", true},
		{"/dev/tty3", false},
		{"/dev/null", false},
	}
	for _, tt := range tests {
		if got := isBlockNode(tt.path); got != tt.want {
			t.Errorf("isBlockNode(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
