package imaging

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Compression describes one image compression method.
type Compression struct {
	Name       string // menu label prefix, e.g. "gzip"
	Extension  string // file extension including dot, "" for none
	Compress   string // compressor pipe command, "" for none
	Decompress string // decompressor pipe command, "" for none
}

// Compressions lists the supported methods in menu order.
var Compressions = []Compression{
	{Name: "none", Extension: "", Compress: "", Decompress: ""},
	{Name: "gzip", Extension: ".gz", Compress: "gzip -c", Decompress: "gzip -dc"},
	{Name: "pigz", Extension: ".gz", Compress: "pigz -c", Decompress: "pigz -dc"},
	{Name: "zstd", Extension: ".zst", Compress: "zstd -c", Decompress: "zstd -dc"},
	{Name: "xz", Extension: ".xz", Compress: "xz -c", Decompress: "xz -dc"},
}

// ddOptions renders the shared dd option tail. status=progress is what
// makes dd emit the periodic byte-count lines the monitor parses.
func ddOptions(blockSize, extra string) string {
	opts := fmt.Sprintf("bs=%s status=progress", blockSize)
	if extra != "" {
		opts = extra + " " + opts
	}
	return opts
}

// BackupCommand builds the shell command that images a device into a
// file, optionally through a compressor.
func BackupCommand(device, file, blockSize, extra string, comp Compression) string {
	if comp.Compress == "" {
		return fmt.Sprintf("dd if=%q of=%q %s", device, file, ddOptions(blockSize, extra))
	}
	return fmt.Sprintf("dd if=%q %s | %s > %q", device, ddOptions(blockSize, extra), comp.Compress, file)
}

// RestoreCommand builds the shell command that writes an image file
// back onto a device, decompressing when the method requires it.
func RestoreCommand(file, device, blockSize, extra string, comp Compression) string {
	if comp.Decompress == "" {
		return fmt.Sprintf("dd if=%q of=%q %s", file, device, ddOptions(blockSize, extra))
	}
	return fmt.Sprintf("%s %q | dd of=%q %s", comp.Decompress, file, device, ddOptions(blockSize, extra))
}

// CloneCommand builds the shell command for a device-to-device copy.
func CloneCommand(source, target, blockSize, extra string) string {
	return fmt.Sprintf("dd if=%q of=%q %s", source, target, ddOptions(blockSize, extra))
}

// remoteQuote wraps a remote path for use inside the double-quoted
// command handed to ssh.
func remoteQuote(path string) string {
	return "'" + strings.ReplaceAll(path, `'`, `'\''`) + "'"
}

// NetworkBackupCommand builds the pipeline that images a device into a
// file on a remote host: dd on this side, an optional compressor, and
// a cat on the far side of the ssh connection.
func NetworkBackupCommand(device, userHost string, port int, remotePath, blockSize, extra string, comp Compression) string {
	dd := fmt.Sprintf("dd if=%q %s", device, ddOptions(blockSize, extra))
	recv := fmt.Sprintf(`ssh -p %d %s "cat > %s"`, port, userHost, remoteQuote(remotePath))
	if comp.Compress == "" {
		return dd + " | " + recv
	}
	return dd + " | " + comp.Compress + " | " + recv
}

// NetworkRestoreCommand builds the pipeline that streams a remote
// image file onto a local device, decompressing en route when the
// method requires it.
func NetworkRestoreCommand(userHost string, port int, remoteFile, device, blockSize, extra string, comp Compression) string {
	send := fmt.Sprintf(`ssh -p %d %s "cat %s"`, port, userHost, remoteQuote(remoteFile))
	dd := fmt.Sprintf("dd of=%q %s", device, ddOptions(blockSize, extra))
	if comp.Decompress == "" {
		return send + " | " + dd
	}
	return send + " | " + comp.Decompress + " | " + dd
}

// CompressionForFile picks the decompressing method matching a file
// name, defaulting to none.
func CompressionForFile(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return Compressions[1]
	case strings.HasSuffix(name, ".zst"):
		return Compressions[3]
	case strings.HasSuffix(name, ".xz"):
		return Compressions[4]
	default:
		return Compressions[0]
	}
}

// GenerateFilename builds "<base>_<device>_<timestamp><ext>", using
// the hostname when base is empty.
func GenerateFilename(base, device, extension string, now time.Time) string {
	short := strings.TrimPrefix(device, "/dev/")
	short = strings.ReplaceAll(short, "/", "_")
	stamp := now.Format("20060102_150405")
	if base == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "disk"
		}
		base = host
	}
	return fmt.Sprintf("%s_%s_%s%s", base, short, stamp, extension)
}

// UncompressedSize reads the uncompressed size of a .gz file from
// "gzip -l". Returns 0 when it cannot be determined.
func UncompressedSize(gzPath string) int64 {
	out, err := exec.Command("gzip", "-l", gzPath).Output()
	if err != nil {
		return 0
	}
	return ParseGzipList(string(out))
}

// ParseGzipList extracts the uncompressed size column from "gzip -l"
// output.
func ParseGzipList(out string) int64 {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		return 0
	}
	fields := strings.Fields(lines[1])
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
