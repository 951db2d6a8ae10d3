package imaging

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ChecksumAlgo describes one hashing tool and the companion file it
// produces next to an image.
type ChecksumAlgo struct {
	Name      string
	Command   string
	Extension string
}

var (
	ChecksumMD5    = ChecksumAlgo{Name: "MD5", Command: "md5sum", Extension: ".md5"}
	ChecksumSHA256 = ChecksumAlgo{Name: "SHA-256", Command: "sha256sum", Extension: ".sha256"}
)

// CreateChecksum hashes file and writes "<file><ext>" beside it,
// returning the checksum line.
func CreateChecksum(ctx context.Context, algo ChecksumAlgo, file string) (string, error) {
	out, err := exec.CommandContext(ctx, algo.Command, file).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", algo.Command, file, err)
	}
	line := strings.TrimSpace(string(out))
	sumFile := file + algo.Extension
	if err := os.WriteFile(sumFile, []byte(line+"\n"), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", sumFile, err)
	}
	return line, nil
}

// FindChecksum looks for a companion checksum file next to an image,
// preferring SHA-256 over MD5.
func FindChecksum(imageFile string) (ChecksumAlgo, string, bool) {
	for _, algo := range []ChecksumAlgo{ChecksumSHA256, ChecksumMD5} {
		sumFile := imageFile + algo.Extension
		if _, err := os.Stat(sumFile); err == nil {
			return algo, sumFile, true
		}
	}
	return ChecksumAlgo{}, "", false
}

// VerifyChecksum re-hashes the image and compares it against the
// recorded checksum file.
func VerifyChecksum(ctx context.Context, algo ChecksumAlgo, sumFile string) error {
	out, err := exec.CommandContext(ctx, algo.Command, "-c", sumFile).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%s verification failed: %s", algo.Name, detail)
	}
	return nil
}
