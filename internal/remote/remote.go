// Package remote probes SSH and NFS destinations, lists remote
// directories and mounts NFS exports, all through the system
// ssh/showmount/mount binaries. SSH image transfer itself rides on the
// shell pipelines built by the imaging package.
package remote

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Target identifies an SSH endpoint.
type Target struct {
	User string
	Host string
	Port int

	// ConnectTimeout bounds the ssh connection attempt. Zero means
	// the 5 second default.
	ConnectTimeout time.Duration
}

func (t Target) connectTimeout() time.Duration {
	if t.ConnectTimeout > 0 {
		return t.ConnectTimeout
	}
	return 5 * time.Second
}

func (t Target) addr() string {
	return fmt.Sprintf("%s@%s", t.User, t.Host)
}

// CheckSSH verifies that the target accepts a non-interactive session
// by running a marker echo. BatchMode keeps ssh from blocking on a
// password prompt.
func CheckSSH(ctx context.Context, t Target) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ssh",
		"-p", strconv.Itoa(t.Port),
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(t.connectTimeout().Seconds())),
		"-o", "BatchMode=yes",
		t.addr(), "echo", "SSH_OK")
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("ssh %s: connection timeout", t.addr())
	}
	if err != nil || !strings.Contains(string(out), "SSH_OK") {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = "connection failed"
		}
		return fmt.Errorf("ssh %s: %s", t.addr(), detail)
	}
	return nil
}

// SplitNFSPath parses "server:/export" into its parts.
func SplitNFSPath(nfsPath string) (server, path string, err error) {
	i := strings.Index(nfsPath, ":")
	if i < 0 {
		return "", "", fmt.Errorf("invalid NFS path %q (expected server:/path)", nfsPath)
	}
	return nfsPath[:i], nfsPath[i+1:], nil
}

// CheckNFS verifies that the server behind an NFS path answers export
// queries.
func CheckNFS(ctx context.Context, nfsPath string) error {
	server, _, err := SplitNFSPath(nfsPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "showmount", "-e", server).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("nfs %s: connection timeout", server)
	}
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = "server not accessible"
		}
		return fmt.Errorf("nfs %s: %s", server, detail)
	}
	return nil
}

// MountNFS mounts an export at the given point, creating the
// directory first.
func MountNFS(ctx context.Context, nfsPath, mountPoint string) error {
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return fmt.Errorf("mount point %s: %w", mountPoint, err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "mount", "-t", "nfs", nfsPath, mountPoint).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("mount %s: timeout", nfsPath)
	}
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("mount %s: %s", nfsPath, detail)
	}
	return nil
}

// UnmountNFS unmounts a temporary mount point and removes the
// directory.
func UnmountNFS(mountPoint string) error {
	out, err := exec.Command("umount", mountPoint).CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("umount %s: %s", mountPoint, detail)
	}
	_ = os.Remove(mountPoint)
	return nil
}

// permsRe recognizes a mode column such as "drwxr-xr-x", which is how
// entry lines are told apart from ls error text.
var permsRe = regexp.MustCompile(`^[-dlbcps][-rwxsStT]{9}[.+@]?$`)

// Entry is one remote directory entry.
type Entry struct {
	Name        string
	IsDir       bool
	Size        int64
	Date        string
	Permissions string
}

// ParseListing parses "ls -la" output into entries, directories first
// then by name. "." and ".." are dropped; symlinks count as
// directories so the browser can descend into them.
func ParseListing(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "total") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 9 {
			continue
		}

		perms := fields[0]
		if !permsRe.MatchString(perms) {
			continue
		}
		isDir := strings.HasPrefix(perms, "d")
		isLink := strings.HasPrefix(perms, "l")

		size, _ := strconv.ParseInt(fields[4], 10, 64)
		// Names may contain spaces; everything past the date columns
		// belongs to the name.
		name := strings.Join(fields[8:], " ")
		if name == "." || name == ".." {
			continue
		}
		if isLink {
			if arrow := strings.Index(name, "->"); arrow >= 0 {
				name = strings.TrimSpace(name[:arrow])
			}
		}

		entries = append(entries, Entry{
			Name:        name,
			IsDir:       isDir || isLink,
			Size:        size,
			Date:        fmt.Sprintf("%s %s %s", fields[5], fields[6], fields[7]),
			Permissions: perms,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return entries
}

// ListDirectory lists a remote directory over SSH.
func ListDirectory(ctx context.Context, t Target, path string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	safe := strings.ReplaceAll(path, `'`, `'\''`)
	cmd := exec.CommandContext(ctx, "ssh",
		"-p", strconv.Itoa(t.Port),
		"-o", "ConnectTimeout=10",
		t.addr(), fmt.Sprintf(`ls -la '%s'`, safe))
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("ssh %s: connection timeout", t.addr())
	}
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("listing %s: %s", path, detail)
	}
	return ParseListing(string(out)), nil
}
