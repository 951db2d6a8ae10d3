package imaging

import (
	"strings"
	"testing"
	"time"
)

func TestBackupCommand(t *testing.T) {
	plain := BackupCommand("/dev/sdb", "/images/a.img", "64K", "conv=sync,noerror", Compressions[0])
	want := `dd if="/dev/sdb" of="/images/a.img" conv=sync,noerror bs=64K status=progress`
	if plain != want {
		t.Errorf("plain backup = %q, want %q", plain, want)
	}

	gz := BackupCommand("/dev/sdb", "/images/a.img.gz", "64K", "conv=sync,noerror", Compressions[1])
	wantGz := `dd if="/dev/sdb" conv=sync,noerror bs=64K status=progress | gzip -c > "/images/a.img.gz"`
	if gz != wantGz {
		t.Errorf("gzip backup = %q, want %q", gz, wantGz)
	}
}

func TestRestoreCommand(t *testing.T) {
	plain := RestoreCommand("/images/a.img", "/dev/sdb", "64K", "conv=sync,noerror", Compressions[0])
	want := `dd if="/images/a.img" of="/dev/sdb" conv=sync,noerror bs=64K status=progress`
	if plain != want {
		t.Errorf("plain restore = %q, want %q", plain, want)
	}

	zst := RestoreCommand("/images/a.img.zst", "/dev/sdb", "64K", "conv=sync,noerror", Compressions[3])
	wantZst := `zstd -dc "/images/a.img.zst" | dd of="/dev/sdb" conv=sync,noerror bs=64K status=progress`
	if zst != wantZst {
		t.Errorf("zstd restore = %q, want %q", zst, wantZst)
	}
}

func TestNetworkBackupCommand(t *testing.T) {
	plain := NetworkBackupCommand("/dev/sdb", "root@nas", 22, "/backups/a.img",
		"64K", "conv=sync,noerror", Compressions[0])
	want := `dd if="/dev/sdb" conv=sync,noerror bs=64K status=progress | ssh -p 22 root@nas "cat > '/backups/a.img'"`
	if plain != want {
		t.Errorf("plain network backup = %q, want %q", plain, want)
	}

	gz := NetworkBackupCommand("/dev/sdb", "root@nas", 2222, "/backups/a.img.gz",
		"64K", "", Compressions[1])
	wantGz := `dd if="/dev/sdb" bs=64K status=progress | gzip -c | ssh -p 2222 root@nas "cat > '/backups/a.img.gz'"`
	if gz != wantGz {
		t.Errorf("gzip network backup = %q, want %q", gz, wantGz)
	}
}

func TestNetworkRestoreCommand(t *testing.T) {
	plain := NetworkRestoreCommand("root@nas", 22, "/backups/a.img", "/dev/sdb",
		"64K", "conv=sync,noerror", Compressions[0])
	want := `ssh -p 22 root@nas "cat '/backups/a.img'" | dd of="/dev/sdb" conv=sync,noerror bs=64K status=progress`
	if plain != want {
		t.Errorf("plain network restore = %q, want %q", plain, want)
	}

	gz := NetworkRestoreCommand("root@nas", 22, "/backups/a.img.gz", "/dev/sdb",
		"64K", "", Compressions[1])
	wantGz := `ssh -p 22 root@nas "cat '/backups/a.img.gz'" | gzip -dc | dd of="/dev/sdb" bs=64K status=progress`
	if gz != wantGz {
		t.Errorf("gzip network restore = %q, want %q", gz, wantGz)
	}

	// A remote path with a single quote must not break out of the quoting.
	quoted := NetworkRestoreCommand("root@nas", 22, "/backups/bob's.img", "/dev/sdb",
		"64K", "", Compressions[0])
	if !strings.Contains(quoted, `'/backups/bob'\''s.img'`) {
		t.Errorf("quoting = %q, want escaped single quote", quoted)
	}
}

func TestCloneCommand(t *testing.T) {
	got := CloneCommand("/dev/sdb", "/dev/sdc", "1M", "conv=sync,noerror")
	want := `dd if="/dev/sdb" of="/dev/sdc" conv=sync,noerror bs=1M status=progress`
	if got != want {
		t.Errorf("clone = %q, want %q", got, want)
	}
}

func TestWipeCommand(t *testing.T) {
	got := WipeCommand(WipePass{Source: "/dev/zero", Label: "zeros"}, "/dev/sdb", "64K", "")
	want := `dd if=/dev/zero of="/dev/sdb" bs=64K status=progress`
	if got != want {
		t.Errorf("wipe = %q, want %q", got, want)
	}

	got = WipeCommand(WipePass{Pattern: 0xFF, Label: "pattern 0xFF"}, "/dev/sdb", "64K", "conv=sync,noerror")
	want = `tr '\000' '\377' < /dev/zero | dd of="/dev/sdb" conv=sync,noerror bs=64K status=progress`
	if got != want {
		t.Errorf("pattern wipe = %q, want %q", got, want)
	}
}

func TestWipeSchemePassCounts(t *testing.T) {
	wantCounts := []int{1, 1, 3, 7, 35}
	if len(WipeSchemes) != len(wantCounts) {
		t.Fatalf("got %d schemes, want %d", len(WipeSchemes), len(wantCounts))
	}
	for i, scheme := range WipeSchemes {
		if len(scheme.Passes) != wantCounts[i] {
			t.Errorf("%s: %d passes, want %d", scheme.Name, len(scheme.Passes), wantCounts[i])
		}
	}
}

func TestCompressionForFile(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"backup.img.gz", "gzip -dc"},
		{"backup.img.zst", "zstd -dc"},
		{"backup.img.xz", "xz -dc"},
		{"backup.img", ""},
	}
	for _, tt := range tests {
		if got := CompressionForFile(tt.file).Decompress; got != tt.want {
			t.Errorf("CompressionForFile(%q).Decompress = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	got := GenerateFilename("laptop", "/dev/sdb", ".img.gz", now)
	if got != "laptop_sdb_20250314_092653.img.gz" {
		t.Errorf("GenerateFilename = %q", got)
	}

	// Empty base falls back to the hostname; just check the shape.
	fallback := GenerateFilename("", "/dev/nvme0n1", ".img", now)
	if !strings.HasSuffix(fallback, "_nvme0n1_20250314_092653.img") {
		t.Errorf("fallback filename = %q, want hostname prefix with device and stamp", fallback)
	}
	if strings.HasPrefix(fallback, "_") {
		t.Errorf("fallback filename %q has empty base", fallback)
	}
}

func TestParseGzipList(t *testing.T) {
	out := `         compressed        uncompressed  ratio uncompressed_name
            1739845          1048576000  99.8% backup.img
`
	if got := ParseGzipList(out); got != 1048576000 {
		t.Errorf("ParseGzipList = %d, want 1048576000", got)
	}
	if got := ParseGzipList("garbage"); got != 0 {
		t.Errorf("ParseGzipList(garbage) = %d, want 0", got)
	}
}
