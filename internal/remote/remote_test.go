package remote

import "testing"

func TestSplitNFSPath(t *testing.T) {
	server, path, err := SplitNFSPath("backup-host:/exports/images")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server != "backup-host" || path != "/exports/images" {
		t.Errorf("got (%q, %q)", server, path)
	}

	if _, _, err := SplitNFSPath("/local/path"); err == nil {
		t.Error("expected error for path without server")
	}
}

func TestParseListing(t *testing.T) {
	out := `total 48
drwxr-xr-x 2 backup backup     4096 Nov 29 10:30 .
drwxr-xr-x 5 backup backup     4096 Nov 28 09:00 ..
-rw-r--r-- 1 backup backup 10485760 Nov 29 10:31 server_sda_20251129_103100.img.gz
drwxr-xr-x 2 backup backup     4096 Nov 20 14:02 archive
-rw-r--r-- 1 backup backup      123 Nov 29 10:31 notes with spaces.txt
lrwxrwxrwx 1 backup backup       12 Nov 21 08:00 latest -> archive
`
	entries := ParseListing(out)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4 (dot entries dropped)", len(entries))
	}

	// Directories (including the symlink) sort first, then files by name.
	if !entries[0].IsDir || entries[0].Name != "archive" {
		t.Errorf("entries[0] = %+v, want directory archive", entries[0])
	}
	if !entries[1].IsDir || entries[1].Name != "latest" {
		t.Errorf("entries[1] = %+v, want symlink latest as directory", entries[1])
	}
	if entries[2].Name != "notes with spaces.txt" {
		t.Errorf("entries[2].Name = %q, want space-containing name kept", entries[2].Name)
	}
	if entries[3].Size != 10485760 {
		t.Errorf("image size = %d, want 10485760", entries[3].Size)
	}
	if entries[3].Date != "Nov 29 10:31" {
		t.Errorf("image date = %q", entries[3].Date)
	}
}

func TestParseListingErrorText(t *testing.T) {
	if got := ParseListing("ls: cannot access '/nope': No such file or directory"); len(got) != 0 {
		t.Errorf("got %d entries from error output, want 0", len(got))
	}
}
