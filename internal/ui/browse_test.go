package ui

import (
	"testing"

	"github.com/opensolutionsgroup/ddi/internal/remote"
)

func browseEntries() []remote.Entry {
	return []remote.Entry{
		{Name: "backups", IsDir: true},
		{Name: "notes.txt", Size: 120},
		{Name: "sdb.img.gz", Size: 1739845},
		{Name: "work", IsDir: true},
	}
}

func TestBrowserDirectoryMode(t *testing.T) {
	b := newRemoteBrowser(remote.Target{User: "root", Host: "nas"}, "/home", nil)
	menu := b.build(browseEntries())

	want := []string{"<Select this directory>", "../", "backups/", "work/"}
	if len(menu.items) != len(want) {
		t.Fatalf("got %d items %v, want %d", len(menu.items), menu.items, len(want))
	}
	for i, item := range want {
		if menu.items[i] != item {
			t.Errorf("item[%d] = %q, want %q", i, menu.items[i], item)
		}
	}
	if menu.title != "root@nas:/home" {
		t.Errorf("title = %q", menu.title)
	}

	// Picking the sentinel returns the directory itself.
	picked, finished := b.choose(0)
	if !finished || picked != "/home" {
		t.Errorf("choose(0) = %q, %v, want /home, true", picked, finished)
	}
}

func TestBrowserFileMode(t *testing.T) {
	b := newRemoteBrowser(remote.Target{User: "root", Host: "nas"}, "/home", imageExtensions)
	menu := b.build(browseEntries())

	// No sentinel, and only the image file survives the filter.
	if menu.items[0] != "../" {
		t.Errorf("item[0] = %q, want ../", menu.items[0])
	}
	if len(menu.items) != 4 {
		t.Fatalf("got %d items %v, want 4", len(menu.items), menu.items)
	}

	// Rows keep listing order: ../, backups/, the image, work/.
	picked, finished := b.choose(2)
	if !finished || picked != "/home/sdb.img.gz" {
		t.Errorf("file pick = %q, %v, want /home/sdb.img.gz, true", picked, finished)
	}
}

func TestBrowserNavigation(t *testing.T) {
	b := newRemoteBrowser(remote.Target{User: "root", Host: "nas"}, "/home", nil)
	b.build(browseEntries())

	// Descend into backups/, then come back up.
	if _, finished := b.choose(2); finished {
		t.Fatal("descending should continue the browse")
	}
	if b.path != "/home/backups" {
		t.Errorf("path after descend = %q", b.path)
	}
	b.build(nil)
	if _, finished := b.choose(1); finished {
		t.Fatal("ascending should continue the browse")
	}
	if b.path != "/home" {
		t.Errorf("path after ascend = %q", b.path)
	}

	// At the root there is no parent entry.
	b.path = "/"
	menu := b.build(nil)
	if len(menu.items) != 1 || menu.items[0] != "<Select this directory>" {
		t.Errorf("root items = %v", menu.items)
	}

	// Out-of-range selections are ignored.
	if _, finished := b.choose(99); finished {
		t.Error("choose(99) should not finish the browse")
	}
}
