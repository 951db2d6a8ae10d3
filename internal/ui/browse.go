package ui

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/opensolutionsgroup/ddi/internal/format"
	"github.com/opensolutionsgroup/ddi/internal/remote"
)

// browseRowKind classifies one row of the remote browser menu.
type browseRowKind int

const (
	rowHere browseRowKind = iota // "select this directory"
	rowUp
	rowDir
	rowFile
)

type browseRow struct {
	kind browseRowKind
	name string
}

// remoteBrowser walks a remote tree one menu at a time. Directories
// always show; files only when they match one of the extensions. A nil
// extension list means the browser picks a directory, not a file, and
// offers a select-this-directory entry at the top.
type remoteBrowser struct {
	target remote.Target
	path   string
	exts   []string
	rows   []browseRow
}

func newRemoteBrowser(target remote.Target, start string, exts []string) *remoteBrowser {
	return &remoteBrowser{target: target, path: start, exts: exts}
}

// menu lists the current remote directory and builds the selection
// menu for it.
func (b *remoteBrowser) menu(ctx context.Context) (*menuDialog, error) {
	entries, err := remote.ListDirectory(ctx, b.target, b.path)
	if err != nil {
		return nil, err
	}
	return b.build(entries), nil
}

func (b *remoteBrowser) build(entries []remote.Entry) *menuDialog {
	b.rows = b.rows[:0]
	var items []string

	if b.exts == nil {
		b.rows = append(b.rows, browseRow{kind: rowHere})
		items = append(items, "<Select this directory>")
	}
	if b.path != "/" {
		b.rows = append(b.rows, browseRow{kind: rowUp})
		items = append(items, "../")
	}
	for _, e := range entries {
		switch {
		case e.IsDir:
			b.rows = append(b.rows, browseRow{kind: rowDir, name: e.Name})
			items = append(items, e.Name+"/")
		case b.matches(e.Name):
			b.rows = append(b.rows, browseRow{kind: rowFile, name: e.Name})
			items = append(items, fmt.Sprintf("%-40s %10s", e.Name, format.Bytes(e.Size)))
		}
	}
	title := fmt.Sprintf("%s@%s:%s", b.target.User, b.target.Host, b.path)
	return newMenu(title, items)
}

func (b *remoteBrowser) matches(name string) bool {
	for _, ext := range b.exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// choose applies one menu selection. It returns the picked path and
// true when browsing is over; descending or ascending returns false
// and the caller shows the rebuilt menu.
func (b *remoteBrowser) choose(index int) (string, bool) {
	if index < 0 || index >= len(b.rows) {
		return "", false
	}
	switch row := b.rows[index]; row.kind {
	case rowHere:
		return b.path, true
	case rowUp:
		b.path = path.Dir(b.path)
		if b.path == "" {
			b.path = "/"
		}
		return "", false
	case rowDir:
		b.path = path.Join(b.path, row.name)
		return "", false
	default:
		return path.Join(b.path, row.name), true
	}
}
