package ui

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// overlayModel is a full-content scrollable screen. handleKey and
// handleMouse report true when the overlay should close.
type overlayModel interface {
	handleKey(msg tea.KeyMsg) bool
	handleMouse(msg tea.MouseMsg) bool
	resize(width, height int)
	view(colors palette) string
}

// textOverlay is a full-content scrollable text screen, used for the
// help page, the about page and the smartctl report viewer.
type textOverlay struct {
	title  string
	footer string
	vp     viewport.Model
}

func newOverlay(title, content, footer string, width, height int) *textOverlay {
	vp := viewport.New(width-4, height-4)
	vp.SetContent(content)
	return &textOverlay{title: title, footer: footer, vp: vp}
}

// setContent replaces the text and rewinds to the top.
func (o *textOverlay) setContent(content string) {
	o.vp.SetContent(content)
	o.vp.GotoTop()
}

func (o *textOverlay) resize(width, height int) {
	o.vp.Width = width - 4
	o.vp.Height = height - 4
}

// handleKey scrolls, or reports true when the overlay should close.
func (o *textOverlay) handleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "esc", "q", "f1", "f12":
		return true
	}
	o.vp, _ = o.vp.Update(msg)
	return false
}

func (o *textOverlay) handleMouse(msg tea.MouseMsg) bool {
	if msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionRelease {
		return true
	}
	o.vp, _ = o.vp.Update(msg)
	return false
}

func (o *textOverlay) view(colors palette) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.primary).
		Render(o.title)
	footer := lipgloss.NewStyle().
		Foreground(colors.secondary).
		Render(fmt.Sprintf("%s · %3.0f%%", o.footer, o.vp.ScrollPercent()*100))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colors.primary).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", o.vp.View(), "", footer))
}

// helpText is the F1 page.
const helpText = `DDI - block device imaging console

Main menu
  1-9        jump straight to a menu entry
  ↑/↓, j/k   move the selection
  Enter      activate the selected entry
  Esc, q     cancel / back

Everywhere
  Tab        focus the log pane (↑/↓, PgUp/PgDn, Home/End scroll;
             Tab again returns and snaps the log to the newest line)
  F1, ?      this help
  F12        about
  Mouse      left click activates a menu entry,
             right click cancels, wheel scrolls

During an operation
  v          switch between progress bar and block map
  Tab        focus the log pane
  (the copy itself cannot be interrupted from here)

Operations
  Backup     image a device into a file, optionally compressed,
             with optional MD5/SHA-256 checksum files; the file can
             go to the local image directory, over ssh to a remote
             host, or onto a mounted NFS share
  Restore    write an image back onto a device, verifying a
             companion checksum first when one exists; images can
             come from the local directory, an ssh host (browsable),
             or an NFS share
  Clone      copy one device directly onto another
  Wipe       overwrite a device with one of the wipe schemes
  Check      SMART health report and full smartctl output

Destructive steps always ask for the literal word YES.`

func aboutText(version, commit, date string) string {
	return strings.TrimSpace(fmt.Sprintf(`DDI - dd imaging console

Version:  %s
Commit:   %s
Built:    %s
Runtime:  %s %s/%s

Drives dd through compression pipes to image, restore and wipe block
devices, with live progress and a per-block error map read from the
child's diagnostics. Collaborators: lsblk, blockdev, fdisk, smartctl,
mount, umount, gzip/pigz/zstd/xz, ssh, showmount.`,
		version, commit, date,
		runtime.Version(), runtime.GOOS, runtime.GOARCH))
}
