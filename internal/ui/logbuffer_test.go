package ui

import (
	"fmt"
	"sync"
	"testing"
)

func fillBuffer(n int) *LogBuffer {
	b := NewLogBuffer()
	for i := 0; i < n; i++ {
		b.Append(fmt.Sprintf("line %d", i))
	}
	return b
}

func TestLogBufferFollowsBottom(t *testing.T) {
	b := fillBuffer(20)
	visible := b.VisibleSlice(5)
	if len(visible) != 5 {
		t.Fatalf("got %d visible lines, want 5", len(visible))
	}
	if visible[4] != "line 19" {
		t.Errorf("last visible = %q, want newest line", visible[4])
	}

	b.Append("line 20")
	visible = b.VisibleSlice(5)
	if visible[4] != "line 20" {
		t.Errorf("after append last visible = %q, want line 20", visible[4])
	}
}

func TestLogBufferScrollUpUnpins(t *testing.T) {
	b := fillBuffer(20)
	b.ScrollUp(3, 5)
	if b.Following() {
		t.Error("still following after scroll up")
	}
	visible := b.VisibleSlice(5)
	if visible[0] != "line 12" {
		t.Errorf("first visible = %q, want line 12", visible[0])
	}

	// New lines must not move an unpinned view.
	b.Append("line 20")
	if got := b.VisibleSlice(5)[0]; got != "line 12" {
		t.Errorf("first visible after append = %q, want line 12", got)
	}
}

func TestLogBufferScrollDownResumesFollow(t *testing.T) {
	b := fillBuffer(20)
	b.ScrollUp(100, 5)
	if got := b.VisibleSlice(5)[0]; got != "line 0" {
		t.Errorf("scroll past top: first visible = %q, want line 0", got)
	}

	b.ScrollDown(100, 5)
	if !b.Following() {
		t.Error("not following after scrolling to the bottom")
	}
}

func TestLogBufferScrollToBottom(t *testing.T) {
	b := fillBuffer(20)
	b.ScrollToTop()
	if b.Following() {
		t.Error("following after ScrollToTop")
	}
	b.ScrollToBottom()
	if !b.Following() {
		t.Error("not following after ScrollToBottom")
	}
	if got := b.VisibleSlice(5)[4]; got != "line 19" {
		t.Errorf("last visible = %q, want newest", got)
	}
}

func TestLogBufferShortContent(t *testing.T) {
	b := fillBuffer(3)
	visible := b.VisibleSlice(8)
	if len(visible) != 3 {
		t.Errorf("got %d lines, want all 3", len(visible))
	}
	b.ScrollUp(5, 8)
	if got := len(b.VisibleSlice(8)); got != 3 {
		t.Errorf("after scroll got %d lines, want 3", got)
	}
}

func TestLogBufferConcurrentAppend(t *testing.T) {
	b := NewLogBuffer()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.Append(fmt.Sprintf("writer %d line %d", n, j))
			}
		}(i)
	}
	wg.Wait()
	if b.Len() != 1000 {
		t.Errorf("len = %d, want 1000", b.Len())
	}
}
