// Package diag keeps the most recent sync trace lines in memory for the admin surface.
package diag

import (
	"fmt"
	"sync"
	"time"
)

// Ring is a bounded, append-only buffer of trace lines. Once full, each new
// line overwrites the oldest.
type Ring struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	now   func() time.Time
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{lines: make([]string, capacity), now: time.Now}
}

// Addf appends a timestamped, formatted line.
func (r *Ring) Addf(format string, args ...any) {
	line := r.now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = line
	r.next = (r.next + 1) % len(r.lines)
	if r.next == 0 {
		r.full = true
	}
}

// Recent returns up to n of the newest lines, oldest first. n <= 0 returns all.
func (r *Ring) Recent(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.lines)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]string, 0, n)
	start := r.next - n
	for i := 0; i < n; i++ {
		idx := (start + i + len(r.lines)) % len(r.lines)
		out = append(out, r.lines[idx])
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.lines)
	}
	return r.next
}
