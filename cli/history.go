package cli

// History is a bounded command log with cursor-based navigation. The
// console uses it for "again" and /history; the TUI for Up/Down recall.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates a history holding at most max entries.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push records a command. Blank input and consecutive duplicates are
// skipped; the oldest entry drops once the log is full.
func (h *History) Push(cmd string) {
	if cmd == "" {
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, cmd)
}

// Last returns the most recent entry.
func (h *History) Last() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

// Recent returns up to n entries, oldest first.
func (h *History) Recent(n int) []string {
	if n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]string, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int { return len(h.entries) }

// Prev steps back to an older entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward to a newer entry. Stepping past the newest returns
// ("", false) and leaves navigation.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation.
func (h *History) ResetCursor() {
	h.cursor = -1
}
