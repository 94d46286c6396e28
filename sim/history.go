package sim

// HistoryEntry records one committed placement.
type HistoryEntry struct {
	SpeciesID int     `json:"species_id"`
	Diameter  float64 `json:"diameter"`
	Softness  float64 `json:"softness"`
	Marker    int64   `json:"marker"` // tick at which the event was placed
}

// History is a fixed-capacity window over the most recent placements, oldest first.
// Backed by a ring buffer so Push never allocates once constructed.
type History struct {
	entries []HistoryEntry
	head    int // index of the oldest entry
	size    int
}

// NewHistory creates an empty window holding at most capacity entries (capacity >= 1).
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{entries: make([]HistoryEntry, capacity)}
}

// Cap returns the window capacity.
func (h *History) Cap() int { return len(h.entries) }

// Len returns the number of entries currently held.
func (h *History) Len() int { return h.size }

// Push appends an entry, evicting the oldest when the window is full.
func (h *History) Push(e HistoryEntry) {
	if h.size < len(h.entries) {
		h.entries[(h.head+h.size)%len(h.entries)] = e
		h.size++
		return
	}
	h.entries[h.head] = e
	h.head = (h.head + 1) % len(h.entries)
}

// At returns the i-th entry, 0 being the oldest.
func (h *History) At(i int) HistoryEntry {
	return h.entries[(h.head+i)%len(h.entries)]
}

// Last returns the most recent entry, if any.
func (h *History) Last() (HistoryEntry, bool) {
	if h.size == 0 {
		return HistoryEntry{}, false
	}
	return h.At(h.size - 1), true
}

// Entries returns a copy of the window, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}
