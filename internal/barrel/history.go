package barrel

// History is the newest-first log of session records. At most the head
// may be Open; it is the single stored view of the live session.
type History struct {
	records []HistoryRecord
}

func NewHistory() *History {
	return &History{}
}

func (h *History) Prepend(rec HistoryRecord) {
	h.records = append([]HistoryRecord{rec}, h.records...)
}

// RemoveHeadIfOpen drops the first record only when it is the Open placeholder.
func (h *History) RemoveHeadIfOpen() bool {
	if len(h.records) == 0 || !h.records[0].Open() {
		return false
	}
	h.records = h.records[1:]
	return true
}

// refreshHead replaces the live figures of the Open head record.
func (h *History) refreshHead(consumed, owed map[string]float64) bool {
	if len(h.records) == 0 || !h.records[0].Open() {
		return false
	}
	h.records[0].Consumed = consumed
	h.records[0].Owed = owed
	return true
}

// List returns a deep copy, newest first.
func (h *History) List() []HistoryRecord {
	out := make([]HistoryRecord, 0, len(h.records))
	for _, rec := range h.records {
		out = append(out, rec.clone())
	}
	return out
}

func (h *History) Clear() {
	h.records = nil
}

func (h *History) Len() int {
	return len(h.records)
}
