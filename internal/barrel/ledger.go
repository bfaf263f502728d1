package barrel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.jetify.com/typeid/v2"
)

const participantPrefix = "participant"

// maxIDAttempts bounds retries when a generator returns an id that is already live.
const maxIDAttempts = 8

// IDGenerator returns a fresh opaque participant id.
type IDGenerator func() (string, error)

// TypeIDGenerator produces time-sortable ids such as "participant_01h455vb4pex5vsknk084sn02q".
func TypeIDGenerator() (string, error) {
	tid, err := typeid.Generate(participantPrefix)
	if err != nil {
		return "", fmt.Errorf("generate participant id: %w", err)
	}
	return tid.String(), nil
}

// Ledger holds participants in registration order together with their
// lifetime consumption counters. It does no locking of its own.
type Ledger struct {
	participants []*Participant
	byID         map[string]*Participant
	newID        IDGenerator
}

func NewLedger(newID IDGenerator) *Ledger {
	if newID == nil {
		newID = TypeIDGenerator
	}
	return &Ledger{
		byID:  make(map[string]*Participant),
		newID: newID,
	}
}

func (l *Ledger) Register(name string) (Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Participant{}, invalid("name", "must not be empty")
	}

	var id string
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return Participant{}, fmt.Errorf("barrel: could not allocate a unique participant id after %d attempts", maxIDAttempts)
		}
		candidate, err := l.newID()
		if err != nil {
			return Participant{}, err
		}
		if _, taken := l.byID[candidate]; candidate != "" && !taken {
			id = candidate
			break
		}
	}

	p := &Participant{ID: id, Name: name}
	l.participants = append(l.participants, p)
	l.byID[id] = p
	return *p, nil
}

// Remove deletes the participant if present. Unknown ids are ignored.
func (l *Ledger) Remove(id string) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	delete(l.byID, id)
	for i, p := range l.participants {
		if p.ID == id {
			l.participants = append(l.participants[:i], l.participants[i+1:]...)
			break
		}
	}
	return true
}

func (l *Ledger) Get(id string) (Participant, bool) {
	p, ok := l.byID[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

func (l *Ledger) RecordConsumption(id string, amount float64) (Participant, error) {
	next, err := l.nextTotal(id, amount)
	if err != nil {
		return Participant{}, err
	}
	p := l.byID[id]
	p.TotalConsumed = next
	return *p, nil
}

// nextTotal returns the lifetime total id would have after drinking amount,
// without recording it.
func (l *Ledger) nextTotal(id string, amount float64) (float64, error) {
	p, ok := l.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	if err := ValidateAmount(amount); err != nil {
		return 0, err
	}
	next := p.TotalConsumed + amount
	if math.IsInf(next, 0) {
		return 0, invalid("amount", "total would overflow")
	}
	return next, nil
}

// ValidateAmount rejects consumption amounts that would break the
// monotonic lifetime counter.
func ValidateAmount(amount float64) error {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return invalid("amount", "must be a finite number")
	case amount < 0:
		return invalid("amount", "must not be negative")
	}
	return nil
}

// List returns participants in registration order.
func (l *Ledger) List() []Participant {
	out := make([]Participant, 0, len(l.participants))
	for _, p := range l.participants {
		out = append(out, *p)
	}
	return out
}

// Leaderboard orders participants by lifetime consumption, highest first.
// Equal totals keep registration order.
func (l *Ledger) Leaderboard() []Participant {
	out := l.List()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalConsumed > out[j].TotalConsumed
	})
	return out
}

// Totals snapshots every participant's counter, keyed by id.
func (l *Ledger) Totals() map[string]float64 {
	totals := make(map[string]float64, len(l.participants))
	for _, p := range l.participants {
		totals[p.ID] = p.TotalConsumed
	}
	return totals
}

func (l *Ledger) ResetAll() {
	for _, p := range l.participants {
		p.TotalConsumed = 0
	}
}

func (l *Ledger) ClearAll() {
	l.participants = nil
	l.byID = make(map[string]*Participant)
}

func (l *Ledger) Len() int {
	return len(l.participants)
}
