package commands

import "sync"

// Registry maps Discord user ids to barrel participant ids.
type Registry struct {
	participants map[string]string
	mu           sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		participants: make(map[string]string),
	}
}

func (r *Registry) Get(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.participants[userID]
	return id, ok
}

func (r *Registry) Set(userID, participantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[userID] = participantID
}

func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, userID)
}

// GetOrCreate returns the participant mapped to userID while live reports it
// still exists, and otherwise maps the id returned by create. The whole check
// runs under the write lock, so concurrent calls for one user create at most
// one participant.
func (r *Registry) GetOrCreate(userID string, live func(participantID string) bool, create func() (string, error)) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.participants[userID]; ok {
		if live(id) {
			return id, false, nil
		}
		delete(r.participants, userID)
	}

	id, err := create()
	if err != nil {
		return "", false, err
	}
	r.participants[userID] = id
	return id, true, nil
}
