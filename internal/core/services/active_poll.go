package services

import "sync"

// ActivePollRegister holds the id of the one poll currently accepting
// votes. It is the only shared in-memory mutable state in the service;
// everything else lives behind the repository. Deliberately not persisted:
// after a restart no votes are accepted until a new poll is created.
type ActivePollRegister struct {
	mu  sync.RWMutex
	id  int64
	set bool
}

func NewActivePollRegister() *ActivePollRegister {
	return &ActivePollRegister{}
}

// Set records the given poll as active, replacing any previous one.
// Called only from the poll creation path.
func (r *ActivePollRegister) Set(id int64) {
	r.mu.Lock()
	r.id = id
	r.set = true
	r.mu.Unlock()
}

// Get returns the active poll id, or false when no poll has been created
// since the process started.
func (r *ActivePollRegister) Get() (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id, r.set
}
