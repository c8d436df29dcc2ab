package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/log"
)

// SyncState is the durable memory of the bridge: the poll cursor plus the
// append-only dedup sets it protects. It is persisted as a single JSON
// document so cursor and sets can never be observed out of step. One
// instance is shared by every poll routine; its mutex makes the accessors
// safe under concurrent cycles.
type SyncState struct {
	LastPollTimestamp int64    `json:"lastPollTimestamp"`
	ProcessedJobs     []string `json:"processedJobs"`
	ProcessedContacts []string `json:"processedContacts"`

	mu         sync.Mutex
	jobSet     map[string]bool
	contactSet map[string]bool
}

// HasJob reports whether a job/payment dedup key has been handled.
func (s *SyncState) HasJob(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobSet[key]
}

// HasContact reports whether a contact dedup key has been handled.
func (s *SyncState) HasContact(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contactSet[key]
}

// AddJob appends a job/payment dedup key. Membership is monotonic; entries
// are never removed.
func (s *SyncState) AddJob(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "" || s.jobSet[key] {
		return
	}
	s.jobSet[key] = true
	s.ProcessedJobs = append(s.ProcessedJobs, key)
}

// AddContact appends a contact dedup key.
func (s *SyncState) AddContact(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "" || s.contactSet[key] {
		return
	}
	s.contactSet[key] = true
	s.ProcessedContacts = append(s.ProcessedContacts, key)
}

// SetLastPollTimestamp records the cursor for the cycle that just finished.
func (s *SyncState) SetLastPollTimestamp(ts int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastPollTimestamp = ts
}

// snapshot marshals a point-in-time copy while no mutator is running.
func (s *SyncState) snapshot() ([]byte, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(s, "", "  ")
	return data, len(s.ProcessedJobs), len(s.ProcessedContacts), err
}

func (s *SyncState) buildSets() {
	s.jobSet = make(map[string]bool, len(s.ProcessedJobs))
	for _, k := range s.ProcessedJobs {
		s.jobSet[k] = true
	}
	s.contactSet = make(map[string]bool, len(s.ProcessedContacts))
	for _, k := range s.ProcessedContacts {
		s.contactSet[k] = true
	}
}

// Store persists SyncState snapshots to a single JSON file. A mutex
// serializes access between the poll routines and diagnostic readers; the
// file itself is replaced atomically so a concurrent reader only ever sees
// the last complete snapshot.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file is a normal cold start and
// yields zero-value state, not an error.
func (st *Store) Load() (*SyncState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	state := &SyncState{}
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			state.buildSets()
			return state, nil
		}
		return nil, errors.NewServerError(errors.ErrWhileLoadingSyncState, err)
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.NewServerError(errors.ErrWhileLoadingSyncState, err)
	}
	state.buildSets()
	return state, nil
}

// Save writes the state to a temp file in the target directory, syncs it,
// then renames it over the previous snapshot.
func (st *Store) Save(state *SyncState) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	data, jobKeys, contactKeys, err := state.snapshot()
	if err != nil {
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(st.path)+".tmp-*")
	if err != nil {
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.NewServerError(errors.ErrWhileSavingSyncState, err)
	}

	// Membership is append-only, so set sizes are the one growth signal.
	log.GetLogger().Debug(fmt.Sprintf("Persisted sync state with %d job keys and %d contact keys",
		jobKeys, contactKeys))
	return nil
}
