// Package history persists operation records to a JSON file. The file
// is a plain array so it stays greppable and editable; the store caps
// it at a fixed number of entries, evicting the oldest first.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netsync-network/netsync/pkg/util"
)

// DefaultMaxEntries caps the history file.
const DefaultMaxEntries = 1000

// EntityStats counts one entity kind's outcomes within a run.
type EntityStats struct {
	Created int `json:"created,omitempty"`
	Updated int `json:"updated,omitempty"`
	Deleted int `json:"deleted,omitempty"`
	Skipped int `json:"skipped,omitempty"`
	Failed  int `json:"failed,omitempty"`
}

// Entry is one finished operation.
type Entry struct {
	ID          string                 `json:"id"`
	Operation   string                 `json:"operation"` // collect, sync, backup
	Status      string                 `json:"status"`    // success, partial, error
	Started     time.Time              `json:"started"`
	Finished    time.Time              `json:"finished"`
	DurationMS  int64                  `json:"duration_ms"`
	Devices     []string               `json:"devices,omitempty"` // every host in the run
	DeviceCount int                    `json:"device_count"`
	Succeeded   int                    `json:"succeeded"`
	Failed      int                    `json:"failed"`
	Skipped     int                    `json:"skipped"`
	Changes     int                    `json:"changes,omitempty"` // sync only
	Stats       map[string]EntityStats `json:"stats,omitempty"`
	Summary     string                 `json:"summary,omitempty"`
	Details     string                 `json:"details,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	Operation string
	Status    string
	Since     time.Time
	Limit     int
}

// Stats aggregates the stored history.
type Stats struct {
	Total       int            `json:"total"`
	Last24h     int            `json:"last_24h"`
	ByOperation map[string]int `json:"by_operation"`
	ByStatus    map[string]int `json:"by_status"`
	Oldest      time.Time      `json:"oldest,omitempty"`
	Newest      time.Time      `json:"newest,omitempty"`
}

// Store reads and writes one history file. All access goes through a
// process-wide mutex; concurrent processes are out of scope.
type Store struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewStore opens (or will create) the history file at path.
func NewStore(path string) *Store {
	return &Store{path: path, maxEntries: DefaultMaxEntries}
}

// NewStoreWithCap overrides the entry cap; n < 1 keeps the default.
func NewStoreWithCap(path string, n int) *Store {
	s := NewStore(path)
	if n >= 1 {
		s.maxEntries = n
	}
	return s
}

// Append records one entry, evicting the oldest entries beyond the cap.
// An entry without an ID gets one.
func (s *Store) Append(e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.DurationMS == 0 && !e.Started.IsZero() && e.Finished.After(e.Started) {
		e.DurationMS = e.Finished.Sub(e.Started).Milliseconds()
	}
	if e.DeviceCount == 0 {
		e.DeviceCount = len(e.Devices)
	}
	entries = append(entries, e)
	if over := len(entries) - s.maxEntries; over > 0 {
		entries = entries[over:]
	}
	return s.save(entries)
}

// List returns matching entries, newest first.
func (s *Store) List(f Filter) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []*Entry
	for _, e := range entries {
		if f.Operation != "" && !strings.EqualFold(e.Operation, f.Operation) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(e.Status, f.Status) {
			continue
		}
		if !f.Since.IsZero() && e.Finished.Before(f.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Finished.After(out[j].Finished)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Stats aggregates the whole file in one pass.
func (s *Store) Stats() (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	st := &Stats{
		ByOperation: make(map[string]int),
		ByStatus:    make(map[string]int),
	}
	dayAgo := time.Now().Add(-24 * time.Hour)
	for _, e := range entries {
		st.Total++
		if e.Finished.After(dayAgo) {
			st.Last24h++
		}
		st.ByOperation[e.Operation]++
		st.ByStatus[e.Status]++
		if st.Oldest.IsZero() || e.Finished.Before(st.Oldest) {
			st.Oldest = e.Finished
		}
		if e.Finished.After(st.Newest) {
			st.Newest = e.Finished
		}
	}
	return st, nil
}

func (s *Store) load() ([]*Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file is logged and replaced rather than wedging
		// every future run.
		util.Warnf("history file %s unreadable, starting fresh: %v", s.path, err)
		return nil, nil
	}
	return entries, nil
}

// save writes atomically: temp file in the same directory, then rename.
func (s *Store) save(entries []*Entry) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
