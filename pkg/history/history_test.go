package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"))
}

func entryAt(op, status string, finished time.Time) *Entry {
	return &Entry{
		Operation: op,
		Status:    status,
		Started:   finished.Add(-time.Minute),
		Finished:  finished,
		Devices:   []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
		Succeeded: 3,
	}
}

func TestAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewStore(path)

	e := entryAt("collect", "success", time.Now())
	if err := s.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.ID == "" {
		t.Error("Append did not assign an ID")
	}

	// A fresh store over the same file sees the entry.
	got, err := NewStore(path).List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].ID != e.ID || got[0].Operation != "collect" {
		t.Errorf("reloaded entries = %+v", got)
	}
}

func TestAppendFillsDerivedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewStore(path)

	e := entryAt("sync", "partial", time.Now())
	e.Stats = map[string]EntityStats{
		"interfaces": {Created: 4, Updated: 2, Failed: 1},
	}
	if err := s.Append(e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.DeviceCount != 3 {
		t.Errorf("device count = %d, want 3 (derived from the device list)", e.DeviceCount)
	}
	if e.DurationMS != time.Minute.Milliseconds() {
		t.Errorf("duration = %dms, want %d", e.DurationMS, time.Minute.Milliseconds())
	}

	got, err := NewStore(path).List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	reloaded := got[0]
	if len(reloaded.Devices) != 3 || reloaded.Devices[0] != "10.0.0.1" {
		t.Errorf("devices = %v, want the host list preserved", reloaded.Devices)
	}
	st := reloaded.Stats["interfaces"]
	if st.Created != 4 || st.Updated != 2 || st.Failed != 1 {
		t.Errorf("stats = %+v", reloaded.Stats)
	}
}

func TestListFiltersAndOrder(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	s.Append(entryAt("collect", "success", base))
	s.Append(entryAt("sync", "partial", base.Add(time.Hour)))
	s.Append(entryAt("sync", "success", base.Add(2*time.Hour)))
	s.Append(entryAt("backup", "error", base.Add(3*time.Hour)))

	got, err := s.List(Filter{Operation: "sync"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("sync entries = %d, want 2", len(got))
	}
	if !got[0].Finished.After(got[1].Finished) {
		t.Error("entries not sorted newest first")
	}

	got, _ = s.List(Filter{Status: "ERROR"})
	if len(got) != 1 || got[0].Operation != "backup" {
		t.Errorf("status filter = %+v", got)
	}

	got, _ = s.List(Filter{Since: base.Add(90 * time.Minute)})
	if len(got) != 2 {
		t.Errorf("since filter = %d entries, want 2", len(got))
	}

	got, _ = s.List(Filter{Limit: 1})
	if len(got) != 1 || got[0].Operation != "backup" {
		t.Errorf("limit = %+v", got)
	}
}

func TestCapEvictsOldest(t *testing.T) {
	s := NewStoreWithCap(filepath.Join(t.TempDir(), "history.json"), 5)
	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		e := entryAt("collect", "success", base.Add(time.Duration(i)*time.Minute))
		e.Summary = e.Finished.Format(time.RFC3339)
		if err := s.Append(e); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	got, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("entries = %d, want cap of 5", len(got))
	}
	// Oldest three evicted; the survivor set is minutes 3..7.
	oldest := got[len(got)-1]
	if !oldest.Finished.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("oldest survivor = %s", oldest.Finished)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	s.Append(entryAt("collect", "success", base))
	s.Append(entryAt("sync", "partial", base.Add(time.Hour)))
	s.Append(entryAt("sync", "success", base.Add(2*time.Hour)))
	s.Append(entryAt("backup", "success", time.Now()))

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Total != 4 {
		t.Errorf("total = %d", st.Total)
	}
	if st.Last24h != 1 {
		t.Errorf("last 24h = %d, want 1", st.Last24h)
	}
	if st.ByOperation["sync"] != 2 || st.ByOperation["collect"] != 1 {
		t.Errorf("by operation = %v", st.ByOperation)
	}
	if st.ByStatus["success"] != 3 || st.ByStatus["partial"] != 1 {
		t.Errorf("by status = %v", st.ByStatus)
	}
	if !st.Oldest.Equal(base) {
		t.Errorf("oldest = %s", st.Oldest)
	}
}

func TestCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if err := s.Append(entryAt("collect", "success", time.Now())); err != nil {
		t.Fatalf("Append over corrupt file: %v", err)
	}
	got, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("entries = %d, want 1", len(got))
	}
}
