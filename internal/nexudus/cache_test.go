package nexudus

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_SaveAndGetCoworker(t *testing.T) {
	cache := newTestCache(t)

	cw := &Coworker{
		ID:       7,
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		TeamIDs:  []int64{10, 20},
	}
	if err := cache.SaveCoworker(cw); err != nil {
		t.Fatalf("SaveCoworker() error: %v", err)
	}

	got, err := cache.GetCoworker(7)
	if err != nil {
		t.Fatalf("GetCoworker() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetCoworker() returned nil for saved coworker")
	}
	if got.FullName != cw.FullName || !reflect.DeepEqual(got.TeamIDs, cw.TeamIDs) {
		t.Errorf("GetCoworker() = %+v, want %+v", got, cw)
	}

	byEmail, err := cache.GetCoworkerByEmail("ADA@example.com")
	if err != nil {
		t.Fatalf("GetCoworkerByEmail() error: %v", err)
	}
	if byEmail == nil || byEmail.ID != 7 {
		t.Errorf("email lookup should be case-insensitive, got %+v", byEmail)
	}
}

func TestCache_GetCoworker_Missing(t *testing.T) {
	cache := newTestCache(t)

	got, err := cache.GetCoworker(999)
	if err != nil {
		t.Fatalf("GetCoworker() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetCoworker() = %+v, want nil for missing row", got)
	}
}

func TestCache_SaveCoworker_Upserts(t *testing.T) {
	cache := newTestCache(t)

	cw := &Coworker{ID: 1, FullName: "Before", Email: "m@example.com"}
	if err := cache.SaveCoworker(cw); err != nil {
		t.Fatal(err)
	}
	cw.FullName = "After"
	cw.TeamIDs = []int64{5}
	if err := cache.SaveCoworker(cw); err != nil {
		t.Fatal(err)
	}

	got, _ := cache.GetCoworker(1)
	if got.FullName != "After" || !reflect.DeepEqual(got.TeamIDs, []int64{5}) {
		t.Errorf("upsert did not replace row: %+v", got)
	}

	n, err := cache.CountCoworkers()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("CountCoworkers() = %d, want 1", n)
	}
}

func TestCache_ListCoworkers_TeamFilter(t *testing.T) {
	cache := newTestCache(t)

	for _, cw := range []Coworker{
		{ID: 1, FullName: "A", Email: "a@example.com", TeamIDs: []int64{10}},
		{ID: 2, FullName: "B", Email: "b@example.com", TeamIDs: []int64{20}},
		{ID: 3, FullName: "C", Email: "c@example.com", TeamIDs: []int64{10, 20}},
	} {
		if err := cache.SaveCoworker(&cw); err != nil {
			t.Fatal(err)
		}
	}

	all, err := cache.ListCoworkers(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("ListCoworkers(0) = %d rows, want 3", len(all))
	}

	team10, err := cache.ListCoworkers(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(team10) != 2 || team10[0].ID != 1 || team10[1].ID != 3 {
		t.Errorf("ListCoworkers(10) = %+v, want members 1 and 3", team10)
	}
}

func TestCache_PruneCoworkers(t *testing.T) {
	cache := newTestCache(t)

	for id := int64(1); id <= 4; id++ {
		if err := cache.SaveCoworker(&Coworker{ID: id, Email: "x@example.com"}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := cache.PruneCoworkers([]int64{2, 4})
	if err != nil {
		t.Fatalf("PruneCoworkers() error: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	n, _ := cache.CountCoworkers()
	if n != 2 {
		t.Errorf("CountCoworkers() = %d, want 2", n)
	}

	removed, err = cache.PruneCoworkers(nil)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Errorf("empty keep list should clear the table, removed = %d", removed)
	}
}

func TestCache_SyncState(t *testing.T) {
	cache := newTestCache(t)

	state, err := cache.GetSyncState()
	if err != nil {
		t.Fatalf("GetSyncState() error: %v", err)
	}
	if state != nil {
		t.Errorf("GetSyncState() = %+v before any sync, want nil", state)
	}

	now := time.Now().Truncate(time.Second)
	if err := cache.SaveSyncState(&SyncState{
		LastRunID:    "run-1",
		LastFullSync: &now,
		Total:        42,
	}); err != nil {
		t.Fatalf("SaveSyncState() error: %v", err)
	}

	state, err = cache.GetSyncState()
	if err != nil {
		t.Fatal(err)
	}
	if state == nil || state.LastRunID != "run-1" || state.Total != 42 {
		t.Errorf("GetSyncState() = %+v", state)
	}
	if state.LastFullSync == nil || !state.LastFullSync.Equal(now) {
		t.Errorf("LastFullSync = %v, want %v", state.LastFullSync, now)
	}
}

func TestCache_SaveAndGetTeam(t *testing.T) {
	cache := newTestCache(t)

	team := &Team{ID: 5, Name: "Shopbot", CoworkerIDs: []int64{1, 2, 3}}
	if err := cache.SaveTeam(team); err != nil {
		t.Fatalf("SaveTeam() error: %v", err)
	}

	got, err := cache.GetTeam(5)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "Shopbot" || !reflect.DeepEqual(got.CoworkerIDs, team.CoworkerIDs) {
		t.Errorf("GetTeam() = %+v, want %+v", got, team)
	}

	missing, err := cache.GetTeam(99)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("GetTeam(99) = %+v, want nil", missing)
	}
}
