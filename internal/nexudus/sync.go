package nexudus

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SyncResult contains the results of a roster sync.
type SyncResult struct {
	RunID    string `json:"run_id"`
	New      int    `json:"new"`
	Updated  int    `json:"updated"`
	Removed  int    `json:"removed"`
	Total    int    `json:"total"`
	Duration string `json:"duration"`
}

// Sync performs a full roster sync: every active coworker is fetched and
// upserted into the cache, and members who left are pruned. Sync never
// honors a page cap, a partial roster in the cache is worse than a slow
// sync.
func (s *Service) Sync(ctx context.Context) (*SyncResult, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("sync requires the roster cache to be available")
	}

	start := time.Now()
	result := &SyncResult{RunID: uuid.NewString()}

	coworkers, err := s.client.ListCoworkers(ctx, ListOptions{PageSize: s.listOpts.PageSize, MaxPages: 0})
	if err != nil {
		return nil, fmt.Errorf("failed to list coworkers: %w", err)
	}

	keep := make([]int64, 0, len(coworkers))
	for i := range coworkers {
		cw := &coworkers[i]
		keep = append(keep, cw.ID)

		existing, err := s.cache.GetCoworker(cw.ID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SaveCoworker(cw); err != nil {
			return nil, err
		}
		if existing == nil {
			result.New++
		} else {
			result.Updated++
		}
	}

	removed, err := s.cache.PruneCoworkers(keep)
	if err != nil {
		return nil, err
	}
	result.Removed = removed
	result.Total = len(coworkers)

	now := time.Now()
	if err := s.cache.SaveSyncState(&SyncState{
		LastRunID:    result.RunID,
		LastFullSync: &now,
		Total:        result.Total,
	}); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start).String()
	return result, nil
}
