package nexudus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Service provides high-level roster operations with caching.
type Service struct {
	client   *Client
	cache    *Cache
	listOpts ListOptions
}

// NewService creates a roster service using the stored token and the
// default cache location. opts applies to ad-hoc roster reads; Sync
// ignores the page cap.
func NewService(baseURL string, opts ListOptions) (*Service, error) {
	client, err := NewClient(baseURL)
	if err != nil {
		return nil, err
	}

	cache, err := NewCache()
	if err != nil {
		// The service still works without a cache, every read just
		// goes to the API.
		slog.Warn("Roster cache unavailable", "error", err)
		return &Service{client: client, listOpts: opts}, nil
	}

	return &Service{client: client, cache: cache, listOpts: opts}, nil
}

// NewServiceWith wires a service from explicit parts. cache may be nil.
func NewServiceWith(client *Client, cache *Cache) *Service {
	return &Service{client: client, cache: cache}
}

// Close closes the service and its resources.
func (s *Service) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

// Cache returns the underlying cache, or nil when running cache-less.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Roster returns the active roster, optionally filtered to one team.
// Cached data is used when available unless refresh is set; a roster that
// was never synced falls through to the API.
func (s *Service) Roster(ctx context.Context, teamID int64, refresh bool) ([]Coworker, error) {
	if s.cache != nil && !refresh {
		state, err := s.cache.GetSyncState()
		if err == nil && state != nil {
			return s.cache.ListCoworkers(teamID)
		}
	}

	coworkers, err := s.client.ListCoworkers(ctx, s.listOpts)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		for i := range coworkers {
			if err := s.cache.SaveCoworker(&coworkers[i]); err != nil {
				slog.Warn("Failed to cache coworker", "id", coworkers[i].ID, "error", err)
			}
		}
	}

	if teamID == 0 {
		return coworkers, nil
	}
	var filtered []Coworker
	for _, cw := range coworkers {
		if cw.InTeam(teamID) {
			filtered = append(filtered, cw)
		}
	}
	return filtered, nil
}

// Member looks up a single coworker by email, serving from cache when
// possible.
func (s *Service) Member(ctx context.Context, email string, refresh bool) (*Coworker, error) {
	if s.cache != nil && !refresh {
		cw, err := s.cache.GetCoworkerByEmail(email)
		if err == nil && cw != nil {
			return cw, nil
		}
	}

	roster, err := s.Roster(ctx, 0, true)
	if err != nil {
		return nil, err
	}
	for i := range roster {
		if strings.EqualFold(roster[i].Email, email) {
			return &roster[i], nil
		}
	}
	return nil, fmt.Errorf("no active member with email %s", email)
}

// Team fetches a team, serving from cache when possible.
func (s *Service) Team(ctx context.Context, id int64, refresh bool) (*Team, error) {
	if s.cache != nil && !refresh {
		t, err := s.cache.GetTeam(id)
		if err == nil && t != nil {
			return t, nil
		}
	}

	t, err := s.client.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveTeam(t); err != nil {
			slog.Warn("Failed to cache team", "id", t.ID, "error", err)
		}
	}
	return t, nil
}

// CheckAccess reports whether the member with the given email is tested on
// the tool tracked by teamID.
func (s *Service) CheckAccess(ctx context.Context, email string, teamID int64, refresh bool) (*Coworker, bool, error) {
	cw, err := s.Member(ctx, email, refresh)
	if err != nil {
		return nil, false, err
	}
	return cw, cw.InTeam(teamID), nil
}
