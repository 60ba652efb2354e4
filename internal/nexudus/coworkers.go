package nexudus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Coworker is an active member of the space. Tool testedness is tracked
// through team membership, so TeamIDs is the interesting field.
type Coworker struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	TeamIDs  []int64 `json:"team_ids"`
	Archived bool    `json:"archived"`
}

// InTeam reports whether the coworker belongs to the given team.
func (c *Coworker) InTeam(teamID int64) bool {
	return slices.Contains(c.TeamIDs, teamID)
}

// coworkerRecord is the wire format of a coworker. TeamIds arrives as a
// comma-separated string of integers (or empty).
type coworkerRecord struct {
	ID       int64  `json:"Id"`
	FullName string `json:"FullName"`
	Email    string `json:"Email"`
	TeamIds  string `json:"TeamIds"`
	Archived bool   `json:"Archived"`
}

func (r *coworkerRecord) coworker() (Coworker, error) {
	teamIDs, err := parseTeamIDs(r.TeamIds)
	if err != nil {
		return Coworker{}, fmt.Errorf("coworker %d: %w", r.ID, err)
	}
	return Coworker{
		ID:       r.ID,
		FullName: r.FullName,
		Email:    r.Email,
		TeamIDs:  teamIDs,
		Archived: r.Archived,
	}, nil
}

// parseTeamIDs parses the CSV TeamIds field. An empty string means no
// teams, not a single empty ID. Duplicates are dropped and the result
// is sorted for stable output.
func parseTeamIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid team id %q: %w", part, err)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// ListOptions controls roster pagination.
type ListOptions struct {
	// PageSize is the records-per-page request size. Defaults to 25.
	PageSize int

	// MaxPages caps how many pages are fetched. 0 means fetch until the
	// API reports no next page.
	MaxPages int
}

// ListCoworkers pages through the active roster (members with a tariff
// assigned). Archived members are filtered out.
func (c *Client) ListCoworkers(ctx context.Context, opts ListOptions) ([]Coworker, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	query := url.Values{
		"page":    {"1"},
		"size":    {strconv.Itoa(pageSize)},
		"orderBy": {"Id"},
		// The API docs describe this filter as an int, but the Nexudus
		// dashboard sends "notnull" against the same endpoint.
		"Coworker_Tariff": {"notnull"},
	}

	var coworkers []Coworker
	pagesFetched := 0
	expectedRecords := -1

	for {
		var p page
		if err := c.get(ctx, "/api/spaces/coworkers", query, &p); err != nil {
			return nil, err
		}
		if expectedRecords < 0 {
			expectedRecords = p.TotalItems
		}
		pagesFetched++

		slog.Info("Fetched roster page",
			"pages_fetched", pagesFetched,
			"current_page", p.CurrentPage,
			"total_pages", p.TotalPages,
			"expected_records", expectedRecords)

		var records []coworkerRecord
		if err := json.Unmarshal(p.Records, &records); err != nil {
			return nil, fmt.Errorf("failed to decode coworker records: %w", err)
		}
		for i := range records {
			cw, err := records[i].coworker()
			if err != nil {
				return nil, err
			}
			if cw.Archived {
				continue
			}
			coworkers = append(coworkers, cw)
		}

		if !p.HasNextPage {
			break
		}
		if opts.MaxPages > 0 && pagesFetched >= opts.MaxPages {
			slog.Warn("Stopping at page cap with pages remaining",
				"max_pages", opts.MaxPages, "total_pages", p.TotalPages)
			break
		}
		query.Set("page", strconv.Itoa(p.CurrentPage+1))
	}

	return coworkers, nil
}
