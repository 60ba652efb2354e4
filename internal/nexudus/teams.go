package nexudus

import (
	"context"
	"fmt"
	"strconv"
)

// Team is a Nexudus team. Tool testedness for a given tool is recorded as
// membership in that tool's team.
type Team struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	CoworkerIDs []int64 `json:"coworker_ids"`
}

// teamRecord is the wire format of a team.
type teamRecord struct {
	ID          int64   `json:"Id"`
	Name        string  `json:"Name"`
	CoworkerIDs []int64 `json:"CoworkerIDs"`
}

func (r *teamRecord) team() Team {
	return Team{
		ID:          r.ID,
		Name:        r.Name,
		CoworkerIDs: r.CoworkerIDs,
	}
}

// GetTeam fetches a single team by ID.
func (c *Client) GetTeam(ctx context.Context, id int64) (*Team, error) {
	var record teamRecord
	if err := c.get(ctx, "/api/spaces/teams/"+strconv.FormatInt(id, 10), nil, &record); err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	team := record.team()
	return &team, nil
}
