package nexudus

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache manages the local roster cache database.
type Cache struct {
	db   *sql.DB
	path string
}

// SyncState records when the roster was last synced.
type SyncState struct {
	LastRunID    string     `json:"last_run_id"`
	LastFullSync *time.Time `json:"last_full_sync,omitempty"`
	Total        int        `json:"total"`
}

// NewCache creates or opens the roster cache database at
// ~/.artisans/artisans.db.
func NewCache() (*Cache, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, ".artisans")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .artisans directory: %w", err)
	}

	return OpenCache(filepath.Join(dir, "artisans.db"))
}

// OpenCache opens a cache database at an explicit path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	cache := &Cache{db: db, path: path}

	if err := cache.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// migrate creates the database schema.
func (c *Cache) migrate() error {
	schema := `
	-- Active roster
	CREATE TABLE IF NOT EXISTS coworkers (
		id INTEGER PRIMARY KEY,
		full_name TEXT,
		email TEXT,
		team_ids TEXT,
		archived INTEGER DEFAULT 0,
		cached_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_coworkers_email ON coworkers(email);

	-- Teams seen through lookups
	CREATE TABLE IF NOT EXISTS teams (
		id INTEGER PRIMARY KEY,
		name TEXT,
		coworker_ids TEXT,
		cached_at DATETIME NOT NULL
	);

	-- Sync state
	CREATE TABLE IF NOT EXISTS sync_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_run_id TEXT,
		last_full_sync DATETIME,
		total INTEGER DEFAULT 0
	);
	`

	_, err := c.db.Exec(schema)
	return err
}

// SaveCoworker inserts or updates a coworker row.
func (c *Cache) SaveCoworker(cw *Coworker) error {
	teamIDsJSON, _ := json.Marshal(cw.TeamIDs)

	_, err := c.db.Exec(`
		INSERT INTO coworkers (id, full_name, email, team_ids, archived, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			team_ids = excluded.team_ids,
			archived = excluded.archived,
			cached_at = excluded.cached_at
	`, cw.ID, cw.FullName, cw.Email, string(teamIDsJSON), cw.Archived, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save coworker %d: %w", cw.ID, err)
	}
	return nil
}

// GetCoworkerByEmail retrieves a cached coworker by email address.
// Returns nil without error when not cached.
func (c *Cache) GetCoworkerByEmail(email string) (*Coworker, error) {
	row := c.db.QueryRow(`
		SELECT id, full_name, email, team_ids, archived
		FROM coworkers WHERE email = ? COLLATE NOCASE
	`, email)
	return scanCoworker(row)
}

// GetCoworker retrieves a cached coworker by ID.
// Returns nil without error when not cached.
func (c *Cache) GetCoworker(id int64) (*Coworker, error) {
	row := c.db.QueryRow(`
		SELECT id, full_name, email, team_ids, archived
		FROM coworkers WHERE id = ?
	`, id)
	return scanCoworker(row)
}

func scanCoworker(row *sql.Row) (*Coworker, error) {
	var cw Coworker
	var teamIDsJSON sql.NullString

	err := row.Scan(&cw.ID, &cw.FullName, &cw.Email, &teamIDsJSON, &cw.Archived)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coworker: %w", err)
	}

	if teamIDsJSON.Valid {
		json.Unmarshal([]byte(teamIDsJSON.String), &cw.TeamIDs)
	}
	return &cw, nil
}

// ListCoworkers returns all cached coworkers, ordered by ID. When teamID is
// non-zero, only members of that team are returned.
func (c *Cache) ListCoworkers(teamID int64) ([]Coworker, error) {
	rows, err := c.db.Query(`
		SELECT id, full_name, email, team_ids, archived
		FROM coworkers ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list coworkers: %w", err)
	}
	defer rows.Close()

	var coworkers []Coworker
	for rows.Next() {
		var cw Coworker
		var teamIDsJSON sql.NullString
		if err := rows.Scan(&cw.ID, &cw.FullName, &cw.Email, &teamIDsJSON, &cw.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan coworker: %w", err)
		}
		if teamIDsJSON.Valid {
			json.Unmarshal([]byte(teamIDsJSON.String), &cw.TeamIDs)
		}
		if teamID != 0 && !cw.InTeam(teamID) {
			continue
		}
		coworkers = append(coworkers, cw)
	}
	return coworkers, rows.Err()
}

// PruneCoworkers deletes cached coworkers whose IDs are not in keep.
// Returns the number of rows removed.
func (c *Cache) PruneCoworkers(keep []int64) (int, error) {
	if len(keep) == 0 {
		res, err := c.db.Exec("DELETE FROM coworkers")
		if err != nil {
			return 0, fmt.Errorf("failed to prune coworkers: %w", err)
		}
		n, _ := res.RowsAffected()
		return int(n), nil
	}

	placeholders := make([]string, len(keep))
	args := make([]any, len(keep))
	for i, id := range keep {
		placeholders[i] = "?"
		args[i] = id
	}

	res, err := c.db.Exec(
		"DELETE FROM coworkers WHERE id NOT IN ("+strings.Join(placeholders, ",")+")",
		args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune coworkers: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CountCoworkers returns the number of cached coworkers.
func (c *Cache) CountCoworkers() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM coworkers").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count coworkers: %w", err)
	}
	return n, nil
}

// SaveTeam inserts or updates a team row.
func (c *Cache) SaveTeam(t *Team) error {
	coworkerIDsJSON, _ := json.Marshal(t.CoworkerIDs)

	_, err := c.db.Exec(`
		INSERT INTO teams (id, name, coworker_ids, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			coworker_ids = excluded.coworker_ids,
			cached_at = excluded.cached_at
	`, t.ID, t.Name, string(coworkerIDsJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save team %d: %w", t.ID, err)
	}
	return nil
}

// GetTeam retrieves a cached team by ID. Returns nil without error when
// not cached.
func (c *Cache) GetTeam(id int64) (*Team, error) {
	row := c.db.QueryRow("SELECT id, name, coworker_ids FROM teams WHERE id = ?", id)

	var t Team
	var coworkerIDsJSON sql.NullString
	err := row.Scan(&t.ID, &t.Name, &coworkerIDsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	if coworkerIDsJSON.Valid {
		json.Unmarshal([]byte(coworkerIDsJSON.String), &t.CoworkerIDs)
	}
	return &t, nil
}

// GetSyncState retrieves the sync state. Returns nil without error when the
// roster has never been synced.
func (c *Cache) GetSyncState() (*SyncState, error) {
	row := c.db.QueryRow("SELECT last_run_id, last_full_sync, total FROM sync_state WHERE id = 1")

	var state SyncState
	var lastFullSync sql.NullTime
	err := row.Scan(&state.LastRunID, &lastFullSync, &state.Total)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	if lastFullSync.Valid {
		state.LastFullSync = &lastFullSync.Time
	}
	return &state, nil
}

// SaveSyncState stores the sync state.
func (c *Cache) SaveSyncState(state *SyncState) error {
	var lastFullSync any
	if state.LastFullSync != nil {
		lastFullSync = *state.LastFullSync
	}

	_, err := c.db.Exec(`
		INSERT INTO sync_state (id, last_run_id, last_full_sync, total)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_id = excluded.last_run_id,
			last_full_sync = excluded.last_full_sync,
			total = excluded.total
	`, state.LastRunID, lastFullSync, state.Total)
	if err != nil {
		return fmt.Errorf("failed to save sync state: %w", err)
	}
	return nil
}

// Path returns the database file path, useful for diagnostics output.
func (c *Cache) Path() string {
	return c.path
}

// String implements fmt.Stringer for debug output.
func (c *Cache) String() string {
	n, err := c.CountCoworkers()
	if err != nil {
		return "roster cache at " + c.path
	}
	return "roster cache at " + c.path + " (" + strconv.Itoa(n) + " coworkers)"
}
