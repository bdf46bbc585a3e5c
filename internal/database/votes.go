package database

import (
	"context"
	"fmt"
	"time"
)

// LoadVotes returns the stored status names for every voted file in
// sourceDir, keyed by file name.
func (d *Database) LoadVotes(ctx context.Context, sourceDir string) (votes map[string]string, err error) {
	start := time.Now()
	defer func() { recordQuery("load_votes", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT name, status FROM votes WHERE source_dir = ?",
		sourceDir,
	)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	votes = make(map[string]string)
	for rows.Next() {
		var name, status string
		if err = rows.Scan(&name, &status); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes[name] = status
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}

	return votes, nil
}

// SaveVote stores the latest status for one file, replacing any earlier vote.
func (d *Database) SaveVote(ctx context.Context, sourceDir, name, status string) (err error) {
	start := time.Now()
	defer func() { recordQuery("save_vote", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO votes (source_dir, name, status, updated_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(source_dir, name) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at
	`, sourceDir, name, status)
	if err != nil {
		return fmt.Errorf("save vote for %s: %w", name, err)
	}
	return nil
}
