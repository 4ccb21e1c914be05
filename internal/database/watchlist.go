package database

import (
	"database/sql"
)

// WatchlistTopic is a user-defined topic OR-appended to the news query.
type WatchlistTopic struct {
	ID        int64
	Topic     string
	Notes     *string
	IsActive  bool
	CreatedAt *string
	UpdatedAt *string
}

// InsertTopic creates a new watchlist topic. Returns 0 for a duplicate topic.
func (db *DB) InsertTopic(topic, notes string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO watchlist_topics (topic, notes) VALUES (?, ?)`,
		topic, notes,
	)
	if err != nil {
		// Duplicate topic constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// GetAllTopics returns all watchlist topics, newest first.
func (db *DB) GetAllTopics() ([]WatchlistTopic, error) {
	return db.queryTopics("SELECT id, topic, notes, is_active, created_at, updated_at FROM watchlist_topics ORDER BY created_at DESC")
}

// GetActiveTopics returns only active watchlist topics.
func (db *DB) GetActiveTopics() ([]WatchlistTopic, error) {
	return db.queryTopics("SELECT id, topic, notes, is_active, created_at, updated_at FROM watchlist_topics WHERE is_active = 1 ORDER BY created_at DESC")
}

// GetTopic returns a single topic by ID, or nil when absent.
func (db *DB) GetTopic(topicID int64) (*WatchlistTopic, error) {
	row := db.conn.QueryRow(
		"SELECT id, topic, notes, is_active, created_at, updated_at FROM watchlist_topics WHERE id = ?",
		topicID,
	)
	t, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ToggleTopic toggles the active state of a topic.
func (db *DB) ToggleTopic(topicID int64) error {
	_, err := db.conn.Exec(
		`UPDATE watchlist_topics SET is_active = NOT is_active, updated_at = datetime('now') WHERE id = ?`,
		topicID,
	)
	return err
}

// DeleteTopic removes a topic.
func (db *DB) DeleteTopic(topicID int64) error {
	_, err := db.conn.Exec("DELETE FROM watchlist_topics WHERE id = ?", topicID)
	return err
}

func (db *DB) queryTopics(query string, args ...any) ([]WatchlistTopic, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []WatchlistTopic
	for rows.Next() {
		var t WatchlistTopic
		var active int
		if err := rows.Scan(&t.ID, &t.Topic, &t.Notes, &active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.IsActive = active != 0
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func scanTopic(row *sql.Row) (*WatchlistTopic, error) {
	var t WatchlistTopic
	var active int
	if err := row.Scan(&t.ID, &t.Topic, &t.Notes, &active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.IsActive = active != 0
	return &t, nil
}
