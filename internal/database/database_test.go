package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, err := getSchemaVersion(db.conn)
	if err != nil {
		t.Fatalf("reading schema version: %v", err)
	}
	if version != latestVersion() {
		t.Errorf("expected schema version %d, got %d", latestVersion(), version)
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	db.Close()
}

func TestInsertAndGetTopics(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertTopic("nvidia", "chip maker")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero ID")
	}

	// Duplicate topic returns 0
	dup, err := db.InsertTopic("nvidia", "")
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if dup != 0 {
		t.Errorf("expected 0 for duplicate, got %d", dup)
	}

	topics, err := db.GetAllTopics()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %d", len(topics))
	}
	if topics[0].Topic != "nvidia" {
		t.Errorf("expected topic 'nvidia', got %q", topics[0].Topic)
	}
	if !topics[0].IsActive {
		t.Error("expected new topic to be active")
	}
}

func TestToggleTopic(t *testing.T) {
	db := openTestDB(t)

	id, _ := db.InsertTopic("gold", "")
	if err := db.ToggleTopic(id); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	active, err := db.GetActiveTopics()
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active topics after toggle, got %d", len(active))
	}

	db.ToggleTopic(id)
	active, _ = db.GetActiveTopics()
	if len(active) != 1 {
		t.Errorf("expected 1 active topic after second toggle, got %d", len(active))
	}
}

func TestDeleteTopic(t *testing.T) {
	db := openTestDB(t)

	id, _ := db.InsertTopic("oil", "")
	if err := db.DeleteTopic(id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	topic, err := db.GetTopic(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if topic != nil {
		t.Error("expected nil for deleted topic")
	}
}
