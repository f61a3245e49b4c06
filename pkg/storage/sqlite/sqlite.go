package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/halcyoned/weverse/pkg/storage"
	_ "github.com/mattn/go-sqlite3"

	weverse "github.com/halcyoned/weverse/internal"
)

//go:embed queries/*.sql
var queryFS embed.FS

// DB is a SQLite implementation of the storage.Storer interface.
type DB struct {
	Conn *sql.DB // The raw database connection, exposed for extensibility.
}

// New creates a new SQLite database connection and ensures the schema is up to date.
// It returns a concrete *DB type to allow for extension.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{Conn: db}
	if err := instance.createSchema(); err != nil {
		_ = instance.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	return instance, nil
}

// getQuery reads a raw SQL query from the embedded filesystem.
func getQuery(name string) (string, error) {
	b, err := queryFS.ReadFile("queries/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded query %s: %w", name, err)
	}
	return string(b), nil
}

// createSchema creates the necessary tables in the SQLite database if they don't exist.
func (db *DB) createSchema() error {
	query, err := getQuery("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Conn.Exec(query)
	return err
}

// MarkSeen records a notification as processed. Inserting an already-seen
// notification is a no-op.
func (db *DB) MarkSeen(id, communityID int64, kind string, notifiedAt int64) error {
	query, err := getQuery("mark_seen.sql")
	if err != nil {
		return err
	}
	_, err = db.Conn.Exec(query, id, communityID, kind, notifiedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification %d as seen: %w", id, err)
	}
	return nil
}

// Seen checks whether a notification has already been processed.
func (db *DB) Seen(id int64) (bool, error) {
	query, err := getQuery("notification_seen.sql")
	if err != nil {
		return false, err
	}
	var exists bool
	err = db.Conn.QueryRow(query, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if notification %d was seen: %w", id, err)
	}
	return exists, nil
}

// AddOrUpdateAttachment uses an atomic "upsert" for a downloaded attachment
// and forces a WAL checkpoint so the archive survives an unclean daemon exit.
func (db *DB) AddOrUpdateAttachment(contentID, communityID int64, kind weverse.MediaKind, url, sha256 string) error {
	query, err := getQuery("upsert_attachment.sql")
	if err != nil {
		return err
	}

	_, err = db.Conn.Exec(query, contentID, communityID, string(kind), url, sha256, time.Now())
	if err != nil {
		return fmt.Errorf("failed to execute upsert for content %d: %w", contentID, err)
	}

	_, err = db.Conn.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
	if err != nil {
		return fmt.Errorf("failed to checkpoint WAL after upsert for content %d: %w", contentID, err)
	}
	return nil
}

// AttachmentExists checks whether an attachment URL for a piece of content
// has already been downloaded.
func (db *DB) AttachmentExists(contentID int64, url string) (bool, error) {
	query, err := getQuery("attachment_exists.sql")
	if err != nil {
		return false, err
	}
	var exists bool
	err = db.Conn.QueryRow(query, contentID, url).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if attachment for content %d exists: %w", contentID, err)
	}
	return exists, nil
}

// GetAttachmentsByCommunity retrieves all attachment records for a community.
func (db *DB) GetAttachmentsByCommunity(communityID int64) ([]storage.AttachmentRecord, error) {
	query, err := getQuery("get_attachments_by_community.sql")
	if err != nil {
		return nil, err
	}
	rows, err := db.Conn.Query(query, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments for community %d: %w", communityID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			fmt.Printf("failed to close rows: %v", err)
		}
	}()

	var records []storage.AttachmentRecord
	for rows.Next() {
		var r storage.AttachmentRecord
		var kind string
		if err := rows.Scan(&r.ContentID, &r.CommunityID, &kind, &r.URL, &r.SHA256); err != nil {
			return nil, fmt.Errorf("failed to scan attachment row: %w", err)
		}
		r.Kind = weverse.MediaKind(kind)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration for community %d: %w", communityID, err)
	}
	return records, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.Conn.Close()
}
