package sqlite

import (
	"path/filepath"
	"testing"

	weverse "github.com/halcyoned/weverse/internal"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func TestMarkSeenIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	seen, err := db.Seen(1)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if seen {
		t.Fatal("fresh database must not know notification 1")
	}

	if err := db.MarkSeen(1, 14, "POST", 1700000000000); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := db.MarkSeen(1, 14, "POST", 1700000000000); err != nil {
		t.Fatalf("second MarkSeen must be a no-op, got %v", err)
	}

	seen, err = db.Seen(1)
	if err != nil {
		t.Fatalf("Seen: %v", err)
	}
	if !seen {
		t.Fatal("notification 1 should be seen")
	}
}

func TestAttachmentLifecycle(t *testing.T) {
	db := newTestDB(t)

	exists, err := db.AttachmentExists(201, "https://cdn.test/a.jpg")
	if err != nil {
		t.Fatalf("AttachmentExists: %v", err)
	}
	if exists {
		t.Fatal("fresh database must not know the attachment")
	}

	if err := db.AddOrUpdateAttachment(201, 14, weverse.MediaPhoto, "https://cdn.test/a.jpg", "aaa"); err != nil {
		t.Fatalf("AddOrUpdateAttachment: %v", err)
	}
	// second URL for the same content is a separate record
	if err := db.AddOrUpdateAttachment(201, 14, weverse.MediaPhoto, "https://cdn.test/b.jpg", "bbb"); err != nil {
		t.Fatalf("AddOrUpdateAttachment: %v", err)
	}

	exists, err = db.AttachmentExists(201, "https://cdn.test/a.jpg")
	if err != nil {
		t.Fatalf("AttachmentExists: %v", err)
	}
	if !exists {
		t.Fatal("attachment should exist")
	}

	records, err := db.GetAttachmentsByCommunity(14)
	if err != nil {
		t.Fatalf("GetAttachmentsByCommunity: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Kind != weverse.MediaPhoto || records[0].CommunityID != 14 {
		t.Errorf("unexpected record %+v", records[0])
	}

	if records, err = db.GetAttachmentsByCommunity(999); err != nil || len(records) != 0 {
		t.Fatalf("expected no records for unknown community, got %v (%v)", records, err)
	}
}

func TestAttachmentUpsertReplacesHash(t *testing.T) {
	db := newTestDB(t)

	url := "https://cdn.test/a.jpg"
	if err := db.AddOrUpdateAttachment(201, 14, weverse.MediaPhoto, url, "old"); err != nil {
		t.Fatalf("AddOrUpdateAttachment: %v", err)
	}
	if err := db.AddOrUpdateAttachment(201, 14, weverse.MediaPhoto, url, "new"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	records, err := db.GetAttachmentsByCommunity(14)
	if err != nil {
		t.Fatalf("GetAttachmentsByCommunity: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(records))
	}
	if records[0].SHA256 != "new" {
		t.Errorf("expected updated hash, got %q", records[0].SHA256)
	}
}
