package storage

import (
	weverse "github.com/halcyoned/weverse/internal"
)

// NotificationRecord represents a single row from the notifications table.
type NotificationRecord struct {
	// ID is the unique identifier of the notification.
	ID int64
	// CommunityID is the community the notification belongs to.
	CommunityID int64
	// Kind is the classified content category at the time it was seen.
	Kind string
	// NotifiedAt is the platform timestamp in Unix epoch milliseconds.
	NotifiedAt int64
}

// AttachmentRecord represents a single row from the attachments table.
type AttachmentRecord struct {
	// ContentID is the post or media entry the attachment came from.
	ContentID int64
	// CommunityID is the community the content belongs to.
	CommunityID int64
	// Kind distinguishes photo from video attachments.
	Kind weverse.MediaKind
	// URL is the source URL the attachment was downloaded from.
	URL string
	// SHA256 is the hash of the downloaded file.
	SHA256 string
}

// Storer defines the interface for archive database operations.
// This allows for different database backends to be used with the daemon.
type Storer interface {
	// MarkSeen records a notification as processed. Marking the same
	// notification twice is a no-op.
	MarkSeen(id, communityID int64, kind string, notifiedAt int64) error
	// Seen checks whether a notification has already been processed.
	Seen(id int64) (bool, error)
	// AddOrUpdateAttachment records a downloaded attachment and its hash.
	AddOrUpdateAttachment(contentID, communityID int64, kind weverse.MediaKind, url, sha256 string) error
	// AttachmentExists checks whether an attachment URL for a piece of
	// content has already been downloaded.
	AttachmentExists(contentID int64, url string) (bool, error)
	// GetAttachmentsByCommunity retrieves all attachment records for a community.
	GetAttachmentsByCommunity(communityID int64) ([]AttachmentRecord, error)
	// Close closes the database connection.
	Close() error
}
