package weverse

import "time"

// NotificationKind is the content category assigned to a notification
// after classification.
type NotificationKind string

const (
	// KindUnclassified marks a notification whose message matched no phrase table entry.
	KindUnclassified NotificationKind = ""
	// KindComment announces an artist comment or reply.
	KindComment NotificationKind = "COMMENT"
	// KindPost announces a new artist post.
	KindPost NotificationKind = "POST"
	// KindMedia announces a new media item.
	KindMedia NotificationKind = "MEDIA"
	// KindAnnouncement announces a platform notice. No content cascade.
	KindAnnouncement NotificationKind = "ANNOUNCEMENT"
)

// MediaKind distinguishes photo and video media items.
type MediaKind string

const (
	// MediaPhoto is an image gallery item.
	MediaPhoto MediaKind = "PHOTO"
	// MediaVideo is a video item.
	MediaVideo MediaKind = "VIDEO"
)

// OAuthCredentials are the tokens issued by the account service after a
// successful password or refresh grant.
type OAuthCredentials struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	// WeMemberID is the remote account id of the logged-in member.
	WeMemberID int64 `json:"weMemberId"`
}

// Valid reports whether the response has the full OAuth credential shape.
// Responses that fail this check are rejected before any session state is
// mutated.
func (c *OAuthCredentials) Valid() bool {
	return c != nil &&
		c.AccessToken != "" &&
		c.TokenType == "bearer" &&
		c.RefreshToken != "" &&
		c.WeMemberID > 0
}

// Photo is an image attachment on a post or media item.
type Photo struct {
	ID        int64  `json:"id"`
	URL       string `json:"orgImgUrl"`
	Thumbnail string `json:"thumbnailImgUrl"`
	Width     int    `json:"orgImgWidth"`
	Height    int    `json:"orgImgHeight"`
}

// Video is a video attachment. PlayURL may be empty in feed payloads and is
// resolved lazily through the post detail endpoint.
type Video struct {
	PlayURL      string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     int    `json:"playTime"`
}

// Community is a fan-platform space containing artists, posts and media.
// The collection stores are owned by the community; the same entities are
// also reachable through the client-global caches.
type Community struct {
	ID          int64
	Name        string
	Description string
	MemberCount int
	HomeBanner  string
	Icon        string
	Banner      string
	FullNames   []string
	MembersOnly bool

	// Artists, Posts and Media hold every entity admitted for this
	// community. Posts and Media are ordered most-recent-first.
	Artists *Store[Artist]
	Posts   *Store[Post]
	Media   *Store[Media]
}

func (c *Community) String() string { return c.Name }

// Artist is a content-producing member of exactly one community.
type Artist struct {
	ID            int64
	IDInCommunity int64
	Name          string
	AltNames      []string
	Nickname      string
	ProfilePic    string
	IsOnline      bool
	IsBirthday    bool
	GroupName     string
	CommunityID   int64
	IsEnabled     bool
	NewPublicPost bool
	LastPostID    int64
	LastPostAt    time.Time

	// Community is a back-reference, not ownership.
	Community *Community
}

// Post is an artist-authored content item. It owns an ordered list of
// comments and carries back-references to its artist and community.
type Post struct {
	ID           int64
	Body         string
	ArtistID     int64
	CommunityID  int64
	CommentCount int
	LikeCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Photos       []Photo
	Videos       []Video

	Artist    *Artist
	Community *Community
	Comments  *Store[Comment]
}

// HasVideos reports whether the post carries video attachments.
func (p *Post) HasVideos() bool { return len(p.Videos) > 0 }

// Comment is an artist comment on a post.
type Comment struct {
	ID        int64
	Body      string
	LikeCount int
	CreatedAt time.Time
	UpdatedAt time.Time
	ArtistID  int64
	PostID    int64

	Artist *Artist
	Post   *Post
}

// Media is a community-scoped photo gallery or video item.
type Media struct {
	ID          int64
	CommunityID int64
	Kind        MediaKind
	Title       string
	Body        string
	LikeCount   int
	PlayCount   int
	CreatedAt   time.Time
	Photos      []Photo
	Video       *Video

	Community *Community
}

// ReplyRef is the optional reply/origin extra info carried by comment
// notifications. OriginPostID is the post the reply belongs to, which is
// not the notification's own contents id.
type ReplyRef struct {
	OriginPostID   int64
	ReplyCommentID int64
}

// Notification is a platform-pushed event describing new content. Kind is
// assigned by the classifier after admission; everything else is immutable.
type Notification struct {
	ID            int64
	Message       string
	BoldElement   string
	CommunityID   int64
	CommunityName string
	// ContentsType is the raw type tag from the payload. It is carried for
	// callers but not consulted by the classifier.
	ContentsType string
	ContentsID   int64
	ArtistID     int64
	NotifiedAt   time.Time
	IconURL      string
	ThumbnailURL string
	MembersOnly  bool
	WebOnly      bool
	Platform     string
	Reply        *ReplyRef

	Kind NotificationKind

	Community *Community
	Artist    *Artist
}

// epochMillis converts a platform millisecond timestamp. Zero maps to the
// zero time.
func epochMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
