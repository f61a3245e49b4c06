package weverse

import "fmt"

// Wire payloads. These mirror the API's JSON shapes; entity constructors
// below turn them into cached objects, rejecting records that miss required
// fields instead of copying them blindly.

type communityPayload struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	MemberCount      int      `json:"memberCount"`
	HomeBannerImgURL string   `json:"homeBannerImgUrl"`
	IconImgURL       string   `json:"iconImgUrl"`
	BannerImgURL     string   `json:"bannerImgUrl"`
	FullName         []string `json:"fullname"`
	MembersOnly      bool     `json:"membersOnly"`
}

type communityListPayload struct {
	Communities []communityPayload `json:"communities"`
}

type artistPayload struct {
	ID                int64    `json:"id"`
	IDInCommunity     int64    `json:"idInCommunity"`
	Name              string   `json:"name"`
	AltNames          []string `json:"altNames"`
	Nickname          string   `json:"nickname"`
	ProfileImgPath    string   `json:"profileImgPath"`
	IsOnline          bool     `json:"isOnline"`
	IsBirthday        bool     `json:"isBirthday"`
	GroupName         string   `json:"groupName"`
	CommunityID       int64    `json:"communityId"`
	IsEnabled         bool     `json:"isEnabled"`
	NewPublicPost     bool     `json:"newPublicPost"`
	LastPostID        int64    `json:"lastPostId"`
	LastPostCreatedAt int64    `json:"lastPostCreatedAt"`
}

// communityDetailPayload is the community detail response; it carries the
// community's artist roster.
type communityDetailPayload struct {
	communityPayload
	Artists []artistPayload `json:"artists"`
}

type postPayload struct {
	ID             int64   `json:"id"`
	Body           string  `json:"body"`
	ArtistID       int64   `json:"artistId"`
	CommunityID    int64   `json:"communityId"`
	CommentCount   int     `json:"commentCount"`
	LikeCount      int     `json:"likeCount"`
	CreatedAt      int64   `json:"createdAt"`
	UpdatedAt      int64   `json:"updatedAt"`
	Photos         []Photo `json:"photos"`
	AttachedVideos []Video `json:"attachedVideos"`
}

// postsPage is one page of the community posts feed. IsEnded and LastID are
// pointers because some payloads omit them; the paginator treats absence as
// a terminal condition.
type postsPage struct {
	Posts   []postPayload `json:"posts"`
	IsEnded *bool         `json:"isEnded"`
	LastID  *int64        `json:"lastId"`
}

type commentPayload struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	LikeCount int    `json:"likeCount"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	ArtistID  int64  `json:"artistId"`
	PostID    int64  `json:"postId"`
}

type commentsPayload struct {
	ArtistComments []commentPayload `json:"artistComments"`
}

type mediaPayload struct {
	ID          int64   `json:"id"`
	CommunityID int64   `json:"communityId"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	LikeCount   int     `json:"likeCount"`
	PlayCount   int     `json:"playCount"`
	CreatedAt   int64   `json:"createdAt"`
	Photos      []Photo `json:"photos"`
	Video       *Video  `json:"video"`
}

type notificationExtras struct {
	OriginContentsID int64 `json:"originContentsId"`
	ReplyCommentID   int64 `json:"replyCommentId"`
}

type notificationPayload struct {
	ID            int64               `json:"id"`
	Message       string              `json:"message"`
	BoldElement   string              `json:"boldElement"`
	CommunityID   int64               `json:"communityId"`
	CommunityName string              `json:"communityName"`
	ContentsType  string              `json:"contentsType"`
	ContentsID    int64               `json:"contentsId"`
	NotifiedTime  int64               `json:"notifiedTime"`
	IconURL       string              `json:"iconUrl"`
	ThumbnailURL  string              `json:"thumbnailUrl"`
	ArtistID      int64               `json:"artistId"`
	MembersOnly   bool                `json:"membersOnly"`
	WebOnly       bool                `json:"webOnly"`
	Platform      string              `json:"platform"`
	Extras        *notificationExtras `json:"extras"`
}

// notificationsPage is one page of the account notification feed.
type notificationsPage struct {
	Notifications []notificationPayload `json:"notifications"`
	IsEnded       *bool                 `json:"isEnded"`
	LastID        *int64                `json:"lastId"`
}

// newCommunity validates a community record and builds the cached entity
// with empty collection stores.
func newCommunity(p communityPayload) (*Community, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("community record missing id")
	}
	return &Community{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		MemberCount: p.MemberCount,
		HomeBanner:  p.HomeBannerImgURL,
		Icon:        p.IconImgURL,
		Banner:      p.BannerImgURL,
		FullNames:   p.FullName,
		MembersOnly: p.MembersOnly,
		Artists:     NewArtistStore(),
		Posts:       NewPostStore(),
		Media:       NewMediaStore(),
	}, nil
}

// newArtist validates an artist record against its owning community.
func newArtist(p artistPayload, community *Community) (*Artist, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("artist record missing id")
	}
	if community == nil {
		return nil, &ReferentialError{Kind: "artist", Parent: "community", ID: p.ID, ParentID: p.CommunityID}
	}
	return &Artist{
		ID:            p.ID,
		IDInCommunity: p.IDInCommunity,
		Name:          p.Name,
		AltNames:      p.AltNames,
		Nickname:      p.Nickname,
		ProfilePic:    p.ProfileImgPath,
		IsOnline:      p.IsOnline,
		IsBirthday:    p.IsBirthday,
		GroupName:     p.GroupName,
		CommunityID:   community.ID,
		IsEnabled:     p.IsEnabled,
		NewPublicPost: p.NewPublicPost,
		LastPostID:    p.LastPostID,
		LastPostAt:    epochMillis(p.LastPostCreatedAt),
		Community:     community,
	}, nil
}

// newPost validates a post record. Both parents must already be cached; a
// record referencing an unknown artist is not admissible.
func newPost(p postPayload, community *Community, artist *Artist) (*Post, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("post record missing id")
	}
	if community == nil {
		return nil, &ReferentialError{Kind: "post", Parent: "community", ID: p.ID, ParentID: p.CommunityID}
	}
	if artist == nil {
		return nil, &ReferentialError{Kind: "post", Parent: "artist", ID: p.ID, ParentID: p.ArtistID}
	}
	return &Post{
		ID:           p.ID,
		Body:         p.Body,
		ArtistID:     artist.ID,
		CommunityID:  community.ID,
		CommentCount: p.CommentCount,
		LikeCount:    p.LikeCount,
		CreatedAt:    epochMillis(p.CreatedAt),
		UpdatedAt:    epochMillis(p.UpdatedAt),
		Photos:       p.Photos,
		Videos:       p.AttachedVideos,
		Artist:       artist,
		Community:    community,
		Comments:     NewCommentStore(),
	}, nil
}

// newComment validates a comment record against its post and author.
func newComment(p commentPayload, post *Post, artist *Artist) (*Comment, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("comment record missing id")
	}
	if post == nil {
		return nil, &ReferentialError{Kind: "comment", Parent: "post", ID: p.ID, ParentID: p.PostID}
	}
	if artist == nil {
		return nil, &ReferentialError{Kind: "comment", Parent: "artist", ID: p.ID, ParentID: p.ArtistID}
	}
	return &Comment{
		ID:        p.ID,
		Body:      p.Body,
		LikeCount: p.LikeCount,
		CreatedAt: epochMillis(p.CreatedAt),
		UpdatedAt: epochMillis(p.UpdatedAt),
		ArtistID:  artist.ID,
		PostID:    post.ID,
		Artist:    artist,
		Post:      post,
	}, nil
}

// newMedia validates a media record against its owning community.
func newMedia(p mediaPayload, community *Community) (*Media, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("media record missing id")
	}
	if community == nil {
		return nil, &ReferentialError{Kind: "media", Parent: "community", ID: p.ID, ParentID: p.CommunityID}
	}
	return &Media{
		ID:          p.ID,
		CommunityID: community.ID,
		Kind:        MediaKind(p.Type),
		Title:       p.Title,
		Body:        p.Body,
		LikeCount:   p.LikeCount,
		PlayCount:   p.PlayCount,
		CreatedAt:   epochMillis(p.CreatedAt),
		Photos:      p.Photos,
		Video:       p.Video,
		Community:   community,
	}, nil
}

// newNotification validates a notification record. A zero community id is
// structurally invalid and rejected before the cache sees it. The artist
// reference is optional.
func newNotification(p notificationPayload, community *Community, artist *Artist) (*Notification, error) {
	if p.ID <= 0 {
		return nil, fmt.Errorf("notification record missing id")
	}
	if p.CommunityID == 0 {
		return nil, fmt.Errorf("notification %d has no community id", p.ID)
	}
	n := &Notification{
		ID:            p.ID,
		Message:       p.Message,
		BoldElement:   p.BoldElement,
		CommunityID:   p.CommunityID,
		CommunityName: p.CommunityName,
		ContentsType:  p.ContentsType,
		ContentsID:    p.ContentsID,
		ArtistID:      p.ArtistID,
		NotifiedAt:    epochMillis(p.NotifiedTime),
		IconURL:       p.IconURL,
		ThumbnailURL:  p.ThumbnailURL,
		MembersOnly:   p.MembersOnly,
		WebOnly:       p.WebOnly,
		Platform:      p.Platform,
		Community:     community,
		Artist:        artist,
	}
	if p.Extras != nil && (p.Extras.OriginContentsID > 0 || p.Extras.ReplyCommentID > 0) {
		n.Reply = &ReplyRef{
			OriginPostID:   p.Extras.OriginContentsID,
			ReplyCommentID: p.Extras.ReplyCommentID,
		}
	}
	return n, nil
}
