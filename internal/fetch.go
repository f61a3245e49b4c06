package weverse

import (
	"context"
	"io"
	"log"
)

// Fetcher turns gated API responses into constructed entities. It owns no
// cache: callers admit what it returns. Every method follows the same
// policy — transport and parse failures return an error, a gate stop returns
// nil without an error, and records that fail construction are logged and
// skipped rather than failing the batch.
type Fetcher struct {
	api       *API
	gate      *Gate
	session   *Session
	endpoints Endpoints
	logger    *log.Logger
}

// NewFetcher builds a fetcher over the shared transport collaborators.
func NewFetcher(api *API, gate *Gate, session *Session, endpoints Endpoints, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Fetcher{api: api, gate: gate, session: session, endpoints: endpoints, logger: logger}
}

// get issues an authenticated GET and runs the gate. A nil response with a
// nil error means the gate stopped the operation.
func (f *Fetcher) get(ctx context.Context, url string) (*Response, error) {
	resp, err := f.api.Get(ctx, url, f.session.Headers())
	if err != nil {
		return nil, err
	}
	if !f.gate.Proceed(ctx, resp) {
		return nil, nil
	}
	return resp, nil
}

// Communities fetches every community visible to the account.
func (f *Fetcher) Communities(ctx context.Context) ([]*Community, error) {
	resp, err := f.get(ctx, f.endpoints.Communities())
	if err != nil || resp == nil {
		return nil, err
	}
	var payload communityListPayload
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	communities := make([]*Community, 0, len(payload.Communities))
	for _, p := range payload.Communities {
		community, err := newCommunity(p)
		if err != nil {
			f.logger.Printf("weverse: skipping community record: %v", err)
			continue
		}
		communities = append(communities, community)
	}
	return communities, nil
}

// CommunityArtists fetches the community detail payload and returns its
// artist roster bound to the given community.
func (f *Fetcher) CommunityArtists(ctx context.Context, community *Community) ([]*Artist, error) {
	resp, err := f.get(ctx, f.endpoints.Community(community.ID))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload communityDetailPayload
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	artists := make([]*Artist, 0, len(payload.Artists))
	for _, p := range payload.Artists {
		artist, err := newArtist(p, community)
		if err != nil {
			f.logger.Printf("weverse: skipping artist record: %v", err)
			continue
		}
		artists = append(artists, artist)
	}
	return artists, nil
}

// PostsPage fetches one page of the community's artist post feed. Records
// whose author is not resolvable through artistByID are skipped.
func (f *Fetcher) PostsPage(ctx context.Context, community *Community, artistByID func(int64) *Artist, from int64) (*Page[Post], error) {
	resp, err := f.get(ctx, f.endpoints.CommunityPosts(community.ID, from))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload postsPage
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	page := &Page[Post]{}
	if payload.IsEnded != nil {
		page.IsEnded = *payload.IsEnded
	}
	if payload.LastID != nil {
		page.LastID = *payload.LastID
	}
	for _, p := range payload.Posts {
		post, err := newPost(p, community, artistByID(p.ArtistID))
		if err != nil {
			f.logger.Printf("weverse: skipping post record: %v", err)
			continue
		}
		page.Items = append(page.Items, post)
	}
	return page, nil
}

// PostDetail fetches a single post by id.
func (f *Fetcher) PostDetail(ctx context.Context, community *Community, artistByID func(int64) *Artist, postID int64) (*Post, error) {
	resp, err := f.get(ctx, f.endpoints.Post(community.ID, postID))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload postPayload
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	post, err := newPost(payload, community, artistByID(payload.ArtistID))
	if err != nil {
		f.logger.Printf("weverse: rejecting post record: %v", err)
		return nil, nil
	}
	return post, nil
}

// Comments fetches the artist comments on a post.
func (f *Fetcher) Comments(ctx context.Context, post *Post, artistByID func(int64) *Artist) ([]*Comment, error) {
	resp, err := f.get(ctx, f.endpoints.PostComments(post.CommunityID, post.ID))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload commentsPayload
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	comments := make([]*Comment, 0, len(payload.ArtistComments))
	for _, p := range payload.ArtistComments {
		comment, err := newComment(p, post, artistByID(p.ArtistID))
		if err != nil {
			f.logger.Printf("weverse: skipping comment record: %v", err)
			continue
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// MediaDetail fetches a single media item by id.
func (f *Fetcher) MediaDetail(ctx context.Context, community *Community, mediaID int64) (*Media, error) {
	resp, err := f.get(ctx, f.endpoints.Media(community.ID, mediaID))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload mediaPayload
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	media, err := newMedia(payload, community)
	if err != nil {
		f.logger.Printf("weverse: rejecting media record: %v", err)
		return nil, nil
	}
	return media, nil
}

// NotificationsPage fetches one page of the account notification feed.
// Records naming a community absent from communityByID are dropped before
// admission; the artist reference is optional.
func (f *Fetcher) NotificationsPage(ctx context.Context, communityByID func(int64) *Community, artistByID func(int64) *Artist, from int64) (*Page[Notification], error) {
	resp, err := f.get(ctx, f.endpoints.Notifications(from))
	if err != nil || resp == nil {
		return nil, err
	}
	var payload notificationsPage
	if err := Decode(resp, &payload); err != nil {
		return nil, err
	}
	page := &Page[Notification]{}
	if payload.IsEnded != nil {
		page.IsEnded = *payload.IsEnded
	}
	if payload.LastID != nil {
		page.LastID = *payload.LastID
	}
	for _, p := range payload.Notifications {
		community := communityByID(p.CommunityID)
		if p.CommunityID != 0 && community == nil {
			f.logger.Printf("weverse: dropping notification %d: community %d not cached", p.ID, p.CommunityID)
			continue
		}
		notification, err := newNotification(p, community, artistByID(p.ArtistID))
		if err != nil {
			f.logger.Printf("weverse: skipping notification record: %v", err)
			continue
		}
		page.Items = append(page.Items, notification)
	}
	return page, nil
}
