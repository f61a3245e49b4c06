package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	weverse "github.com/halcyoned/weverse/internal"
	"github.com/halcyoned/weverse/pkg/config"
)

// Client is the main entry point for interacting with the platform. It owns
// the auth session, the transport collaborators and the entity caches, and
// announces new entities through its event bus.
type Client struct {
	cfg     *config.Config
	logger  *log.Logger
	api     *weverse.API
	session *weverse.Session
	gate    *weverse.Gate
	fetcher *weverse.Fetcher

	// Events is the subscription surface for everything the client announces.
	Events *EventBus

	communities   *weverse.Store[weverse.Community]
	artists       *weverse.Store[weverse.Artist]
	posts         *weverse.Store[weverse.Post]
	comments      *weverse.Store[weverse.Comment]
	media         *weverse.Store[weverse.Media]
	notifications *weverse.Store[weverse.Notification]

	listenMu sync.Mutex
	stop     chan struct{}
	inFlight atomic.Bool
}

// New creates a new Client. The absence of both credential forms is the one
// construction error: everything else degrades at call time.
func New(cfg *config.Config, creds weverse.Credentials, logger *log.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	endpoints := weverse.DefaultEndpoints()
	if cfg.AuthBaseURL != "" {
		endpoints.AuthBase = cfg.AuthBaseURL
	}
	if cfg.APIBaseURL != "" {
		endpoints.APIBase = cfg.APIBaseURL
	}

	api := weverse.NewAPI(nil, cfg.RequestsPerMinute, cfg.Burst, logger)
	api.SetDebug(cfg.Verbose)

	session, err := weverse.NewSession(api, endpoints, creds, logger)
	if err != nil {
		return nil, err
	}
	gate := weverse.NewGate(session, logger)

	c := &Client{
		cfg:           cfg,
		logger:        logger,
		api:           api,
		session:       session,
		gate:          gate,
		Events:        NewEventBus(),
		communities:   weverse.NewCommunityStore(),
		artists:       weverse.NewArtistStore(),
		posts:         weverse.NewPostStore(),
		comments:      weverse.NewCommentStore(),
		media:         weverse.NewMediaStore(),
		notifications: weverse.NewNotificationStore(),
	}
	c.fetcher = weverse.NewFetcher(api, gate, session, endpoints, logger)
	return c, nil
}

// Session exposes the auth session for state inspection.
func (c *Client) Session() *weverse.Session { return c.session }

// Login performs the password grant and emits the login result.
func (c *Client) Login(ctx context.Context, creds *weverse.Credentials) error {
	err := c.session.Login(ctx, creds)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
	}
	c.Events.emitLogin(c.session.Authorized())
	return err
}

// CheckLogin verifies (and where needed restores) the session authorization.
func (c *Client) CheckLogin(ctx context.Context) bool {
	return c.session.CheckLogin(ctx)
}

// CommunityByID returns the cached community, nil when unknown.
func (c *Client) CommunityByID(id int64) *weverse.Community {
	v, _ := c.communities.Get(id)
	return v
}

// ArtistByID returns the cached artist, nil when unknown.
func (c *Client) ArtistByID(id int64) *weverse.Artist {
	v, _ := c.artists.Get(id)
	return v
}

// Post returns the cached post, nil when unknown.
func (c *Client) Post(id int64) *weverse.Post {
	v, _ := c.posts.Get(id)
	return v
}

// Communities returns every cached community in arrival order.
func (c *Client) Communities() []*weverse.Community {
	return c.communities.All()
}

// GetCommunities fetches the account's communities and admits them into the
// cache. Returns the cached communities, or nil when the fetch failed.
func (c *Client) GetCommunities(ctx context.Context) []*weverse.Community {
	communities, err := c.fetcher.Communities(ctx)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil
	}
	if communities == nil {
		return nil
	}
	c.communities.Add(communities...)
	return c.communities.All()
}

// GetCommunityArtists fetches the artist roster of a cached community.
func (c *Client) GetCommunityArtists(ctx context.Context, communityID int64) []*weverse.Artist {
	community := c.CommunityByID(communityID)
	if community == nil {
		c.logger.Printf("weverse: community %d not cached, fetch communities first", communityID)
		return nil
	}
	artists, err := c.fetcher.CommunityArtists(ctx, community)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil
	}
	fresh := community.Artists.Add(artists...)
	c.artists.Add(fresh...)
	return community.Artists.All()
}

// GetCommunityPosts walks the community's artist post feed and returns the
// newly admitted posts. Pagination degrades to partial results on failure.
func (c *Client) GetCommunityPosts(ctx context.Context, communityID int64, pages int) []*weverse.Post {
	community := c.CommunityByID(communityID)
	if community == nil {
		c.logger.Printf("weverse: community %d not cached, fetch communities first", communityID)
		return nil
	}
	fetch := func(ctx context.Context, from int64) (*weverse.Page[weverse.Post], error) {
		page, err := c.fetcher.PostsPage(ctx, community, c.ArtistByID, from)
		if err != nil {
			c.logger.Printf("weverse: %v", err)
			c.Events.emitError(err)
		}
		return page, err
	}
	admit := func(candidates []*weverse.Post) []*weverse.Post {
		fresh := community.Posts.Add(candidates...)
		c.posts.Add(fresh...)
		return fresh
	}
	return weverse.Paginate(ctx, pages, fetch, admit)
}

// GetNotifications walks the account notification feed, admits and
// classifies the new notifications, and returns them. No cascade runs: this
// is the bulk/backfill path.
func (c *Client) GetNotifications(ctx context.Context, pages int) []*weverse.Notification {
	fetch := func(ctx context.Context, from int64) (*weverse.Page[weverse.Notification], error) {
		page, err := c.fetcher.NotificationsPage(ctx, c.CommunityByID, c.ArtistByID, from)
		if err != nil {
			c.logger.Printf("weverse: %v", err)
			c.Events.emitError(err)
		}
		return page, err
	}
	admit := func(candidates []*weverse.Notification) []*weverse.Notification {
		fresh := c.notifications.Add(candidates...)
		c.classify(fresh)
		return fresh
	}
	return weverse.Paginate(ctx, pages, fetch, admit)
}

// GetNewNotifications fetches the single newest notification page, admits
// and classifies the new entries, announces each one and cascades into the
// content it references. Returns the newly admitted notifications.
func (c *Client) GetNewNotifications(ctx context.Context) ([]*weverse.Notification, error) {
	page, err := c.fetcher.NotificationsPage(ctx, c.CommunityByID, c.ArtistByID, 0)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil, err
	}
	if page == nil {
		return nil, nil
	}
	fresh := c.notifications.Add(page.Items...)
	c.classify(fresh)
	for _, n := range fresh {
		c.Events.emitNotification(n)
		c.cascade(ctx, n)
	}
	return fresh, nil
}

// classify assigns content categories. Unmatched messages are logged and
// kept unclassified.
func (c *Client) classify(notifications []*weverse.Notification) {
	for _, n := range notifications {
		n.Kind = weverse.Classify(n.Message)
		if n.Kind == weverse.KindUnclassified {
			c.logger.Printf("weverse: notification %d did not classify: %q", n.ID, n.Message)
		}
	}
}

// cascade resolves one notification into the content it announces. Failures
// are isolated: they are logged and never abort sibling cascades.
func (c *Client) cascade(ctx context.Context, n *weverse.Notification) {
	switch n.Kind {
	case weverse.KindComment:
		postID := n.ContentsID
		if n.Reply != nil && n.Reply.OriginPostID > 0 {
			postID = n.Reply.OriginPostID
			c.logger.Printf("weverse: notification %d replies to comment %d on post %d", n.ID, n.Reply.ReplyCommentID, postID)
		}
		post, err := c.GetPost(ctx, postID, n.CommunityID)
		if err != nil || post == nil {
			return
		}
		comments, err := c.GetComments(ctx, post, post.Community)
		if err != nil {
			return
		}
		for _, comment := range comments {
			c.Events.emitComment(comment, post)
		}
	case weverse.KindPost:
		if _, known := c.posts.Get(n.ContentsID); known {
			return
		}
		post, err := c.GetPost(ctx, n.ContentsID, n.CommunityID)
		if err != nil || post == nil {
			return
		}
		c.Events.emitPost(post)
	case weverse.KindMedia:
		if _, known := c.media.Get(n.ContentsID); known {
			return
		}
		media, err := c.GetMedia(ctx, n.ContentsID, n.CommunityID)
		if err != nil || media == nil {
			return
		}
		c.Events.emitMedia(media)
	default:
		// announcements and unclassified notifications carry no content
	}
}

// GetPost returns a post by id, cache-first. A post whose community or
// artist is not resolvable yields nil with a log line, not an error.
func (c *Client) GetPost(ctx context.Context, id, communityID int64) (*weverse.Post, error) {
	if post, ok := c.posts.Get(id); ok {
		return post, nil
	}
	community := c.CommunityByID(communityID)
	if community == nil {
		c.logger.Printf("weverse: cannot fetch post %d: community %d not cached", id, communityID)
		return nil, nil
	}
	post, err := c.fetcher.PostDetail(ctx, community, c.ArtistByID, id)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil, err
	}
	if post == nil {
		return nil, nil
	}
	c.posts.Add(post)
	winner, _ := c.posts.Get(id)
	community.Posts.Add(winner)
	return winner, nil
}

// GetComments fetches the artist comments on a post and returns the newly
// admitted subset.
func (c *Client) GetComments(ctx context.Context, post *weverse.Post, community *weverse.Community) ([]*weverse.Comment, error) {
	if post == nil {
		return nil, nil
	}
	comments, err := c.fetcher.Comments(ctx, post, c.ArtistByID)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil, err
	}
	fresh := post.Comments.Add(comments...)
	c.comments.Add(fresh...)
	return fresh, nil
}

// GetMedia returns a media item by id, cache-first.
func (c *Client) GetMedia(ctx context.Context, id, communityID int64) (*weverse.Media, error) {
	if media, ok := c.media.Get(id); ok {
		return media, nil
	}
	community := c.CommunityByID(communityID)
	if community == nil {
		c.logger.Printf("weverse: cannot fetch media %d: community %d not cached", id, communityID)
		return nil, nil
	}
	media, err := c.fetcher.MediaDetail(ctx, community, id)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil, err
	}
	if media == nil {
		return nil, nil
	}
	c.media.Add(media)
	winner, _ := c.media.Get(id)
	community.Media.Add(winner)
	return winner, nil
}

// ResolveVideoURLs returns the playable URLs of a post's attached videos,
// fetching the post detail when the feed payload omitted them. The cached
// post is not mutated.
func (c *Client) ResolveVideoURLs(ctx context.Context, post *weverse.Post) ([]string, error) {
	if post == nil || !post.HasVideos() {
		return nil, nil
	}
	urls := playURLs(post.Videos)
	if len(urls) == len(post.Videos) {
		return urls, nil
	}
	detail, err := c.fetcher.PostDetail(ctx, post.Community, c.ArtistByID, post.ID)
	if err != nil {
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return nil, err
	}
	if detail == nil {
		return urls, nil
	}
	return playURLs(detail.Videos), nil
}

func playURLs(videos []weverse.Video) []string {
	urls := make([]string, 0, len(videos))
	for _, v := range videos {
		if v.PlayURL != "" {
			urls = append(urls, v.PlayURL)
		}
	}
	return urls
}

// InitOptions bound the backfill performed by Init. Zero pages means "until
// the server reports the feed ended", so use DefaultInitOptions for the
// one-page warmup.
type InitOptions struct {
	PostPages         int
	NotificationPages int
}

// DefaultInitOptions fetches one page per feed.
func DefaultInitOptions() InitOptions {
	return InitOptions{PostPages: 1, NotificationPages: 1}
}

// Init warms the cache: communities first, then a concurrent per-community
// fan-out of artists and posts joined before the notification backfill.
// Completion is announced through the init event.
func (c *Client) Init(ctx context.Context, opts InitOptions) error {
	communities := c.GetCommunities(ctx)
	if len(communities) == 0 {
		err := fmt.Errorf("initialization failed: no communities available")
		c.logger.Printf("weverse: %v", err)
		c.Events.emitError(err)
		return err
	}

	var wg sync.WaitGroup
	for _, community := range communities {
		wg.Add(1)
		go func(community *weverse.Community) {
			defer wg.Done()
			// artists before posts: post admission needs the author cached
			c.GetCommunityArtists(ctx, community.ID)
			c.GetCommunityPosts(ctx, community.ID, opts.PostPages)
		}(community)
	}
	wg.Wait()

	c.GetNotifications(ctx, opts.NotificationPages)
	c.Events.emitInit(communities)
	return nil
}

// ListenOptions configure the polling loop.
type ListenOptions struct {
	Enabled  bool
	Interval time.Duration
}

// Listen starts or stops the notification polling loop. Enabling with a
// non-positive interval is rejected. Disabling clears the timer but does not
// cancel a cycle already in flight.
func (c *Client) Listen(opts ListenOptions) error {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()

	if !opts.Enabled {
		c.stopLocked()
		return nil
	}
	if opts.Interval <= 0 {
		err := fmt.Errorf("listen interval must be positive, got %s", opts.Interval)
		c.logger.Printf("weverse: %v", err)
		return err
	}

	c.stopLocked()
	stop := make(chan struct{})
	c.stop = stop
	ticker := time.NewTicker(opts.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.cycle(stop)
			}
		}
	}()
	return nil
}

// Listening reports whether the polling loop is running.
func (c *Client) Listening() bool {
	c.listenMu.Lock()
	defer c.listenMu.Unlock()
	return c.stop != nil
}

func (c *Client) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// cycle runs one poll iteration. A tick arriving while the previous cycle is
// still in flight is skipped. A failed cycle attempts CheckLogin; when even
// that fails the loop stops and a terminal poll result is emitted.
func (c *Client) cycle(stop chan struct{}) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.logger.Printf("weverse: poll cycle still in progress, skipping tick")
		return
	}
	defer c.inFlight.Store(false)

	ctx := context.Background()
	fresh, err := c.GetNewNotifications(ctx)
	if err == nil {
		c.Events.emitPoll(PollResult{New: fresh})
		return
	}
	if c.session.CheckLogin(ctx) {
		// recovered; resume on the next tick
		c.Events.emitPoll(PollResult{Err: err})
		return
	}

	c.listenMu.Lock()
	if c.stop == stop {
		c.stopLocked()
	}
	c.listenMu.Unlock()
	c.logger.Printf("weverse: polling stopped, reauthorization failed after cycle error: %v", err)
	c.Events.emitError(err)
	c.Events.emitPoll(PollResult{Err: err, Terminal: true})
}
