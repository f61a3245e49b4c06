package weverse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// PlatformHost is the base host every service host is derived from.
	PlatformHost = "weverse.io"

	// DefaultAuthBaseURL is the credential exchange service.
	DefaultAuthBaseURL = "https://accountapi." + PlatformHost
	// DefaultAPIBaseURL is the web API root.
	DefaultAPIBaseURL = "https://weversewebapi." + PlatformHost + "/wapi/v1"

	// loginClientID is the fixed OAuth client id for the web platform.
	loginClientID = "weverse-test"
)

// Endpoints constructs every URL the client issues requests to. The zero
// value is not usable; call DefaultEndpoints or fill both bases (tests point
// them at a local server).
type Endpoints struct {
	AuthBase string
	APIBase  string
}

// DefaultEndpoints returns the production endpoint set.
func DefaultEndpoints() Endpoints {
	return Endpoints{AuthBase: DefaultAuthBaseURL, APIBase: DefaultAPIBaseURL}
}

// Login is the POST target for password and refresh grants.
func (e Endpoints) Login() string {
	return strings.TrimSuffix(e.AuthBase, "/") + "/api/v1/oauth/token"
}

func (e Endpoints) api(path string) string {
	return strings.TrimSuffix(e.APIBase, "/") + "/" + path
}

// Me is the identity probe used as the token-validity check.
func (e Endpoints) Me() string { return e.api("users/me") }

// Communities lists every community visible to the account.
func (e Endpoints) Communities() string { return e.api("communities") }

// Community is the community detail endpoint; the payload carries the
// community's artists.
func (e Endpoints) Community(communityID int64) string {
	return e.api(fmt.Sprintf("communities/%d", communityID))
}

// CommunityPosts is the artist posts feed for a community. A zero cursor
// requests the most recent page.
func (e Endpoints) CommunityPosts(communityID, from int64) string {
	u := e.api(fmt.Sprintf("communities/%d/posts/artistTab", communityID))
	return withCursor(u, from)
}

// Post is the post detail endpoint.
func (e Endpoints) Post(communityID, postID int64) string {
	return e.api(fmt.Sprintf("communities/%d/posts/%d", communityID, postID))
}

// PostComments lists the artist comments on a post.
func (e Endpoints) PostComments(communityID, postID int64) string {
	return e.api(fmt.Sprintf("communities/%d/posts/%d/comments", communityID, postID))
}

// Notifications is the account notification feed. A zero cursor requests the
// most recent page.
func (e Endpoints) Notifications(from int64) string {
	return withCursor(e.api("stream/notifications"), from)
}

// Media is the media detail endpoint.
func (e Endpoints) Media(communityID, mediaID int64) string {
	return e.api(fmt.Sprintf("communities/%d/medias/%d", communityID, mediaID))
}

// withCursor appends the "from" cursor query parameter when a cursor is set.
func withCursor(rawURL string, from int64) string {
	if from <= 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("from", strconv.FormatInt(from, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
