package weverse

import (
	"context"
	"io"
	"log"
	"net/http"
)

// Gate interprets the outcome of every outbound call. It is the sole
// retry/backoff policy in the client: a 401 triggers at most one
// reauthorization and the original request is never re-issued — the caller's
// current operation returns what it has, and the next operation runs with
// the refreshed headers.
type Gate struct {
	session *Session
	logger  *log.Logger
}

// NewGate builds a gate over the given session.
func NewGate(session *Session, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gate{session: session, logger: logger}
}

// Proceed reports whether the caller may act on the response. On a 401 it
// runs one CheckLogin; a passing check reports proceed, but the response
// payload is whatever came with the 401 and must not be trusted on that path.
// The original request is never re-issued: the current operation keeps what
// it has and the next one runs with refreshed headers.
func (g *Gate) Proceed(ctx context.Context, resp *Response) bool {
	if resp.OK() {
		return true
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if g.session.CheckLogin(ctx) {
			return true
		}
		g.logger.Printf("weverse: reauthorization failed @ %s", resp.URL)
		return false
	}
	g.logger.Printf("weverse: API error @ %s. Status code %d", resp.URL, resp.StatusCode)
	return false
}
