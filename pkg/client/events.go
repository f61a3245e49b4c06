package client

import (
	"sync"

	weverse "github.com/halcyoned/weverse/internal"
)

// PollResult is the outcome of one polling cycle.
type PollResult struct {
	// New holds the notifications admitted during the cycle.
	New []*weverse.Notification
	// Err is the cycle failure, if any. When Terminal is set the loop has
	// stopped and no further cycles run.
	Err      error
	Terminal bool
}

// EventBus carries typed handler registries for everything the client
// announces. The client holds a bus; handlers subscribe through the OnX
// methods and are invoked synchronously, in subscription order, from
// whichever goroutine produced the event.
type EventBus struct {
	mu            sync.Mutex
	errors        []func(error)
	inits         []func([]*weverse.Community)
	notifications []func(*weverse.Notification)
	posts         []func(*weverse.Post)
	media         []func(*weverse.Media)
	comments      []func(*weverse.Comment, *weverse.Post)
	logins        []func(bool)
	polls         []func(PollResult)
}

// NewEventBus returns an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// OnError subscribes to operational errors.
func (b *EventBus) OnError(h func(error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = append(b.errors, h)
}

// OnInit subscribes to initialization completion. The handler receives the
// cached communities.
func (b *EventBus) OnInit(h func([]*weverse.Community)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits = append(b.inits, h)
}

// OnNotification subscribes to newly admitted notifications.
func (b *EventBus) OnNotification(h func(*weverse.Notification)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notifications = append(b.notifications, h)
}

// OnPost subscribes to posts discovered through the notification cascade.
func (b *EventBus) OnPost(h func(*weverse.Post)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts = append(b.posts, h)
}

// OnMedia subscribes to media discovered through the notification cascade.
func (b *EventBus) OnMedia(h func(*weverse.Media)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.media = append(b.media, h)
}

// OnComment subscribes to comments discovered through the notification
// cascade. The handler receives the comment together with its post.
func (b *EventBus) OnComment(h func(*weverse.Comment, *weverse.Post)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.comments = append(b.comments, h)
}

// OnLogin subscribes to login results.
func (b *EventBus) OnLogin(h func(bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins = append(b.logins, h)
}

// OnPoll subscribes to polling cycle results.
func (b *EventBus) OnPoll(h func(PollResult)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polls = append(b.polls, h)
}

func (b *EventBus) emitError(err error) {
	b.mu.Lock()
	handlers := append(([]func(error))(nil), b.errors...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(err)
	}
}

func (b *EventBus) emitInit(communities []*weverse.Community) {
	b.mu.Lock()
	handlers := append(([]func([]*weverse.Community))(nil), b.inits...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(communities)
	}
}

func (b *EventBus) emitNotification(n *weverse.Notification) {
	b.mu.Lock()
	handlers := append(([]func(*weverse.Notification))(nil), b.notifications...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

func (b *EventBus) emitPost(p *weverse.Post) {
	b.mu.Lock()
	handlers := append(([]func(*weverse.Post))(nil), b.posts...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(p)
	}
}

func (b *EventBus) emitMedia(m *weverse.Media) {
	b.mu.Lock()
	handlers := append(([]func(*weverse.Media))(nil), b.media...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(m)
	}
}

func (b *EventBus) emitComment(c *weverse.Comment, p *weverse.Post) {
	b.mu.Lock()
	handlers := append(([]func(*weverse.Comment, *weverse.Post))(nil), b.comments...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(c, p)
	}
}

func (b *EventBus) emitLogin(ok bool) {
	b.mu.Lock()
	handlers := append(([]func(bool))(nil), b.logins...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(ok)
	}
}

func (b *EventBus) emitPoll(r PollResult) {
	b.mu.Lock()
	handlers := append(([]func(PollResult))(nil), b.polls...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(r)
	}
}
