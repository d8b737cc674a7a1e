package fideauth_test

import (
	"context"
	"sync"

	fideauth "github.com/fastfide/go-fideauth"
)

type silentLogger struct{}

func (silentLogger) Debug(format string, args ...any) {}
func (silentLogger) Info(format string, args ...any)  {}
func (silentLogger) Warn(format string, args ...any)  {}
func (silentLogger) Error(format string, args ...any) {}

// recordingNotifier captures every dispatched message.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []fideauth.Message
	err      error
}

func (n *recordingNotifier) Send(ctx context.Context, msg fideauth.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func (n *recordingNotifier) sent() []fideauth.Message {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]fideauth.Message, len(n.messages))
	copy(out, n.messages)
	return out
}

// fakeIdentityClient implements fideauth.IdentityClient with scripted
// responses and call counters.
type fakeIdentityClient struct {
	mu           sync.Mutex
	current      *fideauth.Session
	currentErr   error
	setErr       error
	setCalls     [][2]string
	refreshErr   error
	refreshCalls int
	callback     func(event string, session *fideauth.Session)
	unsubscribed bool
}

func (c *fakeIdentityClient) CurrentSession(ctx context.Context) (*fideauth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentErr != nil {
		return nil, c.currentErr
	}
	if c.current == nil {
		return nil, nil
	}
	session := *c.current
	return &session, nil
}

func (c *fakeIdentityClient) SetSession(ctx context.Context, accessToken, refreshToken string) (*fideauth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCalls = append(c.setCalls, [2]string{accessToken, refreshToken})
	if c.setErr != nil {
		return nil, c.setErr
	}
	session := &fideauth.Session{AccessToken: accessToken, RefreshToken: refreshToken}
	c.current = session
	out := *session
	return &out, nil
}

func (c *fakeIdentityClient) RefreshSession(ctx context.Context) (*fideauth.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshCalls++
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	if c.current == nil {
		return nil, nil
	}
	session := *c.current
	return &session, nil
}

func (c *fakeIdentityClient) OnSessionChange(fn func(event string, session *fideauth.Session)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callback = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.unsubscribed = true
	}
}

func (c *fakeIdentityClient) emit(event string, session *fideauth.Session) {
	c.mu.Lock()
	fn := c.callback
	c.mu.Unlock()

	if fn != nil {
		fn(event, session)
	}
}

func (c *fakeIdentityClient) refreshes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshCalls
}

func (c *fakeIdentityClient) sets() [][2]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][2]string, len(c.setCalls))
	copy(out, c.setCalls)
	return out
}
