package server

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// Session is one open editor. Every access to the editor goes through Do,
// which serializes requests on the same session.
type Session[E any] struct {
	mu     sync.Mutex
	editor E
}

// Do runs fn with exclusive access to the editor
func (s *Session[E]) Do(fn func(E) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.editor)
}

// SessionCache holds open editors keyed by user or role id. Entries expire
// after the TTL since their last use.
type SessionCache[E any] struct {
	cache   *lru.LRU[uint, *Session[E]]
	loading sync.Mutex
}

func newSessionCache[E any](size int, ttl time.Duration) *SessionCache[E] {
	return &SessionCache[E]{cache: lru.NewLRU[uint, *Session[E]](size, nil, ttl)}
}

// Open returns the session for id, loading the editor when none is open
func (c *SessionCache[E]) Open(ctx context.Context, id uint, load func(context.Context) (E, error)) (*Session[E], error) {
	if s, ok := c.touch(id); ok {
		return s, nil
	}

	c.loading.Lock()
	defer c.loading.Unlock()
	if s, ok := c.touch(id); ok {
		return s, nil
	}

	e, err := load(ctx)
	if err != nil {
		return nil, err
	}
	s := &Session[E]{editor: e}
	c.cache.Add(id, s)
	return s, nil
}

// touch returns an open session and restarts its TTL
func (c *SessionCache[E]) touch(id uint) (*Session[E], bool) {
	s, ok := c.cache.Get(id)
	if ok {
		c.cache.Add(id, s)
	}
	return s, ok
}

// Discard closes the session for id. It reports whether one was open.
func (c *SessionCache[E]) Discard(id uint) bool {
	return c.cache.Remove(id)
}

// Each calls fn for every open session without restarting its TTL
func (c *SessionCache[E]) Each(fn func(id uint, s *Session[E])) {
	for _, id := range c.cache.Keys() {
		if s, ok := c.cache.Peek(id); ok {
			fn(id, s)
		}
	}
}

// Len returns the number of open sessions
func (c *SessionCache[E]) Len() int {
	return c.cache.Len()
}

// Sessions holds the user override and role menu editors
type Sessions struct {
	Users *SessionCache[*editor.UserRights]
	Roles *SessionCache[*editor.RoleMenus]
}

func NewSessions(size int, ttl time.Duration) *Sessions {
	if size <= 0 {
		size = 256
	}
	return &Sessions{
		Users: newSessionCache[*editor.UserRights](size, ttl),
		Roles: newSessionCache[*editor.RoleMenus](size, ttl),
	}
}

// Purge closes every session
func (s *Sessions) Purge() {
	s.Users.cache.Purge()
	s.Roles.cache.Purge()
}

// RoleChanged applies new defaults of a role to every open user session
// resolving against it. Unsaved overrides are kept. It returns the number of
// sessions updated.
func (s *Sessions) RoleChanged(roleID uint, defaults map[uint]permission.Grant) int {
	n := 0
	s.Users.Each(func(_ uint, sess *Session[*editor.UserRights]) {
		_ = sess.Do(func(e *editor.UserRights) error {
			if e.RoleID() == roleID {
				e.ApplyRoleDefaults(defaults)
				n++
			}
			return nil
		})
	})
	return n
}

// DiscardUsersOfRole closes every open user session resolving against a
// role. It returns the number of sessions closed.
func (s *Sessions) DiscardUsersOfRole(roleID uint) int {
	var ids []uint
	s.Users.Each(func(id uint, sess *Session[*editor.UserRights]) {
		_ = sess.Do(func(e *editor.UserRights) error {
			if e.RoleID() == roleID {
				ids = append(ids, id)
			}
			return nil
		})
	})
	for _, id := range ids {
		s.Users.Discard(id)
	}
	return len(ids)
}
