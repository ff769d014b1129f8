package collector

import (
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/prabalesh/proctop/internal/models"
)

// UserCacheDuration is how long a resolved user name is trusted.
const UserCacheDuration = 5 * time.Minute

type userEntry struct {
	name string
	at   time.Time
}

// UserCache resolves numeric uids to user names and remembers the answers,
// failures included, so a refresh cycle does not hit the user database once
// per process.
type UserCache struct {
	ttl    time.Duration
	lookup func(uid string) (string, error)
	now    func() time.Time

	entries map[int]userEntry
	mutex   sync.RWMutex
}

func NewUserCache(ttl time.Duration) *UserCache {
	return &UserCache{
		ttl:     ttl,
		lookup:  lookupUsername,
		now:     time.Now,
		entries: make(map[int]userEntry),
	}
}

func lookupUsername(uid string) (string, error) {
	u, err := user.LookupId(uid)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Name returns the user name for uid, or models.UnknownUser when it cannot
// be resolved.
func (c *UserCache) Name(uid int) string {
	if name, ok := c.cached(uid); ok {
		return name
	}

	name, err := c.lookup(strconv.Itoa(uid))
	if err != nil || name == "" {
		name = models.UnknownUser
	}

	c.mutex.Lock()
	c.entries[uid] = userEntry{name: name, at: c.now()}
	c.mutex.Unlock()
	return name
}

func (c *UserCache) cached(uid int) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	e, ok := c.entries[uid]
	if !ok || c.now().Sub(e.at) >= c.ttl {
		return "", false
	}
	return e.name, true
}

// size returns the number of cached entries, expired ones included.
func (c *UserCache) size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// reset drops every entry.
func (c *UserCache) reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[int]userEntry)
}
