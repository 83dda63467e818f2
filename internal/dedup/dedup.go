package dedup

import (
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Guard remembers recently seen update ids so redelivered webhooks are dropped.
// Entries are evicted by size (least recently used) and by age.
type Guard struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, struct{}]
}

// New creates a guard holding at most capacity ids for ttl
func New(capacity int, ttl time.Duration) *Guard {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Guard{cache: expirable.NewLRU[string, struct{}](capacity, nil, ttl)}
}

// SeenAndMark reports whether id was seen before and marks it seen.
// Exactly one of concurrent callers with the same id gets false.
func (g *Guard) SeenAndMark(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cache.Contains(id) {
		return true
	}
	g.cache.Add(id, struct{}{})
	return false
}

// Len returns the number of remembered ids
func (g *Guard) Len() int {
	return g.cache.Len()
}

// Reset forgets every id
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache.Purge()
}

// MessageKey identifies a message by chat, message id and send date
func MessageKey(chatID int64, messageID int, date int) string {
	return "msg:" + strconv.FormatInt(chatID, 10) + ":" + strconv.Itoa(messageID) + ":" + strconv.Itoa(date)
}

// CallbackKey identifies a callback query
func CallbackKey(id string) string {
	return "cb:" + id
}
