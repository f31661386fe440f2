package service

import (
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

// snapshotFeed fans cart snapshots out to subscribers. A new subscriber
// receives the latest snapshot immediately; a subscriber that falls behind
// skips straight to the newest one.
type snapshotFeed struct {
	mu     sync.Mutex
	latest []domain.CartLine
	subs   map[int]chan []domain.CartLine
	nextID int
}

func newSnapshotFeed(initial []domain.CartLine) *snapshotFeed {
	return &snapshotFeed{
		latest: initial,
		subs:   make(map[int]chan []domain.CartLine),
	}
}

func (f *snapshotFeed) publish(lines []domain.CartLine) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = lines
	for _, ch := range f.subs {
		offerLatest(ch, cloneLines(lines))
	}
}

func (f *snapshotFeed) subscribe() (<-chan []domain.CartLine, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++

	ch := make(chan []domain.CartLine, 1)
	ch <- cloneLines(f.latest)
	f.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (f *snapshotFeed) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// offerLatest replaces any undelivered snapshot with lines. Only the feed
// sends on ch, so the retry after draining cannot block.
func offerLatest(ch chan []domain.CartLine, lines []domain.CartLine) {
	for {
		select {
		case ch <- lines:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func cloneLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
